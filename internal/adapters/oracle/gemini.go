package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/okian/buildlab/internal/domain/completion"
	"github.com/okian/buildlab/internal/domain/model"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// Gemini answers completions with Google's generative language API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini dials the API. Close releases the connection.
func NewGemini(ctx context.Context, apiKey, modelName string, opts ...option.ClientOption) (*Gemini, error) {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: modelName}, nil
}

// Complete implements completion.Service. Each call configures its own
// model handle so temperature and system prompt never leak between schemas.
func (g *Gemini) Complete(ctx context.Context, req completion.Request) ([]byte, error) {
	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(float32(req.Temperature))
	m.ResponseMIMEType = "application/json"
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}

	resp, err := m.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	text := extractText(resp)
	if text == "" {
		return nil, fmt.Errorf("%w: empty gemini response", model.ErrOracle)
	}
	return []byte(text), nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		break // first candidate only
	}
	return b.String()
}

// Name returns the provider label used in metrics.
func (g *Gemini) Name() string { return ProviderGemini }

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
