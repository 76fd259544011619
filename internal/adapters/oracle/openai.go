package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/okian/buildlab/internal/domain/completion"
	"github.com/okian/buildlab/internal/domain/model"
)

// Defaults for the OpenAI provider.
const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o"
)

const maxErrorBody = 512

// OpenAIOption applies a configuration option to the OpenAI client.
type OpenAIOption func(*OpenAI)

// WithBaseURL points the client at any OpenAI-compatible endpoint.
func WithBaseURL(u string) OpenAIOption {
	return func(o *OpenAI) {
		if u != "" {
			o.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(o *OpenAI) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// OpenAI talks to a chat/completions endpoint in JSON-object mode.
type OpenAI struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAI creates a client. Timeouts come from the caller's context.
func NewOpenAI(apiKey, modelName string, opts ...OpenAIOption) *OpenAI {
	if modelName == "" {
		modelName = DefaultOpenAIModel
	}
	o := &OpenAI{
		apiKey:     apiKey,
		model:      modelName,
		baseURL:    DefaultOpenAIBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Complete implements completion.Service.
func (o *OpenAI) Complete(ctx context.Context, req completion.Request) ([]byte, error) {
	body, err := json.Marshal(chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature:    req.Temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: openai status %d: %s", model.ErrOracle, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode openai response: %v", model.ErrOracle, err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices from openai", model.ErrOracle)
	}
	return []byte(out.Choices[0].Message.Content), nil
}

// Name returns the provider label used in metrics.
func (o *OpenAI) Name() string { return ProviderOpenAI }
