// Package completion defines the text-completion capability the pipeline
// delegates language understanding to.
package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/buildlab/internal/domain/model"
)

// Schema names the response contract of a call. Each schema has its own
// prompts and decoder and they must never be mixed up.
type Schema string

// Schemas in use.
const (
	SchemaAnalysis Schema = "analysis"
	SchemaBuild    Schema = "build"
	SchemaMatch    Schema = "match"
)

// Request is one JSON-mode completion.
type Request struct {
	Schema      Schema
	System      string
	User        string
	Temperature float64
}

// Service returns the raw JSON object produced for a request.
type Service interface {
	Complete(ctx context.Context, req Request) ([]byte, error)
}

// Func adapts a plain function to Service.
type Func func(ctx context.Context, req Request) ([]byte, error)

// Complete implements Service.
func (f Func) Complete(ctx context.Context, req Request) ([]byte, error) {
	return f(ctx, req)
}

// Decode unmarshals a completion into v. Markdown code fences around the
// object are tolerated. Failures wrap model.ErrOracle.
func Decode(schema Schema, raw []byte, v any) error {
	body := strings.TrimSpace(string(raw))
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}
	if body == "" {
		return fmt.Errorf("%w: empty %s response", model.ErrOracle, schema)
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("%w: malformed %s response: %v", model.ErrOracle, schema, err)
	}
	return nil
}
