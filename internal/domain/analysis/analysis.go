// Package analysis turns a free-text build request into structured
// preferences with one oracle call.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/buildlab/internal/domain/completion"
	"github.com/okian/buildlab/internal/domain/model"
)

// DefaultTemperature keeps extraction close to deterministic.
const DefaultTemperature = 0.3

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(a *Analyzer) {
		a.temperature = t
	}
}

// Analyzer holds no per-request state.
type Analyzer struct {
	oracle      completion.Service
	temperature float64
}

// New creates an Analyzer backed by oracle.
func New(oracle completion.Service, opts ...Option) *Analyzer {
	a := &Analyzer{oracle: oracle, temperature: DefaultTemperature}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// wire mirrors the extraction schema. Every field may be null.
type wire struct {
	Position            *string  `json:"position"`
	PlayStyle           *string  `json:"playStyle"`
	KeyAttributes       []string `json:"keyAttributes"`
	PhysicalPreferences *struct {
		Height   *string `json:"height"`
		Weight   *string `json:"weight"`
		Wingspan *string `json:"wingspan"`
	} `json:"physicalPreferences"`
	Badges   []string `json:"badges"`
	GameMode *string  `json:"gameMode"`
}

// Analyze extracts preferences from prompt. Oracle failures and
// undecodable answers wrap model.ErrOracle; empty fields are not errors.
func (a *Analyzer) Analyze(ctx context.Context, prompt string) (model.Preferences, error) {
	raw, err := a.oracle.Complete(ctx, completion.Request{
		Schema:      completion.SchemaAnalysis,
		System:      systemPrompt,
		User:        userPrompt(prompt),
		Temperature: a.temperature,
	})
	if err != nil {
		return model.Preferences{}, fmt.Errorf("analyze prompt: %w", err)
	}

	var w wire
	if err := completion.Decode(completion.SchemaAnalysis, raw, &w); err != nil {
		return model.Preferences{}, err
	}
	return w.preferences(), nil
}

func (w wire) preferences() model.Preferences {
	p := model.Preferences{
		Position:      model.NormalizePosition(text(w.Position)),
		PlayStyle:     text(w.PlayStyle),
		KeyAttributes: list(w.KeyAttributes),
		Badges:        list(w.Badges),
		GameMode:      text(w.GameMode),
	}
	if pp := w.PhysicalPreferences; pp != nil {
		p.PhysicalPreferences = model.Physical{
			Height:   text(pp.Height),
			Weight:   text(pp.Weight),
			Wingspan: text(pp.Wingspan),
		}
	}
	return p
}

// text treats JSON null and the literal "null" the same way.
func text(s *string) string {
	if s == nil {
		return ""
	}
	v := strings.TrimSpace(*s)
	if strings.EqualFold(v, "null") {
		return ""
	}
	return v
}

func list(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
