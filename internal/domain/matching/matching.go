// Package matching asks the oracle to pick the community build that best
// fits a set of preferences.
package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/buildlab/internal/domain/completion"
	"github.com/okian/buildlab/internal/domain/model"
)

// DefaultTemperature makes the choice close to deterministic.
const DefaultTemperature = 0.1

const systemTemplate = `You are an NBA 2K25 build matcher. Based on the user's preferences, thoroughly analyze ALL available builds to find the BEST matching build.

The user's preferences have been analyzed as:
%s

Follow this scoring system to evaluate each build (0-100 points total):
1. Position match (0-30 points):
   - Exact position match: 30 points
   - Similar position (e.g., SG/SF): 15 points
   - No match: 0 points

2. Play style match (0-25 points):
   - Score based on how well the build's attributes match the requested play style
   - For shooters, prioritize three-point and mid-range shooting
   - For slashers, prioritize driving dunk, layup, and speed
   - For defenders, prioritize perimeter/interior defense, block, and steal
   - For playmakers, prioritize ball handling and pass accuracy

3. Key attributes match (0-25 points):
   - Score each requested attribute (divide 25 by the number of key attributes)

4. Physical attributes match (0-10 points):
   - Height match: 4 points
   - Weight match: 3 points
   - Wingspan match: 3 points

5. Badge match (0-10 points):
   - Score based on matching badges

CAREFULLY SCAN ALL BUILDS - don't just pick the first decent match!

Return the 0-based index of the best overall matching build as a JSON object: {"index": number}`

const userTemplate = `Available builds (%d total):
%s

Return ONLY the index (0-based) of the best matching build as {"index": number}.`

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(m *Matcher) {
		m.temperature = t
	}
}

// Matcher holds no per-request state.
type Matcher struct {
	oracle      completion.Service
	temperature float64
}

// New creates a Matcher backed by oracle.
func New(oracle completion.Service, opts ...Option) *Matcher {
	m := &Matcher{oracle: oracle, temperature: DefaultTemperature}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match returns the index into builds chosen by the oracle. An empty list is
// an upstream data error; an index outside the list is an oracle error.
func (m *Matcher) Match(ctx context.Context, prefs model.Preferences, builds []json.RawMessage) (int, error) {
	if len(builds) == 0 {
		return 0, fmt.Errorf("%w: no community builds to match against", model.ErrUpstreamData)
	}
	pretty, _ := json.MarshalIndent(prefs, "", "  ")
	list, err := json.Marshal(builds)
	if err != nil {
		return 0, fmt.Errorf("%w: encode builds: %v", model.ErrUpstreamData, err)
	}

	raw, err := m.oracle.Complete(ctx, completion.Request{
		Schema:      completion.SchemaMatch,
		System:      fmt.Sprintf(systemTemplate, pretty),
		User:        fmt.Sprintf(userTemplate, len(builds), list),
		Temperature: m.temperature,
	})
	if err != nil {
		return 0, fmt.Errorf("match build: %w", err)
	}

	idx, err := index(raw)
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= len(builds) {
		return 0, fmt.Errorf("%w: invalid build index %d of %d", model.ErrOracle, idx, len(builds))
	}
	return idx, nil
}

// index reads {"index": n} or a bare integer.
func index(raw []byte) (int, error) {
	body := bytes.TrimSpace(raw)
	if n, err := strconv.Atoi(string(body)); err == nil {
		return n, nil
	}
	var out struct {
		Index *model.Number `json:"index"`
	}
	if err := completion.Decode(completion.SchemaMatch, body, &out); err != nil {
		return 0, err
	}
	if out.Index == nil || !out.Index.Valid || out.Index.Value != float64(out.Index.Int()) {
		return 0, fmt.Errorf("%w: invalid build index %s", model.ErrOracle, strings.TrimSpace(string(body)))
	}
	return out.Index.Int(), nil
}
