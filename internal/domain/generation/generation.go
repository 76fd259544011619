// Package generation asks the oracle for a full set of attribute caps and
// repairs what comes back into a usable cap set.
package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/buildlab/internal/domain/attributes"
	"github.com/okian/buildlab/internal/domain/completion"
	"github.com/okian/buildlab/internal/domain/height"
	"github.com/okian/buildlab/internal/domain/model"
)

// DefaultTemperature leaves room for varied builds.
const DefaultTemperature = 0.7

// Sample sizes of the grounding context sent to the oracle.
const (
	WeightSampleSize      = 10
	RequirementSampleSize = 5
)

// Plan is everything decided before the generation call.
type Plan struct {
	Height       string // display form, e.g. 6'2"
	Inches       int
	Budget       int
	Weights      []model.AttributeWeight
	Requirements []model.BadgeRequirement
}

// NewPlan picks the height and budget and slices the grounding samples. A
// stated height wins over the table when it parses; one that does not parse
// is treated as absent and the table decides.
func NewPlan(prefs model.Preferences, data model.Datasets) Plan {
	p := Plan{Budget: Budget(prefs.Position)}

	if stated := strings.TrimSpace(prefs.PhysicalPreferences.Height); stated != "" {
		if in, ok := height.ToInches(stated); ok && height.Valid(in) {
			p.Height, p.Inches = stated, in
		}
	}
	if p.Inches == 0 {
		p.Height = RecommendedHeight(prefs.Position, prefs.PlayStyle)
		p.Inches, _ = height.ToInches(p.Height)
	}

	for _, w := range data.AttributeWeights {
		if len(p.Weights) == WeightSampleSize {
			break
		}
		if in, ok := height.FromValue(w.Height); ok && in == p.Inches {
			p.Weights = append(p.Weights, w)
		}
	}
	reqs := data.BadgeRequirements
	if len(reqs) > RequirementSampleSize {
		reqs = reqs[:RequirementSampleSize]
	}
	p.Requirements = reqs
	return p
}

// Draft is the repaired oracle proposal.
type Draft struct {
	Caps model.CapSet
	// Name is the oracle's own name suggestion, possibly empty.
	Name string
	// Repairs lists every value that had to be fixed up.
	Repairs []string
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(g *Generator) {
		g.temperature = t
	}
}

// Generator holds no per-request state.
type Generator struct {
	oracle      completion.Service
	temperature float64
}

// New creates a Generator backed by oracle.
func New(oracle completion.Service, opts ...Option) *Generator {
	g := &Generator{oracle: oracle, temperature: DefaultTemperature}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate proposes caps for prefs under plan. The point budget is passed to
// the oracle as an instruction and is not verified.
func (g *Generator) Generate(ctx context.Context, prefs model.Preferences, plan Plan) (Draft, error) {
	raw, err := g.oracle.Complete(ctx, completion.Request{
		Schema:      completion.SchemaBuild,
		System:      systemPrompt(prefs, plan),
		User:        userPrompt(prefs, plan),
		Temperature: g.temperature,
	})
	if err != nil {
		return Draft{}, fmt.Errorf("generate build: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := completion.Decode(completion.SchemaBuild, raw, &fields); err != nil {
		return Draft{}, err
	}
	return repair(fields, prefs, plan)
}

func repair(fields map[string]json.RawMessage, prefs model.Preferences, plan Plan) (Draft, error) {
	d := Draft{Caps: model.CapSet{Attributes: make(map[string]int, len(attributes.Keys()))}}

	for _, key := range attributes.Keys() {
		v, ok := number(fields[key])
		if !ok {
			return Draft{}, fmt.Errorf("%w: build response is missing %q", model.ErrOracle, key)
		}
		switch {
		case v < attributes.MinRating:
			d.Repairs = append(d.Repairs, fmt.Sprintf("%s %d raised to %d", key, v, attributes.MinRating))
			v = attributes.MinRating
		case v > attributes.MaxRating:
			d.Repairs = append(d.Repairs, fmt.Sprintf("%s %d lowered to %d", key, v, attributes.MaxRating))
			v = attributes.MaxRating
		}
		d.Caps.Attributes[key] = v
	}

	d.Caps.Position = model.NormalizePosition(str(fields["position"]))
	if d.Caps.Position == "" && prefs.Position != "" {
		d.Caps.Position = prefs.Position
		d.Repairs = append(d.Repairs, "position taken from analysis")
	}

	var h any
	_ = json.Unmarshal(fields["height"], &h)
	if in, ok := height.FromValue(h); ok && height.Valid(in) {
		d.Caps.Height = in
	} else {
		d.Caps.Height = plan.Inches
		d.Repairs = append(d.Repairs, fmt.Sprintf("height set to %d", plan.Inches))
	}

	d.Caps.Weight, _ = number(fields["weight"])
	d.Caps.Wingspan, _ = number(fields["wingspan"])
	d.Name = strings.TrimSpace(str(fields["buildName"]))
	return d, nil
}

func number(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n model.Number
	if err := json.Unmarshal(raw, &n); err != nil || !n.Valid {
		return 0, false
	}
	return n.Int(), true
}

func str(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
