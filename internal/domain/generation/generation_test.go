package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/okian/buildlab/internal/domain/attributes"
	"github.com/okian/buildlab/internal/domain/completion"
	"github.com/okian/buildlab/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func answer(overrides map[string]any, drop ...string) string {
	body := map[string]any{
		"position": "PG",
		"height":   74,
		"weight":   190,
		"wingspan": 80,
	}
	for _, k := range attributes.Keys() {
		body[k] = 70
	}
	for k, v := range overrides {
		body[k] = v
	}
	for _, k := range drop {
		delete(body, k)
	}
	b, _ := json.Marshal(body)
	return string(b)
}

func oracle(body string, seen *completion.Request) completion.Service {
	return completion.Func(func(_ context.Context, req completion.Request) ([]byte, error) {
		if seen != nil {
			*seen = req
		}
		return []byte(body), nil
	})
}

func weights(heights ...any) []model.AttributeWeight {
	out := make([]model.AttributeWeight, 0, len(heights))
	for _, h := range heights {
		var w model.AttributeWeight
		raw, _ := json.Marshal(map[string]any{"Height": h, "Three_Pointer": 1.2})
		_ = json.Unmarshal(raw, &w)
		out = append(out, w)
	}
	return out
}

func TestTables(t *testing.T) {
	Convey("Given the position tables", t, func() {
		So(Budget("PG"), ShouldEqual, 610)
		So(Budget("C"), ShouldEqual, 590)
		So(Budget(""), ShouldEqual, DefaultBudget)

		So(Bucket("Sharpshooter"), ShouldEqual, BucketShooter)
		So(Bucket("lockdown"), ShouldEqual, BucketDefender)
		So(Bucket("Finisher"), ShouldEqual, BucketSlasher)
		So(Bucket(""), ShouldEqual, BucketDefault)

		So(RecommendedHeight("PG", "sharpshooter"), ShouldEqual, `6'4"`)
		So(RecommendedHeight("C", "shooter"), ShouldEqual, `6'10"`)
		So(RecommendedHeight("", ""), ShouldEqual, `6'8"`)
		So(RecommendedHeight("", "lockdown"), ShouldEqual, `6'9"`)
		So(RecommendedHeight("G", ""), ShouldEqual, FallbackHeight)
	})
}

func TestNewPlan(t *testing.T) {
	data := model.Datasets{
		AttributeWeights:  weights(74, "6'2\"", 76, "6'2", nil),
		BadgeRequirements: make([]model.BadgeRequirement, 8),
	}

	Convey("Given a stated height", t, func() {
		prefs := model.Preferences{Position: "PG", PlayStyle: "sharpshooter"}
		prefs.PhysicalPreferences.Height = "6'2"

		plan := NewPlan(prefs, data)

		Convey("Then it wins over the table", func() {
			So(plan.Height, ShouldEqual, "6'2")
			So(plan.Inches, ShouldEqual, 74)
			So(plan.Budget, ShouldEqual, 610)
		})

		Convey("And only weights at that height are sampled", func() {
			So(len(plan.Weights), ShouldEqual, 3)
			So(len(plan.Requirements), ShouldEqual, RequirementSampleSize)
		})
	})

	Convey("Given an unparsable stated height", t, func() {
		prefs := model.Preferences{Position: "SG"}
		prefs.PhysicalPreferences.Height = "tall"
		plan := NewPlan(prefs, data)
		So(plan.Height, ShouldEqual, `6'5"`)
		So(plan.Inches, ShouldEqual, 77)
		So(plan.Weights, ShouldBeEmpty)

		Convey("Then it matches the plan for no stated height", func() {
			prefs.PhysicalPreferences.Height = ""
			So(NewPlan(prefs, data).Inches, ShouldEqual, plan.Inches)
		})
	})

	Convey("Given many matching weight rows", t, func() {
		hs := make([]any, 15)
		for i := range hs {
			hs[i] = 80
		}
		plan := NewPlan(model.Preferences{}, model.Datasets{AttributeWeights: weights(hs...)})
		So(plan.Inches, ShouldEqual, 80)
		So(len(plan.Weights), ShouldEqual, WeightSampleSize)
		So(plan.Requirements, ShouldBeEmpty)
	})
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	prefs := model.Preferences{Position: "PG", PlayStyle: "sharpshooter"}
	plan := Plan{Height: `6'4"`, Inches: 76, Budget: 610}

	Convey("Given a complete answer", t, func() {
		var req completion.Request
		g := New(oracle(answer(map[string]any{"threePoint": 95, "buildName": " Splash Bro "}), &req))

		d, err := g.Generate(ctx, prefs, plan)

		Convey("Then the request carries the plan", func() {
			So(err, ShouldBeNil)
			So(req.Schema, ShouldEqual, completion.SchemaBuild)
			So(req.Temperature, ShouldEqual, DefaultTemperature)
			So(req.System, ShouldContainSubstring, "1. Position: PG")
			So(req.System, ShouldContainSubstring, `2. Height: 6'4"`)
			So(req.System, ShouldContainSubstring, `"stamina": number`)
			So(req.User, ShouldContainSubstring, `Recommended height: 6'4" (76 inches)`)
			So(req.User, ShouldContainSubstring, "Total attribute cap: 610 points")
		})

		Convey("Then the caps are decoded", func() {
			So(d.Caps.Position, ShouldEqual, "PG")
			So(d.Caps.Height, ShouldEqual, 74)
			So(d.Caps.Weight, ShouldEqual, 190)
			So(d.Caps.Wingspan, ShouldEqual, 80)
			So(len(d.Caps.Attributes), ShouldEqual, 22)
			So(d.Caps.Get(attributes.ThreePoint), ShouldEqual, 95)
			So(d.Name, ShouldEqual, "Splash Bro")
			So(d.Repairs, ShouldBeEmpty)
		})
	})

	Convey("Given an answer with loose values", t, func() {
		body := answer(map[string]any{
			"threePoint": "88",
			"midrange":   84.6,
			"block":      12,
			"steal":      120,
			"height":     nil,
			"position":   "guard",
		})
		d, err := New(oracle(body, nil)).Generate(ctx, prefs, plan)

		Convey("Then values are repaired and each repair is reported", func() {
			So(err, ShouldBeNil)
			So(d.Caps.Get(attributes.ThreePoint), ShouldEqual, 88)
			So(d.Caps.Get(attributes.Midrange), ShouldEqual, 85)
			So(d.Caps.Get(attributes.Block), ShouldEqual, attributes.MinRating)
			So(d.Caps.Get(attributes.Steal), ShouldEqual, attributes.MaxRating)
			So(d.Caps.Height, ShouldEqual, 76)
			So(d.Caps.Position, ShouldEqual, "PG")
			So(len(d.Repairs), ShouldEqual, 4)
		})
	})

	Convey("Given a height in feet and inches", t, func() {
		d, err := New(oracle(answer(map[string]any{"height": `6'9"`}), nil)).Generate(ctx, prefs, plan)
		So(err, ShouldBeNil)
		So(d.Caps.Height, ShouldEqual, 81)
	})

	Convey("Given an answer missing an attribute", t, func() {
		_, err := New(oracle(answer(nil, attributes.Stamina), nil)).Generate(ctx, prefs, plan)
		So(errors.Is(err, model.ErrOracle), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "stamina")
	})

	Convey("Given an attribute that is not a number", t, func() {
		_, err := New(oracle(answer(map[string]any{"speed": "fast"}), nil)).Generate(ctx, prefs, plan)
		So(errors.Is(err, model.ErrOracle), ShouldBeTrue)
	})

	Convey("Given a malformed answer", t, func() {
		_, err := New(oracle("not json", nil)).Generate(ctx, prefs, plan)
		So(errors.Is(err, model.ErrOracle), ShouldBeTrue)
	})

	Convey("Given an oracle failure", t, func() {
		boom := fmt.Errorf("%w: status 503", model.ErrOracle)
		g := New(completion.Func(func(context.Context, completion.Request) ([]byte, error) { return nil, boom }))
		_, err := g.Generate(ctx, prefs, plan)
		So(errors.Is(err, boom), ShouldBeTrue)
	})

	Convey("Given no analysed position or height", t, func() {
		var req completion.Request
		_, err := New(oracle(answer(nil), &req), WithTemperature(1.1)).Generate(ctx, model.Preferences{}, Plan{Inches: 80, Budget: 600})
		So(err, ShouldBeNil)
		So(req.Temperature, ShouldEqual, 1.1)
		So(strings.Contains(req.System, "Based on playstyle and preferences"), ShouldBeTrue)
		So(strings.Contains(req.System, "Optimal for position and playstyle"), ShouldBeTrue)
	})
}
