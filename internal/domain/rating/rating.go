// Package rating computes the overall rating of a build from its caps.
package rating

import (
	"math"

	"github.com/okian/buildlab/internal/domain/attributes"
)

// Category groups attributes that are averaged together.
type Category struct {
	Name    string
	Members []string
	Weight  float64
}

// GeneralWeight is reserved in the weight table but never applied, so the
// applied weights sum to 0.86.
const GeneralWeight = 0.14

var categories = []Category{
	{Name: "finishing", Weight: 0.18, Members: []string{
		attributes.CloseShot, attributes.DrivingLayup, attributes.DrivingDunk, attributes.StandingDunk, attributes.PostControl,
	}},
	{Name: "shooting", Weight: 0.18, Members: []string{
		attributes.Midrange, attributes.ThreePoint, attributes.FreeThrow,
	}},
	{Name: "playmaking", Weight: 0.18, Members: []string{
		attributes.PassAccuracy, attributes.BallHandle, attributes.SpeedWithBall,
	}},
	{Name: "defense", Weight: 0.18, Members: []string{
		attributes.InteriorDefense, attributes.PerimeterDefense, attributes.Steal,
		attributes.Block, attributes.OffensiveRebound, attributes.DefensiveRebound,
	}},
	{Name: "physical", Weight: 0.14, Members: []string{
		attributes.Speed, attributes.Acceleration, attributes.Strength, attributes.Vertical, attributes.Stamina,
	}},
}

// Result is the overall rating with its category averages.
type Result struct {
	Overall    int
	Categories map[string]float64
}

// Categories returns the category table.
func Categories() []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		out[i] = Category{Name: c.Name, Weight: c.Weight, Members: append([]string(nil), c.Members...)}
	}
	return out
}

// Calculate averages each category and rounds the weighted sum half up.
// Missing attributes count as zero.
func Calculate(caps map[string]int) Result {
	res := Result{Categories: make(map[string]float64, len(categories))}
	var sum float64
	for _, c := range categories {
		var total float64
		for _, key := range c.Members {
			total += float64(caps[key])
		}
		avg := total / float64(len(c.Members))
		res.Categories[c.Name] = avg
		sum += avg * c.Weight
	}
	res.Overall = int(math.Floor(sum + 0.5))
	return res
}

// Overall is shorthand for Calculate(caps).Overall.
func Overall(caps map[string]int) int {
	return Calculate(caps).Overall
}
