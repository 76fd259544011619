// Package naming picks a display name for a generated build.
package naming

import (
	"math"
	"sort"
	"strings"

	"github.com/okian/buildlab/internal/domain/attributes"
	"github.com/okian/buildlab/internal/domain/model"
)

// Source tells where a name came from.
type Source string

// Name sources, in precedence order.
const (
	SourceCatalog  Source = "catalog"
	SourceOracle   Source = "oracle"
	SourceOverride Source = "override"
	SourceRules    Source = "rules"
)

// DefaultCatalogPosition is used when the build has no recognised position.
const DefaultCatalogPosition = "pg"

// MinMatchScore is the average per-attribute score a catalog entry needs.
const MinMatchScore = 3.0

// Archetype names.
const (
	OffensiveThreat   = "Offensive Threat"
	ThreeAndDWing     = "3&D Wing"
	TwoWayFinisher    = "Two-Way Finisher"
	LockdownDefender  = "Lockdown Defender"
	Sharpshooter      = "Sharpshooter"
	Playmaker         = "Playmaker"
	Slasher           = "Slasher"
	PaintBeast        = "Paint Beast"
	PostScorer        = "Post Scorer"
	ScoringMachine    = "Scoring Machine"
	AllAroundPlayer   = "All-Around Player"
	twoWayDefenseLine = 80
)

var catalogPositions = map[string]string{
	"PG": "pg",
	"SG": "sg",
	"SF": "sf",
	"PF": "pf",
	"C":  "c",
}

type rule struct {
	name string
	ok   func(c model.CapSet) bool
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{OffensiveThreat, func(c model.CapSet) bool {
		return c.Get(attributes.ThreePoint) >= 80 && c.Get(attributes.BallHandle) >= 80
	}},
	{ThreeAndDWing, func(c model.CapSet) bool {
		return c.Get(attributes.ThreePoint) >= 80 && c.Get(attributes.PerimeterDefense) >= 80
	}},
	{TwoWayFinisher, func(c model.CapSet) bool {
		return c.Get(attributes.DrivingDunk) >= 85 && c.Get(attributes.PerimeterDefense) >= 80
	}},
	{LockdownDefender, func(c model.CapSet) bool {
		return c.Get(attributes.PerimeterDefense) >= 85 && c.Get(attributes.Steal) >= 85
	}},
	{Sharpshooter, func(c model.CapSet) bool {
		return c.Get(attributes.ThreePoint) >= 90
	}},
	{Playmaker, func(c model.CapSet) bool {
		return c.Get(attributes.BallHandle) >= 90 && c.Get(attributes.PassAccuracy) >= 85
	}},
	{Slasher, func(c model.CapSet) bool {
		return c.Get(attributes.DrivingDunk) >= 90
	}},
	{PaintBeast, func(c model.CapSet) bool {
		return c.Get(attributes.InteriorDefense) >= 85 && c.Get(attributes.Block) >= 85 && c.Get(attributes.DefensiveRebound) >= 85
	}},
	{PostScorer, func(c model.CapSet) bool {
		return c.Get(attributes.PostControl) >= 85
	}},
	{ScoringMachine, func(c model.CapSet) bool {
		return c.Get(attributes.DrivingDunk) >= 80 && c.Get(attributes.ThreePoint) >= 80
	}},
}

// CatalogPosition maps a position code onto the catalog's position tag.
func CatalogPosition(position string) string {
	if p, ok := catalogPositions[strings.ToUpper(strings.TrimSpace(position))]; ok {
		return p
	}
	return DefaultCatalogPosition
}

// Candidate is a scored catalog entry.
type Candidate struct {
	Name  string
	Score float64
}

// Rank scores every catalog entry of the build's position, best first.
func Rank(build model.CapSet, catalog []model.CatalogEntry) []Candidate {
	pos := CatalogPosition(build.Position)
	var out []Candidate
	for _, entry := range catalog {
		if entry.Position != pos {
			continue
		}
		out = append(out, Candidate{Name: entry.Name, Score: similarity(build, entry)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// similarity averages 10/5/2/0 points per comparable attribute for
// differences of at most 3/7/15/more.
func similarity(build model.CapSet, entry model.CatalogEntry) float64 {
	var score, count float64
	attributes.EachOfficialColumn(func(key, column string) {
		mine, ok := build.Attributes[key]
		if !ok {
			return
		}
		theirs, ok := entry.Values[column]
		if !ok {
			return
		}
		switch diff := math.Abs(float64(mine) - theirs); {
		case diff <= 3:
			score += 10
		case diff <= 7:
			score += 5
		case diff <= 15:
			score += 2
		}
		count++
	})
	if count == 0 {
		return 0
	}
	return score / count
}

// MatchCatalog returns the best catalog name when it scores at least
// MinMatchScore.
func MatchCatalog(build model.CapSet, catalog []model.CatalogEntry) (string, bool) {
	ranked := Rank(build, catalog)
	if len(ranked) == 0 || ranked[0].Score < MinMatchScore {
		return "", false
	}
	return ranked[0].Name, true
}

// Archetype classifies the caps with the fixed rule list.
func Archetype(build model.CapSet) string {
	for _, r := range rules {
		if r.ok(build) {
			return r.name
		}
	}
	return AllAroundPlayer
}

// Override maps the stated playstyle straight onto a name.
func Override(build model.CapSet, playStyle string) (string, bool) {
	style := strings.ToLower(playStyle)
	if style == "" {
		return "", false
	}
	twoWay := build.Get(attributes.PerimeterDefense) >= twoWayDefenseLine
	switch {
	case strings.Contains(style, "sharp") || strings.Contains(style, "shoot"):
		if twoWay {
			return ThreeAndDWing, true
		}
		return Sharpshooter, true
	case strings.Contains(style, "slash") || strings.Contains(style, "finish"):
		if twoWay {
			return TwoWayFinisher, true
		}
		return Slasher, true
	case strings.Contains(style, "play") || strings.Contains(style, "pass"):
		return Playmaker, true
	case strings.Contains(style, "def") || strings.Contains(style, "lock"):
		return LockdownDefender, true
	case strings.Contains(style, "post") || strings.Contains(style, "center"):
		return PaintBeast, true
	}
	return "", false
}

// Generate is the rule-based fallback: a stated playstyle wins over the
// archetype rules.
func Generate(build model.CapSet, prefs model.Preferences) (string, Source) {
	if name, ok := Override(build, prefs.PlayStyle); ok {
		return name, SourceOverride
	}
	return Archetype(build), SourceRules
}

// Resolve applies the full precedence: catalog match, then the name the
// oracle proposed, then Generate.
func Resolve(build model.CapSet, prefs model.Preferences, catalog []model.CatalogEntry, proposed string) (string, Source) {
	if name, ok := MatchCatalog(build, catalog); ok {
		return name, SourceCatalog
	}
	if proposed = strings.TrimSpace(proposed); proposed != "" {
		return proposed, SourceOracle
	}
	return Generate(build, prefs)
}
