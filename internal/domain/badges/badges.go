// Package badges derives the achievable badge set of a build from badge
// requirement rows and per-height tier ceilings.
package badges

import (
	"sort"

	"github.com/okian/buildlab/internal/domain/attributes"
	"github.com/okian/buildlab/internal/domain/height"
	"github.com/okian/buildlab/internal/domain/model"
)

// Defaults for a Resolver.
const (
	DefaultHeight      = 80 // 6'8"
	DefaultPerCategory = 3
)

// Fallback thresholds when a requirement row leaves a tier blank.
const (
	fallbackLegend = 99
	fallbackHoF    = 94
	fallbackGold   = 85
	fallbackBronze = 75
	fallbackStep   = 5
)

// Groups lists the badge categories that make it into the result, in order.
var Groups = []string{
	"Finishing", "Shooting", "Playmaking", "Defense", "Rebounding",
	"Inside Scoring", "Outside Scoring", "General", "General Offense", "All Around",
}

// aliases lets a group also draw from another category. Inside and Outside
// Scoring still keep their own top picks.
var aliases = map[string]string{
	"Inside Scoring":  "Finishing",
	"Outside Scoring": "Shooting",
}

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithPerCategory caps how many badges each category keeps.
func WithPerCategory(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.perCategory = n
		}
	}
}

// WithDefaultHeight sets the height used when a build has none.
func WithDefaultHeight(inches int) Option {
	return func(r *Resolver) {
		if inches > 0 {
			r.defaultHeight = inches
		}
	}
}

// Resolver is stateless and safe for concurrent use.
type Resolver struct {
	perCategory   int
	defaultHeight int
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{perCategory: DefaultPerCategory, defaultHeight: DefaultHeight}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type attained struct {
	badge    string
	tier     model.Tier
	category string
}

// Resolve never fails: missing inputs yield an empty set.
func (r *Resolver) Resolve(caps model.CapSet, reqs []model.BadgeRequirement, ceilings []model.BadgeCeiling) model.BadgeSet {
	out := model.BadgeSet{Badges: map[string]string{}}
	if len(reqs) == 0 {
		return out
	}

	h := caps.Height
	if h <= 0 {
		h = r.defaultHeight
	}
	limits := ceilingsAt(h, ceilings)

	var order []*attained
	best := make(map[string]*attained)
	for i := range reqs {
		req := &reqs[i]
		if req.Badge == "" || req.Attribute == "" {
			continue
		}
		if !inWindow(h, req) {
			continue
		}
		rating := caps.Get(attributes.Normalize(req.Attribute))
		if rating == 0 {
			continue
		}
		tier := Attained(rating, req)
		if tier == model.TierNone {
			continue
		}
		if limit, ok := limits[req.Badge]; ok {
			tier = Cap(tier, model.ParseTier(limit))
			if tier == model.TierNone {
				continue
			}
		}
		cur, seen := best[req.Badge]
		switch {
		case !seen:
			a := &attained{badge: req.Badge, tier: tier, category: req.Category}
			best[req.Badge] = a
			order = append(order, a)
		case tier > cur.tier:
			cur.tier = tier
			cur.category = req.Category
		}
	}

	for _, group := range Groups {
		var members []*attained
		for _, a := range order {
			if inGroup(a.category, group) {
				members = append(members, a)
			}
		}
		sort.SliceStable(members, func(i, j int) bool { return members[i].tier > members[j].tier })
		if len(members) > r.perCategory {
			members = members[:r.perCategory]
		}
		for _, a := range members {
			out.Badges[a.badge] = a.tier.String()
		}
	}

	for _, a := range order {
		if out.HoF == "" && a.tier == model.TierHallOfFame {
			out.HoF = a.badge
		}
		if out.Gold == "" && a.tier == model.TierGold {
			out.Gold = a.badge
		}
	}
	return out
}

// Attained maps a rating onto a tier. Each threshold falls back to five
// above the next lower one, then to a fixed default. Meeting the Legend
// threshold yields Hall of Fame, HoF yields Gold, Gold yields Silver.
func Attained(rating int, req *model.BadgeRequirement) model.Tier {
	legend := threshold(req.Legend, req.HoF, fallbackLegend)
	hof := threshold(req.HoF, req.Gold, fallbackHoF)
	gold := threshold(req.Gold, req.Silver, fallbackGold)
	bronze := fallbackBronze
	if req.Bronze.Present() {
		bronze = req.Bronze.Int()
	}
	switch {
	case rating >= legend:
		return model.TierHallOfFame
	case rating >= hof:
		return model.TierGold
	case rating >= gold:
		return model.TierSilver
	case rating >= bronze:
		return model.TierBronze
	default:
		return model.TierNone
	}
}

func threshold(own, below model.Number, fallback int) int {
	switch {
	case own.Present():
		return own.Int()
	case below.Present():
		return below.Int() + fallbackStep
	default:
		return fallback
	}
}

// Cap lowers tier to ceiling. A ceiling that names no tier forbids the badge.
func Cap(tier, ceiling model.Tier) model.Tier {
	if ceiling == model.TierNone {
		return model.TierNone
	}
	if tier > ceiling {
		tier = ceiling
	}
	if tier == model.TierLegend {
		return model.TierHallOfFame
	}
	return tier
}

// ceilingsAt indexes the ceiling rows by badge for one height. Badges with
// no entry at this height are unrestricted.
func ceilingsAt(inches int, rows []model.BadgeCeiling) map[string]string {
	key, err := height.WordKey(inches)
	if err != nil {
		return nil
	}
	limits := make(map[string]string, len(rows))
	for _, row := range rows {
		if row.Badge == "" {
			continue
		}
		if level, ok := row.Levels[key]; ok && level != "" {
			limits[row.Badge] = level
		}
	}
	return limits
}

// inWindow applies Min_Height/Max_Height only when both parse.
func inWindow(inches int, req *model.BadgeRequirement) bool {
	lo, okLo := height.FromValue(req.MinHeight)
	hi, okHi := height.FromValue(req.MaxHeight)
	if !okLo || !okHi {
		return true
	}
	return inches >= lo && inches <= hi
}

func inGroup(category, group string) bool {
	return category == group || aliases[category] == group
}
