package model

import "strings"

// Tier is an ordered badge level.
type Tier int

// Badge tiers, ordered by rank.
const (
	TierNone Tier = iota
	TierBronze
	TierSilver
	TierGold
	TierHallOfFame
	TierLegend
)

// ParseTier reads the tier names used by reference data and by results.
func ParseTier(s string) Tier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bronze":
		return TierBronze
	case "silver":
		return TierSilver
	case "gold":
		return TierGold
	case "hof", "hall of fame":
		return TierHallOfFame
	case "legend":
		return TierLegend
	default:
		return TierNone
	}
}

// String returns the display name.
func (t Tier) String() string {
	switch t {
	case TierBronze:
		return "Bronze"
	case TierSilver:
		return "Silver"
	case TierGold:
		return "Gold"
	case TierHallOfFame:
		return "Hall of Fame"
	case TierLegend:
		return "Legend"
	default:
		return ""
	}
}

// BadgeSet is the resolved badge configuration of a build.
type BadgeSet struct {
	Badges map[string]string `json:"badges"`
	HoF    string            `json:"hof"`
	Gold   string            `json:"gold"`
}

// Len returns the number of resolved badges.
func (s BadgeSet) Len() int { return len(s.Badges) }
