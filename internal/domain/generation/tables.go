package generation

import "strings"

// DefaultBudget applies to unknown positions.
const DefaultBudget = 600

// budgets is the total attribute point cap per position.
var budgets = map[string]int{
	"PG": 610,
	"SG": 605,
	"SF": 600,
	"PF": 595,
	"C":  590,
}

// Budget returns the point cap for position.
func Budget(position string) int {
	if b, ok := budgets[position]; ok {
		return b
	}
	return DefaultBudget
}

// Playstyle buckets used by the height table.
const (
	BucketDefault  = "default"
	BucketShooter  = "shooter"
	BucketDefender = "defender"
	BucketSlasher  = "slasher"
)

// DefaultPosition is assumed when the analysis named none.
const DefaultPosition = "SF"

// FallbackHeight is used when the table has no entry at all.
const FallbackHeight = `6'8"`

var heights = map[string]map[string]string{
	"PG": {BucketDefault: `6'2"`, BucketShooter: `6'4"`, BucketDefender: `6'5"`, BucketSlasher: `6'3"`},
	"SG": {BucketDefault: `6'5"`, BucketShooter: `6'6"`, BucketDefender: `6'7"`, BucketSlasher: `6'5"`},
	"SF": {BucketDefault: `6'8"`, BucketShooter: `6'7"`, BucketDefender: `6'9"`, BucketSlasher: `6'8"`},
	"PF": {BucketDefault: `6'10"`, BucketShooter: `6'9"`, BucketDefender: `6'11"`, BucketSlasher: `6'10"`},
	"C":  {BucketDefault: `7'0"`, BucketShooter: `6'10"`, BucketDefender: `7'2"`, BucketSlasher: `7'0"`},
}

// Bucket classifies a playstyle by substring.
func Bucket(playStyle string) string {
	s := strings.ToLower(playStyle)
	switch {
	case strings.Contains(s, "shoot") || strings.Contains(s, "sharp"):
		return BucketShooter
	case strings.Contains(s, "defend") || strings.Contains(s, "lock"):
		return BucketDefender
	case strings.Contains(s, "slash") || strings.Contains(s, "finish"):
		return BucketSlasher
	default:
		return BucketDefault
	}
}

// RecommendedHeight looks up the table height for a position and playstyle.
func RecommendedHeight(position, playStyle string) string {
	if position == "" {
		position = DefaultPosition
	}
	row, ok := heights[position]
	if !ok {
		return FallbackHeight
	}
	if h, ok := row[Bucket(playStyle)]; ok {
		return h
	}
	return row[BucketDefault]
}
