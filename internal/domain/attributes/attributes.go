// Package attributes holds the canonical attribute vocabulary and the
// normalization rules that map external spellings onto it.
package attributes

import (
	"regexp"
	"strings"
)

// Canonical attribute keys.
const (
	CloseShot        = "closeShot"
	DrivingLayup     = "drivingLayup"
	DrivingDunk      = "drivingDunk"
	StandingDunk     = "standingDunk"
	PostControl      = "postControl"
	Midrange         = "midrange"
	ThreePoint       = "threePoint"
	FreeThrow        = "freeThrow"
	PassAccuracy     = "passAccuracy"
	BallHandle       = "ballHandle"
	SpeedWithBall    = "speedWithBall"
	InteriorDefense  = "interiorDefense"
	PerimeterDefense = "perimeterDefense"
	Steal            = "steal"
	Block            = "block"
	OffensiveRebound = "offensiveRebound"
	DefensiveRebound = "defensiveRebound"
	Speed            = "speed"
	Acceleration     = "acceleration"
	Strength         = "strength"
	Vertical         = "vertical"
	Stamina          = "stamina"
)

// Rating bounds for an attribute cap.
const (
	MinRating = 25
	MaxRating = 99
)

// keys is the canonical order used for prompts, decoding and output.
var keys = []string{
	CloseShot, DrivingLayup, DrivingDunk, StandingDunk, PostControl,
	Midrange, ThreePoint, FreeThrow,
	PassAccuracy, BallHandle, SpeedWithBall,
	InteriorDefense, PerimeterDefense, Steal, Block, OffensiveRebound, DefensiveRebound,
	Speed, Acceleration, Strength, Vertical, Stamina,
}

// spellings lists the external names seen in reference data for each key.
var spellings = map[string][]string{
	CloseShot:        {"close shot", "closeshot", "close_shot"},
	DrivingLayup:     {"driving layup", "drivinglayup", "layup", "driving_layup"},
	DrivingDunk:      {"driving dunk", "drivingdunk", "driving_dunk"},
	StandingDunk:     {"standing dunk", "standingdunk", "standing_dunk"},
	PostControl:      {"post control", "postcontrol", "post_control"},
	Midrange:         {"mid-range shot", "midrange shot", "midrangeshot", "midrange_shot", "mid-rangeshot"},
	ThreePoint:       {"three-point shot", "threepoint shot", "threepointshot", "three_pointer", "three-pointer", "three-pointshot"},
	FreeThrow:        {"free throw", "freethrow", "free_throw"},
	PassAccuracy:     {"pass accuracy", "passaccuracy", "pass_accuracy"},
	BallHandle:       {"ball handle", "ballhandle", "ball_handle"},
	SpeedWithBall:    {"speed with ball", "speedwithball", "speed_with_ball"},
	InteriorDefense:  {"interior defense", "interiordefense", "interior_defense"},
	PerimeterDefense: {"perimeter defense", "perimeterdefense", "perimeter_defense"},
	Steal:            {"steal"},
	Block:            {"block"},
	OffensiveRebound: {"offensive rebound", "offensiverebound", "offensive_rebound"},
	DefensiveRebound: {"defensive rebound", "defensiverebound", "defensive_rebound"},
	Speed:            {"speed"},
	Acceleration:     {"acceleration", "agility"},
	Strength:         {"strength"},
	Vertical:         {"vertical"},
	Stamina:          {"stamina"},
}

// overrides win over the generic reverse index. Keys are already squashed.
var overrides = map[string]string{
	"midrange":        Midrange,
	"midrangeshot":    Midrange,
	"layup":           DrivingLayup,
	"drivinglayup":    DrivingLayup,
	"threepoint":      ThreePoint,
	"threepointshot":  ThreePoint,
	"threepointshoot": ThreePoint,
	"threepointer":    ThreePoint,
	"acceleration":    Acceleration,
	"agility":         Acceleration,
}

// officialColumns maps canonical keys to the build-name catalog columns.
// Stamina has no catalog column.
var officialColumns = [][2]string{
	{CloseShot, "Close_Shot"},
	{DrivingLayup, "Layup"},
	{DrivingDunk, "Driving_Dunk"},
	{StandingDunk, "Standing_Dunk"},
	{PostControl, "Post_Control"},
	{Midrange, "Midrange_Shot"},
	{ThreePoint, "Three_Pointer"},
	{FreeThrow, "Free_Throw"},
	{PassAccuracy, "Pass_Accuracy"},
	{BallHandle, "Ball_Handle"},
	{SpeedWithBall, "Speed_With_Ball"},
	{InteriorDefense, "Interior_Defense"},
	{PerimeterDefense, "Perimeter_Defense"},
	{Steal, "Steal"},
	{Block, "Block"},
	{OffensiveRebound, "Offensive_Rebound"},
	{DefensiveRebound, "Defensive_Rebound"},
	{Speed, "Speed"},
	{Acceleration, "Agility"},
	{Strength, "Strength"},
	{Vertical, "Vertical"},
}

var separators = regexp.MustCompile(`[\s\-_]+`)

// reverse is built once at init and never written afterwards.
var reverse = buildReverse()

func buildReverse() map[string]string {
	idx := make(map[string]string, len(keys)*4)
	for _, key := range keys {
		idx[squash(key)] = key
		for _, name := range spellings[key] {
			idx[squash(name)] = key
		}
	}
	return idx
}

// squash lower-cases s and strips whitespace, hyphens and underscores.
func squash(s string) string {
	return separators.ReplaceAllString(strings.ToLower(s), "")
}

// Keys returns the canonical attribute keys in display order.
func Keys() []string {
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// IsKey reports whether key is a canonical attribute key.
func IsKey(key string) bool {
	_, ok := spellings[key]
	return ok
}

// Lookup maps an external attribute name onto a canonical key.
func Lookup(name string) (string, bool) {
	s := squash(name)
	if s == "" {
		return "", false
	}
	if key, ok := overrides[s]; ok {
		return key, true
	}
	key, ok := reverse[s]
	return key, ok
}

// Normalize maps an external name onto a canonical key. Names that do not
// map come back in their squashed form, so Normalize is idempotent.
func Normalize(name string) string {
	if key, ok := Lookup(name); ok {
		return key
	}
	return squash(name)
}

// OfficialColumn returns the catalog column name for a canonical key.
func OfficialColumn(key string) (string, bool) {
	for _, pair := range officialColumns {
		if pair[0] == key {
			return pair[1], true
		}
	}
	return "", false
}

// EachOfficialColumn calls fn for every key that has a catalog column, in
// canonical order.
func EachOfficialColumn(fn func(key, column string)) {
	for _, pair := range officialColumns {
		fn(pair[0], pair[1])
	}
}
