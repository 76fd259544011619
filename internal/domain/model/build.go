package model

import "encoding/json"

// CapSet is a proposed configuration: attribute caps plus physicals.
type CapSet struct {
	Position   string
	Height     int // inches
	Weight     int
	Wingspan   int
	Attributes map[string]int
}

// Get returns the cap for key, or 0 when unset.
func (c CapSet) Get(key string) int {
	return c.Attributes[key]
}

// Build is the final recommendation.
type Build struct {
	CapSet
	Overall int
	Badges  map[string]string
	Tier1   string // Hall of Fame highlight
	Tier2   string // Gold highlight
	Name    string
}

// MarshalJSON flattens the build into a single object keyed the way
// consumers of the recommender read it.
func (b Build) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Attributes)+10)
	for k, v := range b.Attributes {
		out[k] = v
	}
	badges := b.Badges
	if badges == nil {
		badges = map[string]string{}
	}
	out["position"] = b.Position
	out["height"] = b.Height
	out["weight"] = b.Weight
	out["wingspan"] = b.Wingspan
	out["overall"] = b.Overall
	out["badges"] = badges
	out["buildName"] = b.Name
	out["tier1MaxPlusOne"] = b.Tier1
	out["tier2MaxPlusOne"] = b.Tier2
	return json.Marshal(out)
}

// BuildResponse is the result of a build request.
type BuildResponse struct {
	Analysis Preferences `json:"analysis"`
	Build    Build       `json:"build"`
}

// MatchResponse is the result of a catalog match request.
type MatchResponse struct {
	Analysis Preferences     `json:"analysis"`
	Build    json.RawMessage `json:"build"`
	Index    int             `json:"index"`
}
