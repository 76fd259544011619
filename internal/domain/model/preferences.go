// Package model contains domain models passed between layers.
package model

import "strings"

// Positions in canonical order.
var Positions = []string{"PG", "SG", "SF", "PF", "C"}

// Physical holds optional physical preferences as free text.
type Physical struct {
	Height   string `json:"height,omitempty"`
	Weight   string `json:"weight,omitempty"`
	Wingspan string `json:"wingspan,omitempty"`
}

// Preferences is the structured reading of a free-text request.
type Preferences struct {
	Position            string   `json:"position,omitempty"`
	PlayStyle           string   `json:"playStyle,omitempty"`
	KeyAttributes       []string `json:"keyAttributes"`
	PhysicalPreferences Physical `json:"physicalPreferences"`
	Badges              []string `json:"badges"`
	GameMode            string   `json:"gameMode,omitempty"`
}

// NormalizePosition upper-cases p and returns "" for anything that is not
// one of the five position codes.
func NormalizePosition(p string) string {
	p = strings.ToUpper(strings.TrimSpace(p))
	for _, code := range Positions {
		if p == code {
			return p
		}
	}
	return ""
}
