package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AttributeWeight is one row of the attribute-weights-by-height table. Only
// Height is interpreted; the row is kept verbatim for prompt grounding.
type AttributeWeight struct {
	Height any
	Raw    json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *AttributeWeight) UnmarshalJSON(b []byte) error {
	var probe struct {
		Height any `json:"Height"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	w.Height = probe.Height
	w.Raw = append(json.RawMessage(nil), b...)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (w AttributeWeight) MarshalJSON() ([]byte, error) {
	if len(w.Raw) == 0 {
		return json.Marshal(map[string]any{"Height": w.Height})
	}
	return w.Raw, nil
}

// BadgeRequirement is one attribute threshold row of a badge.
type BadgeRequirement struct {
	Badge     string `json:"Badge"`
	Attribute string `json:"Attribute"`
	Category  string `json:"Category"`
	MinHeight any    `json:"Min_Height,omitempty"`
	MaxHeight any    `json:"Max_Height,omitempty"`
	Bronze    Number `json:"Bronze"`
	Silver    Number `json:"Silver"`
	Gold      Number `json:"Gold"`
	HoF       Number `json:"HoF"`
	Legend    Number `json:"Legend"`
}

// BadgeCeiling holds the maximum tier of a badge per height word key.
type BadgeCeiling struct {
	Badge  string
	Levels map[string]string
}

// UnmarshalJSON reads a flat {"badge": "...", "six_four": "Gold", ...} row.
func (c *BadgeCeiling) UnmarshalJSON(b []byte) error {
	var row map[string]any
	if err := json.Unmarshal(b, &row); err != nil {
		return err
	}
	c.Badge, _ = row["badge"].(string)
	c.Levels = make(map[string]string, len(row))
	for k, v := range row {
		if k == "badge" {
			continue
		}
		if s, ok := v.(string); ok && s != "" {
			c.Levels[k] = s
		}
	}
	return nil
}

// CatalogEntry is a named reference build from the official catalog.
type CatalogEntry struct {
	Name     string
	Position string
	Values   map[string]float64
	Raw      json.RawMessage
}

// UnmarshalJSON keeps name, position and every numeric column.
func (e *CatalogEntry) UnmarshalJSON(b []byte) error {
	var row map[string]json.RawMessage
	if err := json.Unmarshal(b, &row); err != nil {
		return err
	}
	*e = CatalogEntry{Values: make(map[string]float64, len(row)), Raw: append(json.RawMessage(nil), b...)}
	for k, raw := range row {
		switch k {
		case "name":
			_ = json.Unmarshal(raw, &e.Name)
		case "position":
			_ = json.Unmarshal(raw, &e.Position)
		default:
			var n Number
			if err := json.Unmarshal(raw, &n); err == nil && n.Valid {
				e.Values[k] = n.Value
			}
		}
	}
	e.Position = strings.ToLower(strings.TrimSpace(e.Position))
	return nil
}

// MarshalJSON returns the row as it was received.
func (e CatalogEntry) MarshalJSON() ([]byte, error) {
	if len(e.Raw) > 0 {
		return e.Raw, nil
	}
	out := make(map[string]any, len(e.Values)+2)
	for k, v := range e.Values {
		out[k] = v
	}
	out["name"] = e.Name
	out["position"] = e.Position
	return json.Marshal(out)
}

// Datasets is one consistent snapshot of the reference data.
type Datasets struct {
	AttributeWeights  []AttributeWeight
	BadgeRequirements []BadgeRequirement // nil when the source was unusable
	BuildNames        []CatalogEntry
	BadgeCeilings     []BadgeCeiling
}

// String summarizes the snapshot for logs.
func (d Datasets) String() string {
	return fmt.Sprintf("weights=%d badges=%d names=%d ceilings=%d",
		len(d.AttributeWeights), len(d.BadgeRequirements), len(d.BuildNames), len(d.BadgeCeilings))
}
