package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number is a JSON number that also accepts numeric strings. null, "" and
// missing values leave it invalid.
type Number struct {
	Value float64
	Valid bool
}

// NewNumber returns a valid Number.
func NewNumber(v float64) Number { return Number{Value: v, Valid: true} }

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		// Placeholders such as "N/A" read as unset.
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*n = NewNumber(v)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	*n = NewNumber(v)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Int returns the value rounded half away from zero.
func (n Number) Int() int {
	return int(math.Round(n.Value))
}

// Present reports whether the number is set and non-zero.
func (n Number) Present() bool {
	return n.Valid && n.Value != 0
}
