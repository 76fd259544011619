// Package height converts between feet-inches notation, inch counts and the
// word keys used by height-conditioned reference tables.
package height

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Supported build heights in inches.
const (
	MinInches = 48
	MaxInches = 96
)

// ErrOutOfRange is returned when a height cannot be expressed as a word key.
var ErrOutOfRange = errors.New("height out of range")

var feetInches = regexp.MustCompile(`(\d+)'(\d+)"?`)

var words = [...]string{
	"", "one", "two", "three", "four", "five",
	"six", "seven", "eight", "nine", "ten", "eleven",
}

// ToInches parses the first `F'I"` occurrence in s.
func ToInches(s string) (int, bool) {
	m := feetInches.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	feet, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	inches, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return feet*12 + inches, true
}

// FromValue accepts a decoded JSON value. Numbers are already inches and
// come back unchanged, except zero, which counts as unset. Strings go
// through ToInches.
func FromValue(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, t != 0
	case float64:
		n := int(math.Round(t))
		return n, n != 0
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return FromValue(f)
	case string:
		if t == "" {
			return 0, false
		}
		return ToInches(t)
	default:
		return 0, false
	}
}

// Valid reports whether inches is inside the supported range.
func Valid(inches int) bool {
	return inches >= MinInches && inches <= MaxInches
}

// WordKey renders inches as "six" or "six_eight".
func WordKey(inches int) (string, error) {
	feet, rem := inches/12, inches%12
	if inches <= 0 || feet < 1 || feet >= len(words) {
		return "", fmt.Errorf("%w: %d inches", ErrOutOfRange, inches)
	}
	if rem == 0 {
		return words[feet], nil
	}
	return words[feet] + "_" + words[rem], nil
}

// Format renders inches as 6'8".
func Format(inches int) string {
	return fmt.Sprintf("%d'%d\"", inches/12, inches%12)
}
