package edge

import (
	"fmt"
	"strconv"
	"strings"
)

// ImpliedProbability converts American odds to the bookmaker's implied
// win probability: +p ⇒ 100/(p+100), -p ⇒ |p|/(|p|+100).
func ImpliedProbability(odds int) float64 {
	if odds > 0 {
		return 100.0 / (float64(odds) + 100.0)
	}
	a := float64(-odds)
	return a / (a + 100.0)
}

// WinUnits is the profit on a one-unit winning stake at the given
// American odds: +p ⇒ p/100 units, -p ⇒ 100/|p| units.
func WinUnits(odds int) float64 {
	if odds > 0 {
		return float64(odds) / 100.0
	}
	return 100.0 / float64(-odds)
}

// ParseAmericanOdds parses odds as reported upstream ("-154", "+120",
// "150"). A missing or malformed value returns nil — unknown, never zero —
// so downstream implied probability and edge stay undefined rather than
// silently shifting.
func ParseAmericanOdds(raw string) *int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = strings.TrimPrefix(s, "+")
	v, err := strconv.Atoi(s)
	if err != nil || v == 0 {
		return nil
	}
	return &v
}

// FormatAmericanOdds renders odds with an explicit sign, the standard
// sportsbook convention.
func FormatAmericanOdds(odds *int) string {
	if odds == nil {
		return "-"
	}
	if *odds > 0 {
		return fmt.Sprintf("+%d", *odds)
	}
	return strconv.Itoa(*odds)
}
