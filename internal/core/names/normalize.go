// Package names matches free-text player and team names from the odds
// feed against NHL identifiers. The feeds disagree on accents, casing,
// and suffixes, so everything goes through one normal form first.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases, strips diacritics and punctuation, drops
// generational suffixes, and collapses whitespace. "Tim Stützle" and
// "tim stutzle" normalize to the same key.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = stripDiacritics(s)
	s = strings.ToLower(strings.TrimSpace(s))
	s = stripPunctuation(s)
	s = collapseWhitespace(s)
	return stripSuffix(s)
}

func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) { // Mn = Mark, Nonspacing (combining accents)
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ':
			b.WriteRune(r)
		case r == '-' || r == '\'' || r == '.':
			// "Jean-Gabriel" and "O'Reilly" keep their word boundary.
			b.WriteRune(' ')
		}
	}
	return b.String()
}

func stripSuffix(s string) string {
	for _, suf := range []string{" jr", " sr", " ii", " iii", " iv"} {
		s = strings.TrimSuffix(s, suf)
	}
	return s
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
