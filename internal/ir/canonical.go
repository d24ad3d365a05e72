package ir

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeLiteral returns the comparison form of a characteristic literal:
// NFC-normalized with surrounding whitespace removed.
//
// Literals typed by hand into assumption descriptions and literals exported
// from modelling tools may differ only in Unicode composition; comparing the
// NFC forms makes them equal.
func NormalizeLiteral(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// NormalizeLiterals normalizes every literal, dropping empties and duplicates
// while keeping first-seen order. Never returns nil.
func NormalizeLiterals(literals []string) []string {
	out := make([]string, 0, len(literals))
	seen := make(map[string]struct{}, len(literals))
	for _, l := range literals {
		n := NormalizeLiteral(l)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
