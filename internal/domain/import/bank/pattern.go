package bank

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MatchKind selects how a Pattern compares text.
type MatchKind uint8

const (
	MatchExact MatchKind = iota
	MatchContains
	MatchContainsFold
)

func (k MatchKind) String() string {
	switch k {
	case MatchContains:
		return "contains"
	case MatchContainsFold:
		return "contains-fold"
	default:
		return "exact"
	}
}

// Pattern is a literal label comparison. Both sides are NFC-normalized before
// comparing, so decomposed Cyrillic (й, ё) written by some exporters still matches.
type Pattern struct {
	Kind MatchKind
	Text string
}

func Exact(s string) Pattern        { return Pattern{Kind: MatchExact, Text: s} }
func Contains(s string) Pattern     { return Pattern{Kind: MatchContains, Text: s} }
func ContainsFold(s string) Pattern { return Pattern{Kind: MatchContainsFold, Text: s} }

// Match reports whether s satisfies the pattern. s is expected to be trimmed.
func (p Pattern) Match(s string) bool {
	s = norm.NFC.String(s)
	want := norm.NFC.String(p.Text)

	switch p.Kind {
	case MatchContains:
		return strings.Contains(s, want)
	case MatchContainsFold:
		// Casers keep state, so each call gets its own.
		return strings.Contains(cases.Fold().String(s), cases.Fold().String(want))
	default:
		return s == want
	}
}

func (p Pattern) String() string {
	return p.Kind.String() + "(" + p.Text + ")"
}

// MatchAny reports whether any of the patterns matches s.
func MatchAny(patterns []Pattern, s string) bool {
	for _, p := range patterns {
		if p.Match(s) {
			return true
		}
	}
	return false
}
