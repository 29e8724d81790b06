// Package score holds the deterministic half of attempt evaluation: the
// canonical word normalizer, the composite scoring formula, and the
// letter-level diff used for fingerspelling attempts.
//
// Everything in this package is pure and total: no I/O, no model calls, no
// failure modes. The model-backed judgment lives in internal/agent; this
// package is what the graphs fall back on and what keeps string comparison
// consistent across the whole system.
package score

import "strings"

// Normalize reduces a display word or transcription to its canonical
// comparison form: lowercased, letters a–z only. Spaces, punctuation, digits,
// and accented characters are dropped, so "Tai Seng" and "taiseng" compare
// equal.
//
// Normalize is the single source of truth for string equivalence. Every
// component that compares words must call it rather than reimplementing ad hoc
// lowercasing. It is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(word string) string {
	lower := strings.ToLower(word)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
