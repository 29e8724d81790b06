package score

import "github.com/antzucaro/matchr"

// LetterMatch is one position of a letter-by-letter comparison between the
// expected word and the detected transcription. Detected is nil when the
// transcription ran out before this position.
type LetterMatch struct {
	Expected string  `json:"expected"`
	Detected *string `json:"detected"`
	Matched  bool    `json:"matched"`
}

// LetterDiff compares expected and detected position by position after
// normalization and returns one entry per expected letter. Fingerspelling is
// validated per letter, so positional alignment (not edit distance) is the
// comparison the game presents to the player.
func LetterDiff(expected, detected string) []LetterMatch {
	exp := Normalize(expected)
	det := Normalize(detected)

	diff := make([]LetterMatch, 0, len(exp))
	for i := 0; i < len(exp); i++ {
		m := LetterMatch{Expected: string(exp[i])}
		if i < len(det) {
			d := string(det[i])
			m.Detected = &d
			m.Matched = d == m.Expected
		}
		diff = append(diff, m)
	}
	return diff
}

// Similarity returns a 0–100 similarity between two words using Jaro-Winkler
// on their normalized forms. Used as a local cross-check signal and in tests;
// the graphs trust the validation agent's own percentage for scoring.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" && nb == "" {
		return 100
	}
	if na == "" || nb == "" {
		return 0
	}
	return matchr.JaroWinkler(na, nb, false) * 100
}
