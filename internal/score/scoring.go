package score

import "math"

// Breakdown is the named sub-score decomposition of a composite score.
// Each component is in [0, 100].
type Breakdown struct {
	Accuracy int `json:"accuracy"`
	Speed    int `json:"speed"`
	Clarity  int `json:"clarity"`
}

// Result is a composite 0–100 score with its breakdown and a short
// machine-generated explanation.
type Result struct {
	Score     int       `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
	Reasoning string    `json:"reasoning"`
}

// Composite weights: accuracy dominates, speed and clarity share the rest.
const (
	weightAccuracy = 0.6
	weightSpeed    = 0.2
	weightClarity  = 0.2
)

// Compute derives a scoring result from the validator's match percentage and
// the attempt duration. No model call is involved: accuracy mirrors the match
// percentage, speed is a step function of elapsed time, and clarity is a
// linear transform of the match percentage clamped to [30, 100].
func Compute(matchPercentage float64, durationMs int64) Result {
	accuracy := clamp(int(math.Round(matchPercentage)), 0, 100)
	speed := speedScore(durationMs)
	clarity := clarityScore(matchPercentage)

	composite := int(math.Round(
		weightAccuracy*float64(accuracy) +
			weightSpeed*float64(speed) +
			weightClarity*float64(clarity),
	))

	return Result{
		Score: clamp(composite, 0, 100),
		Breakdown: Breakdown{
			Accuracy: accuracy,
			Speed:    speed,
			Clarity:  clarity,
		},
		Reasoning: reasoningFor(accuracy, speed),
	}
}

// speedScore maps attempt duration to a 0–100 sub-score. Full marks under
// two seconds, degrading in steps to a floor of 40 at ten seconds and beyond.
func speedScore(durationMs int64) int {
	switch {
	case durationMs < 2_000:
		return 100
	case durationMs < 4_000:
		return 90
	case durationMs < 6_000:
		return 75
	case durationMs < 8_000:
		return 60
	case durationMs < 10_000:
		return 50
	default:
		return 40
	}
}

// clarityScore is a heuristic linear transform of the match percentage:
// 0.8·match + 20, clamped to [30, 100].
func clarityScore(matchPercentage float64) int {
	c := int(math.Round(matchPercentage*0.8 + 20))
	return clamp(c, 30, 100)
}

// reasoningFor produces the short explanation attached to a deterministic
// scoring result.
func reasoningFor(accuracy, speed int) string {
	switch {
	case accuracy >= 95 && speed >= 90:
		return "Excellent match, signed quickly."
	case accuracy >= 95:
		return "Excellent match; work on signing a little faster."
	case accuracy >= 70:
		return "Mostly correct with some letters off."
	case accuracy >= 30:
		return "Partial match; several letters were missed."
	default:
		return "The sign was not recognized as the expected word."
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
