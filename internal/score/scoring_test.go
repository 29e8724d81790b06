package score_test

import (
	"testing"

	"github.com/MrWong99/signdrill/internal/score"
)

func TestCompute_PerfectFastAttempt(t *testing.T) {
	t.Parallel()

	// match=100, 1.5s: accuracy 100, speed 100, clarity min(100, max(30, 100*0.8+20)) = 100.
	r := score.Compute(100, 1500)
	if r.Score != 100 {
		t.Errorf("Compute(100, 1500).Score = %d, want 100", r.Score)
	}
	if r.Breakdown.Accuracy != 100 || r.Breakdown.Speed != 100 || r.Breakdown.Clarity != 100 {
		t.Errorf("Compute(100, 1500).Breakdown = %+v, want all 100", r.Breakdown)
	}
}

func TestCompute_SlowAttemptsFloorAt40(t *testing.T) {
	t.Parallel()

	for _, match := range []float64{0, 25, 50, 75, 100} {
		for _, durationMs := range []int64{10_000, 15_000, 60_000} {
			r := score.Compute(match, durationMs)
			if r.Breakdown.Speed != 40 {
				t.Errorf("Compute(%v, %d).Breakdown.Speed = %d, want 40", match, durationMs, r.Breakdown.Speed)
			}
		}
	}
}

func TestCompute_SpeedSteps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		durationMs int64
		want       int
	}{
		{0, 100},
		{1_999, 100},
		{2_000, 90},
		{4_000, 75},
		{6_000, 60},
		{8_000, 50},
		{9_999, 50},
		{10_000, 40},
	}
	for _, tt := range tests {
		r := score.Compute(100, tt.durationMs)
		if r.Breakdown.Speed != tt.want {
			t.Errorf("Compute(100, %d).Breakdown.Speed = %d, want %d", tt.durationMs, r.Breakdown.Speed, tt.want)
		}
	}
}

func TestCompute_ClarityClamped(t *testing.T) {
	t.Parallel()

	// match=0: clarity = max(30, 0*0.8+20) = 30.
	r := score.Compute(0, 1000)
	if r.Breakdown.Clarity != 30 {
		t.Errorf("Compute(0, 1000).Breakdown.Clarity = %d, want 30", r.Breakdown.Clarity)
	}

	// match=100: clarity = min(100, 100*0.8+20) = 100.
	r = score.Compute(100, 1000)
	if r.Breakdown.Clarity != 100 {
		t.Errorf("Compute(100, 1000).Breakdown.Clarity = %d, want 100", r.Breakdown.Clarity)
	}
}

func TestCompute_BoundsAndReasoning(t *testing.T) {
	t.Parallel()

	for _, match := range []float64{-5, 0, 33.3, 66.6, 100, 120} {
		for _, durationMs := range []int64{0, 3_000, 12_000} {
			r := score.Compute(match, durationMs)
			if r.Score < 0 || r.Score > 100 {
				t.Errorf("Compute(%v, %d).Score = %d, out of [0,100]", match, durationMs, r.Score)
			}
			if r.Reasoning == "" {
				t.Errorf("Compute(%v, %d).Reasoning is empty", match, durationMs)
			}
		}
	}
}
