package cost_test

import (
	"math"
	"testing"
	"time"

	"github.com/MrWong99/signdrill/internal/cost"
)

func TestPricingFor_PrefixMatch(t *testing.T) {
	t.Parallel()

	// A dated snapshot must resolve to its family entry, and the longest
	// prefix must win ("gpt-4o-mini-..." is not "gpt-4o").
	snap := cost.PricingFor("gpt-4o-mini-2024-07-18")
	family := cost.PricingFor("gpt-4o-mini")
	if snap != family {
		t.Errorf("PricingFor(snapshot) = %+v, want family entry %+v", snap, family)
	}

	full := cost.PricingFor("gpt-4o")
	if snap.Input >= full.Input {
		t.Errorf("gpt-4o-mini input price %v should be below gpt-4o %v", snap.Input, full.Input)
	}
}

func TestPricingFor_UnknownModelFallsBack(t *testing.T) {
	t.Parallel()

	p := cost.PricingFor("some-future-model")
	if p.Input <= 0 || p.Output <= 0 {
		t.Fatalf("PricingFor(unknown) = %+v, want conservative non-zero default", p)
	}
	if empty := cost.PricingFor(""); empty != p {
		t.Errorf("PricingFor(\"\") = %+v, want default %+v", empty, p)
	}
}

func TestCalculate(t *testing.T) {
	t.Parallel()

	// 1M input + 1M output of gpt-4o-mini: 0.15 + 0.60.
	got := cost.Calculate(1_000_000, 1_000_000, "gpt-4o-mini", 0)
	if math.Abs(got-0.75) > 1e-9 {
		t.Errorf("Calculate(1M, 1M, gpt-4o-mini, 0) = %v, want 0.75", got)
	}

	// Cached tokens are billed at the discounted rate.
	cached := cost.Calculate(1_000_000, 0, "gpt-4o-mini", 1_000_000)
	fresh := cost.Calculate(1_000_000, 0, "gpt-4o-mini", 0)
	if cached >= fresh {
		t.Errorf("cached cost %v should be below fresh cost %v", cached, fresh)
	}

	// Cached count above input count is clamped, not negative-billed.
	clamped := cost.Calculate(100, 0, "gpt-4o-mini", 1_000)
	if clamped < 0 {
		t.Errorf("Calculate with excess cached tokens = %v, want >= 0", clamped)
	}

	// Unknown models never cost zero for non-zero usage.
	if c := cost.Calculate(1000, 1000, "mystery-model", 0); c <= 0 {
		t.Errorf("Calculate(unknown model) = %v, want > 0", c)
	}
}

func TestMetadata(t *testing.T) {
	t.Parallel()

	m := cost.NewMetadata("validation_feedback", "gpt-4o-mini", 500, 200, 1200*time.Millisecond)
	if m.Cost <= 0 {
		t.Errorf("NewMetadata cost = %v, want > 0", m.Cost)
	}
	if m.LatencyMs != 1200 {
		t.Errorf("NewMetadata latency = %d ms, want 1200", m.LatencyMs)
	}
	if m.Source != cost.SourceModelCall {
		t.Errorf("NewMetadata source = %q, want %q", m.Source, cost.SourceModelCall)
	}

	z := cost.ZeroMetadata("validation_feedback", "gpt-4o-mini", 50*time.Millisecond)
	if z.Cost != 0 || z.InputTokens != 0 || z.OutputTokens != 0 {
		t.Errorf("ZeroMetadata = %+v, want zero tokens and cost", z)
	}
}
