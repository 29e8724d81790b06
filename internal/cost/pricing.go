// Package cost implements per-model token pricing and the immutable metadata
// record attached to every agent invocation.
//
// Cost tracking is observability, not a correctness gate: unknown model names
// fall back to a conservative default price instead of failing, so a price
// table that lags behind the provider's catalogue can never block the
// pipeline.
package cost

import "strings"

// ModelPricing holds USD prices per million tokens for one model.
type ModelPricing struct {
	// Input is the price per million prompt tokens.
	Input float64

	// Output is the price per million completion tokens.
	Output float64

	// CachedInput is the discounted price per million cached prompt tokens.
	// Zero means the model has no cached-input discount; cached tokens are then
	// billed at the Input rate.
	CachedInput float64
}

// modelPricing maps model-name prefixes to prices. Keys are matched exactly
// first, then by prefix, so dated snapshots ("gpt-4o-mini-2024-07-18") resolve
// to their family entry.
var modelPricing = map[string]ModelPricing{
	"gpt-4o-mini-audio-preview": {Input: 0.15, Output: 0.60},
	"gpt-4o-audio-preview":      {Input: 2.50, Output: 10.00},
	"gpt-4o-mini":               {Input: 0.15, Output: 0.60, CachedInput: 0.075},
	"gpt-4o":                    {Input: 2.50, Output: 10.00, CachedInput: 1.25},
	"gpt-4.1-mini":              {Input: 0.40, Output: 1.60, CachedInput: 0.10},
	"gpt-4.1-nano":              {Input: 0.10, Output: 0.40, CachedInput: 0.025},
	"gpt-4.1":                   {Input: 2.00, Output: 8.00, CachedInput: 0.50},
	"o3-mini":                   {Input: 1.10, Output: 4.40, CachedInput: 0.55},
	"claude-3-5-haiku":          {Input: 0.80, Output: 4.00, CachedInput: 0.08},
	"claude-3-5-sonnet":         {Input: 3.00, Output: 15.00, CachedInput: 0.30},
	"gemini-2.0-flash":          {Input: 0.10, Output: 0.40, CachedInput: 0.025},
}

// defaultPricing is the conservative fallback for unrecognized models:
// priced at the expensive end so cost reports overestimate rather than
// understate.
var defaultPricing = ModelPricing{Input: 2.50, Output: 10.00}

// PricingFor returns the price entry for model, falling back to a prefix
// match and finally to the conservative default. It never fails.
func PricingFor(model string) ModelPricing {
	if model == "" {
		return defaultPricing
	}

	if p, ok := modelPricing[model]; ok {
		return p
	}

	// Longest-prefix match so "gpt-4o-mini-2024-07-18" resolves to
	// "gpt-4o-mini", not "gpt-4o".
	var (
		best    ModelPricing
		bestLen = -1
	)
	for key, p := range modelPricing {
		if strings.HasPrefix(model, key) && len(key) > bestLen {
			best = p
			bestLen = len(key)
		}
	}
	if bestLen >= 0 {
		return best
	}

	return defaultPricing
}

// Calculate returns the USD cost of one model call. cachedInputTokens is the
// portion of inputTokens served from the provider's prompt cache; it must not
// exceed inputTokens.
func Calculate(inputTokens, outputTokens int, model string, cachedInputTokens int) float64 {
	p := PricingFor(model)

	if cachedInputTokens > inputTokens {
		cachedInputTokens = inputTokens
	}
	if cachedInputTokens < 0 {
		cachedInputTokens = 0
	}

	cachedRate := p.CachedInput
	if cachedRate == 0 {
		cachedRate = p.Input
	}

	freshInput := inputTokens - cachedInputTokens
	total := float64(freshInput)/1_000_000*p.Input +
		float64(cachedInputTokens)/1_000_000*cachedRate +
		float64(outputTokens)/1_000_000*p.Output
	return total
}
