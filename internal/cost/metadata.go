package cost

import "time"

// Source identifies how a ledger entry's numbers were obtained.
type Source string

const (
	// SourceModelCall marks metadata measured from a completed model call.
	SourceModelCall Source = "model_call"

	// SourceStreamEstimate marks a client-precomputed estimate for the realtime
	// streaming phase, merged into the ledger before validation runs.
	SourceStreamEstimate Source = "stream_estimate"
)

// Metadata is the immutable record of one agent invocation (or one streaming
// estimate). It carries enough information to recompute the cost with a
// different price table retroactively. Create it with NewMetadata and never
// mutate it afterwards.
type Metadata struct {
	// Agent is the logical agent name ("validation_feedback", "phonetic", ...).
	Agent string `json:"agent"`

	// Model is the provider model name the call was billed against.
	Model string `json:"model"`

	// InputTokens and OutputTokens are the provider-reported token counts.
	// Both are zero for calls that never completed.
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`

	// Cost is the USD cost computed from the token counts at record time.
	Cost float64 `json:"cost"`

	// LatencyMs is the wall-clock duration of the call in milliseconds.
	LatencyMs int64 `json:"latencyMs"`

	// Timestamp is when the record was created.
	Timestamp time.Time `json:"timestamp"`

	// Source distinguishes measured model calls from streaming estimates.
	Source Source `json:"source"`
}

// NewMetadata builds a model-call metadata record, computing the cost from
// the current price table.
func NewMetadata(agent, model string, inputTokens, outputTokens int, latency time.Duration) Metadata {
	return Metadata{
		Agent:        agent,
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         Calculate(inputTokens, outputTokens, model, 0),
		LatencyMs:    latency.Milliseconds(),
		Timestamp:    time.Now().UTC(),
		Source:       SourceModelCall,
	}
}

// EstimateMetadata builds a ledger entry for the client-computed streaming
// cost estimate. The cost is taken as given rather than recomputed; the
// realtime connection is billed on the client's side of the collaborator
// boundary and the core only folds the estimate into the totals.
func EstimateMetadata(model string, inputTokens, outputTokens int, estimatedCost float64) Metadata {
	return Metadata{
		Agent:        "stream",
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         estimatedCost,
		Timestamp:    time.Now().UTC(),
		Source:       SourceStreamEstimate,
	}
}

// ZeroMetadata builds a record for a call that never completed (transport or
// auth failure): no tokens, no cost, but the attempt and its latency are
// still on the books.
func ZeroMetadata(agent, model string, latency time.Duration) Metadata {
	return Metadata{
		Agent:     agent,
		Model:     model,
		LatencyMs: latency.Milliseconds(),
		Timestamp: time.Now().UTC(),
		Source:    SourceModelCall,
	}
}
