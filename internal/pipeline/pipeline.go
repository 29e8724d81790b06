// Package pipeline is the thin top-level wrapper around the validation graph.
//
// It exists so callers (the HTTP surface, the websocket intake) have a single
// entry point that runs an attempt end to end, logs the cost summary, and
// hands back a uniform envelope, without knowing how the graph is wired.
package pipeline

import (
	"context"

	"github.com/MrWong99/signdrill/internal/config"
	"github.com/MrWong99/signdrill/internal/graph"
	"github.com/MrWong99/signdrill/internal/observe"
	"github.com/MrWong99/signdrill/internal/session"
)

// Result is the envelope returned by one pipeline run. State is always the
// same session the caller passed in, returned for convenience.
type Result struct {
	// Success is true when the session completed validation.
	Success bool

	// State is the session after the run, whatever its final status.
	State *session.Session

	// Err is the session's error string when Success is false.
	Err string
}

// Pipeline runs validated attempts. Safe for concurrent use across
// independent sessions.
type Pipeline struct {
	validator *graph.Validator
	cfg       config.PipelineConfig
}

// New builds a pipeline around the validation graph. The CheckExisting and
// SaveResults flags in cfg are reserved extension points for result dedup and
// durable persistence; both are currently no-ops (there is no database write
// path) and Load warns when they are set.
func New(validator *graph.Validator, cfg config.PipelineConfig) *Pipeline {
	return &Pipeline{validator: validator, cfg: cfg}
}

// RunValidation runs the validation graph over s and logs the cost summary.
// It never returns a Go error; failures are encoded in the session state and
// mirrored in the envelope.
func (p *Pipeline) RunValidation(ctx context.Context, s *session.Session) Result {
	log := observe.Logger(ctx).With("sessionId", s.ID)

	p.validator.Run(ctx, s)

	// Cost summary: the one durable observability record of what this
	// attempt cost. Totals first, then the per-invocation breakdown.
	log.Info("cost summary",
		"totalCost", s.TotalCost,
		"totalInputTokens", s.TotalInputTokens,
		"totalOutputTokens", s.TotalOutputTokens,
		"entries", len(s.Costs),
	)
	for key, m := range s.Costs {
		log.Info("cost entry",
			"key", key,
			"agent", m.Agent,
			"model", m.Model,
			"cost", m.Cost,
			"inputTokens", m.InputTokens,
			"outputTokens", m.OutputTokens,
			"latencyMs", m.LatencyMs,
			"source", m.Source,
		)
	}

	return Result{
		Success: s.Status == session.StatusComplete,
		State:   s,
		Err:     s.Error,
	}
}
