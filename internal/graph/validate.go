package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/MrWong99/signdrill/internal/agent"
	"github.com/MrWong99/signdrill/internal/observe"
	"github.com/MrWong99/signdrill/internal/score"
	"github.com/MrWong99/signdrill/internal/session"
)

// validationKey is the cost-ledger key of the consolidated agent call.
const validationKey = "validation_0"

// Validator runs the validation graph: one consolidated validation+feedback
// model call followed by deterministic scoring. Safe for concurrent use
// across independent sessions.
type Validator struct {
	agent   *agent.ValidationFeedbackAgent
	metrics *observe.Metrics
}

// NewValidator builds a validation graph around the consolidated agent.
func NewValidator(a *agent.ValidationFeedbackAgent, opts ...Option) *Validator {
	o := newOptions(opts...)
	return &Validator{agent: a, metrics: o.metrics}
}

// Run executes the graph over s, mutating it in place. On return s.Status is
// either [session.StatusComplete] with Validation, Scoring, Feedback, and
// Score populated, or [session.StatusError] with Error set. Run itself never
// panics or returns an error; callers read the session's status.
func (v *Validator) Run(ctx context.Context, s *session.Session) {
	start := time.Now()
	log := observe.Logger(ctx).With("sessionId", s.ID, "expectedWord", s.ExpectedWord)

	defer func() {
		if r := recover(); r != nil {
			s.Fail(fmt.Sprintf("internal error: %v", r))
			s.Resum()
			v.metrics.RecordAttempt(ctx, "error", time.Since(start).Seconds())
			log.Error("validation graph panicked", "panic", r)
		}
	}()

	ctx, span := observe.StartSpan(ctx, "graph.validate")
	defer span.End()

	if err := s.AdvanceTo(session.StatusValidating); err != nil {
		s.Fail(err.Error())
		s.Resum()
		v.metrics.RecordAttempt(ctx, "error", time.Since(start).Seconds())
		log.Warn("cannot enter validating state", "error", err)
		return
	}

	// Missing transcription is a fatal input error: no agent call, no retry.
	// The ledger may still hold the client's streaming estimate, so the
	// totals are resummed here like on every other exit.
	transcription, ok := s.Transcription()
	if !ok {
		s.Fail("No transcription to validate")
		s.Resum()
		v.metrics.RecordAttempt(ctx, "invalid_input", time.Since(start).Seconds())
		log.Warn("attempt has no final transcription")
		return
	}

	res := v.agent.Run(ctx, agent.ValidationFeedbackInput{
		ExpectedWord:  s.ExpectedWord,
		OriginalWord:  s.ExpectedWord,
		Transcription: transcription,
		Level:         s.Level,
		DurationMs:    s.DurationMs,
	}, validationKey)

	// The call is on the books whether or not it succeeded.
	s.RecordCost(validationKey, res.Metadata)

	if !res.OK {
		// No fallback: without a validity judgment no score can be computed.
		s.Fail(res.Err)
		s.Resum()
		v.metrics.RecordAttempt(ctx, "error", time.Since(start).Seconds())
		log.Error("validation agent failed", "error", res.Err)
		return
	}

	validation := res.Content.Validation
	if s.Level == session.LevelFingerspelling && len(validation.LetterByLetterMatch) == 0 {
		// The model sometimes omits the per-letter array; derive it
		// positionally so level-1 results always carry one.
		validation.LetterByLetterMatch = score.LetterDiff(s.ExpectedWord, transcription)
	}
	feedback := res.Content.Feedback

	scoring := score.Compute(validation.MatchPercentage, s.DurationMs)
	finalScore := scoring.Score

	s.Validation = &validation
	s.Feedback = &feedback
	s.Scoring = &scoring
	s.Score = &finalScore

	if err := s.AdvanceTo(session.StatusComplete); err != nil {
		s.Fail(err.Error())
		s.Resum()
		v.metrics.RecordAttempt(ctx, "error", time.Since(start).Seconds())
		return
	}
	s.Resum()

	v.metrics.RecordAttempt(ctx, "ok", time.Since(start).Seconds())
	// similarity is a local string-metric cross-check of the model's
	// matchPercentage. Nothing downstream reads it; a big gap between the
	// two in logs flags a model judgment worth a look.
	log.Info("attempt validated",
		"score", finalScore,
		"matchPercentage", validation.MatchPercentage,
		"similarity", score.Similarity(s.ExpectedWord, transcription),
		"isValid", validation.IsValid,
		"totalCost", s.TotalCost,
	)
}
