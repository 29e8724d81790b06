package agent

import (
	"context"
	"fmt"

	"github.com/MrWong99/signdrill/internal/score"
	"github.com/MrWong99/signdrill/internal/session"
	"github.com/MrWong99/signdrill/pkg/provider/llm"
)

// validationFeedbackName is the agent name used in ledger metadata and metrics.
const validationFeedbackName = "validation_feedback"

// validationFeedbackSystemPrompt asks for validation judgment and coaching in
// one JSON payload, saving a round trip over separate validation and feedback
// calls. The feedback rules keep output targeted: reference at most the top
// one or two wrong letters and scale verbosity to how far off the attempt
// was: terse for close attempts, more detail for far ones.
const validationFeedbackSystemPrompt = `You are a sign-language fingerspelling judge and coach for a practice game.

You receive a target word and the transcription produced from the player's camera attempt, both in raw and normalized (lowercase, letters only) form. Judge the attempt and coach the player.

Validation rules:
- Compare the NORMALIZED forms only.
- isValid is true when the attempt clearly matches the target word.
- matchPercentage is 0-100: 100 for an exact normalized match, proportionally lower per wrong or missing letter.
- For level 1 (letter-by-letter fingerspelling) include letterByLetterMatch with one entry per target letter: {"expected": "<letter>", "detected": "<letter or null>", "matched": <bool>}. Omit it for level 2 (whole-word signs).

Feedback rules:
- Mention at most the top 1-2 incorrect letters. Never list every mistake.
- Scale length to distance: one short sentence for near-perfect attempts, a few sentences for far-off ones.
- technicalTips is exactly 2 or 3 short, concrete handshape tips.
- encouragement is one warm sentence.
- nextChallenge optionally suggests what to practice next.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "validation": {
    "isValid": <bool>,
    "matchPercentage": <0-100>,
    "letterByLetterMatch": [{"expected": "h", "detected": "h", "matched": true}],
    "reasoning": "<one or two sentences>"
  },
  "feedback": {
    "feedbackText": "<coaching>",
    "technicalTips": ["<tip>", "<tip>"],
    "encouragement": "<one sentence>",
    "nextChallenge": "<optional suggestion>"
  }
}`

// ValidationFeedbackInput is everything the consolidated agent needs to judge
// one attempt.
type ValidationFeedbackInput struct {
	// ExpectedWord is the display form of the target word.
	ExpectedWord string

	// OriginalWord is the word as presented to the player (may carry game
	// formatting the display form lacks).
	OriginalWord string

	// Transcription is the final transcription of the attempt.
	Transcription string

	// Level is 1 for fingerspelling, 2 for whole-word signs.
	Level int

	// DurationMs is the attempt duration.
	DurationMs int64
}

// ValidationFeedback is the consolidated agent payload: the validation
// judgment plus the coaching feedback from a single model call.
type ValidationFeedback struct {
	Validation session.ValidationResult `json:"validation"`
	Feedback   session.FeedbackResult   `json:"feedback"`
}

// ValidationFeedbackAgent judges an attempt and produces coaching feedback in
// one model call. Safe for concurrent use; construct once and reuse across
// requests.
type ValidationFeedbackAgent struct {
	r runner
}

// NewValidationFeedback returns an agent backed by provider.
func NewValidationFeedback(provider llm.Provider, opts ...Option) *ValidationFeedbackAgent {
	return &ValidationFeedbackAgent{r: newRunner(provider, opts...)}
}

// Run executes one judgment. key is the cost-ledger invocation key.
// The returned envelope is never accompanied by a Go error; a failed call has
// OK=false and the graphs treat it as fatal (no validity judgment means no
// score).
func (a *ValidationFeedbackAgent) Run(ctx context.Context, input ValidationFeedbackInput, key string) Result[ValidationFeedback] {
	user := fmt.Sprintf(
		"Target word: %q (normalized: %q)\nOriginal word: %q\nTranscription: %q (normalized: %q)\nLevel: %d\nDuration: %d ms",
		input.ExpectedWord, score.Normalize(input.ExpectedWord),
		input.OriginalWord,
		input.Transcription, score.Normalize(input.Transcription),
		input.Level, input.DurationMs,
	)

	return run(ctx, &a.r, validationFeedbackName, key,
		validationFeedbackSystemPrompt, user, nil,
		func(v *ValidationFeedback) error { return validateValidationFeedback(v, input.Level) },
	)
}

// validateValidationFeedback is the strict output check: parse leniently,
// validate strictly, never trust the shape blindly.
func validateValidationFeedback(v *ValidationFeedback, level int) error {
	val := &v.Validation
	if val.MatchPercentage < 0 || val.MatchPercentage > 100 {
		return fmt.Errorf("validation.matchPercentage %v out of range [0,100]", val.MatchPercentage)
	}
	if val.Reasoning == "" {
		return fmt.Errorf("validation.reasoning is empty")
	}
	for i, lm := range val.LetterByLetterMatch {
		if len(lm.Expected) != 1 {
			return fmt.Errorf("validation.letterByLetterMatch[%d].expected %q is not a single letter", i, lm.Expected)
		}
	}
	if level != session.LevelFingerspelling && len(val.LetterByLetterMatch) > 0 {
		// Whole-word signs have no per-letter judgment; drop a spurious array
		// rather than failing the call.
		val.LetterByLetterMatch = nil
	}

	fb := &v.Feedback
	if fb.FeedbackText == "" {
		return fmt.Errorf("feedback.feedbackText is empty")
	}
	if n := len(fb.TechnicalTips); n < 2 || n > 3 {
		return fmt.Errorf("feedback.technicalTips has %d items, want 2 or 3", n)
	}
	if fb.Encouragement == "" {
		return fmt.Errorf("feedback.encouragement is empty")
	}
	return nil
}
