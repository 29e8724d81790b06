// Package session defines the central mutable record threaded through the
// scoring pipeline for one practice attempt, together with its status
// lifecycle and per-invocation cost ledger.
//
// A Session is owned by exactly one pipeline run at a time; it has no internal
// locking. Independent attempts use independent Sessions and share nothing.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrWong99/signdrill/internal/cost"
	"github.com/MrWong99/signdrill/internal/score"
)

// Level selects how an attempt is validated.
const (
	// LevelFingerspelling validates letter by letter using the manual alphabet.
	LevelFingerspelling = 1

	// LevelWordSign validates a single holistic gesture as one unit.
	LevelWordSign = 2
)

// Status is the lifecycle state of a Session. Status only moves forward,
// except into StatusError, which is terminal from any state.
type Status string

const (
	StatusInitialized Status = "initialized"
	StatusConnecting  Status = "connecting"
	StatusStreaming   Status = "streaming"
	StatusRecognizing Status = "recognizing"
	StatusValidating  Status = "validating"
	StatusComplete    Status = "complete"
	StatusError       Status = "error"
)

// statusRank orders the forward-only lifecycle. StatusError is absent: it is
// reachable from anywhere and final.
var statusRank = map[Status]int{
	StatusInitialized: 0,
	StatusConnecting:  1,
	StatusStreaming:   2,
	StatusRecognizing: 3,
	StatusValidating:  4,
	StatusComplete:    5,
}

// TranscriptionEvent is one fragment of the realtime transcription stream as
// supplied by the capture collaborator.
type TranscriptionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
	IsFinal   bool      `json:"isFinal"`
}

// ValidationResult is the model's judgment of one attempt.
//
// IsValid and MatchPercentage come from the same model call but nothing
// downstream enforces their consistency: IsValid is carried for display,
// while every scoring and scenario decision reads MatchPercentage.
type ValidationResult struct {
	IsValid             bool                `json:"isValid"`
	MatchPercentage     float64             `json:"matchPercentage"`
	LetterByLetterMatch []score.LetterMatch `json:"letterByLetterMatch,omitempty"`
	Reasoning           string              `json:"reasoning"`
}

// FeedbackResult is the coaching output for one attempt.
type FeedbackResult struct {
	FeedbackText  string   `json:"feedbackText"`
	TechnicalTips []string `json:"technicalTips"`
	Encouragement string   `json:"encouragement"`
	NextChallenge string   `json:"nextChallenge,omitempty"`
}

// Session is the record of one practice attempt.
type Session struct {
	// Identity.
	ID        string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`

	// Game context.
	LineID       string `json:"lineId"`
	WordID       string `json:"wordId"`
	ExpectedWord string `json:"expectedWord"`
	Level        int    `json:"level"`

	// Lifecycle.
	Status Status `json:"status"`

	// Streaming artifacts.
	Events             []TranscriptionEvent `json:"transcriptionEvents,omitempty"`
	FinalTranscription *string              `json:"finalTranscription"`
	StreamStartedAt    *time.Time           `json:"streamStartedAt,omitempty"`
	StreamEndedAt      *time.Time           `json:"streamEndedAt,omitempty"`
	DurationMs         int64                `json:"durationMs"`

	// Result artifacts, nil until the validation graph completes.
	Validation *ValidationResult `json:"validationResult,omitempty"`
	Scoring    *score.Result     `json:"scoringResult,omitempty"`
	Feedback   *FeedbackResult   `json:"feedbackResult,omitempty"`
	Score      *int              `json:"score,omitempty"`

	// Cost ledger: invocation key ("validation_0") → metadata. Totals are
	// recomputed by Resum, never incremented ad hoc.
	Costs             map[string]cost.Metadata `json:"costs,omitempty"`
	TotalCost         float64                  `json:"totalCost"`
	TotalInputTokens  int                      `json:"totalInputTokens"`
	TotalOutputTokens int                      `json:"totalOutputTokens"`

	// Error is the human-readable failure reason when Status is StatusError.
	Error string `json:"error,omitempty"`
}

// New creates a Session in the initialized state with a fresh id.
func New(lineID, wordID, expectedWord string, level int) *Session {
	return &Session{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		LineID:       lineID,
		WordID:       wordID,
		ExpectedWord: expectedWord,
		Level:        level,
		Status:       StatusInitialized,
		Costs:        map[string]cost.Metadata{},
	}
}

// AdvanceTo moves the session forward to next. Moving backwards, moving out
// of a terminal state, or naming an unknown status is an error and leaves the
// session unchanged.
func (s *Session) AdvanceTo(next Status) error {
	if s.Status == StatusError {
		return fmt.Errorf("session %s: status is terminal (error)", s.ID)
	}
	if next == StatusError {
		s.Status = StatusError
		return nil
	}

	nextRank, ok := statusRank[next]
	if !ok {
		return fmt.Errorf("session %s: unknown status %q", s.ID, next)
	}
	if nextRank < statusRank[s.Status] {
		return fmt.Errorf("session %s: cannot move backwards from %q to %q", s.ID, s.Status, next)
	}
	s.Status = next
	return nil
}

// Fail moves the session into the terminal error state with the given reason.
func (s *Session) Fail(reason string) {
	s.Status = StatusError
	s.Error = reason
}

// RecordCost stores one ledger entry under key, overwriting any previous
// entry with the same key.
func (s *Session) RecordCost(key string, m cost.Metadata) {
	if s.Costs == nil {
		s.Costs = map[string]cost.Metadata{}
	}
	s.Costs[key] = m
}

// Resum recomputes TotalCost, TotalInputTokens, and TotalOutputTokens by
// summing every ledger entry. Totals are never incremented in place; drift
// between the ledger and the totals is impossible by construction.
func (s *Session) Resum() {
	var (
		total    float64
		inTokens int
		outTok   int
	)
	for _, m := range s.Costs {
		total += m.Cost
		inTokens += m.InputTokens
		outTok += m.OutputTokens
	}
	s.TotalCost = total
	s.TotalInputTokens = inTokens
	s.TotalOutputTokens = outTok
}

// Transcription returns the final transcription, or "" and false when
// streaming has not produced one. The validation graph treats absence as a
// fatal input error.
func (s *Session) Transcription() (string, bool) {
	if s.FinalTranscription == nil || *s.FinalTranscription == "" {
		return "", false
	}
	return *s.FinalTranscription, true
}
