package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MrWong99/signdrill/internal/cost"
	"github.com/MrWong99/signdrill/internal/graph"
	"github.com/MrWong99/signdrill/internal/score"
	"github.com/MrWong99/signdrill/internal/session"
)

// errNoTranscription is the validation graph's fatal-input error string. The
// handler maps it to 422 instead of 502: the caller sent an attempt that was
// never validatable, nothing upstream failed.
const errNoTranscription = "No transcription to validate"

// sessionMetrics is the rolled-up cost block of a validate response.
type sessionMetrics struct {
	TotalCost         float64 `json:"totalCost"`
	TotalInputTokens  int     `json:"totalInputTokens"`
	TotalOutputTokens int     `json:"totalOutputTokens"`
	DurationMs        int64   `json:"durationMs"`
}

type validateResponse struct {
	Success    bool                      `json:"success"`
	SessionID  string                    `json:"sessionId"`
	Score      *int                      `json:"score,omitempty"`
	Validation *session.ValidationResult `json:"validation,omitempty"`
	Scoring    *score.Result             `json:"scoring,omitempty"`
	Feedback   *session.FeedbackResult   `json:"feedback,omitempty"`
	Metrics    sessionMetrics            `json:"metrics"`
	Error      string                    `json:"error,omitempty"`
}

// handleValidate runs the validation pipeline over a full session state
// posted by the capture UI.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var sess session.Session
	if err := json.NewDecoder(r.Body).Decode(&sess); err != nil {
		writeJSON(w, http.StatusBadRequest, validateResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if sess.ExpectedWord == "" {
		writeJSON(w, http.StatusUnprocessableEntity, validateResponse{Error: "expectedWord is required"})
		return
	}
	// A session posted in a terminal state cannot run the pipeline again. That
	// is a fault in the request, not upstream, so it never maps to 502.
	if sess.Status == session.StatusComplete || sess.Status == session.StatusError {
		writeJSON(w, http.StatusUnprocessableEntity, validateResponse{
			SessionID: sess.ID,
			Error:     "session status " + string(sess.Status) + " is terminal",
		})
		return
	}
	fillSessionDefaults(&sess)

	res := s.pipeline.RunValidation(r.Context(), &sess)

	status := http.StatusOK
	if !res.Success {
		if res.Err == errNoTranscription {
			status = http.StatusUnprocessableEntity
		} else {
			status = http.StatusBadGateway
		}
	}
	writeJSON(w, status, validateResponseFrom(res.Success, &sess))
}

// fillSessionDefaults patches identity and lifecycle fields a client is
// allowed to omit when posting a session state directly.
func fillSessionDefaults(sess *session.Session) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	if sess.Status == "" {
		sess.Status = session.StatusInitialized
	}
	if sess.Level == 0 {
		sess.Level = session.LevelFingerspelling
	}
	if sess.Costs == nil {
		sess.Costs = map[string]cost.Metadata{}
	}
}

func validateResponseFrom(success bool, sess *session.Session) validateResponse {
	return validateResponse{
		Success:    success,
		SessionID:  sess.ID,
		Score:      sess.Score,
		Validation: sess.Validation,
		Scoring:    sess.Scoring,
		Feedback:   sess.Feedback,
		Metrics: sessionMetrics{
			TotalCost:         sess.TotalCost,
			TotalInputTokens:  sess.TotalInputTokens,
			TotalOutputTokens: sess.TotalOutputTokens,
			DurationMs:        sess.DurationMs,
		},
		Error: sess.Error,
	}
}

type announceResponse struct {
	Success       bool           `json:"success"`
	Scenario      graph.Scenario `json:"scenario,omitempty"`
	Message       string         `json:"message,omitempty"`
	Phonetic      string         `json:"phonetic,omitempty"`
	AudioBase64   string         `json:"audioBase64,omitempty"`
	AudioMimeType string         `json:"audioMimeType,omitempty"`
	Metrics       sessionMetrics `json:"metrics"`
	Error         string         `json:"error,omitempty"`
}

// handleAnnounce runs the announcement graph for one validated attempt.
func (s *Server) handleAnnounce(w http.ResponseWriter, r *http.Request) {
	var input graph.AnnounceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, announceResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if input.Target == "" {
		writeJSON(w, http.StatusUnprocessableEntity, announceResponse{Error: "target is required"})
		return
	}

	res, err := s.announcer.Run(r.Context(), input)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, announceResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, announceResponse{
		Success:       true,
		Scenario:      res.Scenario,
		Message:       res.Message,
		Phonetic:      res.Phonetic,
		AudioBase64:   res.AudioBase64,
		AudioMimeType: res.AudioMimeType,
		Metrics: sessionMetrics{
			TotalCost:         res.TotalCost,
			TotalInputTokens:  res.TotalInputTokens,
			TotalOutputTokens: res.TotalOutputTokens,
		},
	})
}

type recognizeRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

// recognizeMetrics is the single-call cost block of a recognize response.
type recognizeMetrics struct {
	Cost         float64 `json:"cost"`
	InputTokens  int     `json:"inputTokens"`
	OutputTokens int     `json:"outputTokens"`
	LatencyMs    int64   `json:"latencyMs"`
	Model        string  `json:"model"`
}

type recognizeResponse struct {
	Success bool             `json:"success"`
	Letter  string           `json:"letter,omitempty"`
	Metrics recognizeMetrics `json:"metrics"`
	Error   string           `json:"error,omitempty"`
}

// handleRecognize classifies one fingerspelled letter from a single frame.
// This backs the stepwise countdown-snapshot-classify interaction mode.
func (s *Server) handleRecognize(w http.ResponseWriter, r *http.Request) {
	var req recognizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, recognizeResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.ImageBase64 == "" {
		writeJSON(w, http.StatusUnprocessableEntity, recognizeResponse{Error: "imageBase64 is required"})
		return
	}

	res := s.recognizer.Run(r.Context(), req.ImageBase64, "recognize_0")
	metrics := recognizeMetrics{
		Cost:         res.Metadata.Cost,
		InputTokens:  res.Metadata.InputTokens,
		OutputTokens: res.Metadata.OutputTokens,
		LatencyMs:    res.Metadata.LatencyMs,
		Model:        res.Metadata.Model,
	}
	if !res.OK {
		writeJSON(w, http.StatusBadGateway, recognizeResponse{Metrics: metrics, Error: res.Err})
		return
	}
	writeJSON(w, http.StatusOK, recognizeResponse{
		Success: true,
		Letter:  res.Content.Letter,
		Metrics: metrics,
	})
}
