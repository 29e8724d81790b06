package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/MrWong99/signdrill/internal/cost"
	"github.com/MrWong99/signdrill/internal/observe"
	"github.com/MrWong99/signdrill/internal/session"
)

// streamMessage is one JSON frame of the websocket intake protocol. The
// capture UI drives the conversation: a start frame opens the attempt,
// transcription frames accumulate, and the end frame triggers validation.
// The server replies with the validate response shape and closes.
type streamMessage struct {
	Type string `json:"type"`

	// start
	LineID       string `json:"lineId,omitempty"`
	WordID       string `json:"wordId,omitempty"`
	ExpectedWord string `json:"expectedWord,omitempty"`
	Level        int    `json:"level,omitempty"`

	// transcription
	Text      string    `json:"text,omitempty"`
	IsFinal   bool      `json:"isFinal,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`

	// end
	DurationMs int64               `json:"durationMs,omitempty"`
	StreamCost *streamCostEstimate `json:"streamCost,omitempty"`
}

// streamCostEstimate is the client-computed cost of the realtime recognition
// phase. The realtime model connection lives on the client's side of the
// boundary, so the client is the only party that can count its frames.
type streamCostEstimate struct {
	Model         string  `json:"model,omitempty"`
	InputTokens   int     `json:"inputTokens"`
	OutputTokens  int     `json:"outputTokens"`
	EstimatedCost float64 `json:"estimatedCost"`
}

// streamReadTimeout bounds each frame read; an idle capture UI that stops
// sending frames releases the connection instead of pinning it forever.
const streamReadTimeout = 5 * time.Minute

// handleStream accepts the capture UI's transcription stream, assembles the
// session state, runs the validation pipeline on the end frame, and replies
// with the validate response shape before closing.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	ctx := r.Context()
	log := observe.Logger(ctx)

	s.metrics.ActiveStreams.Add(ctx, 1)
	defer s.metrics.ActiveStreams.Add(ctx, -1)

	sess, err := s.runStream(ctx, conn)
	if err != nil {
		log.Warn("stream intake failed", "error", err)
		conn.Close(websocket.StatusUnsupportedData, err.Error())
		return
	}

	res := s.pipeline.RunValidation(ctx, sess)
	if err := writeWS(ctx, conn, validateResponseFrom(res.Success, sess)); err != nil {
		log.Warn("stream reply failed", "sessionId", sess.ID, "error", err)
		return
	}
	conn.Close(websocket.StatusNormalClosure, "done")
}

// runStream consumes frames until the end frame and returns the assembled
// session, ready for validation.
func (s *Server) runStream(ctx context.Context, conn *websocket.Conn) (*session.Session, error) {
	var sess *session.Session

	for {
		msg, err := readWS(ctx, conn)
		if err != nil {
			return nil, fmt.Errorf("read frame: %w", err)
		}

		switch msg.Type {
		case "start":
			if sess != nil {
				return nil, fmt.Errorf("duplicate start frame")
			}
			if msg.ExpectedWord == "" {
				return nil, fmt.Errorf("start frame: expectedWord is required")
			}
			level := msg.Level
			if level == 0 {
				level = session.LevelFingerspelling
			}
			sess = session.New(msg.LineID, msg.WordID, msg.ExpectedWord, level)
			if err := sess.AdvanceTo(session.StatusStreaming); err != nil {
				return nil, err
			}
			now := time.Now().UTC()
			sess.StreamStartedAt = &now

		case "transcription":
			if sess == nil {
				return nil, fmt.Errorf("transcription frame before start")
			}
			ts := msg.Timestamp
			if ts.IsZero() {
				ts = time.Now().UTC()
			}
			sess.Events = append(sess.Events, session.TranscriptionEvent{
				Timestamp: ts,
				Text:      msg.Text,
				IsFinal:   msg.IsFinal,
			})
			if msg.IsFinal {
				text := msg.Text
				sess.FinalTranscription = &text
			}

		case "end":
			if sess == nil {
				return nil, fmt.Errorf("end frame before start")
			}
			now := time.Now().UTC()
			sess.StreamEndedAt = &now
			sess.DurationMs = msg.DurationMs
			if sess.DurationMs == 0 && sess.StreamStartedAt != nil {
				sess.DurationMs = now.Sub(*sess.StreamStartedAt).Milliseconds()
			}
			if est := msg.StreamCost; est != nil {
				sess.RecordCost("stream_0",
					cost.EstimateMetadata(est.Model, est.InputTokens, est.OutputTokens, est.EstimatedCost))
			}
			if err := sess.AdvanceTo(session.StatusRecognizing); err != nil {
				return nil, err
			}
			return sess, nil

		default:
			return nil, fmt.Errorf("unknown frame type %q", msg.Type)
		}
	}
}

func readWS(ctx context.Context, conn *websocket.Conn) (*streamMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, streamReadTimeout)
	defer cancel()

	_, data, err := conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	var msg streamMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return &msg, nil
}

func writeWS(ctx context.Context, conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}
