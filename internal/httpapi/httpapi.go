// Package httpapi exposes the scoring pipeline over HTTP.
//
// The surface is deliberately thin: three POST endpoints wrap the validation
// pipeline, the announcement graph, and the recognition agent one to one, a
// websocket endpoint takes in the capture UI's transcription stream, and
// /healthz and /metrics serve the usual probes. All domain decisions stay in
// the graphs; this layer only decodes requests, maps error states to status
// codes, and encodes responses.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrWong99/signdrill/internal/agent"
	"github.com/MrWong99/signdrill/internal/graph"
	"github.com/MrWong99/signdrill/internal/observe"
	"github.com/MrWong99/signdrill/internal/pipeline"
)

// Server wires the pipeline, graphs, and agents into HTTP handlers.
// Safe for concurrent use.
type Server struct {
	pipeline   *pipeline.Pipeline
	announcer  *graph.Announcer
	recognizer *agent.RecognitionAgent
	metrics    *observe.Metrics
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics sets the metrics instance handlers record to.
// Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New builds the HTTP surface around the given pipeline, announcer, and
// recognition agent.
func New(p *pipeline.Pipeline, a *graph.Announcer, rec *agent.RecognitionAgent, opts ...Option) *Server {
	s := &Server{pipeline: p, announcer: a, recognizer: rec}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// Handler returns the full route table wrapped in the observability
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/validate", s.handleValidate)
	mux.HandleFunc("POST /api/announce", s.handleAnnounce)
	mux.HandleFunc("POST /api/recognize", s.handleRecognize)
	mux.HandleFunc("GET /api/stream", s.handleStream)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())
	return observe.Middleware(s.metrics)(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as JSON and writes it with the given status code. On
// encoding failure it falls back to a plain-text 500 response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encoding failed"}`, http.StatusInternalServerError)
	}
}
