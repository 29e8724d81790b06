// Package graph implements the orchestration graphs of the scoring pipeline:
// the validation graph, which turns a streamed attempt into a fully populated
// session result, and the announcement graph, which turns a validated attempt
// into a themed train-announcement audio clip.
//
// Graphs never return panics or let agent failures escape unshaped. The
// validation graph encodes every failure in the session's status and error
// fields; the announcement graph degrades gracefully where a step is cosmetic
// and returns an error only when the final audio call fails.
package graph

import "github.com/MrWong99/signdrill/internal/observe"

// Option configures a graph at construction time.
type Option func(*options)

type options struct {
	metrics *observe.Metrics
}

// WithMetrics sets the metrics instance the graph records to.
// Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func newOptions(opts ...Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = observe.DefaultMetrics()
	}
	return o
}
