// Package observe provides application-wide observability primitives for
// signdrill: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all signdrill metrics.
const meterName = "github.com/MrWong99/signdrill"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// AgentDuration tracks per-agent model-call latency. Use with attributes:
	//   attribute.String("agent", ...), attribute.String("status", ...)
	AgentDuration metric.Float64Histogram

	// GraphDuration tracks end-to-end graph latency. Use with attribute:
	//   attribute.String("graph", "validation"|"announcement")
	GraphDuration metric.Float64Histogram

	// AudioDuration tracks audio-generation latency.
	AudioDuration metric.Float64Histogram

	// HTTPRequestDuration tracks HTTP request processing time. Use with
	// attributes: attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram

	// --- Counters ---

	// AgentCalls counts agent invocations. Use with attributes:
	//   attribute.String("agent", ...), attribute.String("status", ...)
	AgentCalls metric.Int64Counter

	// AgentErrors counts agent failures by kind. Use with attributes:
	//   attribute.String("agent", ...), attribute.String("kind", "call"|"decode")
	AgentErrors metric.Int64Counter

	// Attempts counts validated practice attempts. Use with attribute:
	//   attribute.String("status", "complete"|"error")
	Attempts metric.Int64Counter

	// Announcements counts announcement generations by scenario.
	Announcements metric.Int64Counter

	// ModelCost accumulates USD spend by agent and model.
	ModelCost metric.Float64Counter

	// --- Gauges ---

	// ActiveStreams tracks the number of open websocket intake connections.
	ActiveStreams metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for model-provider round-trip latencies.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.AgentDuration, err = m.Float64Histogram("signdrill.agent.duration",
		metric.WithDescription("Latency of one agent model call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.GraphDuration, err = m.Float64Histogram("signdrill.graph.duration",
		metric.WithDescription("End-to-end graph latency by graph name."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.AudioDuration, err = m.Float64Histogram("signdrill.audio.duration",
		metric.WithDescription("Latency of announcement audio generation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("signdrill.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.AgentCalls, err = m.Int64Counter("signdrill.agent.calls",
		metric.WithDescription("Total agent invocations by agent and status."),
	); err != nil {
		return nil, err
	}
	if met.AgentErrors, err = m.Int64Counter("signdrill.agent.errors",
		metric.WithDescription("Total agent failures by agent and kind."),
	); err != nil {
		return nil, err
	}
	if met.Attempts, err = m.Int64Counter("signdrill.attempts",
		metric.WithDescription("Total validated practice attempts by final status."),
	); err != nil {
		return nil, err
	}
	if met.Announcements, err = m.Int64Counter("signdrill.announcements",
		metric.WithDescription("Total generated announcements by scenario."),
	); err != nil {
		return nil, err
	}
	if met.ModelCost, err = m.Float64Counter("signdrill.model.cost",
		metric.WithDescription("Accumulated model spend in USD by agent and model."),
		metric.WithUnit("{USD}"),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveStreams, err = m.Int64UpDownCounter("signdrill.active_streams",
		metric.WithDescription("Number of open websocket intake connections."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordAgentCall records one agent invocation: its latency histogram sample,
// the call counter, and the accumulated cost.
func (m *Metrics) RecordAgentCall(ctx context.Context, agent, model, status string, seconds, costUSD float64) {
	attrs := metric.WithAttributes(
		attribute.String("agent", agent),
		attribute.String("status", status),
	)
	m.AgentDuration.Record(ctx, seconds, attrs)
	m.AgentCalls.Add(ctx, 1, attrs)
	if costUSD > 0 {
		m.ModelCost.Add(ctx, costUSD,
			metric.WithAttributes(
				attribute.String("agent", agent),
				attribute.String("model", model),
			),
		)
	}
}

// RecordAgentError records one agent failure by kind ("call" for transport
// failures, "decode" for schema/parse failures).
func (m *Metrics) RecordAgentError(ctx context.Context, agent, kind string) {
	m.AgentErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("agent", agent),
			attribute.String("kind", kind),
		),
	)
}

// RecordAttempt records a finished validation graph run by final status.
func (m *Metrics) RecordAttempt(ctx context.Context, status string, seconds float64) {
	m.Attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.GraphDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("graph", "validation")))
}

// RecordAnnouncement records a finished announcement graph run by scenario.
func (m *Metrics) RecordAnnouncement(ctx context.Context, scenario string, seconds float64) {
	m.Announcements.Add(ctx, 1, metric.WithAttributes(attribute.String("scenario", scenario)))
	m.GraphDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("graph", "announcement")))
}
