package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetrics_CreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestHistogramObservation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	histograms := []struct {
		name string
		h    metric.Float64Histogram
	}{
		{"signdrill.agent.duration", m.AgentDuration},
		{"signdrill.graph.duration", m.GraphDuration},
		{"signdrill.audio.duration", m.AudioDuration},
		{"signdrill.http.request.duration", m.HTTPRequestDuration},
	}

	for _, tc := range histograms {
		tc.h.Record(ctx, 0.123)
		tc.h.Record(ctx, 0.456)
	}

	rm := collect(t, reader)

	for _, tc := range histograms {
		t.Run(tc.name, func(t *testing.T) {
			met := findMetric(rm, tc.name)
			if met == nil {
				t.Fatalf("metric %q not found", tc.name)
			}
			hist, ok := met.Data.(metricdata.Histogram[float64])
			if !ok {
				t.Fatalf("metric %q is not a histogram", tc.name)
			}
			if len(hist.DataPoints) == 0 {
				t.Fatalf("metric %q has no data points", tc.name)
			}
			if got := hist.DataPoints[0].Count; got != 2 {
				t.Errorf("sample count = %d, want 2", got)
			}
		})
	}
}

func TestRecordAgentCall(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordAgentCall(ctx, "validation_feedback", "gpt-4o-mini", "ok", 1.2, 0.0005)
	m.RecordAgentCall(ctx, "validation_feedback", "gpt-4o-mini", "error", 0.3, 0)

	rm := collect(t, reader)

	calls := findMetric(rm, "signdrill.agent.calls")
	if calls == nil {
		t.Fatal("agent calls counter not found")
	}
	sum, ok := calls.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("agent calls is not a sum")
	}
	// One data point per status attribute set.
	if len(sum.DataPoints) != 2 {
		t.Fatalf("agent calls has %d data points, want 2", len(sum.DataPoints))
	}

	costMetric := findMetric(rm, "signdrill.model.cost")
	if costMetric == nil {
		t.Fatal("model cost counter not found")
	}
	costSum, ok := costMetric.Data.(metricdata.Sum[float64])
	if !ok {
		t.Fatalf("model cost is not a sum")
	}
	var total float64
	for _, dp := range costSum.DataPoints {
		total += dp.Value
	}
	if total != 0.0005 {
		t.Errorf("total recorded cost = %v, want 0.0005", total)
	}
}

func TestRecordAttemptAndAnnouncement(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordAttempt(ctx, "ok", 2.1)
	m.RecordAttempt(ctx, "invalid_input", 0.01)
	m.RecordAnnouncement(ctx, "delayed", 3.4)

	rm := collect(t, reader)

	attempts := findMetric(rm, "signdrill.attempts")
	if attempts == nil {
		t.Fatal("attempts counter not found")
	}
	sum, ok := attempts.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 2 {
		t.Fatalf("attempts = %+v", attempts.Data)
	}

	if findMetric(rm, "signdrill.announcements") == nil {
		t.Fatal("announcements counter not found")
	}
}

func TestActiveStreamsUpDown(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.ActiveStreams.Add(ctx, 1)
	m.ActiveStreams.Add(ctx, 1)
	m.ActiveStreams.Add(ctx, -1)

	rm := collect(t, reader)

	streams := findMetric(rm, "signdrill.active_streams")
	if streams == nil {
		t.Fatal("active streams gauge not found")
	}
	sum, ok := streams.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 {
		t.Fatalf("active streams = %+v", streams.Data)
	}
	if got := sum.DataPoints[0].Value; got != 1 {
		t.Errorf("active streams = %d, want 1", got)
	}
}
