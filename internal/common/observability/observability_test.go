package observability

import (
	"context"
	"testing"
	"time"

	"application-workers/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// ==========================
// Test Helper Functions
// ==========================

func newManualObservability(t *testing.T) (*Observability, *metric.ManualReader) {
	t.Helper()
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	obs, err := newWithProvider(provider, "test")
	require.NoError(t, err)
	return obs, reader
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

// ==========================
// Core Functionality Tests
// ==========================

func TestObservability_RecordsJobs(t *testing.T) {
	obs, reader := newManualObservability(t)
	ctx := context.Background()

	obs.RecordJobProcessed(ctx, "nudge-application", "completed")
	obs.RecordJobProcessed(ctx, "nudge-application", "completed")
	obs.RecordJobDuration(ctx, "nudge-application", 15*time.Millisecond, "completed")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	processed, ok := findMetric(rm, "jobs.processed")
	require.True(t, ok)
	sum, ok := processed.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)

	duration, ok := findMetric(rm, "jobs.duration")
	require.True(t, ok)
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability
	obs.RecordJobProcessed(context.Background(), "t", "completed")
	obs.RecordJobDuration(context.Background(), "t", time.Second, "completed")
	assert.NoError(t, obs.Shutdown(context.Background()))
}

func TestNewTracerProvider_SamplesAndRecords(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp, err := NewTracerProvider(config.ObservabilityConfig{
		ServiceName:      "application-workers",
		TraceSampleRatio: 1,
	}, sdktrace.WithSpanProcessor(recorder))
	require.NoError(t, err)
	defer ShutdownTracer(context.Background(), tp)

	_, span := otel.Tracer("test").Start(context.Background(), "lifecycle.nudge")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "lifecycle.nudge", spans[0].Name())
}

func TestNewTracerProvider_ZeroRatioDropsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp, err := NewTracerProvider(config.ObservabilityConfig{
		ServiceName:      "application-workers",
		TraceSampleRatio: 0,
	}, sdktrace.WithSpanProcessor(recorder))
	require.NoError(t, err)
	defer ShutdownTracer(context.Background(), tp)

	_, span := otel.Tracer("test").Start(context.Background(), "lifecycle.update")
	span.End()

	assert.Empty(t, recorder.Ended())
}
