package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(provider.Meter(InstrumentationName))
	require.NoError(t, err)
	return m, reader
}

// sumByOutcome totals archetype.classify.total data points per outcome.
func sumByOutcome(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "archetype.classify.total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(attribute.Key("outcome"))
				out[v.AsString()] += dp.Value
			}
		}
	}
	return out
}

func findMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) (metricdata.Metrics, bool) {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestNewMetrics(t *testing.T) {
	m, _ := newTestMetrics(t)
	assert.True(t, m.initialized)
}

func TestNewMetrics_NilMeter(t *testing.T) {
	m, err := NewMetrics(nil)
	require.NoError(t, err)
	assert.True(t, m.initialized)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordClassified(context.Background(), &Result{}, 1)
		m.RecordRejected(context.Background(), outcomeEmptyBank)
	})
}

func TestClassifier_Metrics(t *testing.T) {
	m, reader := newTestMetrics(t)
	c := New(WithMetrics(m))
	ctx := context.Background()
	b := newBank(t, rotCoven, rotCovenList(), flies, fliesList())
	params := Parameters{K: 1, PrimaryWeight: 1}

	_, err := c.Classify(ctx, fliesList(), b, params)
	require.NoError(t, err)
	_, err = c.Classify(ctx, fliesList(), b, Parameters{K: 1, DistanceWeighted: true, PrimaryWeight: 1})
	require.NoError(t, err)
	_, err = c.Classify(ctx, fliesList(), b, Parameters{K: 5, PrimaryWeight: 1})
	require.Error(t, err)
	_, err = c.Classify(ctx, fliesList(), b, Parameters{})
	require.Error(t, err)

	outcomes := sumByOutcome(t, reader)
	assert.Equal(t, int64(1), outcomes[outcomeClassified])
	assert.Equal(t, int64(1), outcomes[outcomeExactMatch])
	assert.Equal(t, int64(1), outcomes[outcomeInsufficient])
	assert.Equal(t, int64(1), outcomes[outcomeInvalidParameters])

	hist, ok := findMetric(t, reader, "archetype.classify.candidates")
	require.True(t, ok)
	data, ok := hist.Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	var count uint64
	for _, dp := range data.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}

func TestClassifier_TieMetric(t *testing.T) {
	m, reader := newTestMetrics(t)
	c := New(WithMetrics(m))
	b := newBank(t, rotCoven, fliesList(), flies, fliesList())

	res, err := c.Classify(context.Background(), fliesList(), b, Parameters{K: 2, PrimaryWeight: 1})
	require.NoError(t, err)
	require.True(t, res.Tie)

	ties, ok := findMetric(t, reader, "archetype.classify.ties.total")
	require.True(t, ok)
	sum, ok := ties.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
}

func TestClassifier_Span(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	c := New(WithTracer(provider.Tracer(InstrumentationName)))
	b := newBank(t, flies, fliesList())

	_, err := c.Classify(context.Background(), fliesList(), b, Parameters{K: 1, PrimaryWeight: 1})
	require.NoError(t, err)
	_, err = c.Classify(context.Background(), fliesList(), b, Parameters{K: 2, PrimaryWeight: 1})
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "classifier.Classify", spans[0].Name())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "Flies", attrs["classifier.archetype"].AsString())
	assert.Equal(t, int64(1), attrs["classifier.candidates"].AsInt64())
	assert.Equal(t, nurgle.Name, attrs["classifier.faction"].AsString())

	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.NotEmpty(t, spans[1].Events(), "error should be recorded")
}

func TestClassifier_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := New(WithLogger(zap.New(core)))
	ctx := context.Background()

	tied := newBank(t, rotCoven, fliesList(), flies, fliesList())
	_, err := c.Classify(ctx, fliesList(), tied, Parameters{K: 1, PrimaryWeight: 1})
	require.NoError(t, err)
	_, err = c.Classify(ctx, fliesList(), tied, Parameters{K: 2, PrimaryWeight: 1})
	require.NoError(t, err)
	_, err = c.Classify(ctx, fliesList(), tied, Parameters{K: 3, PrimaryWeight: 1})
	require.Error(t, err)

	classified := logs.FilterMessage("classified").All()
	require.Len(t, classified, 1)
	assert.Equal(t, "classifier", classified[0].LoggerName)
	assert.Equal(t, rotCoven.Name, classified[0].ContextMap()["archetype"])

	ties := logs.FilterMessage("classification tie").All()
	require.Len(t, ties, 1)
	assert.Equal(t, zapcore.WarnLevel, ties[0].Level)
	assert.Equal(t, []any{flies.Name, rotCoven.Name}, ties[0].ContextMap()["tied"])

	rejected := logs.FilterMessage("classification rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, int64(3), rejected[0].ContextMap()["k"])
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, outcomeEmptyBank, outcome(ErrEmptyBank))
	assert.Equal(t, outcomeInsufficient, outcome(ErrInsufficientNeighbours))
	assert.Equal(t, outcomeInvalidParameters, outcome(ErrInvalidParameters))
	assert.Equal(t, outcomeError, outcome(assert.AnError))
}
