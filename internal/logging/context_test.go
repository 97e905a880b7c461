package logging

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func fieldMap(fields []zap.Field) map[string]zap.Field {
	m := make(map[string]zap.Field, len(fields))
	for _, f := range fields {
		m[f.Key] = f
	}
	return m
}

func TestContextFields_Empty(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))
}

func TestContextFields_Trace(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(tracetest.NewSpanRecorder()))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	fields := fieldMap(ContextFields(ctx))
	require.Contains(t, fields, "trace_id")
	require.Contains(t, fields, "span_id")
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"].String)
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"].String)
	assert.Contains(t, fields, "trace_sampled")
}

func TestContextFields_SessionAndRequest(t *testing.T) {
	ctx := WithSessionID(context.Background(), "sess_01")
	ctx = WithRequestID(ctx, "req-42")

	fields := fieldMap(ContextFields(ctx))
	assert.Equal(t, "sess_01", fields["session.id"].String)
	assert.Equal(t, "req-42", fields["request.id"].String)
	assert.Equal(t, "sess_01", SessionIDFromContext(ctx))
	assert.Equal(t, "req-42", RequestIDFromContext(ctx))
}

func TestWithSessionID_PanicsOnInvalid(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"empty", ""},
		{"spaces", "has space"},
		{"path", "../etc"},
		{"invalid utf8", "\xff\xfe"},
		{"too long", strings.Repeat("a", maxIDLen+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() { WithSessionID(context.Background(), tt.id) })
			assert.Panics(t, func() { WithRequestID(context.Background(), tt.id) })
		})
	}
}

func TestLoggerContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	tl := NewTestLogger()
	ctx := WithLogger(context.Background(), tl.Logger)
	assert.Same(t, tl.Logger, FromContext(ctx))
}

func TestTestLogger_TraceCorrelation(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	tl := NewTestLogger()
	tl.Info(ctx, "correlated")
	tl.AssertTraceCorrelation(t, "correlated")
	tl.AssertLogged(t, zap.InfoLevel, "correlated")
	tl.AssertNotLogged(t, zap.ErrorLevel, "correlated")

	tl.Reset()
	assert.Empty(t, tl.All())
}
