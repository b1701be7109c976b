package logging

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zapcore"
)

func TestContextFields(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ContextFields(ctx))

	ctx = WithAnalysisID(ctx, "f47ac10b-58cc-4372-a567-0e02b2c3d479")
	ctx = WithSessionID(ctx, "7d1c.jsonl")
	ctx = WithRequestID(ctx, "req_1")

	enc := zapcore.NewMapObjectEncoder()
	for _, f := range ContextFields(ctx) {
		f.AddTo(enc)
	}
	assert.Equal(t, "f47ac10b-58cc-4372-a567-0e02b2c3d479", enc.Fields["analysis.id"])
	assert.Equal(t, "7d1c.jsonl", enc.Fields["session.id"])
	assert.Equal(t, "req_1", enc.Fields["request.id"])
}

func TestContextFields_Trace(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	enc := zapcore.NewMapObjectEncoder()
	for _, f := range ContextFields(ctx) {
		f.AddTo(enc)
	}
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", enc.Fields["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", enc.Fields["span_id"])
	assert.Equal(t, true, enc.Fields["trace_sampled"])
}

func TestWithID_DropsInvalid(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"empty", ""},
		{"newline", "sess\n{\"level\":\"error\"}"},
		{"space", "a b"},
		{"too long", strings.Repeat("a", maxIDLen+1)},
		{"invalid utf8", "\xff\xfe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidateID(tt.id))
			ctx := WithSessionID(context.Background(), tt.id)
			assert.Empty(t, SessionIDFromContext(ctx))
		})
	}
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	tl := NewTestLogger()
	ctx := WithLogger(context.Background(), tl.Logger)
	FromContext(ctx).Info(ctx, "stored logger")
	tl.AssertLogged(t, zapcore.InfoLevel, "stored logger")
}
