package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// TestInitDisabled 测试未启用时返回可调用的空 shutdown
func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

// TestIDsWithoutSpan 测试无 span 时不返回 ID
func TestIDsWithoutSpan(t *testing.T) {
	traceID, spanID, ok := IDs(context.Background())
	assert.False(t, ok)
	assert.Empty(t, traceID)
	assert.Empty(t, spanID)
}

// TestRecordError 测试错误写入 span 状态，nil 不改变状态
func TestRecordError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer = tp.Tracer("test")
	defer func() { tracer = nil }()

	ctx, failed := Start(context.Background(), "failed")
	_, _, ok := IDs(ctx)
	assert.True(t, ok)
	RecordError(failed, errors.New("boom"))
	failed.End()

	_, clean := Start(context.Background(), "clean")
	RecordError(clean, nil)
	clean.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
	assert.Len(t, spans[0].Events(), 1)
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
}

// TestSampler 测试采样率边界
func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.5).Description(), sampler(0.5).Description())
}
