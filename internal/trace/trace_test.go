package trace

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpansExportedOnShutdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithConfig(Config{ServiceName: "trace-test", Enabled: true, SampleRatio: 1, Writer: &buf}))
	require.True(t, Enabled())

	ctx, span := StartSpan(context.Background(), "pipeline.OnTick", Symbol("INFY"))
	traceID, spanID, ok := GetTraceFields(ctx)
	require.True(t, ok)
	assert.Len(t, traceID, 32)
	assert.Len(t, spanID, 16)
	Finish(span, nil)

	_, failed := StartSpan(context.Background(), "broker.PlaceOrder")
	Finish(failed, errors.New("margin exceeded"))

	require.NoError(t, Shutdown(context.Background()))
	out := buf.String()
	assert.Contains(t, out, "pipeline.OnTick")
	assert.Contains(t, out, "trace-test")
	assert.Contains(t, out, "INFY")
	assert.Contains(t, out, "margin exceeded")
}

func TestNoTraceFieldsWithoutSpan(t *testing.T) {
	_, _, ok := GetTraceFields(context.Background())
	assert.False(t, ok)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_TRACING_ENABLED", "false")
	t.Setenv("LOG_TRACE_SAMPLE_RATIO", "0.25")
	cfg := ConfigFromEnv("bot")
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 0.25, cfg.SampleRatio)

	t.Setenv("LOG_TRACE_SAMPLE_RATIO", "7")
	assert.Equal(t, 1.0, ConfigFromEnv("bot").SampleRatio)
}
