package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel(" WARN "))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestParseRatio(t *testing.T) {
	assert.Equal(t, 1.0, parseRatio(""))
	assert.Equal(t, 0.25, parseRatio("0.25"))
	assert.Equal(t, 1.0, parseRatio("7"))
	assert.Equal(t, 0.0, parseRatio("-1"))
}

func TestInit_TextLogsAndShutdown(t *testing.T) {
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "127.0.0.1:1")

	var buf bytes.Buffer
	instruments, shutdown, err := Init(context.Background(), "gifting-test", WithServiceVersion("test"), WithLogOutput(&buf))
	require.NoError(t, err)
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))) })

	instruments.Logger.Info("hidden")
	instruments.Logger.Warn("visible", slog.String("order.number", "CHG-1"))
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "level=WARN msg=visible order.number=CHG-1")

	assert.NotNil(t, instruments.Tracer("t"))
	assert.NotNil(t, instruments.Meter("m"))
	_ = shutdown(context.Background())
}
