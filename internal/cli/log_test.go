package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	logger.Debug("hidden")
	logger.Info("shown")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown")
}

func TestLoggerContext_RoundTrip(t *testing.T) {
	logger := newLogger(&bytes.Buffer{}, log.DebugLevel)
	ctx := withLogger(context.Background(), logger)
	require.Same(t, logger, loggerFromContext(ctx))
}

func TestLoggerContext_Fallback(t *testing.T) {
	require.NotNil(t, loggerFromContext(context.Background()))
}

func TestProgress_Done(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	p := newProgress(logger)
	p.done("Merged 10 motifs into 3")

	out := buf.String()
	require.Contains(t, out, "Merged 10 motifs into 3")
	require.True(t, strings.Contains(out, "ms)") || strings.Contains(out, "s)"))
}
