package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunReturnsExitCodeOnMissingConfig(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	require.NoError(t, os.Unsetenv("TELEGRAM_BOT_TOKEN"))

	require.Equal(t, 1, run())
}

func TestRunReturnsExitCodeOnStorageFailure(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("SENTRY_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("DAY_TIMEZONE", "")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("DATABASE_URL", "redis://localhost:6379")

	require.Equal(t, 1, run())
}
