package config

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setBase(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("GEMINI_API_KEY", "key")
}

func TestNewDefaults(t *testing.T) {
	setBase(t)

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, ProviderGemini, cfg.LLMProvider)
	require.Equal(t, "gemini-1.5-pro", cfg.GeminiModel)
	require.Equal(t, "file://data", cfg.DatabaseURL)
	require.Equal(t, 60*time.Second, cfg.GenerateTimeout)
	require.Equal(t, time.Hour, cfg.UserCacheTTL)
	require.Empty(t, cfg.ReminderCron)

	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, time.Local, loc)

	lvl, err := cfg.SlogLevel()
	require.NoError(t, err)
	require.Equal(t, slog.LevelInfo, lvl)
}

func TestNewMissingToken(t *testing.T) {
	setBase(t)
	// t.Setenv restores the original value on cleanup.
	require.NoError(t, os.Unsetenv("TELEGRAM_BOT_TOKEN"))

	_, err := New()
	require.Error(t, err)
}

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown provider", env: map[string]string{"LLM_PROVIDER": "bard"}},
		{name: "gemini without key", env: map[string]string{"GEMINI_API_KEY": ""}},
		{name: "openai without key", env: map[string]string{"LLM_PROVIDER": "openai"}},
		{name: "yandex without folder", env: map[string]string{"LLM_PROVIDER": "yandex", "YANDEX_OAUTH_TOKEN": "t"}},
		{name: "bad timezone", env: map[string]string{"DAY_TIMEZONE": "Mars/Olympus"}},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "loud"}},
		{name: "negative timeout", env: map[string]string{"GENERATE_TIMEOUT": "-1s"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setBase(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := New()
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidValue), "got %v", err)
		})
	}
}

func TestExplicitTimezone(t *testing.T) {
	setBase(t)
	t.Setenv("DAY_TIMEZONE", "Asia/Kolkata")

	cfg, err := New()
	require.NoError(t, err)
	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, "Asia/Kolkata", loc.String())
}
