package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

var ErrInvalidValue = errors.New("invalid value")

type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`

	// Storage
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"file://data"`
	DatabaseSchema string `env:"DATABASE_SCHEMA" envDefault:"postcraft"`

	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey     string      `env:"GEMINI_API_KEY"`
	GeminiModel      string      `env:"GEMINI_MODEL" envDefault:"gemini-1.5-pro"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// Day window and generation
	DayTimezone     string        `env:"DAY_TIMEZONE"`
	GenerateTimeout time.Duration `env:"GENERATE_TIMEOUT" envDefault:"60s"`
	UserCacheTTL    time.Duration `env:"USER_CACHE_TTL" envDefault:"1h"`
	ReminderCron    string        `env:"REMINDER_CRON"`

	// Observability
	SentryDSN    string `env:"SENTRY_DSN"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
}

// New reads the configuration from the process environment and validates it.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY is required for provider %s", ErrInvalidValue, c.LLMProvider)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required for provider %s", ErrInvalidValue, c.LLMProvider)
		}
	case ProviderYandex:
		if c.YandexOAuthToken == "" || c.YandexFolderID == "" {
			return fmt.Errorf("%w: YANDEX_OAUTH_TOKEN and YANDEX_FOLDER_ID are required for provider %s", ErrInvalidValue, c.LLMProvider)
		}
	default:
		return fmt.Errorf("%w: LLM_PROVIDER (%s)", ErrInvalidValue, c.LLMProvider)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.GenerateTimeout < 0 || c.UserCacheTTL < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidValue)
	}
	return nil
}

// Location returns the zone that defines the day window. An empty
// DAY_TIMEZONE means the server's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.DayTimezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.DayTimezone)
	if err != nil {
		return nil, fmt.Errorf("%w: DAY_TIMEZONE (%s): %w", ErrInvalidValue, c.DayTimezone, err)
	}
	return loc, nil
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: LOG_LEVEL (%s)", ErrInvalidValue, c.LogLevel)
	}
	return lvl, nil
}

// NonSensitiveString is safe to log.
func (c *Config) NonSensitiveString() string {
	return fmt.Sprintf("Config{provider: %s, timezone: %q, reminder: %q, sentry: %t, otlp: %t}",
		c.LLMProvider, c.DayTimezone, c.ReminderCron, c.SentryDSN != "", c.OTLPEndpoint != "")
}
