package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"postcraft/internal/config"
	"postcraft/internal/events"
	"postcraft/internal/llm"
	"postcraft/internal/logging"
	"postcraft/internal/posts"
	"postcraft/internal/reporting"
	"postcraft/internal/scheduler"
	"postcraft/internal/storage"
	"postcraft/internal/telegram"
	"postcraft/internal/telemetry"
	"postcraft/internal/users"
)

const serviceName = "postcraft"

// Set with -ldflags "-X main.release=..."
var release = "dev"

func main() {
	os.Exit(run())
}

// run returns the exit code so that deferred cleanup runs before exiting.
func run() int {
	instanceID := uuid.New().String()
	logger := slog.New(logging.NewTracingLogHandler(slog.NewJSONHandler(os.Stdout, nil))).With("instanceID", instanceID)

	// Reported through Sentry once it is initialized, logged before that.
	fail := func(msg string, err error) int {
		ctx := reporting.WithHub(logging.AddToContext(context.Background(), logger))
		reporting.Report(ctx, fmt.Errorf("%s: %w", msg, err))
		return 1
	}

	if err := godotenv.Load(".env"); err != nil {
		logger.Warn(".env file not loaded", "error", err.Error())
	}

	cfg, err := config.New()
	if err != nil {
		return fail("Failed to load config", err)
	}
	level, _ := cfg.SlogLevel()
	logger = slog.New(logging.NewTracingLogHandler(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))).
		With("instanceID", instanceID)
	logger.Info("Loaded config", "config", cfg.NonSensitiveString())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.AddToContext(ctx, logger)

	flush, err := reporting.Init(cfg.SentryDSN, release)
	if err != nil {
		return fail("Failed to initialize Sentry", err)
	}
	defer flush()

	shutdownOTel, err := telemetry.SetupOTelSDK(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return fail("Failed to initialize OpenTelemetry", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			logger.Error("Failed to shut down OpenTelemetry", "error", err.Error())
		}
	}()

	loc, _ := cfg.Location()

	openCtx, cancelOpen := context.WithTimeout(ctx, 30*time.Second)
	backend, err := storage.Open(openCtx, cfg.DatabaseURL, storage.Options{
		Schema: cfg.DatabaseSchema,
		Logger: logger.With("component", "storage"),
	})
	cancelOpen()
	if err != nil {
		return fail("Failed to open storage", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := backend.Close(closeCtx); err != nil {
			logger.Error("Failed to close storage", "error", err.Error())
		}
	}()
	logger.Info("Initialized storage", "backend", backend.Kind)

	llmClient, err := llm.New(ctx, cfg)
	if err != nil {
		return fail("Failed to create llm client", err)
	}
	if c, ok := llmClient.(io.Closer); ok {
		defer c.Close()
	}
	logger.Info("Initialized llm client", "provider", cfg.LLMProvider)

	registry := users.NewRegistry(backend.Users, cfg.UserCacheTTL)
	defer registry.Close()

	journal := events.NewJournal(backend.Events, loc, time.Now)
	generator := posts.NewGenerator(llmClient, cfg.GenerateTimeout)

	api, err := telegram.NewAPI(cfg.TelegramBotToken)
	if err != nil {
		return fail("Failed to connect to Telegram", err)
	}
	logger.Info("Authorized on Telegram", "username", api.Self.UserName)

	bot := telegram.New(api, registry, journal, generator)

	if cfg.ReminderCron != "" {
		sched := scheduler.New(ctx, loc)
		if err := sched.Add("reminder", cfg.ReminderCron, bot.SendReminders); err != nil {
			return fail("Failed to schedule reminders", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	bot.Start(ctx)
	logger.Info("Shut down")
	return 0
}
