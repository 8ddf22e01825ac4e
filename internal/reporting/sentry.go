package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/getsentry/sentry-go"

	"postcraft/internal/logging"
)

var botTokenRx = regexp.MustCompile(`bot\d+:[A-Za-z0-9_-]+`)
var hostRx = regexp.MustCompile(`\[:{0,2}([0-9a-f]{0,4}:?){1,8}\]:\d+`)

// sanitizeError strips secrets and volatile parts so that similar errors
// are grouped together. Telegram API errors embed the bot token in the URL.
func sanitizeError(err string) string {
	err = botTokenRx.ReplaceAllString(err, "bot<token>")
	err = hostRx.ReplaceAllString(err, "<host>")
	return err
}

// Init configures the global Sentry client. An empty dsn disables Sentry and
// Report only logs.
func Init(dsn string, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:     dsn,
		Release: release,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init sentry: %w", err)
	}
	flush := func() {
		sentry.Flush(5 * time.Second)
	}
	return flush, nil
}

// WithHub attaches a per-interaction clone of the current hub to ctx.
func WithHub(ctx context.Context) context.Context {
	if sentry.CurrentHub().Client() == nil {
		return ctx
	}
	ctx = sentry.SetHubOnContext(ctx, sentry.CurrentHub().Clone())
	return SetStartedAtInContext(ctx, time.Now())
}

func Report(ctx context.Context, err error, extras ...map[string]string) {
	if err == nil {
		err = errors.New("No error provided")
	}
	logger := logging.FromContext(ctx)
	safe := sanitizeError(err.Error())

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		logger.ErrorContext(ctx, "Error", slog.String("error", safe), slog.Any("extras", extras))
		return
	}

	logger.ErrorContext(
		ctx,
		"Reporting error to Sentry",
		slog.String("error", safe),
		slog.Any("extras", extras),
	)

	hub.WithScope(func(scope *sentry.Scope) {
		meta := MetaFromContext(ctx)
		scope.SetTags(meta.tags)
		for key, value := range meta.extras {
			scope.SetExtra(key, value)
		}
		if meta.userID != "" {
			scope.SetUser(sentry.User{
				ID: meta.userID,
			})
		}
		if !meta.startedAt.IsZero() {
			scope.SetExtra("secondsSinceStart", time.Since(meta.startedAt).Seconds())
		}

		for _, extra := range extras {
			for key, value := range extra {
				scope.SetExtra(key, value)
			}
		}

		scope.SetFingerprint([]string{"{{ default }}", safe})
		hub.CaptureException(err)
	})
}

// RecoverAndReport is deferred by goroutines that must never crash the
// process.
func RecoverAndReport(ctx context.Context) {
	r := recover()
	if r == nil {
		return
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.RecoverWithContext(ctx, r)
	}
	logging.FromContext(ctx).ErrorContext(ctx, "Recovered from panic", slog.Any("panic", r))
}
