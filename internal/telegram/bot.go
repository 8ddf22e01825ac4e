package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"postcraft/internal/logging"
	"postcraft/internal/reporting"
)

const (
	cmdStart    = "start"
	cmdGenerate = "generate"

	triggerStart    = "start"
	triggerGenerate = "generate"
	triggerText     = "text"
	triggerReminder = "reminder"

	outcomeOK     = "ok"
	outcomeEmpty  = "empty"
	outcomeFailed = "failed"
)

type Bot struct {
	api       API
	registry  Registry
	journal   Journal
	generator Generator

	wg sync.WaitGroup
}

func New(api API, registry Registry, journal Journal, generator Generator) *Bot {
	return &Bot{
		api:       api,
		registry:  registry,
		journal:   journal,
		generator: generator,
	}
}

// Start receives updates until ctx is cancelled, handling each one on its
// own goroutine. It returns once every in-flight update is handled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	// In-flight work finishes even after shutdown begins.
	handlerCtx := context.WithoutCancel(ctx)

	logging.FromContext(ctx).InfoContext(ctx, "Receiving updates")
	defer b.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			logging.FromContext(ctx).InfoContext(ctx, "Stopping update receiver")
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleUpdate(handlerCtx, update)
			}()
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	ctx = reporting.WithHub(ctx)
	defer reporting.RecoverAndReport(ctx)

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}

	var trigger string
	switch {
	case msg.IsCommand() && msg.Command() == cmdStart:
		trigger = triggerStart
	case msg.IsCommand() && msg.Command() == cmdGenerate:
		trigger = triggerGenerate
	case msg.Text != "":
		trigger = triggerText
	default:
		return
	}

	ctx = logging.AddMetaToContext(
		ctx,
		slog.Int("updateID", update.UpdateID),
		slog.Int64("userID", msg.From.ID),
		slog.Int64("chatID", msg.Chat.ID),
		slog.String("trigger", trigger),
	)
	ctx = reporting.SetUserIDInContext(ctx, strconv.FormatInt(msg.From.ID, 10))
	ctx = reporting.AddTagsToContext(ctx, map[string]string{"trigger": trigger})

	switch trigger {
	case triggerStart:
		b.handleStart(ctx, msg)
	case triggerGenerate:
		b.handleGenerate(ctx, msg)
	case triggerText:
		b.handleText(ctx, msg)
	}
}

// reply sends text and logs a failed send. The turn ends normally either way.
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.send(chatID, text); err != nil {
		logging.FromContext(ctx).ErrorContext(ctx, "Failed to send message", "error", err.Error())
	}
}

func (b *Bot) send(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
