package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"postcraft/internal/logging"
	"postcraft/internal/posts"
	"postcraft/internal/reporting"
	"postcraft/internal/users"
)

const (
	welcomeText     = "Hey! %s, Welcome. I will be writing engaging social media posts for you ✨ Just keep feeding me with events throughout the day. Let's shine on social media ⭐"
	statusText      = "Hey! %s, Kindly wait a moment. I am creating posts for you 🚀"
	apologyText     = "Facing difficulties! ⛓️‍💥"
	noEventsText    = "No events for the day."
	failureText     = "Oops! Something went wrong while generating posts."
	acknowledgeText = "Noted the message sir! 📩 Keep feeding me with events. Use /generate to shine on social media ⭐"
)

func profileFrom(u *tgbotapi.User) users.User {
	return users.User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsBot:     u.IsBot,
		Username:  u.UserName,
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if _, err := b.registry.RegisterIfAbsent(ctx, profileFrom(msg.From)); err != nil {
		reporting.Report(ctx, err)
		recordInteraction(ctx, triggerStart, outcomeFailed)
		b.reply(ctx, msg.Chat.ID, apologyText)
		return
	}
	recordInteraction(ctx, triggerStart, outcomeOK)
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf(welcomeText, msg.From.FirstName))
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	if _, err := b.journal.Append(ctx, msg.From.ID, msg.Text); err != nil {
		reporting.Report(ctx, err)
		recordInteraction(ctx, triggerText, outcomeFailed)
		b.reply(ctx, msg.Chat.ID, apologyText)
		return
	}
	recordInteraction(ctx, triggerText, outcomeOK)
	b.reply(ctx, msg.Chat.ID, acknowledgeText)
}

func (b *Bot) handleGenerate(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	start := time.Now()

	status := b.showStatus(ctx, chatID, fmt.Sprintf(statusText, msg.From.FirstName))
	defer status.clear(ctx)

	evs, err := b.journal.Today(ctx, msg.From.ID)
	if err != nil {
		reporting.Report(ctx, err)
		b.finishGenerate(ctx, start, outcomeFailed)
		status.clear(ctx)
		b.reply(ctx, chatID, apologyText)
		return
	}
	if len(evs) == 0 {
		b.finishGenerate(ctx, start, outcomeEmpty)
		status.clear(ctx)
		b.reply(ctx, chatID, noEventsText)
		return
	}

	text, err := b.generator.Generate(ctx, posts.BuildPrompt(evs))
	if err != nil {
		reporting.Report(ctx, err, map[string]string{"events": fmt.Sprint(len(evs))})
		b.finishGenerate(ctx, start, outcomeFailed)
		status.clear(ctx)
		b.reply(ctx, chatID, failureText)
		return
	}

	status.clear(ctx)
	if err := b.send(chatID, text); err != nil {
		// E.g. the posts exceed Telegram's message length limit.
		reporting.Report(ctx, fmt.Errorf("failed to deliver posts: %w", err), map[string]string{"length": fmt.Sprint(len(text))})
		b.finishGenerate(ctx, start, outcomeFailed)
		b.reply(ctx, chatID, failureText)
		return
	}
	b.finishGenerate(ctx, start, outcomeOK)
}

func (b *Bot) finishGenerate(ctx context.Context, start time.Time, outcome string) {
	recordInteraction(ctx, triggerGenerate, outcome)
	recordGenerateDuration(ctx, start, outcome)
}

// statusMessage is a transient reply that must be deleted before the final
// answer is sent. The zero value has nothing to delete.
type statusMessage struct {
	api     API
	chatID  int64
	id      int
	cleared bool
}

func (b *Bot) showStatus(ctx context.Context, chatID int64, text string) *statusMessage {
	sent, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "Failed to send status message", "error", err.Error())
		return &statusMessage{cleared: true}
	}
	return &statusMessage{api: b.api, chatID: chatID, id: sent.MessageID}
}

// clear deletes the status message once. Later calls are no-ops.
func (s *statusMessage) clear(ctx context.Context) {
	if s.cleared {
		return
	}
	s.cleared = true
	if _, err := s.api.Request(tgbotapi.NewDeleteMessage(s.chatID, s.id)); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "Failed to delete status message", "error", err.Error(), "messageID", s.id)
	}
}
