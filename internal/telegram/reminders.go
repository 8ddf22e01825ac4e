package telegram

import (
	"context"
	"fmt"
	"maps"
	"slices"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"postcraft/internal/logging"
)

const reminderText = "You noted %d event(s) today. Use /generate to turn them into posts ✨"

// SendReminders nudges every user with at least one event today. Users
// talk to the bot in a private chat, so the user id is the chat id.
func (b *Bot) SendReminders(ctx context.Context) error {
	counts, err := b.journal.ActiveToday(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active users: %w", err)
	}

	logger := logging.FromContext(ctx)
	sent := 0
	for _, ownerID := range slices.Sorted(maps.Keys(counts)) {
		n := counts[ownerID]
		if n <= 0 {
			continue
		}
		if _, err := b.api.Send(tgbotapi.NewMessage(ownerID, fmt.Sprintf(reminderText, n))); err != nil {
			logger.WarnContext(ctx, "Failed to send reminder", "userID", ownerID, "error", err.Error())
			recordInteraction(ctx, triggerReminder, outcomeFailed)
			continue
		}
		recordInteraction(ctx, triggerReminder, outcomeOK)
		sent++
	}
	logger.InfoContext(ctx, "Sent reminders", "sent", sent, "active", len(counts))
	return nil
}
