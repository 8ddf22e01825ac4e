package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"postcraft/internal/events"
	"postcraft/internal/users"
)

// API is the subset of *tgbotapi.BotAPI used by the bot.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Registry interface {
	RegisterIfAbsent(ctx context.Context, profile users.User) (users.User, error)
}

type Journal interface {
	Append(ctx context.Context, ownerID int64, text string) (events.Event, error)
	Today(ctx context.Context, ownerID int64) ([]events.Event, error)
	ActiveToday(ctx context.Context) (map[int64]int, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewAPI authenticates against Telegram with token.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}
