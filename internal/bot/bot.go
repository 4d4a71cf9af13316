// Package bot is the Telegram frontend: commands to manage the medication
// list and delivery of fired reminders with a "taken" acknowledgement.
package bot

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/noirlang/medremind/internal/bot/handlers"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	handlers *handlers.Handlers
}

func New(api *tgbotapi.BotAPI, h *handlers.Handlers) *Bot {
	return &Bot{api: api, handlers: h}
}

func (b *Bot) Start(ctx context.Context) error {
	log.Printf("Authorized on account %s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handlers.HandleCallbackQuery(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil {
		return
	}
	if update.Message.IsCommand() {
		b.handlers.HandleCommand(ctx, update.Message)
		return
	}
	b.handlers.HandleMessage(ctx, update.Message)
}
