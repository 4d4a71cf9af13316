package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/noirlang/medremind/internal/ai"
	"github.com/noirlang/medremind/internal/clock"
	"github.com/noirlang/medremind/internal/repository"
	"github.com/noirlang/medremind/internal/scheduler"
)

type Handlers struct {
	api    *tgbotapi.BotAPI
	repo   *repository.MedicationRepository
	sched  *scheduler.Scheduler
	clock  clock.Clock
	ai     *ai.Client
	chatID int64
}

func New(api *tgbotapi.BotAPI, repo *repository.MedicationRepository, sched *scheduler.Scheduler, clk clock.Clock, aiClient *ai.Client, chatID int64) *Handlers {
	return &Handlers{
		api:    api,
		repo:   repo,
		sched:  sched,
		clock:  clk,
		ai:     aiClient,
		chatID: chatID,
	}
}

// allowed rejects chats other than the configured owner. A zero chat id
// accepts everyone (single-user deployments without the env var set).
func (h *Handlers) allowed(chatID int64) bool {
	return h.chatID == 0 || h.chatID == chatID
}

func (h *Handlers) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if !h.allowed(msg.Chat.ID) {
		return
	}

	switch msg.Command() {
	case "start":
		h.handleStart(msg)
	case "help":
		h.handleHelp(msg)
	case "add":
		h.handleAdd(ctx, msg)
	case "list":
		h.handleList(ctx, msg)
	case "taken":
		h.handleTaken(ctx, msg)
	case "delete":
		h.handleDelete(ctx, msg)
	default:
		h.sendMessage(msg.Chat.ID, "Unknown command, see /help")
	}
}

func (h *Handlers) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !h.allowed(msg.Chat.ID) {
		return
	}
	h.handleAIMessage(ctx, msg)
}

// HandleCallbackQuery processes the "taken" button on fired reminders.
// Callback data: "med_taken:<medicationID>".
func (h *Handlers) HandleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	answer := tgbotapi.NewCallback(callback.ID, "")
	if _, err := h.api.Request(answer); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}

	if callback.Message == nil || !h.allowed(callback.Message.Chat.ID) {
		return
	}

	parts := strings.Split(callback.Data, ":")
	if len(parts) != 2 || parts[0] != "med_taken" {
		return
	}
	medicationID, err := strconv.Atoi(parts[1])
	if err != nil {
		return
	}

	if err := h.sched.Complete(ctx, medicationID); err != nil {
		log.Printf("Failed to complete medication %d: %v", medicationID, err)
		h.sendMessage(callback.Message.Chat.ID, "Could not mark the medication as taken, please try again")
		return
	}

	h.editMessageText(callback.Message.Chat.ID, callback.Message.MessageID,
		fmt.Sprintf("✅ Taken: %s", strings.TrimPrefix(callback.Message.Text, "💊 ")))
}

func (h *Handlers) editMessageText(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := h.api.Send(edit); err != nil {
		log.Printf("Failed to edit message: %v", err)
	}
}

func (h *Handlers) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (h *Handlers) handleStart(msg *tgbotapi.Message) {
	text := fmt.Sprintf(`👋 Hi %s!

I remind you to take your medication on time.

Add a reminder with /add, or just tell me in plain words, for example:
• "take aspirin every day at 9:00 before breakfast"
• "vitamin D weekly on Mondays at 20:00"

See /help for all commands`, msg.From.FirstName)
	h.sendMessage(msg.Chat.ID, text)
}

func (h *Handlers) handleHelp(msg *tgbotapi.Message) {
	text := `📖 *Commands*

/add <name>; <dose>; <date>; <time>; <recurrence>; <meal> - add a reminder
   date: YYYY-MM-DD, time: HH:MM
   recurrence: once | daily | weekly | monthly
   meal: before | after | with
   example: /add Aspirin; 1 tablet; 2026-09-01; 09:00; daily; before

/list [YYYY-MM-DD] - medications due on a date (default today)
/taken <id> - mark as taken for today
/delete <id> - remove a medication

💡 You can also describe the reminder in plain language.`
	h.sendMessage(msg.Chat.ID, text)
}
