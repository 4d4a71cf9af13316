package handlers

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/noirlang/medremind/internal/alarm"
)

// DeliverAlarm is the timer's fire callback: it presents the reminder with a
// "taken" button. A one-off medication already marked taken is skipped; for
// recurring medications the next occurrence is rearmed so firings continue
// day after day.
func (h *Handlers) DeliverAlarm(identity int32, payload alarm.Payload) {
	ctx := context.Background()

	med, err := h.repo.GetByID(ctx, payload.MedicationID)
	if err != nil {
		log.Printf("Alarm %d: medication %d not found: %v", identity, payload.MedicationID, err)
		return
	}
	if med.Completed && !med.IsRecurring() {
		log.Printf("Alarm %d: medication %d already taken, skipping", identity, payload.MedicationID)
		return
	}

	text := fmt.Sprintf("💊 Time for *%s*\n%s · %s", payload.Name, payload.Dose, payload.MealTiming)
	msg := tgbotapi.NewMessage(h.chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Taken", fmt.Sprintf("med_taken:%d", payload.MedicationID)),
		),
	)
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("Alarm %d: failed to send notification: %v", identity, err)
	}

	if med.IsRecurring() {
		if err := h.sched.Rearm(ctx, payload.MedicationID); err != nil {
			log.Printf("Alarm %d: failed to rearm medication %d: %v", identity, payload.MedicationID, err)
		}
	}
}
