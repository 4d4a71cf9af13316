package handlers

import (
	"context"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/noirlang/medremind/internal/ai"
	"github.com/noirlang/medremind/internal/models"
)

// handleAIMessage turns a free-text phrase into a medication reminder. Low
// confidence drafts are answered with the model's reply instead of being
// saved.
func (h *Handlers) handleAIMessage(ctx context.Context, msg *tgbotapi.Message) {
	if h.ai == nil {
		h.sendMessage(msg.Chat.ID, "Natural language input is not configured, use /add (see /help)")
		return
	}

	now, err := h.clock.Now()
	if err != nil {
		log.Printf("Failed to read clock: %v", err)
		h.sendMessage(msg.Chat.ID, "Something went wrong, please try again")
		return
	}

	draft, err := h.ai.ParseMedication(ctx, msg.Text, now)
	if err != nil {
		log.Printf("Failed to parse message with AI: %v", err)
		h.sendMessage(msg.Chat.ID, "I could not understand that, try /add (see /help)")
		return
	}

	if draft.Confidence < 0.5 || draft.Name == "" {
		reply := draft.Reply
		if reply == "" {
			reply = "That does not look like a medication reminder. Try /help."
		}
		h.sendMessage(msg.Chat.ID, reply)
		return
	}

	med, err := draftToMedication(draft, now)
	if err != nil {
		log.Printf("AI draft rejected: %v", err)
		h.sendMessage(msg.Chat.ID, "I could not work out the schedule, try /add (see /help)")
		return
	}

	if err := h.sched.Add(ctx, med); err != nil {
		log.Printf("Failed to add medication from AI draft: %v", err)
		h.sendMessage(msg.Chat.ID, "Could not save the reminder, please try again")
		return
	}

	h.sendMessage(msg.Chat.ID, h.confirmationText(med))
}

func draftToMedication(draft *ai.MedicationDraft, now time.Time) (*models.Medication, error) {
	date := models.DateOf(now)
	if draft.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", draft.Date, time.Local)
		if err != nil {
			return nil, err
		}
		date = parsed
	}

	tod, err := models.ParseTimeOfDay(draft.Time)
	if err != nil {
		return nil, err
	}

	med := &models.Medication{
		Name:          draft.Name,
		Dose:          draft.Dose,
		ScheduledDate: date,
		ScheduledTime: tod,
		Recurrence:    models.Recurrence(draft.Recurrence),
		MealTiming:    models.MealTiming(draft.MealTiming),
	}
	if med.Dose == "" {
		med.Dose = "1 tablet"
	}
	if med.Recurrence == "" {
		med.Recurrence = models.RecurrenceOnce
	}
	if med.MealTiming == "" {
		med.MealTiming = models.MealBefore
	}
	if med.IsRecurring() {
		anchor := models.DateOf(date)
		med.AnchorDate = &anchor
	}

	if err := med.Validate(); err != nil {
		return nil, err
	}
	return med, nil
}
