package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/noirlang/medremind/internal/models"
	"github.com/noirlang/medremind/internal/recurrence"
)

func (h *Handlers) handleAdd(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		h.sendMessage(msg.Chat.ID, "Usage: /add <name>; <dose>; <date>; <time>; <recurrence>; <meal>\nExample: /add Aspirin; 1 tablet; 2026-09-01; 09:00; daily; before")
		return
	}

	med, err := parseAddArgs(args)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "⚠️ "+err.Error())
		return
	}

	if err := h.sched.Add(ctx, med); err != nil {
		log.Printf("Failed to add medication: %v", err)
		h.sendMessage(msg.Chat.ID, "Could not save the reminder, please try again")
		return
	}

	h.sendMessage(msg.Chat.ID, h.confirmationText(med))
}

// parseAddArgs parses "name; dose; date; time; recurrence; meal". Dose,
// recurrence and meal timing are optional with sensible defaults.
func parseAddArgs(args string) (*models.Medication, error) {
	fields := strings.Split(args, ";")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 4 {
		return nil, fmt.Errorf("need at least name; dose; date; time")
	}

	date, err := time.ParseInLocation("2006-01-02", fields[2], time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, use YYYY-MM-DD", fields[2])
	}
	tod, err := models.ParseTimeOfDay(fields[3])
	if err != nil {
		return nil, fmt.Errorf("invalid time %q, use HH:MM", fields[3])
	}

	med := &models.Medication{
		Name:          fields[0],
		Dose:          fields[1],
		ScheduledDate: date,
		ScheduledTime: tod,
		Recurrence:    models.RecurrenceOnce,
		MealTiming:    models.MealBefore,
	}
	if med.Name == "" {
		return nil, fmt.Errorf("medication name is required")
	}
	if med.Dose == "" {
		med.Dose = "1 tablet"
	}

	if len(fields) > 4 && fields[4] != "" {
		med.Recurrence = models.Recurrence(strings.ToLower(fields[4]))
		if !med.Recurrence.Valid() {
			return nil, fmt.Errorf("invalid recurrence %q, use once/daily/weekly/monthly", fields[4])
		}
	}
	if med.IsRecurring() {
		anchor := models.DateOf(date)
		med.AnchorDate = &anchor
	}

	if len(fields) > 5 && fields[5] != "" {
		switch strings.ToLower(fields[5]) {
		case "before":
			med.MealTiming = models.MealBefore
		case "after":
			med.MealTiming = models.MealAfter
		case "with":
			med.MealTiming = models.MealWith
		default:
			return nil, fmt.Errorf("invalid meal timing %q, use before/after/with", fields[5])
		}
	}

	return med, nil
}

func (h *Handlers) confirmationText(med *models.Medication) string {
	text := fmt.Sprintf("💊 Reminder set: *%s* (%s)\n📅 %s at %s, %s",
		med.Name, med.Dose,
		med.ScheduledDate.Format("2006-01-02"), med.ScheduledTime,
		med.MealTiming.Text())
	if med.IsRecurring() {
		if rule, err := recurrence.RuleString(med); err == nil && rule != "" {
			text += "\n🔄 " + rule
		}
	}
	return text
}

func (h *Handlers) handleList(ctx context.Context, msg *tgbotapi.Message) {
	now, err := h.clock.Now()
	if err != nil {
		log.Printf("Failed to read clock: %v", err)
		h.sendMessage(msg.Chat.ID, "Could not determine the current date")
		return
	}

	date := models.DateOf(now)
	if args := strings.TrimSpace(msg.CommandArguments()); args != "" {
		parsed, err := time.ParseInLocation("2006-01-02", args, time.Local)
		if err != nil {
			h.sendMessage(msg.Chat.ID, "Invalid date, use YYYY-MM-DD")
			return
		}
		date = parsed
	}

	meds, err := h.repo.ListAll(ctx)
	if err != nil {
		log.Printf("Failed to list medications: %v", err)
		h.sendMessage(msg.Chat.ID, "Could not load the medication list, please try again")
		return
	}

	due := recurrence.DueOccurrences(meds, date)
	if len(due) == 0 {
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("💊 Nothing due on %s", date.Format("2006-01-02")))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("💊 *Due on %s*\n\n", date.Format("2006-01-02")))
	for _, occ := range due {
		med := occ.Medication
		status := "⏳"
		if med.Completed {
			status = "✅"
		}
		sb.WriteString(fmt.Sprintf("%s *%d.* %s %s (%s, %s)\n",
			status, med.MedicationID, med.ScheduledTime, med.Name, med.Dose, med.MealTiming.Text()))
		if med.IsRecurring() {
			if next, err := recurrence.Upcoming(med, now, 1); err == nil && len(next) > 0 {
				sb.WriteString(fmt.Sprintf("   🔄 next: %s\n", next[0].Format("2006-01-02 15:04")))
			}
		}
	}
	h.sendMessage(msg.Chat.ID, sb.String())
}

func (h *Handlers) handleTaken(ctx context.Context, msg *tgbotapi.Message) {
	medicationID, err := strconv.Atoi(strings.TrimSpace(msg.CommandArguments()))
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Usage: /taken <id>")
		return
	}

	if err := h.sched.Complete(ctx, medicationID); err != nil {
		log.Printf("Failed to complete medication %d: %v", medicationID, err)
		h.sendMessage(msg.Chat.ID, "Could not mark the medication as taken, please try again")
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Medication %d marked as taken for today", medicationID))
}

func (h *Handlers) handleDelete(ctx context.Context, msg *tgbotapi.Message) {
	medicationID, err := strconv.Atoi(strings.TrimSpace(msg.CommandArguments()))
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Usage: /delete <id>")
		return
	}

	if err := h.sched.Remove(ctx, medicationID); err != nil {
		log.Printf("Failed to delete medication %d: %v", medicationID, err)
		h.sendMessage(msg.Chat.ID, "Could not delete the medication, please try again")
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("🗑 Medication %d deleted", medicationID))
}
