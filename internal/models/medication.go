package models

import (
	"errors"
	"fmt"
	"time"
)

// Recurrence defines how often a medication reminder repeats.
type Recurrence string

const (
	RecurrenceOnce    Recurrence = "once"    // only on the scheduled date
	RecurrenceDaily   Recurrence = "daily"   // every day from the anchor
	RecurrenceWeekly  Recurrence = "weekly"  // same weekday as the anchor
	RecurrenceMonthly Recurrence = "monthly" // same day-of-month as the anchor
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceOnce, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// MealTiming describes when the dose should be taken relative to a meal.
// Display data only, the scheduling logic never looks at it.
type MealTiming string

const (
	MealBefore MealTiming = "before_meal"
	MealAfter  MealTiming = "after_meal"
	MealWith   MealTiming = "with_meal"
)

// Text returns the user-facing label carried in notification payloads.
func (m MealTiming) Text() string {
	switch m {
	case MealBefore:
		return "Before meal"
	case MealAfter:
		return "After meal"
	case MealWith:
		return "With meal"
	}
	return string(m)
}

func (m MealTiming) Valid() bool {
	switch m {
	case MealBefore, MealAfter, MealWith:
		return true
	}
	return false
}

// ErrMalformedSchedule marks a medication whose dates or enums are unusable.
// The recurrence evaluator treats such records as exact-date-only so that a
// corrupt row can never over-fire.
var ErrMalformedSchedule = errors.New("malformed schedule")

type Medication struct {
	MedicationID  int        `json:"medication_id"`
	Name          string     `json:"name"`
	Dose          string     `json:"dose"`
	ScheduledDate time.Time  `json:"scheduled_date"` // date component only, local midnight
	ScheduledTime TimeOfDay  `json:"scheduled_time"`
	Recurrence    Recurrence `json:"recurrence"`
	AnchorDate    *time.Time `json:"anchor_date"` // reference date for weekly/monthly periodicity, nil for one-offs
	Completed     bool       `json:"completed"`
	MealTiming    MealTiming `json:"meal_timing"`
	CreatedAt     time.Time  `json:"created_at"`
}

// IsRecurring returns true if this medication repeats beyond its first date.
func (m *Medication) IsRecurring() bool {
	return m.Recurrence != RecurrenceOnce && m.Recurrence != ""
}

// EffectiveAnchor is the reference date for recurrence periodicity: the
// anchor date when set, otherwise the scheduled date.
func (m *Medication) EffectiveAnchor() time.Time {
	if m.AnchorDate != nil {
		return DateOf(*m.AnchorDate)
	}
	return DateOf(m.ScheduledDate)
}

// Validate reports whether the record is complete enough for recurrence
// evaluation. All failures wrap ErrMalformedSchedule.
func (m *Medication) Validate() error {
	if m.ScheduledDate.IsZero() {
		return fmt.Errorf("%w: missing scheduled date", ErrMalformedSchedule)
	}
	if !m.ScheduledTime.Valid() {
		return fmt.Errorf("%w: scheduled time %q out of range", ErrMalformedSchedule, m.ScheduledTime)
	}
	if !m.Recurrence.Valid() {
		return fmt.Errorf("%w: unknown recurrence %q", ErrMalformedSchedule, m.Recurrence)
	}
	return nil
}

// DateOf strips the time-of-day component, keeping the location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
