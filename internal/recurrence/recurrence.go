// Package recurrence decides whether a medication is due on a given calendar
// date. Evaluation is pure: no I/O, no mutable state, safe for concurrent use.
package recurrence

import (
	"log"
	"sort"
	"time"

	"github.com/noirlang/medremind/internal/models"
)

// Occurrence is a (medication, date) pair determined to be due. Recomputed on
// every query, never stored.
type Occurrence struct {
	Medication *models.Medication
	Date       time.Time
}

// IsDue reports whether the medication is due on the given date.
//
// A record that fails validation degrades to an exact-date match: partial
// information must never produce false positives, and a corrupt row must not
// take the rest of the batch down with it.
func IsDue(med *models.Medication, date time.Time) bool {
	day := models.DateOf(date)

	if err := med.Validate(); err != nil {
		log.Printf("medication %d: %v; falling back to exact-date match", med.MedicationID, err)
		return models.SameDay(med.ScheduledDate, day)
	}

	anchor := med.EffectiveAnchor()
	switch med.Recurrence {
	case models.RecurrenceOnce:
		return models.SameDay(med.ScheduledDate, day)
	case models.RecurrenceDaily:
		return !day.Before(anchor)
	case models.RecurrenceWeekly:
		return !day.Before(anchor) && day.Weekday() == anchor.Weekday()
	case models.RecurrenceMonthly:
		// Strict day-of-month equality: months shorter than the anchor day
		// skip that month entirely rather than clamping to the last day.
		return !day.Before(anchor) && day.Day() == anchor.Day()
	}
	return models.SameDay(med.ScheduledDate, day)
}

// DueOccurrences filters the medications due on the given date, ordered by
// time-of-day ascending. Ties are broken by ascending medication id so that
// repeated queries produce identical sequences.
func DueOccurrences(meds []*models.Medication, date time.Time) []Occurrence {
	day := models.DateOf(date)

	var due []Occurrence
	for _, med := range meds {
		if IsDue(med, day) {
			due = append(due, Occurrence{Medication: med, Date: day})
		}
	}

	sort.Slice(due, func(i, j int) bool {
		a, b := due[i].Medication, due[j].Medication
		if a.ScheduledTime != b.ScheduledTime {
			return a.ScheduledTime.Before(b.ScheduledTime)
		}
		return a.MedicationID < b.MedicationID
	})
	return due
}

// NextDueDate returns the first date strictly after the given day on which
// the medication is due again, or false if none exists within a year. Used to
// rearm the following occurrence after completion or firing.
func NextDueDate(med *models.Medication, after time.Time) (time.Time, bool) {
	day := models.DateOf(after)
	for i := 0; i < 366; i++ {
		day = day.AddDate(0, 0, 1)
		if IsDue(med, day) {
			return day, true
		}
	}
	return time.Time{}, false
}
