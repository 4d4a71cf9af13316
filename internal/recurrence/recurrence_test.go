package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noirlang/medremind/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func med(id int, rec models.Recurrence, scheduled time.Time, anchor *time.Time) *models.Medication {
	return &models.Medication{
		MedicationID:  id,
		Name:          "Aspirin",
		Dose:          "1 tablet",
		ScheduledDate: scheduled,
		ScheduledTime: models.TimeOfDay{Hour: 9},
		Recurrence:    rec,
		AnchorDate:    anchor,
		MealTiming:    models.MealBefore,
	}
}

func TestIsDueOnce(t *testing.T) {
	scheduled := date(2024, time.January, 10)
	m := med(1, models.RecurrenceOnce, scheduled, nil)

	// Exactly one due date over a wide range.
	dueCount := 0
	for d := date(2023, time.December, 1); d.Before(date(2024, time.March, 1)); d = d.AddDate(0, 0, 1) {
		if IsDue(m, d) {
			dueCount++
			assert.Equal(t, scheduled, d)
		}
	}
	assert.Equal(t, 1, dueCount)
}

func TestIsDueDaily(t *testing.T) {
	anchor := date(2024, time.January, 10)
	m := med(1, models.RecurrenceDaily, anchor, nil)

	assert.False(t, IsDue(m, anchor.AddDate(0, 0, -1)))
	assert.True(t, IsDue(m, anchor))
	assert.True(t, IsDue(m, anchor.AddDate(0, 0, 1)))
	assert.True(t, IsDue(m, anchor.AddDate(0, 5, 17)))
}

func TestIsDueDailySeparateAnchor(t *testing.T) {
	anchor := date(2024, time.January, 1)
	m := med(1, models.RecurrenceDaily, date(2024, time.January, 10), &anchor)

	// The anchor, not the scheduled date, starts the run.
	assert.True(t, IsDue(m, date(2024, time.January, 5)))
	assert.False(t, IsDue(m, date(2023, time.December, 31)))
}

func TestIsDueWeekly(t *testing.T) {
	anchor := date(2024, time.January, 3) // a Wednesday
	require.Equal(t, time.Wednesday, anchor.Weekday())
	m := med(3, models.RecurrenceWeekly, anchor, &anchor)

	assert.True(t, IsDue(m, anchor))
	assert.True(t, IsDue(m, date(2024, time.January, 10)), "next Wednesday")
	assert.False(t, IsDue(m, date(2024, time.January, 11)), "a Thursday")
	assert.False(t, IsDue(m, date(2023, time.December, 27)), "Wednesday before the anchor")

	// Due exactly every 7th day from the anchor onward.
	for d, i := anchor, 0; i < 60; d, i = d.AddDate(0, 0, 1), i+1 {
		assert.Equal(t, i%7 == 0, IsDue(m, d), "day %s", d.Format("2006-01-02"))
	}
}

func TestIsDueMonthly(t *testing.T) {
	anchor := date(2024, time.January, 15)
	m := med(2, models.RecurrenceMonthly, anchor, &anchor)

	assert.True(t, IsDue(m, date(2024, time.January, 15)))
	assert.True(t, IsDue(m, date(2024, time.February, 15)))
	assert.True(t, IsDue(m, date(2025, time.June, 15)))
	assert.False(t, IsDue(m, date(2024, time.February, 14)))
	assert.False(t, IsDue(m, date(2024, time.February, 16)))
	assert.False(t, IsDue(m, date(2023, time.December, 15)), "before the anchor")
}

func TestIsDueMonthlyShortMonthSkips(t *testing.T) {
	anchor := date(2024, time.January, 31)
	m := med(2, models.RecurrenceMonthly, anchor, &anchor)

	// Strict day-of-month equality: February has no 31st, so nothing fires.
	for d := date(2024, time.February, 1); d.Month() == time.February; d = d.AddDate(0, 0, 1) {
		assert.False(t, IsDue(m, d), "day %s", d.Format("2006-01-02"))
	}
	assert.True(t, IsDue(m, date(2024, time.March, 31)))
}

func TestIsDueMalformedFallsBackToExactDate(t *testing.T) {
	scheduled := date(2024, time.January, 10)

	m := med(1, models.Recurrence("fortnightly"), scheduled, nil)
	assert.True(t, IsDue(m, scheduled), "exact date still matches")
	assert.False(t, IsDue(m, scheduled.AddDate(0, 0, 1)), "never over-fires")

	badTime := med(1, models.RecurrenceDaily, scheduled, nil)
	badTime.ScheduledTime = models.TimeOfDay{Hour: 99}
	assert.True(t, IsDue(badTime, scheduled))
	assert.False(t, IsDue(badTime, scheduled.AddDate(0, 0, 5)))
}

func TestDueOccurrencesOrdering(t *testing.T) {
	day := date(2024, time.March, 1)

	early := med(5, models.RecurrenceDaily, date(2024, time.January, 1), nil)
	early.ScheduledTime = models.TimeOfDay{Hour: 8}
	late := med(1, models.RecurrenceDaily, date(2024, time.January, 1), nil)
	late.ScheduledTime = models.TimeOfDay{Hour: 20}
	tieHigh := med(9, models.RecurrenceDaily, date(2024, time.January, 1), nil)
	tieHigh.ScheduledTime = models.TimeOfDay{Hour: 8}
	notDue := med(7, models.RecurrenceOnce, date(2024, time.April, 1), nil)

	due := DueOccurrences([]*models.Medication{late, notDue, tieHigh, early}, day)
	require.Len(t, due, 3)

	// Time-of-day ascending, ties broken by ascending id.
	assert.Equal(t, 5, due[0].Medication.MedicationID)
	assert.Equal(t, 9, due[1].Medication.MedicationID)
	assert.Equal(t, 1, due[2].Medication.MedicationID)
	for _, occ := range due {
		assert.Equal(t, day, occ.Date)
	}
}

func TestDueOccurrencesEmpty(t *testing.T) {
	assert.Empty(t, DueOccurrences(nil, date(2024, time.March, 1)))
}

func TestNextDueDate(t *testing.T) {
	anchor := date(2024, time.January, 3) // Wednesday
	weekly := med(3, models.RecurrenceWeekly, anchor, &anchor)

	next, ok := NextDueDate(weekly, date(2024, time.January, 3))
	require.True(t, ok)
	assert.Equal(t, date(2024, time.January, 10), next)

	next, ok = NextDueDate(weekly, date(2024, time.January, 9))
	require.True(t, ok)
	assert.Equal(t, date(2024, time.January, 10), next)

	once := med(1, models.RecurrenceOnce, date(2024, time.January, 10), nil)
	_, ok = NextDueDate(once, date(2024, time.January, 10))
	assert.False(t, ok, "one-off has no next occurrence")
}

func TestNextDueDateMonthlySkipsShortMonth(t *testing.T) {
	anchor := date(2024, time.January, 31)
	monthly := med(2, models.RecurrenceMonthly, anchor, &anchor)

	next, ok := NextDueDate(monthly, date(2024, time.January, 31))
	require.True(t, ok)
	assert.Equal(t, date(2024, time.March, 31), next, "February is skipped")
}
