package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noirlang/medremind/internal/models"
)

func TestRuleStringOnce(t *testing.T) {
	m := med(1, models.RecurrenceOnce, date(2024, time.January, 10), nil)
	rule, err := RuleString(m)
	require.NoError(t, err)
	assert.Empty(t, rule)
}

func TestRuleStringDaily(t *testing.T) {
	m := med(1, models.RecurrenceDaily, date(2024, time.January, 10), nil)
	rule, err := RuleString(m)
	require.NoError(t, err)
	assert.Contains(t, rule, "FREQ=DAILY")
}

func TestRuleStringWeekly(t *testing.T) {
	anchor := date(2024, time.January, 3) // Wednesday
	m := med(3, models.RecurrenceWeekly, anchor, &anchor)
	rule, err := RuleString(m)
	require.NoError(t, err)
	assert.Contains(t, rule, "FREQ=WEEKLY")
	assert.Contains(t, rule, "BYDAY=WE")
}

func TestRuleStringMonthly(t *testing.T) {
	anchor := date(2024, time.January, 15)
	m := med(2, models.RecurrenceMonthly, anchor, &anchor)
	rule, err := RuleString(m)
	require.NoError(t, err)
	assert.Contains(t, rule, "FREQ=MONTHLY")
	assert.Contains(t, rule, "BYMONTHDAY=15")
}

func TestRuleMalformed(t *testing.T) {
	m := med(1, models.Recurrence("fortnightly"), date(2024, time.January, 10), nil)
	_, err := Rule(m)
	assert.ErrorIs(t, err, models.ErrMalformedSchedule)
}

func TestUpcomingDaily(t *testing.T) {
	m := med(1, models.RecurrenceDaily, date(2024, time.January, 10), nil)

	after := time.Date(2024, time.January, 10, 12, 0, 0, 0, time.Local)
	next, err := Upcoming(m, after, 3)
	require.NoError(t, err)
	require.Len(t, next, 3)
	assert.Equal(t, time.Date(2024, time.January, 11, 9, 0, 0, 0, time.Local), next[0])
	assert.Equal(t, time.Date(2024, time.January, 12, 9, 0, 0, 0, time.Local), next[1])
	assert.Equal(t, time.Date(2024, time.January, 13, 9, 0, 0, 0, time.Local), next[2])
}

func TestUpcomingWeeklyMatchesEvaluator(t *testing.T) {
	anchor := date(2024, time.January, 3) // Wednesday
	m := med(3, models.RecurrenceWeekly, anchor, &anchor)

	next, err := Upcoming(m, anchor.AddDate(0, 0, 1), 4)
	require.NoError(t, err)
	require.Len(t, next, 4)
	for _, instant := range next {
		assert.True(t, IsDue(m, instant), "rrule occurrence %s must agree with the evaluator", instant)
		assert.Equal(t, time.Wednesday, instant.Weekday())
	}
}

func TestUpcomingOnce(t *testing.T) {
	m := med(1, models.RecurrenceOnce, date(2024, time.January, 10), nil)

	next, err := Upcoming(m, date(2024, time.January, 1), 5)
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, time.Date(2024, time.January, 10, 9, 0, 0, 0, time.Local), next[0])

	none, err := Upcoming(m, date(2024, time.February, 1), 5)
	require.NoError(t, err)
	assert.Empty(t, none, "one-off in the past has no upcoming occurrence")
}
