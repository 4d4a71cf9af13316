package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/noirlang/medremind/internal/models"
)

// RFC 5545 bridge. The evaluator above is the source of truth for what is
// due; the RRULE form exists for calendar export and for previewing upcoming
// occurrences in listings.

var weekdayMap = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// Rule builds the RRULE equivalent of the medication's recurrence, anchored
// at the effective anchor date and scheduled time. One-off medications have
// no rule and return nil.
func Rule(med *models.Medication) (*rrule.RRule, error) {
	if err := med.Validate(); err != nil {
		return nil, err
	}
	if !med.IsRecurring() {
		return nil, nil
	}

	anchor := med.EffectiveAnchor()
	opt := rrule.ROption{
		Dtstart: med.ScheduledTime.At(anchor),
	}

	switch med.Recurrence {
	case models.RecurrenceDaily:
		opt.Freq = rrule.DAILY
	case models.RecurrenceWeekly:
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = []rrule.Weekday{weekdayMap[anchor.Weekday()]}
	case models.RecurrenceMonthly:
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday = []int{anchor.Day()}
	default:
		return nil, fmt.Errorf("%w: recurrence %q has no RRULE form", models.ErrMalformedSchedule, med.Recurrence)
	}

	return rrule.NewRRule(opt)
}

// RuleString returns the RFC 5545 RRULE text for a recurring medication, or
// the empty string for one-offs.
func RuleString(med *models.Medication) (string, error) {
	rule, err := Rule(med)
	if err != nil || rule == nil {
		return "", err
	}
	return rule.String(), nil
}

// Upcoming returns the next count occurrence instants strictly after the
// given time. One-off medications yield at most their single instant.
func Upcoming(med *models.Medication, after time.Time, count int) ([]time.Time, error) {
	rule, err := Rule(med)
	if err != nil {
		return nil, err
	}

	if rule == nil {
		at := med.ScheduledTime.At(models.DateOf(med.ScheduledDate))
		if at.After(after) {
			return []time.Time{at}, nil
		}
		return nil, nil
	}

	iterator := rule.Iterator()
	var results []time.Time
	for {
		next, ok := iterator()
		if !ok {
			break
		}
		if next.After(after) {
			results = append(results, next)
			if len(results) >= count {
				break
			}
		}
	}
	return results, nil
}
