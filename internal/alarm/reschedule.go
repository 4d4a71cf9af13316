package alarm

import (
	"time"

	"github.com/noirlang/medremind/internal/models"
)

// ResolveTrigger combines a scheduled date and time-of-day into the instant
// the timer should fire. A candidate already in the past (for example when
// rearming after a restart) is pushed to the next calendar day at the same
// time rather than dropped or fired immediately.
//
// The returned effective date is what feeds IdentityFor, keeping the identity
// consistent with the instant actually armed.
func ResolveTrigger(date time.Time, tod models.TimeOfDay, now time.Time) (effectiveDate, trigger time.Time) {
	candidate := tod.At(models.DateOf(date))
	if candidate.Before(now) {
		next := candidate.AddDate(0, 0, 1)
		return models.DateOf(next), next
	}
	return models.DateOf(candidate), candidate
}
