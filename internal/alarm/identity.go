// Package alarm derives stable per-occurrence timer identities and resolves
// the actual trigger instants handed to the wake-up timer.
package alarm

import (
	"time"
)

// identitySpan spaces medication ids far enough apart that day-of-year
// (1..366) never bleeds into a neighbouring medication's range.
const identitySpan = 10000

// IdentityFor derives the timer identity for one medication occurrence:
//
//	identity = medicationID*10000 + dayOfYear(date)
//
// Pure and reproducible, so a cancel computed later from the same inputs is
// guaranteed to match the identity used when arming. Within one year the
// identity is unique per (medication, day); across years it recycles, which
// is acceptable because alarms are armed at most one occurrence ahead.
func IdentityFor(medicationID int, date time.Time) int32 {
	return int32(medicationID)*identitySpan + int32(date.YearDay())
}
