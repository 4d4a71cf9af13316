package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestIdentityForKnownValues(t *testing.T) {
	// 2024-03-01 is day 61 of a leap year.
	assert.Equal(t, int32(70061), IdentityFor(7, date(2024, time.March, 1)))
	assert.Equal(t, int32(10001), IdentityFor(1, date(2024, time.January, 1)))
	assert.Equal(t, int32(30366), IdentityFor(3, date(2024, time.December, 31)))
}

func TestIdentityForDeterminism(t *testing.T) {
	d := date(2024, time.June, 15)
	assert.Equal(t, IdentityFor(42, d), IdentityFor(42, d))
}

func TestIdentityForDistinctAcrossMedications(t *testing.T) {
	d := date(2024, time.June, 15)
	seen := make(map[int32]int)
	for id := 1; id <= 500; id++ {
		identity := IdentityFor(id, d)
		prev, dup := seen[identity]
		assert.False(t, dup, "medications %d and %d collide on %v", prev, id, identity)
		seen[identity] = id
	}
}

func TestIdentityForDistinctAcrossDaysOfYear(t *testing.T) {
	seen := make(map[int32]time.Time)
	for d := date(2024, time.January, 1); d.Year() == 2024; d = d.AddDate(0, 0, 1) {
		identity := IdentityFor(7, d)
		prev, dup := seen[identity]
		assert.False(t, dup, "days %s and %s collide on %v", prev, d, identity)
		seen[identity] = d
	}
	assert.Len(t, seen, 366)
}

func TestIdentityForIgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2024, time.June, 15, 8, 0, 0, 0, time.Local)
	evening := time.Date(2024, time.June, 15, 22, 30, 0, 0, time.Local)
	assert.Equal(t, IdentityFor(7, morning), IdentityFor(7, evening))
}
