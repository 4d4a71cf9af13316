// Package clock abstracts the current-time collaborator so that scheduling
// decisions can be tested against an injected time instead of the host clock.
package clock

import "time"

type Clock interface {
	// Now returns the current local date-time. A failure aborts only the
	// single scheduling operation that asked for the time.
	Now() (time.Time, error)
}

// System reads the host wall clock.
type System struct{}

func (System) Now() (time.Time, error) {
	return time.Now(), nil
}

// Fixed always reports the same instant. Test helper.
type Fixed struct {
	Time time.Time
}

func (f Fixed) Now() (time.Time, error) {
	return f.Time, nil
}
