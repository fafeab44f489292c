// Package clock supplies the timestamps stamped on ledger activity and
// payouts.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem returns the wall clock in UTC.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

type fixedClock struct {
	now time.Time
}

// NewFixed returns a clock stopped at t.
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t.UTC()}
}

func (f fixedClock) Now() time.Time {
	return f.now
}

// Truncated wraps c so every reading is truncated to d. Postgres stores
// microseconds, so activity read back compares equal to what was written.
func Truncated(c Clock, d time.Duration) Clock {
	return truncatedClock{inner: c, d: d}
}

type truncatedClock struct {
	inner Clock
	d     time.Duration
}

func (c truncatedClock) Now() time.Time {
	return c.inner.Now().Truncate(c.d)
}
