package core

import (
	"time"
)

// Clock supplies the current time. Services take a Clock so tests can pin dates.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns the current UTC time
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant
type FixedClock time.Time

// Now returns the fixed instant
func (c FixedClock) Now() time.Time { return time.Time(c) }

// DateLayout is the calendar-date layout used for scheduling windows and announcements
const DateLayout = "2006-01-02"
