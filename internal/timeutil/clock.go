package timeutil

import "time"

// DateLayout is the calendar-date format entries are attributed to.
const DateLayout = "2006-01-02"

// Clock supplies the current instant and derives the local calendar date an
// entry belongs to. Commands never call time.Now directly so tests can pin
// both the instant and the date deterministically.
type Clock interface {
	Now() time.Time
	LocalDate(t time.Time) string
}

// SystemClock is the production Clock, anchored to a configured timezone.
type SystemClock struct {
	loc *time.Location
}

// NewSystemClock returns a clock that resolves calendar dates in loc. A nil
// location falls back to time.Local.
func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = time.Local
	}
	return &SystemClock{loc: loc}
}

// Now returns the current instant, localized to the configured timezone so
// wall-clock fields (hour, minute) read as the employee's local time.
func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// LocalDate formats t as a calendar date in the clock's timezone.
func (c *SystemClock) LocalDate(t time.Time) string {
	return t.In(c.loc).Format(DateLayout)
}

// Location exposes the timezone the clock resolves dates in.
func (c *SystemClock) Location() *time.Location {
	return c.loc
}
