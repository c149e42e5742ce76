// Package shift resolves clock-in instants against configured shift windows.
// Windows are time-of-day ranges with no date component; a window whose start
// is not before its end wraps past midnight.
package shift

import (
	"fmt"
	"time"
)

// Window is a configured shift window as stored by the administrator.
type Window struct {
	ID    string
	Name  string
	Start string // "HH:MM"
	End   string // "HH:MM"
}

// Resolve maps an instant to the shift window covering it. The instant's
// wall-clock fields are read directly, so callers must pass a time already in
// the employee's local timezone.
//
// A same-day window (start < end) covers start <= t < end. A wrapping window
// (start >= end) covers t >= start or t < end. The first matching window in
// input order wins. When no window matches, the first configured window is
// returned as a fallback; only an empty list resolves to nil. Windows with
// unparseable bounds never match but stay eligible as the fallback.
func Resolve(t time.Time, windows []Window) *Window {
	if len(windows) == 0 {
		return nil
	}

	minutes := t.Hour()*60 + t.Minute()

	for i := range windows {
		start, err := parseMinutes(windows[i].Start)
		if err != nil {
			continue
		}
		end, err := parseMinutes(windows[i].End)
		if err != nil {
			continue
		}

		if start < end {
			if minutes >= start && minutes < end {
				return &windows[i]
			}
			continue
		}
		if minutes >= start || minutes < end {
			return &windows[i]
		}
	}

	return &windows[0]
}

// ParseMinutes converts an "HH:MM" bound to minutes since midnight. Exposed
// so shift configuration can validate bounds before storing them.
func ParseMinutes(value string) (int, error) {
	return parseMinutes(value)
}

func parseMinutes(value string) (int, error) {
	var hours, mins int
	if _, err := fmt.Sscanf(value, "%d:%d", &hours, &mins); err != nil {
		return 0, fmt.Errorf("shift: invalid time-of-day %q: %w", value, err)
	}
	if hours < 0 || hours > 23 || mins < 0 || mins > 59 {
		return 0, fmt.Errorf("shift: time-of-day %q out of range", value)
	}
	return hours*60 + mins, nil
}
