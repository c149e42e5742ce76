package timeutil

import (
	"math"
	"time"
)

// ElapsedMinutes returns the whole minutes between start and end, rounded to
// the nearest minute with halves rounding up. Callers closing an entry must
// reject intervals where end is not strictly after start before recording the
// result; this function does not clamp.
func ElapsedMinutes(start, end time.Time) int {
	ms := end.Sub(start).Milliseconds()
	return int(math.Round(float64(ms) / 60000.0))
}
