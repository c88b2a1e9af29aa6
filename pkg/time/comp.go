package time

import "time"

// Within returns true if t is in the half-open interval [start, end).
func Within(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
