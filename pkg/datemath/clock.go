package datemath

import "time"

// Clock tells the time. It's read once per evaluation of a "NOW" expression.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a func to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the Clock backed by time.Now.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock returns a Clock that always returns t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}
