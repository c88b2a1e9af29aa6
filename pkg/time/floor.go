package time

import "time"

// WeekAnchor is the first day of the week used by Floor.
const WeekAnchor = time.Monday

// UTC normalizes t to UTC and strips any monotonic clock reading,
// so normalized values can be compared with ==.
func UTC(t time.Time) time.Time {
	return t.Round(0).UTC()
}

// Floor rounds t (normalized to UTC) down to the start of the
// unit that contains it.
//
//   Floor(2014-02-12T10:33:24Z, Minutes) == 2014-02-12T10:33:00Z
//   Floor(2014-02-12T10:33:24Z, Weeks)   == 2014-02-10T00:00:00Z
//
// Weeks start at 00:00 on WeekAnchor. Floor never returns a time after t.
func Floor(t time.Time, u Unit) time.Time {
	t = UTC(t)
	y, mo, d := t.Date()
	switch u {
	case Seconds:
		return t.Truncate(time.Second)
	case Minutes:
		return time.Date(y, mo, d, t.Hour(), t.Minute(), 0, 0, time.UTC)
	case Hours:
		return time.Date(y, mo, d, t.Hour(), 0, 0, 0, time.UTC)
	case Days:
		return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	case Weeks:
		back := (int(t.Weekday()) - int(WeekAnchor) + 7) % 7
		return time.Date(y, mo, d-back, 0, 0, 0, 0, time.UTC)
	case Months:
		return time.Date(y, mo, 1, 0, 0, 0, 0, time.UTC)
	case Years:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}
