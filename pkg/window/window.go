// Package window tiles time intervals into calendar-aligned buckets.
//
// A Window is a half-open interval [start, end) where either bound may be
// missing. Find returns the canonical bucket of a given size containing an
// instant, and Between covers an interval with buckets of one or more sizes,
// using smaller buckets where larger ones don't line up with the edges:
//
//   start := time.Date(2014, 2, 10, 0, 0, 0, 0, time.UTC)
//   end := time.Date(2014, 2, 12, 13, 0, 0, 0, time.UTC)
//   ws, _ := window.Between(start, end, []ptime.Duration{
//       ptime.MustParse("1d"),
//       ptime.MustParse("1h"),
//   }, window.Shrink)
//   // 2 day-long windows followed by 13 hour-long windows.
//
// All instants are normalized to UTC.
package window

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors" // Wrap errors with context.

	ptime "github.com/mintel/timebucket/pkg/time"
)

// ErrUnbounded is returned when an operation needs both window bounds
// but one is missing.
var ErrUnbounded = errors.New("window is unbounded")

// stringFormat is used to render window bounds. Parse reads them back as UTC.
const stringFormat = "2006-01-02T15:04:05"

// Window is a time interval that includes its start and excludes its end.
// A missing bound means the window is open on that side.
// The zero Window is unbounded on both sides.
//
// Windows are comparable with ==.
type Window struct {
	start, end       time.Time
	hasStart, hasEnd bool
}

// New returns a new Window from start until end.
// Callers must ensure start <= end.
func New(start, end time.Time) Window {
	return Window{
		start:    ptime.UTC(start),
		end:      ptime.UTC(end),
		hasStart: true,
		hasEnd:   true,
	}
}

// From returns a Window starting at start with no end.
func From(start time.Time) Window {
	return Window{start: ptime.UTC(start), hasStart: true}
}

// Until returns a Window with no start, ending at end.
func Until(end time.Time) Window {
	return Window{end: ptime.UTC(end), hasEnd: true}
}

// Unbounded returns a Window open on both sides.
func Unbounded() Window {
	return Window{}
}

// Start returns the start of the window. ok is false if the window has no start.
func (w Window) Start() (t time.Time, ok bool) {
	return w.start, w.hasStart
}

// End returns the end of the window. ok is false if the window has no end.
func (w Window) End() (t time.Time, ok bool) {
	return w.end, w.hasEnd
}

// Bounds returns both bounds, or ErrUnbounded if either is missing.
func (w Window) Bounds() (start, end time.Time, err error) {
	if !w.hasStart || !w.hasEnd {
		return time.Time{}, time.Time{}, errors.Wrapf(ErrUnbounded, "%s", w)
	}
	return w.start, w.end, nil
}

// Equal returns true if both windows have the same bounds.
func (w Window) Equal(o Window) bool {
	return w.hasStart == o.hasStart && w.hasEnd == o.hasEnd &&
		w.start.Equal(o.start) && w.end.Equal(o.end)
}

// Contains returns true if t is in the window.
func (w Window) Contains(t time.Time) bool {
	if w.hasStart && w.hasEnd {
		return ptime.Within(t, w.start, w.end)
	}
	if w.hasStart && t.Before(w.start) {
		return false
	}
	if w.hasEnd && !t.Before(w.end) {
		return false
	}
	return true
}

// IsEmpty returns true if the window is bounded and contains no instants.
func (w Window) IsEmpty() bool {
	return w.hasStart && w.hasEnd && !w.start.Before(w.end)
}

// Add shifts both bounds of the window forward by d.
// Missing bounds stay missing.
func (w Window) Add(d ptime.Duration) Window {
	if w.hasStart {
		w.start = ptime.UTC(d.AddTo(w.start))
	}
	if w.hasEnd {
		w.end = ptime.UTC(d.AddTo(w.end))
	}
	return w
}

// Sub shifts both bounds of the window back by d.
func (w Window) Sub(d ptime.Duration) Window {
	return w.Add(d.Neg())
}

// String renders the window in the same format Parse reads,
// e.g. "[2014-02-12T00:00:00 TO *]".
func (w Window) String() string {
	return fmt.Sprintf("[%s TO %s]", formatBound(w.start, w.hasStart), formatBound(w.end, w.hasEnd))
}

func formatBound(t time.Time, ok bool) string {
	if !ok {
		return "*"
	}
	return t.Format(stringFormat)
}

type jsonWindow struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// MarshalJSON renders the window as an object with RFC 3339 "start" and "end" fields.
// Missing bounds are null.
func (w Window) MarshalJSON() ([]byte, error) {
	var jw jsonWindow
	if w.hasStart {
		s := w.start
		jw.Start = &s
	}
	if w.hasEnd {
		e := w.end
		jw.End = &e
	}
	return json.Marshal(jw)
}

// UnmarshalJSON reads the format written by MarshalJSON.
func (w *Window) UnmarshalJSON(b []byte) error {
	var jw jsonWindow
	if err := json.Unmarshal(b, &jw); err != nil {
		return err
	}
	*w = Window{}
	if jw.Start != nil {
		w.start, w.hasStart = ptime.UTC(*jw.Start), true
	}
	if jw.End != nil {
		w.end, w.hasEnd = ptime.UTC(*jw.End), true
	}
	return nil
}
