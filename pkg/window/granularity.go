package window

import (
	"strings"
	"time"

	"github.com/pkg/errors" // Wrap errors with context.

	ptime "github.com/mintel/timebucket/pkg/time"
)

// ErrUnsupportedGranularity is returned when a bucket size isn't one of
// the sizes returned by Granularities.
var ErrUnsupportedGranularity = errors.New("unsupported granularity")

// Granularity is a supported bucket size.
type Granularity int

// Supported bucket sizes. Sub-day sizes are aligned to multiples of their
// length since the Unix epoch. Days and larger are aligned with ptime.Floor.
const (
	_ Granularity = iota
	Minute
	FiveMinutes
	FifteenMinutes
	Hour
	FourHours
	EightHours
	Day
	Week
	Month
	Year
)

var granularityTable = [...]struct {
	d     ptime.Duration
	fixed time.Duration // Zero for calendar-aligned granularities.
}{
	Minute:         {ptime.Duration{Magnitude: 1, Unit: ptime.Minutes}, time.Minute},
	FiveMinutes:    {ptime.Duration{Magnitude: 5, Unit: ptime.Minutes}, 5 * time.Minute},
	FifteenMinutes: {ptime.Duration{Magnitude: 15, Unit: ptime.Minutes}, 15 * time.Minute},
	Hour:           {ptime.Duration{Magnitude: 1, Unit: ptime.Hours}, time.Hour},
	FourHours:      {ptime.Duration{Magnitude: 4, Unit: ptime.Hours}, 4 * time.Hour},
	EightHours:     {ptime.Duration{Magnitude: 8, Unit: ptime.Hours}, 8 * time.Hour},
	Day:            {ptime.Duration{Magnitude: 1, Unit: ptime.Days}, 0},
	Week:           {ptime.Duration{Magnitude: 1, Unit: ptime.Weeks}, 0},
	Month:          {ptime.Duration{Magnitude: 1, Unit: ptime.Months}, 0},
	Year:           {ptime.Duration{Magnitude: 1, Unit: ptime.Years}, 0},
}

// Granularities returns all supported granularities, smallest first.
func Granularities() []Granularity {
	out := make([]Granularity, 0, len(granularityTable)-1)
	for g := Minute; g <= Year; g++ {
		out = append(out, g)
	}
	return out
}

// GranularityOf returns the Granularity matching d exactly.
// 60 Minutes is not the same as 1 Hour, and is unsupported.
func GranularityOf(d ptime.Duration) (Granularity, error) {
	for _, g := range Granularities() {
		if granularityTable[g].d == d {
			return g, nil
		}
	}
	codes := make([]string, 0, len(granularityTable)-1)
	for _, g := range Granularities() {
		codes = append(codes, g.String())
	}
	return 0, errors.Wrapf(ErrUnsupportedGranularity, "'%s', valid values are: %s", d.Compact(), strings.Join(codes, ", "))
}

// Valid returns true if g is a supported granularity.
func (g Granularity) Valid() bool {
	return g >= Minute && g <= Year
}

// Duration returns the size of g.
func (g Granularity) Duration() ptime.Duration {
	if !g.Valid() {
		return ptime.Duration{}
	}
	return granularityTable[g].d
}

// String returns the compact form of g, e.g. "15m".
func (g Granularity) String() string {
	if !g.Valid() {
		return "invalid"
	}
	return g.Duration().Compact()
}

// Find returns the bucket of size g containing t.
func (g Granularity) Find(t time.Time) (Window, error) {
	if !g.Valid() {
		return Window{}, errors.Wrapf(ErrUnsupportedGranularity, "Granularity(%d)", int(g))
	}
	var start time.Time
	if fixed := granularityTable[g].fixed; fixed > 0 {
		var err error
		if start, err = ptime.Align(t, fixed); err != nil {
			return Window{}, err
		}
	} else {
		start = ptime.Floor(t, g.Duration().Unit)
	}
	return g.window(start), nil
}

// minLength returns the length of the shortest bucket of size g.
func (g Granularity) minLength() time.Duration {
	if fixed := granularityTable[g].fixed; fixed > 0 {
		return fixed
	}
	switch g.Duration().Unit {
	case ptime.Days:
		return ptime.Day
	case ptime.Weeks:
		return ptime.Week
	case ptime.Months:
		return 28 * ptime.Day
	}
	return 365 * ptime.Day
}

// window returns the bucket of size g starting at start.
func (g Granularity) window(start time.Time) Window {
	return New(start, g.Duration().AddTo(start))
}

// next returns the bucket of size g immediately after w.
func (g Granularity) next(w Window) Window {
	return g.window(w.end)
}

// Find returns the canonical bucket of size d that contains t.
// d must be one of the sizes returned by Granularities, otherwise
// ErrUnsupportedGranularity is returned.
func Find(t time.Time, d ptime.Duration) (Window, error) {
	g, err := GranularityOf(d)
	if err != nil {
		return Window{}, err
	}
	return g.Find(t)
}
