package window

import (
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors" // Wrap errors with context.

	ptime "github.com/mintel/timebucket/pkg/time"
)

// EdgeMode determines what Between does where the start and end
// of the requested interval don't line up with bucket boundaries.
type EdgeMode int

const (
	// Shrink only returns buckets wholly within the requested interval.
	// Parts of the interval at the edges may be left uncovered.
	Shrink EdgeMode = iota

	// Grow adds one bucket of the smallest granularity at either edge
	// if needed, so the buckets cover the whole interval but may
	// extend past it.
	Grow
)

// String returns "shrink" or "grow".
func (m EdgeMode) String() string {
	switch m {
	case Shrink:
		return "shrink"
	case Grow:
		return "grow"
	}
	return "invalid"
}

// ParseEdgeMode parses "shrink" or "grow" (case-insensitive).
func ParseEdgeMode(s string) (EdgeMode, error) {
	switch strings.ToLower(s) {
	case "shrink", "":
		return Shrink, nil
	case "grow":
		return Grow, nil
	}
	return Shrink, errors.Wrapf(ptime.ErrFormat, "'%s' is not an edge mode, specify one of [shrink, grow]", s)
}

// Between returns chronologically ordered, non-overlapping buckets between
// start and end.
//
// Buckets are as large as possible: the largest granularity is used wherever
// it fits, and smaller ones fill the gaps at either side. The order of
// granularities doesn't matter. Each granularity must be one of the sizes
// returned by Granularities.
//
// If start >= end, or there are no granularities, the result is empty.
func Between(start, end time.Time, granularities []ptime.Duration, mode EdgeMode) ([]Window, error) {
	start, end = ptime.UTC(start), ptime.UTC(end)
	out := []Window{}
	if !start.Before(end) || len(granularities) == 0 {
		return out, nil
	}

	gs := make([]Granularity, len(granularities))
	for i, d := range granularities {
		g, err := GranularityOf(d)
		if err != nil {
			return nil, err
		}
		gs[i] = g
	}
	sort.SliceStable(gs, func(i, j int) bool {
		return ptime.Compare(gs[i].Duration(), gs[j].Duration()) > 0
	})

	out, err := tile(start, end, gs, out)
	if err != nil {
		return nil, err
	}

	if mode == Grow {
		smallest := gs[len(gs)-1]
		if len(out) == 0 || out[0].start.After(start) {
			// Nothing fit, or the first bucket starts too late.
			first, err := smallest.Find(start)
			if err != nil {
				return nil, err
			}
			out = append([]Window{first}, out...)
		}
		if last := out[len(out)-1]; last.end.Before(end) {
			// The last bucket ends too early.
			final, err := smallest.Find(end)
			if err != nil {
				return nil, err
			}
			out = append(out, final)
		}
	}

	return out, nil
}

// ErrTooManyWindows is returned by BetweenMax when the result could
// hold more windows than allowed.
var ErrTooManyWindows = errors.New("too many windows")

// MaxCount returns an upper bound on the number of windows Between returns
// for start, end and granularities, without building them.
//
// Every window is at least as long as the shortest possible bucket of the
// smallest granularity (28 days for a month, 365 for a year), and Grow adds
// at most one window at each edge.
func MaxCount(start, end time.Time, granularities []ptime.Duration) (int64, error) {
	start, end = ptime.UTC(start), ptime.UTC(end)
	if !start.Before(end) || len(granularities) == 0 {
		return 0, nil
	}
	var shortest time.Duration
	for _, d := range granularities {
		g, err := GranularityOf(d)
		if err != nil {
			return 0, err
		}
		if l := g.minLength(); shortest == 0 || l < shortest {
			shortest = l
		}
	}
	// Whole seconds, so spans of centuries don't overflow a time.Duration.
	span := ptime.UnixSeconds(end) - ptime.UnixSeconds(start) + 1
	size := int64(shortest / time.Second)
	return (span+size-1)/size + 2, nil
}

// BetweenMax is like Between, but returns ErrTooManyWindows instead of
// building the windows if there could be more than max of them.
// If max <= 0 there is no limit.
func BetweenMax(start, end time.Time, granularities []ptime.Duration, mode EdgeMode, max int64) ([]Window, error) {
	if max > 0 {
		n, err := MaxCount(start, end, granularities)
		if err != nil {
			return nil, err
		}
		if n > max {
			return nil, errors.Wrapf(ErrTooManyWindows, "up to %d windows between %s and %s, the limit is %d",
				n, start.Format(stringFormat), end.Format(stringFormat), max)
		}
	}
	return Between(start, end, granularities, mode)
}

// Split is like Between, using the bounds of w.
// It returns ErrUnbounded if either bound of w is missing.
func Split(w Window, granularities []ptime.Duration, mode EdgeMode) ([]Window, error) {
	start, end, err := w.Bounds()
	if err != nil {
		return nil, err
	}
	return Between(start, end, granularities, mode)
}

// tile appends buckets between from and to to out, using gs[0] wherever it
// fits and recursing with the smaller granularities gs[1:] to fill the gaps
// before and after. gs must be sorted largest first.
func tile(from, to time.Time, gs []Granularity, out []Window) ([]Window, error) {
	if len(gs) == 0 || !from.Before(to) {
		return out, nil
	}
	g := gs[0]

	w, err := g.Find(from)
	if err != nil {
		return nil, err
	}
	if w.start.Before(from) {
		if w.end.After(to) {
			// This granularity is too large to fit anywhere in the interval.
			return tile(from, to, gs[1:], out)
		}
		// Fill the gap before the first aligned bucket with smaller buckets.
		w = g.next(w)
		if out, err = tile(from, w.start, gs[1:], out); err != nil {
			return nil, err
		}
	}

	// Append buckets of this size until no more fit.
	for !w.end.After(to) {
		out = append(out, w)
		w = g.next(w)
	}

	// Fill the gap after the last bucket with smaller buckets.
	return tile(w.start, to, gs[1:], out)
}
