package window

import (
	"regexp"
	"time"

	"github.com/pkg/errors" // Wrap errors with context.

	"github.com/mintel/timebucket/pkg/datemath"
	ptime "github.com/mintel/timebucket/pkg/time"
)

const unboundedExpr = "*"

var literal = regexp.MustCompile(`(?i)^\[(?P<start>[^ ]+) TO (?P<end>[^\]]+)\]$`)

// Parse parses a window literal like "[NOW/d-7d TO NOW/d]" or "[2014-02-12 TO *]".
// Each bound is either "*" (unbounded) or a datemath expression, evaluated
// with datemath.SystemClock.
func Parse(s string) (Window, error) {
	return ParseWith(nil, s)
}

// TryParse is like Parse, but reports failure with a bool.
func TryParse(s string) (Window, bool) {
	w, err := Parse(s)
	return w, err == nil
}

// ParseWith is like Parse, but evaluates bounds with e.
// If e is nil datemath.SystemClock is used. The clock is read
// once, so both bounds see the same NOW.
func ParseWith(e *datemath.Evaluator, s string) (Window, error) {
	if s == "" {
		return Window{}, errors.Wrap(ptime.ErrEmpty, "cannot parse a blank string as a window")
	}
	m := literal.FindStringSubmatch(s)
	if m == nil {
		return Window{}, errors.Wrapf(ptime.ErrFormat, "invalid window format '%s'", s)
	}
	clock := datemath.SystemClock
	if e != nil && e.Clock != nil {
		clock = e.Clock
	}
	e = datemath.NewEvaluator(datemath.FixedClock(clock.Now()))

	var w Window
	var err error
	if w.start, w.hasStart, err = parseBound(e, m[1]); err != nil {
		return Window{}, err
	}
	if w.end, w.hasEnd, err = parseBound(e, m[2]); err != nil {
		return Window{}, err
	}
	return w, nil
}

func parseBound(e *datemath.Evaluator, s string) (time.Time, bool, error) {
	if s == unboundedExpr {
		return time.Time{}, false, nil
	}
	t, err := e.Evaluate(s)
	if err != nil {
		return time.Time{}, false, errors.Wrap(err, "invalid window bound")
	}
	return t, true, nil
}
