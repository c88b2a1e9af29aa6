// Package datemath evaluates relative time expressions like "NOW/d-7d"
// into absolute UTC instants.
//
// An expression has up to three parts:
//
//   BASE [/UNIT] [(+|-)N UNIT]
//
// BASE is NOW or an ISO 8601 date or date-time, e.g. 2014-02-12 or
// 2014-02-12T10:33:24.123Z. The optional rounding clause floors the base
// to the start of the unit (see ptime.Floor). The optional offset clause
// adds or subtracts a whole number of units.
//
// UNIT is a unit word (year, month, week, day, hour, minute, second),
// optionally plural, or a single letter code (y, n, w, d, h, m, s).
// Everything is case-insensitive.
//
// Examples:
//
//   NOW/d-7d            midnight UTC seven days ago
//   NOW-15minutes       fifteen minutes ago
//   2014-02-12/month+1n 2014-03-01T00:00:00Z
package datemath

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors" // Wrap errors with context.

	ptime "github.com/mintel/timebucket/pkg/time"
)

const (
	nowExpr     = "NOW"
	iso8601Date = `\d{4}-[01]\d-[0-3]\d(?:T[0-2]\d:[0-5]\d(?::[0-5]\d(?:\.\d{1,3})?)?)?Z?`
	unitExpr    = `(?:YEAR|MONTH|WEEK|DAY|HOUR|MINUTE|SECOND)S?|[YNWDHMS]`
)

var expression = regexp.MustCompile(`(?i)^` +
	`(?P<base>` + nowExpr + `|` + iso8601Date + `)` +
	`(?:/(?P<round>` + unitExpr + `))?` +
	`(?:(?P<sign>[+-])(?P<magnitude>\d+)(?P<units>` + unitExpr + `))?$`)

// Layouts of the ISO 8601 base, after the optional Z is removed.
// time.Parse accepts fractional seconds after the seconds field.
var isoLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Evaluator evaluates expressions against a Clock.
// The zero value uses SystemClock.
type Evaluator struct {
	Clock Clock
}

// NewEvaluator returns a new Evaluator reading the time from clock.
func NewEvaluator(clock Clock) *Evaluator {
	return &Evaluator{Clock: clock}
}

var defaultEvaluator = &Evaluator{}

// Evaluate evaluates an expression with SystemClock.
func Evaluate(s string) (time.Time, error) {
	return defaultEvaluator.Evaluate(s)
}

// TryEvaluate evaluates an expression with SystemClock,
// reporting failure with a bool.
func TryEvaluate(s string) (time.Time, bool) {
	return defaultEvaluator.TryEvaluate(s)
}

// TryEvaluate is like Evaluate, but reports failure with a bool.
func (e *Evaluator) TryEvaluate(s string) (time.Time, bool) {
	t, err := e.Evaluate(s)
	return t, err == nil
}

// Evaluate evaluates an expression into a UTC instant.
// Errors wrap ptime.ErrEmpty if s is empty, and ptime.ErrFormat otherwise.
func (e *Evaluator) Evaluate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.Wrap(ptime.ErrEmpty, "cannot evaluate a blank expression")
	}
	m := expression.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, errors.Wrapf(ptime.ErrFormat, "invalid date math expression '%s'", s)
	}
	groups := make(map[string]string, len(m))
	for i, name := range expression.SubexpNames() {
		if name != "" {
			groups[name] = m[i]
		}
	}

	t, err := e.base(groups["base"])
	if err != nil {
		return time.Time{}, err
	}

	if r := groups["round"]; r != "" {
		u, err := parseUnit(r)
		if err != nil {
			return time.Time{}, err
		}
		t = ptime.Floor(t, u)
	}

	if mag := groups["magnitude"]; mag != "" {
		n, err := strconv.Atoi(mag)
		if err != nil {
			return time.Time{}, errors.Wrapf(ptime.ErrFormat, "bad offset '%s': %v", mag, err)
		}
		if groups["sign"] == "-" {
			n = -n
		}
		u, err := parseUnit(groups["units"])
		if err != nil {
			return time.Time{}, err
		}
		t = ptime.NewDuration(float64(n), u).AddTo(t)
	}

	return t, nil
}

func (e *Evaluator) now() time.Time {
	if e == nil || e.Clock == nil {
		return SystemClock.Now()
	}
	return e.Clock.Now()
}

func (e *Evaluator) base(s string) (time.Time, error) {
	if strings.EqualFold(s, nowExpr) {
		return ptime.UTC(e.now()), nil
	}
	v := strings.TrimSuffix(strings.ToUpper(s), "Z")
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return ptime.UTC(t), nil
		}
	}
	return time.Time{}, errors.Wrapf(ptime.ErrFormat, "invalid date '%s'", s)
}

func parseUnit(s string) (ptime.Unit, error) {
	if len(s) == 1 {
		return ptime.ParseUnitCode(s)
	}
	return ptime.ParseUnit(s)
}
