// Package time holds calendar-aware durations and alignment helpers
// used to bucket time series.
package time

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors" // Wrap errors with context.
)

const (
	// Day duration.
	Day = 24 * time.Hour

	// Week duration.
	Week = 7 * Day
)

var (
	shortDuration = regexp.MustCompile(`^(?P<magnitude>[+-]?\d+(?:\.\d+)?)(?P<units>[smhdwny])$`)
	longDuration  = regexp.MustCompile(`^(?P<magnitude>[+-]?\d+(?:\.\d+)?)\s*(?P<units>[a-z]+)$`)
)

// Duration is an amount of some calendar Unit, e.g. 15 minutes
// or -1 month. Magnitude may be negative or fractional.
//
// Two Durations are equal only if both the magnitude and unit match.
// 60 Minutes is not equal to 1 Hour.
type Duration struct {
	Magnitude float64
	Unit      Unit
}

// NewDuration returns a new Duration.
func NewDuration(magnitude float64, unit Unit) Duration {
	return Duration{Magnitude: magnitude, Unit: unit}
}

// Parse parses a Duration from either the short form ("15m", "-1n")
// or the long form ("15 minutes", "1 Month").
// Both forms are case-insensitive.
func Parse(s string) (Duration, error) {
	if s == "" {
		return Duration{}, errors.Wrap(ErrEmpty, "cannot parse a blank string as a duration")
	}
	v := strings.ToLower(s)
	if m := shortDuration.FindStringSubmatch(v); m != nil {
		u, err := ParseUnitCode(m[2])
		if err != nil {
			return Duration{}, err
		}
		return newParsedDuration(m[1], u)
	}
	if m := longDuration.FindStringSubmatch(v); m != nil {
		u, err := ParseUnit(m[2])
		if err != nil {
			return Duration{}, err
		}
		return newParsedDuration(m[1], u)
	}
	return Duration{}, errors.Wrapf(ErrFormat, "'%s' does not represent a duration", s)
}

func newParsedDuration(magnitude string, u Unit) (Duration, error) {
	f, err := strconv.ParseFloat(magnitude, 64)
	if err != nil {
		return Duration{}, errors.Wrapf(ErrFormat, "bad magnitude '%s': %v", magnitude, err)
	}
	return Duration{Magnitude: f, Unit: u}, nil
}

// TryParse is like Parse, but reports failure with a bool.
func TryParse(s string) (Duration, bool) {
	d, err := Parse(s)
	return d, err == nil
}

// MustParse is like Parse, but panics if there's an error.
func MustParse(s string) Duration {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// AddTo returns t plus d.
//
// Seconds through Weeks are added as a fixed length of time.
// Months and Years use calendar arithmetic (time.Time.AddDate) with
// the magnitude truncated to an integer. Like AddDate, days that overflow
// the target month are normalized, so Jan 31 + 1 month is Mar 3 (or Mar 2
// in a leap year).
func (d Duration) AddTo(t time.Time) time.Time {
	switch d.Unit {
	case Months:
		return t.AddDate(0, int(d.Magnitude), 0)
	case Years:
		return t.AddDate(int(d.Magnitude), 0, 0)
	}
	return t.Add(d.fixed())
}

// SubFrom returns t minus d.
func (d Duration) SubFrom(t time.Time) time.Time {
	return d.Neg().AddTo(t)
}

// Neg returns d with the sign of its magnitude flipped.
func (d Duration) Neg() Duration {
	return Duration{Magnitude: -d.Magnitude, Unit: d.Unit}
}

// Fixed converts d to a time.Duration. Months and Years have no
// fixed length and return ErrUnsupportedConversion.
func (d Duration) Fixed() (time.Duration, error) {
	if d.Unit == Months || d.Unit == Years || !d.Unit.Valid() {
		return 0, errors.Wrapf(ErrUnsupportedConversion, "cannot convert a duration in %s to a fixed length", d.Unit)
	}
	return d.fixed(), nil
}

func (d Duration) fixed() time.Duration {
	var base time.Duration
	switch d.Unit {
	case Seconds:
		base = time.Second
	case Minutes:
		base = time.Minute
	case Hours:
		base = time.Hour
	case Days:
		base = Day
	case Weeks:
		base = Week
	}
	return time.Duration(math.Round(d.Magnitude * float64(base)))
}

// Compare orders Durations by unit rank, and by magnitude only when the units match.
// It returns a negative number if a < b, zero if a == b, and a positive number if a > b.
//
// This isn't an ordering by length: 1 Minutes compares greater than 3600 Seconds.
// Magnitudes closer than 0.001 compare as equal.
func Compare(a, b Duration) int {
	if diff := int(a.Unit) - int(b.Unit); diff != 0 {
		return diff
	}
	return int((a.Magnitude - b.Magnitude) * 1000)
}

// String returns d in the long form, e.g. "15 Minutes".
func (d Duration) String() string {
	return formatMagnitude(d.Magnitude) + " " + d.Unit.String()
}

// Compact returns d in the short form, e.g. "15m" or "1n".
// Parse(d.Compact()) returns a Duration equal to d.
func (d Duration) Compact() string {
	return formatMagnitude(d.Magnitude) + d.Unit.Code()
}

func formatMagnitude(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
