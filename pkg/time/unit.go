package time

import (
	"fmt"
	"strings"

	"github.com/pkg/errors" // Wrap errors with context.
)

// Unit is a calendar unit. Units are ordered by rank,
// not by length: Seconds < Minutes < ... < Years.
type Unit int

// Units in rank order.
const (
	Seconds Unit = iota
	Minutes
	Hours
	Days
	Weeks
	Months
	Years
)

var unitNames = [...]string{
	Seconds: "Seconds",
	Minutes: "Minutes",
	Hours:   "Hours",
	Days:    "Days",
	Weeks:   "Weeks",
	Months:  "Months",
	Years:   "Years",
}

// Months use "n" so they don't collide with minutes.
var unitCodes = [...]byte{
	Seconds: 's',
	Minutes: 'm',
	Hours:   'h',
	Days:    'd',
	Weeks:   'w',
	Months:  'n',
	Years:   'y',
}

// Units returns all units in rank order.
func Units() []Unit {
	return []Unit{Seconds, Minutes, Hours, Days, Weeks, Months, Years}
}

// Valid returns true if u is one of the defined units.
func (u Unit) Valid() bool {
	return u >= Seconds && u <= Years
}

// String returns the unit name, e.g. "Minutes".
func (u Unit) String() string {
	if !u.Valid() {
		return fmt.Sprintf("Unit(%d)", int(u))
	}
	return unitNames[u]
}

// Code returns the single letter code of the unit used by
// the compact Duration format.
func (u Unit) Code() string {
	if !u.Valid() {
		return "?"
	}
	return string(unitCodes[u])
}

// ParseUnit parses a unit word like "minute" or "Hours".
// Matching is case-insensitive and trailing "s" characters are ignored.
func ParseUnit(word string) (Unit, error) {
	w := strings.TrimRight(strings.ToLower(word), "s")
	for u, name := range unitNames {
		if w == strings.TrimSuffix(strings.ToLower(name), "s") {
			return Unit(u), nil
		}
	}
	return 0, errors.Wrapf(ErrFormat, "'%s' is not a valid unit, specify one of [seconds, minutes, hours, days, weeks, months, years]", word)
}

// ParseUnitCode parses a single letter unit code (s, m, h, d, w, n, y).
func ParseUnitCode(code string) (Unit, error) {
	c := strings.ToLower(code)
	if len(c) == 1 {
		for u, b := range unitCodes {
			if c[0] == b {
				return Unit(u), nil
			}
		}
	}
	return 0, errors.Wrapf(ErrFormat, "'%s' is not a valid unit code, specify one of [s, m, h, d, w, n, y]", code)
}
