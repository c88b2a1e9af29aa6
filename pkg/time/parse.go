package time

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors" // Wrap errors with context.
)

const (
	// ISO 8601 duration string part regexp pattern.
	iso8601Group = `(?P<%s>\d+(?:[,.]\d+)?)%s`

	// ISO 8601 duration string regexp group names.
	iso8601GroupYears   = "Y"
	iso8601GroupMonths  = "m"
	iso8601GroupWeeks   = "W"
	iso8601GroupDays    = "d"
	iso8601GroupHours   = "H"
	iso8601GroupMinutes = "M"
	iso8601GroupSeconds = "S"
)

// Only durations with a single designator can be represented as a Duration.
var iso8601Duration = regexp.MustCompile(fmt.Sprintf(`^(?P<sign>[+-])?P(?:%s|%s|%s|%s|T(?:%s|%s|%s))$`,
	fmt.Sprintf(iso8601Group, iso8601GroupYears, "Y"),
	fmt.Sprintf(iso8601Group, iso8601GroupMonths, "M"),
	fmt.Sprintf(iso8601Group, iso8601GroupWeeks, "W"),
	fmt.Sprintf(iso8601Group, iso8601GroupDays, "D"),
	fmt.Sprintf(iso8601Group, iso8601GroupHours, "H"),
	fmt.Sprintf(iso8601Group, iso8601GroupMinutes, "M"),
	fmt.Sprintf(iso8601Group, iso8601GroupSeconds, "S"),
))

var iso8601Units = map[string]Unit{
	iso8601GroupYears:   Years,
	iso8601GroupMonths:  Months,
	iso8601GroupWeeks:   Weeks,
	iso8601GroupDays:    Days,
	iso8601GroupHours:   Hours,
	iso8601GroupMinutes: Minutes,
	iso8601GroupSeconds: Seconds,
}

// ParseISO8601 parses an ISO 8601 duration with a single designator,
// e.g. "P1M", "PT15M" or "-P7D", into a Duration with the matching unit.
// Compound durations like "P1DT12H" are rejected since they don't
// map onto a single unit.
//
// See: https://en.wikipedia.org/wiki/ISO_8601#Durations
func ParseISO8601(s string) (Duration, error) {
	if s == "" {
		return Duration{}, errors.Wrap(ErrEmpty, "cannot parse a blank string as a duration")
	}
	matches := iso8601Duration.FindStringSubmatch(strings.ToUpper(s))
	if matches == nil {
		return Duration{}, errors.Wrapf(ErrFormat, "'%s' is not a single unit ISO 8601 duration", s)
	}
	var sign float64 = 1
	for i, group := range iso8601Duration.SubexpNames() {
		match := matches[i]
		if i == 0 || match == "" {
			continue
		}
		if group == "sign" {
			if match == "-" {
				sign = -1
			}
			continue
		}
		n, err := strconv.ParseFloat(strings.Replace(match, ",", ".", 1), 64) // Convert comma decimal separator to period.
		if err != nil {
			return Duration{}, errors.Wrapf(ErrFormat, "failed to parse %s value '%s': %v", group, match, err)
		}
		return Duration{Magnitude: sign * n, Unit: iso8601Units[group]}, nil
	}
	return Duration{}, errors.Wrapf(ErrFormat, "'%s' is not a single unit ISO 8601 duration", s)
}

// ParseAny parses s with Parse, falling back to ParseISO8601.
func ParseAny(s string) (Duration, error) {
	d, err := Parse(s)
	if err == nil {
		return d, nil
	}
	if d, isoErr := ParseISO8601(s); isoErr == nil {
		return d, nil
	}
	return Duration{}, err
}
