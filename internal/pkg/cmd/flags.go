package cmd

import (
	"strings"

	kingpin "gopkg.in/alecthomas/kingpin.v2" // Command line flag parsing.

	ptime "github.com/mintel/timebucket/pkg/time" // Calendar durations.
)

// Flagger defines command line flags and args.
// Examples: kingpin.Application and kingping.CmdClause.
type Flagger interface {
	Flag(name string, help string) *kingpin.FlagClause
	Arg(name string, help string) *kingpin.ArgClause
}

// Assert the Flagger interface matches the things
// it needs to match.
var (
	_ Flagger = (*kingpin.Application)(nil)
	_ Flagger = (*kingpin.CmdClause)(nil)
)

// durationList is a cumulative kingpin.Value of calendar durations
// like "15m", "1 day", or "PT1H".
type durationList []ptime.Duration

var _ kingpin.Value = (*durationList)(nil)

func (l *durationList) Set(s string) error {
	d, err := ptime.ParseAny(s)
	if err != nil {
		return err
	}
	*l = append(*l, d)
	return nil
}

func (l *durationList) String() string {
	ss := make([]string, len(*l))
	for i, d := range *l {
		ss[i] = d.Compact()
	}
	return strings.Join(ss, ",")
}

// IsCumulative lets the flag be repeated.
func (l *durationList) IsCumulative() bool {
	return true
}

// CalendarDurationListVar parses a repeatable flag or arg of calendar durations into target.
func CalendarDurationListVar(s kingpin.Settings, target *[]ptime.Duration) {
	s.SetValue((*durationList)(target))
}

// durationValue is a kingpin.Value of a single calendar duration.
type durationValue ptime.Duration

func (d *durationValue) Set(s string) error {
	v, err := ptime.ParseAny(s)
	if err != nil {
		return err
	}
	*d = durationValue(v)
	return nil
}

func (d *durationValue) String() string {
	return ptime.Duration(*d).Compact()
}

// CalendarDurationVar parses a flag or arg of a calendar duration into target.
func CalendarDurationVar(s kingpin.Settings, target *ptime.Duration) {
	s.SetValue((*durationValue)(target))
}
