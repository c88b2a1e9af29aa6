package window

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintel/timebucket/pkg/datemath"
	ptime "github.com/mintel/timebucket/pkg/time"
)

func date(y int, mo time.Month, d, h, mi int) time.Time {
	return time.Date(y, mo, d, h, mi, 0, 0, time.UTC)
}

func TestWindow_bounds(t *testing.T) {
	start, end := date(2014, time.February, 12, 0, 0), date(2014, time.February, 13, 0, 0)

	w := New(start, end)
	s, ok := w.Start()
	assert.True(t, ok)
	assert.Equal(t, start, s)
	e, ok := w.End()
	assert.True(t, ok)
	assert.Equal(t, end, e)

	_, ok = From(start).End()
	assert.False(t, ok)
	_, ok = Until(end).Start()
	assert.False(t, ok)
	assert.Equal(t, Window{}, Unbounded())

	_, _, err := From(start).Bounds()
	assert.True(t, errors.Is(err, ErrUnbounded))
}

func TestWindow_Equal(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	a := New(date(2014, time.February, 12, 5, 0), date(2014, time.February, 12, 6, 0))
	b := New(time.Date(2014, time.February, 12, 0, 0, 0, 0, est), time.Date(2014, time.February, 12, 1, 0, 0, 0, est))
	assert.True(t, a.Equal(b))
	assert.True(t, a == b, "normalized windows should be comparable with ==")
	assert.False(t, a.Equal(From(date(2014, time.February, 12, 5, 0))))
}

func TestWindow_Contains(t *testing.T) {
	start, end := date(2014, time.February, 12, 0, 0), date(2014, time.February, 13, 0, 0)
	w := New(start, end)
	assert.True(t, w.Contains(start))
	assert.True(t, w.Contains(end.Add(-time.Nanosecond)))
	assert.False(t, w.Contains(end))
	assert.False(t, w.Contains(start.Add(-time.Nanosecond)))
	assert.True(t, From(start).Contains(end.AddDate(100, 0, 0)))
	assert.True(t, Until(end).Contains(start.AddDate(-100, 0, 0)))
	assert.True(t, Unbounded().Contains(start))
}

func TestWindow_IsEmpty(t *testing.T) {
	start := date(2014, time.February, 12, 0, 0)
	assert.True(t, New(start, start).IsEmpty())
	assert.False(t, New(start, start.Add(time.Second)).IsEmpty())
	assert.False(t, From(start).IsEmpty())
}

func TestWindow_AddSub(t *testing.T) {
	w := New(date(2014, time.January, 31, 0, 0), date(2014, time.February, 1, 0, 0))
	assert.Equal(t,
		New(date(2014, time.February, 1, 0, 0), date(2014, time.February, 2, 0, 0)),
		w.Add(ptime.MustParse("1d")),
	)
	assert.Equal(t,
		New(date(2013, time.December, 31, 0, 0), date(2014, time.January, 1, 0, 0)),
		w.Sub(ptime.MustParse("1n")),
	)
	open := From(date(2014, time.January, 31, 0, 0)).Add(ptime.MustParse("2h"))
	s, _ := open.Start()
	assert.Equal(t, date(2014, time.January, 31, 2, 0), s)
	_, ok := open.End()
	assert.False(t, ok, "missing bound should stay missing")
}

func TestWindow_String(t *testing.T) {
	start, end := date(2014, time.February, 12, 0, 0), date(2014, time.February, 12, 1, 30)
	assert.Equal(t, "[2014-02-12T00:00:00 TO 2014-02-12T01:30:00]", New(start, end).String())
	assert.Equal(t, "[2014-02-12T00:00:00 TO *]", From(start).String())
	assert.Equal(t, "[* TO *]", Unbounded().String())
}

func TestWindow_JSON(t *testing.T) {
	w := From(date(2014, time.February, 12, 0, 0))
	b, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2014-02-12T00:00:00Z","end":null}`, string(b))

	var got Window
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, w, got)
}

func TestParse(t *testing.T) {
	e := datemath.NewEvaluator(datemath.FixedClock(time.Date(2014, time.February, 12, 10, 33, 0, 0, time.UTC)))
	testCases := []struct {
		desc string
		in   string
		want Window
	}{
		{
			desc: "relative",
			in:   "[NOW/d-7d TO NOW/d]",
			want: New(date(2014, time.February, 5, 0, 0), date(2014, time.February, 12, 0, 0)),
		},
		{
			desc: "absolute",
			in:   "[2014-02-12T00:00:00 TO 2014-02-12T01:00:00Z]",
			want: New(date(2014, time.February, 12, 0, 0), date(2014, time.February, 12, 1, 0)),
		},
		{
			desc: "open_end",
			in:   "[2014-02-12 to *]",
			want: From(date(2014, time.February, 12, 0, 0)),
		},
		{
			desc: "open_start",
			in:   "[* TO NOW]",
			want: Until(date(2014, time.February, 12, 10, 33)),
		},
		{
			desc: "open",
			in:   "[* TO *]",
			want: Unbounded(),
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			got, err := ParseWith(e, tC.in)
			if assert.NoError(t, err) {
				assert.Equal(t, tC.want, got)
			}
		})
	}
}

func TestParseWith_readsClockOnce(t *testing.T) {
	now := date(2014, time.February, 12, 10, 33)
	reads := 0
	clock := datemath.ClockFunc(func() time.Time {
		reads++
		return now.Add(time.Duration(reads) * time.Second)
	})

	got, err := ParseWith(datemath.NewEvaluator(clock), "[NOW-1h TO NOW]")
	require.NoError(t, err)
	assert.Equal(t, 1, reads)
	assert.Equal(t, New(now.Add(time.Second-time.Hour), now.Add(time.Second)), got)

	// Literals without NOW still read it once.
	_, err = ParseWith(datemath.NewEvaluator(clock), "[2014-02-12 TO *]")
	require.NoError(t, err)
	assert.Equal(t, 2, reads)

	w, err := Parse("[NOW-1h TO NOW]")
	require.NoError(t, err)
	start, end, err := w.Bounds()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, end.Sub(start))
}

func TestParse_errors(t *testing.T) {
	testCases := []struct {
		desc string
		in   string
		want error
	}{
		{desc: "empty", in: "", want: ptime.ErrEmpty},
		{desc: "no_brackets", in: "NOW TO NOW", want: ptime.ErrFormat},
		{desc: "no_to", in: "[NOW NOW]", want: ptime.ErrFormat},
		{desc: "bad_bound", in: "[NOW TO tomorrow]", want: ptime.ErrFormat},
		{desc: "bad_start", in: "[2014-13-01 TO *]", want: ptime.ErrFormat},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			_, err := Parse(tC.in)
			assert.True(t, errors.Is(err, tC.want), "got error %v", err)
			_, ok := TryParse(tC.in)
			assert.False(t, ok)
		})
	}
}

func TestParse_roundTrip(t *testing.T) {
	for _, w := range []Window{
		New(date(2014, time.February, 12, 0, 0), date(2014, time.February, 12, 1, 0)),
		From(date(1969, time.July, 20, 20, 17)),
		Until(date(2038, time.January, 19, 3, 14)),
		Unbounded(),
	} {
		got, err := Parse(w.String())
		if assert.NoError(t, err, w.String()) {
			assert.Equal(t, w, got)
		}
	}
}
