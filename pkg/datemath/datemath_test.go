package datemath

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ptime "github.com/mintel/timebucket/pkg/time"
)

var now = time.Date(2014, time.February, 12, 10, 33, 24, 123000000, time.UTC)

func TestEvaluator_Evaluate(t *testing.T) {
	e := NewEvaluator(FixedClock(now))
	testCases := []struct {
		desc string
		in   string
		want time.Time
	}{
		{desc: "now", in: "NOW", want: now},
		{desc: "now_lower", in: "now", want: now},
		{desc: "round_day_minus_week", in: "NOW/d-7d", want: time.Date(2014, time.February, 5, 0, 0, 0, 0, time.UTC)},
		{desc: "round_word", in: "NOW/day", want: time.Date(2014, time.February, 12, 0, 0, 0, 0, time.UTC)},
		{desc: "round_plural", in: "NOW/HOURS", want: time.Date(2014, time.February, 12, 10, 0, 0, 0, time.UTC)},
		{desc: "round_week", in: "NOW/week", want: time.Date(2014, time.February, 10, 0, 0, 0, 0, time.UTC)},
		{desc: "round_month", in: "NOW/month", want: time.Date(2014, time.February, 1, 0, 0, 0, 0, time.UTC)},
		{desc: "round_year", in: "NOW/y", want: time.Date(2014, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{desc: "offset_minutes", in: "NOW-15minutes", want: now.Add(-15 * time.Minute)},
		{desc: "offset_code_minutes", in: "NOW+1m", want: now.Add(time.Minute)},
		{desc: "offset_months", in: "NOW/d-1month", want: time.Date(2014, time.January, 12, 0, 0, 0, 0, time.UTC)},
		{desc: "offset_months_code", in: "NOW/n+1n", want: time.Date(2014, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{desc: "date", in: "2014-02-12", want: time.Date(2014, time.February, 12, 0, 0, 0, 0, time.UTC)},
		{desc: "date_time_minutes", in: "2014-02-12T10:33", want: time.Date(2014, time.February, 12, 10, 33, 0, 0, time.UTC)},
		{desc: "date_time_z", in: "2014-02-12T10:33:24Z", want: time.Date(2014, time.February, 12, 10, 33, 24, 0, time.UTC)},
		{desc: "date_time_millis", in: "2014-02-12T10:33:24.5", want: time.Date(2014, time.February, 12, 10, 33, 24, 500000000, time.UTC)},
		{desc: "date_round_offset", in: "2014-02-12T10:33:24Z/hour+2h", want: time.Date(2014, time.February, 12, 12, 0, 0, 0, time.UTC)},
		{desc: "date_lower_t", in: "2014-02-12t10:33:24z", want: time.Date(2014, time.February, 12, 10, 33, 24, 0, time.UTC)},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			got, err := e.Evaluate(tC.in)
			require.NoError(t, err)
			assert.True(t, tC.want.Equal(got), "got %s, want %s", got, tC.want)
			assert.Equal(t, time.UTC, got.Location())

			got, ok := e.TryEvaluate(tC.in)
			assert.True(t, ok)
			assert.True(t, tC.want.Equal(got))
		})
	}
}

func TestEvaluator_Evaluate_errors(t *testing.T) {
	e := NewEvaluator(FixedClock(now))
	testCases := []struct {
		desc string
		in   string
		want error
	}{
		{desc: "empty", in: "", want: ptime.ErrEmpty},
		{desc: "garbage", in: "yesterday", want: ptime.ErrFormat},
		{desc: "bad_unit", in: "NOW/fortnight", want: ptime.ErrFormat},
		{desc: "fraction_offset", in: "NOW-1.5d", want: ptime.ErrFormat},
		{desc: "no_offset_unit", in: "NOW-7", want: ptime.ErrFormat},
		{desc: "bad_date", in: "2014-02-30", want: ptime.ErrFormat},
		{desc: "bad_hour", in: "2014-02-12T25:00", want: ptime.ErrFormat},
		{desc: "huge_offset", in: "NOW-99999999999999999999d", want: ptime.ErrFormat},
		{desc: "trailing_space", in: "NOW ", want: ptime.ErrFormat},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			got, err := e.Evaluate(tC.in)
			assert.True(t, errors.Is(err, tC.want), "got error %v", err)
			assert.True(t, got.IsZero(), "partial result returned")

			_, ok := e.TryEvaluate(tC.in)
			assert.False(t, ok)
		})
	}
}

func TestEvaluator_readsClockOnce(t *testing.T) {
	var calls int32
	e := NewEvaluator(ClockFunc(func() time.Time {
		atomic.AddInt32(&calls, 1)
		return now
	}))
	_, err := e.Evaluate("NOW/d-7d")
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	_, err = e.Evaluate("2014-02-12")
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "clock read for an absolute date")
}

func TestEvaluate_systemClock(t *testing.T) {
	before := time.Now().UTC()
	got, err := Evaluate("NOW/d-7d")
	after := time.Now().UTC()
	require.NoError(t, err)

	// The clock could tick over midnight between reads.
	lo := ptime.Floor(before, ptime.Days).AddDate(0, 0, -7)
	hi := ptime.Floor(after, ptime.Days).AddDate(0, 0, -7)
	assert.False(t, got.Before(lo))
	assert.False(t, got.After(hi))
	assert.Equal(t, got, ptime.Floor(got, ptime.Days))

	_, ok := TryEvaluate("NOW")
	assert.True(t, ok)

	var zero Evaluator
	_, err = zero.Evaluate("NOW")
	assert.NoError(t, err)
}

func TestEvaluator_normalizesZone(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	e := NewEvaluator(FixedClock(time.Date(2014, time.February, 11, 22, 0, 0, 0, est)))
	got, err := e.Evaluate("NOW/d")
	require.NoError(t, err)
	// 22:00 EST is 03:00 UTC the next day.
	assert.Equal(t, time.Date(2014, time.February, 12, 0, 0, 0, 0, time.UTC), got)
}
