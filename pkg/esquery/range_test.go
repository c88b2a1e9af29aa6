package esquery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson" // Query JSON.

	"github.com/mintel/timebucket/pkg/window"
)

func TestRangeQuery(t *testing.T) {
	start := time.Date(2014, time.February, 12, 10, 0, 0, 0, time.UTC)
	end := time.Date(2014, time.February, 12, 10, 15, 0, 0, time.UTC)

	testCases := []struct {
		desc     string
		w        window.Window
		from, to string
	}{
		{desc: "bounded", w: window.New(start, end), from: "2014-02-12T10:00:00Z", to: "2014-02-12T10:15:00Z"},
		{desc: "open_end", w: window.From(start), from: "2014-02-12T10:00:00Z"},
		{desc: "open_start", w: window.Until(end), to: "2014-02-12T10:15:00Z"},
		{desc: "unbounded", w: window.Unbounded()},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			src, err := RangeQuery("timestamp", tC.w).Source()
			require.NoError(t, err)
			b := mustJSON(t, src)
			r := gjson.GetBytes(b, "range.timestamp")
			require.True(t, r.Exists(), string(b))

			assert.Equal(t, DateFormat, r.Get("format").String())
			if tC.from != "" {
				assert.Equal(t, tC.from, r.Get("from").String())
				assert.True(t, r.Get("include_lower").Bool())
			} else {
				assert.Equal(t, gjson.Null, r.Get("from").Type)
			}
			if tC.to != "" {
				assert.Equal(t, tC.to, r.Get("to").String())
				assert.False(t, r.Get("include_upper").Bool())
			} else {
				assert.Equal(t, gjson.Null, r.Get("to").Type)
			}
		})
	}
}
