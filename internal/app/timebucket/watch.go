package timebucket

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap" // Logging.

	"github.com/mintel/timebucket/pkg/ctxlog"     // Logger from context.
	ptime "github.com/mintel/timebucket/pkg/time" // Calendar durations.
	"github.com/mintel/timebucket/pkg/window"     // Window tiling.
)

// watch prints each bucket of the granularity flag as it closes,
// until ctx is canceled or the count flag is reached.
//
// Unlike the other commands, watch always follows the system
// clock and ignores --now.
func (app *App) watch(ctx context.Context) error {
	g, err := window.GranularityOf(app.flags.Watch.Granularity)
	if err != nil {
		return err
	}
	ticks, stop := app.newTicker(g)
	defer stop()

	logger := ctxlog.L(ctx)
	logger.Debug("watching for closed buckets", zap.Stringer("granularity", g))
	for n := 0; app.flags.Watch.Count <= 0 || n < app.flags.Watch.Count; n++ {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticks:
			// t is the end of the bucket that just closed.
			w, err := g.Find(t.Add(-time.Nanosecond))
			if err != nil {
				return err
			}
			app.observeWindows(1)
			fmt.Fprintln(app.Stdout, w)
		}
	}
	return nil
}

// newGranularityTicker ticks at the end of each bucket of size g.
// Sub-day buckets are multiples of their length since the Unix epoch,
// so they tick on aligned multiples. Larger ones tick at the end of
// each calendar bucket.
func newGranularityTicker(g window.Granularity) (<-chan time.Time, func()) {
	if d, err := g.Duration().Fixed(); err == nil && d < ptime.Day {
		at := ptime.NewAlignedTicker(d)
		return at.C, at.Stop
	}
	bt := ptime.NewBoundaryTicker(bucketEnd(g))
	return bt.C, bt.Stop
}

// bucketEnd returns a func returning the end of the bucket of size g
// containing its argument.
func bucketEnd(g window.Granularity) func(time.Time) time.Time {
	return func(t time.Time) time.Time {
		w, err := g.Find(t)
		if err != nil {
			return t
		}
		end, _ := w.End()
		return end
	}
}
