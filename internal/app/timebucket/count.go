package timebucket

import (
	"context"
	"fmt"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.
	"go.uber.org/zap"                       // Logging.
	"gonum.org/v1/gonum/floats"             // Float slice helpers.
	"gonum.org/v1/gonum/stat"               // Statistics.

	"github.com/mintel/timebucket/internal/pkg/metrics" // Prometheus metrics tools.
	"github.com/mintel/timebucket/pkg/ctxlog"           // Logger from context.
	"github.com/mintel/timebucket/pkg/datemath"         // NOW/d-7d expressions.
	"github.com/mintel/timebucket/pkg/esquery"          // Elasticsearch bucketed counts.
)

// CountSummary describes the distribution of counts over windows.
type CountSummary struct {
	Windows int     `json:"windows"`
	Total   int64   `json:"total"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"stddev"`
}

// Summarize returns a summary of counts.
// Statistics that aren't defined for so few counts are zero.
func Summarize(counts []esquery.Count) CountSummary {
	s := CountSummary{Windows: len(counts)}
	if len(counts) == 0 {
		return s
	}
	x := make([]float64, len(counts))
	for i, c := range counts {
		x[i] = float64(c.Count)
		s.Total += c.Count
	}
	s.Min, s.Max = floats.Min(x), floats.Max(x)
	s.Mean = stat.Mean(x, nil)
	if len(x) > 1 {
		s.StdDev = stat.StdDev(x, nil)
	}
	return s
}

// runCount connects to Elasticsearch and runs count.
func (app *App) runCount(ctx context.Context, e *datemath.Evaluator) error {
	httpClient, err := app.instrumentedHTTPClient()
	if err != nil {
		return err
	}
	client, err := app.flags.Count.NewElasticsearchClient(ctx, httpClient)
	if err != nil {
		return err
	}
	return app.count(ctx, e, client)
}

// count prints the number of documents in each bucket of a window.
func (app *App) count(ctx context.Context, e *datemath.Evaluator, client *elastic.Client) error {
	f := &app.flags.Count
	ws, err := f.tile(e)
	if err != nil {
		return err
	}

	svc := esquery.NewCountService(client).
		Index(f.Index...).
		Field(f.Field).
		ChunkSize(f.ChunkSize).
		Concurrency(f.Concurrency)

	timer := metrics.NewVecTimer(app.inst.CountDuration)
	counts, err := svc.Do(ctx, ws)
	d := timer.ObserveErr(err)
	if err != nil {
		return err
	}
	ctxlog.L(ctx).Debug("counted documents",
		zap.Int("windows", len(ws)),
		zap.Duration("duration", d))
	app.observeWindows(len(counts))

	if f.JSON {
		if err := app.printJSON(counts); err != nil {
			return err
		}
		if f.Summary {
			return app.printJSON(Summarize(counts))
		}
		return nil
	}

	for _, c := range counts {
		fmt.Fprintf(app.Stdout, "%s\t%d\n", c.Window, c.Count)
	}
	if f.Summary {
		s := Summarize(counts)
		fmt.Fprintf(app.Stdout, "windows\t%d\ntotal\t%d\nmin\t%g\nmax\t%g\nmean\t%g\nstddev\t%g\n",
			s.Windows, s.Total, s.Min, s.Max, s.Mean, s.StdDev)
	}
	return nil
}
