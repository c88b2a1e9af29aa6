package timebucket

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	cache "github.com/patrickmn/go-cache"            // In-memory cache.
	"github.com/pkg/errors"                          // Wrap errors with context.
	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
	kingpin "gopkg.in/alecthomas/kingpin.v2"         // Command line flag parsing.

	"github.com/mintel/timebucket/internal/pkg/cmd"     // Common command line app tools.
	"github.com/mintel/timebucket/internal/pkg/metrics" // Prometheus metrics tools.
	"github.com/mintel/timebucket/pkg/ctxlog"           // Logger from context.
	"github.com/mintel/timebucket/pkg/datemath"         // NOW/d-7d expressions.
	"github.com/mintel/timebucket/pkg/window"           // Window tiling.
)

const (
	Name  = "timebucket"
	Usage = "Evaluate date math, and split time windows into calendar-aligned buckets."
)

// App holds application state.
type App struct {
	*kingpin.Application

	// Where command output is written. Logs go to stderr.
	Stdout io.Writer

	flags  *Flags           // Command line flags
	health *Healthchecks    // healthchecks HTTP handler
	inst   *Instrumentation // Prometheus metrics

	registerer prometheus.Registerer
	namespace  string

	// Split windows served by the API, keyed by cacheKey.
	windows *cache.Cache

	// Returns a channel of ticks at the end of each bucket of
	// a granularity, and a func to stop ticking.
	newTicker func(g window.Granularity) (<-chan time.Time, func())
}

// NewApp returns a new App.
func NewApp(r prometheus.Registerer) (*App, error) {
	if r == nil {
		r = prometheus.DefaultRegisterer
	}
	namespace := cmd.Namespace
	windows := cache.New(defaultCacheTTL, 2*defaultCacheTTL)

	app := &App{
		Application: kingpin.New(filepath.Base(os.Args[0]), Usage),
		Stdout:      os.Stdout,
		health:      NewHealthchecks(r, namespace),
		inst:        NewInstrumentation(namespace, windows),
		registerer:  r,
		namespace:   namespace,
		windows:     windows,
		newTicker:   newGranularityTicker,
	}
	app.flags = NewFlags(app.Application)

	metrics.MustRegisterOnce(r, app.inst)
	return app, nil
}

// Main is the main method of App and should be called
// in main.main() after flag parsing. It exits with a
// non-zero status if the command fails.
func (app *App) Main(command string, g prometheus.Gatherer) {
	logger, err := app.flags.NewLogger()
	app.FatalIfError(err, "")
	undoGlobalLogger := cmd.SetGlobalLogger(logger)

	ctx, cancel := cmd.WithInterrupt(ctxlog.WithLogger(context.Background(), logger))
	err = app.Run(ctx, command, g)
	cancel()

	undoGlobalLogger()
	_ = logger.Sync()
	app.FatalIfError(err, "%s", command)
}

// Run runs a subcommand. The Logger embedded in ctx is used for logging.
func (app *App) Run(ctx context.Context, command string, g prometheus.Gatherer) error {
	e, err := app.evaluator()
	if err != nil {
		return err
	}
	ctx = ctxlog.WithName(ctx, command)

	switch command {
	case CommandEval:
		return app.eval(e)
	case CommandFind:
		return app.find(e)
	case CommandSplit:
		return app.split(e)
	case CommandCount:
		return app.runCount(ctx, e)
	case CommandWatch:
		return app.watch(ctx)
	case CommandServe:
		return app.serve(ctx, e, g)
	}
	return errors.Errorf("unknown command '%s'", command)
}

// evaluator returns the Evaluator for date math in the other flags.
// If the --now flag is set, NOW is fixed to its value.
func (app *App) evaluator() (*datemath.Evaluator, error) {
	if app.flags.Now == "" {
		return datemath.NewEvaluator(datemath.SystemClock), nil
	}
	now, err := datemath.Evaluate(app.flags.Now)
	if err != nil {
		return nil, errors.Wrap(err, "invalid --now")
	}
	return datemath.NewEvaluator(datemath.FixedClock(now)), nil
}

// observeWindows counts windows emitted by any command.
func (app *App) observeWindows(n int) {
	app.inst.Windows.Add(float64(n))
}

// instrumentedHTTPClient returns an HTTP client for Elasticsearch
// requests, instrumented with Prometheus metrics.
func (app *App) instrumentedHTTPClient() (*http.Client, error) {
	constLabels := map[string]string{"recipient": "elasticsearch"}
	return metrics.InstrumentHTTP(nil, app.registerer, app.namespace, constLabels)
}
