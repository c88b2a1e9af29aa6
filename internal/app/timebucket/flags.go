package timebucket

import (
	"strconv"
	"time"

	kingpin "gopkg.in/alecthomas/kingpin.v2" // Command line flag parsing.

	"github.com/mintel/timebucket/internal/pkg/cmd" // Common command line app tools.
	"github.com/mintel/timebucket/pkg/esquery"     // Elasticsearch bucketed counts.
	ptime "github.com/mintel/timebucket/pkg/time"  // Calendar durations.
)

const (
	defaultPort                   = 8080
	defaultLogLevel               = "INFO"
	defaultCacheTTL               = 5 * time.Minute
	defaultMaxWindows             = 100000
	defaultElasticsearchRetryInit = 150 * time.Millisecond
	defaultElasticsearchRetryMax  = 1200 * time.Millisecond
)

// Names of subcommands.
const (
	CommandEval  = "eval"
	CommandFind  = "find"
	CommandSplit = "split"
	CommandCount = "count"
	CommandWatch = "watch"
	CommandServe = "serve"
)

// Flags holds command line flags for the timebucket App.
type Flags struct {
	// Datemath expression evaluated once at startup and used
	// as NOW by everything else. Empty means the system clock.
	Now string

	Eval struct {
		Exprs []string
	}

	Find struct {
		At          string
		Granularity ptime.Duration
		JSON        bool
	}

	Split struct {
		TileFlags
		JSON bool
	}

	Count struct {
		TileFlags
		Index       []string
		Field       string
		ChunkSize   int
		Concurrency int
		JSON        bool
		Summary     bool

		*cmd.ElasticsearchFlags
	}

	Watch struct {
		Granularity ptime.Duration
		Count       int
	}

	Serve struct {
		CacheTTL   time.Duration
		MaxWindows int64

		*cmd.ServerFlags
	}

	*cmd.LoggingFlags
}

// TileFlags are the flags of commands that split a window into buckets.
type TileFlags struct {
	Window        string
	Granularities []ptime.Duration
	Edges         string
}

func (f *TileFlags) register(c cmd.Flagger) {
	c.Arg("window", "Window to split, e.g. '[NOW/d-7d TO NOW/d]'.").
		Required().
		StringVar(&f.Window)

	cmd.CalendarDurationListVar(
		c.Flag("granularity", "Bucket size, e.g. 15m or 1d. Repeat to allow several sizes.").
			Short('g').
			Required().
			PlaceHolder("SIZE"),
		&f.Granularities,
	)

	c.Flag("edges", "Whether to shrink to buckets inside the window, or grow to cover it.").
		Default("shrink").
		EnumVar(&f.Edges, "shrink", "grow")
}

// NewFlags returns a new Flags, registering the
// flags and subcommands on app.
func NewFlags(app *kingpin.Application) *Flags {
	var f Flags

	app.Flag("now", "Evaluate NOW as this instant instead of the current time.").
		PlaceHolder("INSTANT").
		StringVar(&f.Now)

	f.LoggingFlags = cmd.NewLoggingFlags(app, defaultLogLevel)

	evalCmd := app.Command(CommandEval, "Evaluate date math expressions, e.g. NOW/d-7d.")
	evalCmd.Arg("expr", "Expressions to evaluate.").
		Required().
		StringsVar(&f.Eval.Exprs)

	findCmd := app.Command(CommandFind, "Print the bucket containing an instant.")
	findCmd.Arg("instant", "Date math expression.").
		Default("NOW").
		StringVar(&f.Find.At)
	cmd.CalendarDurationVar(
		findCmd.Flag("granularity", "Bucket size.").
			Short('g').
			Required().
			PlaceHolder("SIZE"),
		&f.Find.Granularity,
	)
	findCmd.Flag("json", "Print JSON.").BoolVar(&f.Find.JSON)

	splitCmd := app.Command(CommandSplit, "Split a window into buckets.")
	f.Split.register(splitCmd)
	splitCmd.Flag("json", "Print JSON.").BoolVar(&f.Split.JSON)

	countCmd := app.Command(CommandCount, "Count Elasticsearch documents in each bucket of a window.")
	f.Count.register(countCmd)
	countCmd.Flag("index", "Elasticsearch index or index pattern. Repeatable.").
		Short('i').
		StringsVar(&f.Count.Index)
	countCmd.Flag("field", "Date field to count on.").
		Short('f').
		Default("@timestamp").
		StringVar(&f.Count.Field)
	countCmd.Flag("chunk-size", "Number of buckets per multi search request.").
		Default(strconv.Itoa(esquery.DefaultChunkSize)).
		IntVar(&f.Count.ChunkSize)
	countCmd.Flag("concurrency", "Max number of concurrent requests.").
		Default("4").
		IntVar(&f.Count.Concurrency)
	countCmd.Flag("json", "Print JSON.").BoolVar(&f.Count.JSON)
	countCmd.Flag("summary", "Print count statistics after the counts.").BoolVar(&f.Count.Summary)
	f.Count.ElasticsearchFlags = cmd.NewElasticsearchFlags(countCmd, defaultElasticsearchRetryInit, defaultElasticsearchRetryMax)

	watchCmd := app.Command(CommandWatch, "Print each bucket as it closes.")
	cmd.CalendarDurationVar(
		watchCmd.Flag("granularity", "Bucket size.").
			Short('g').
			Required().
			PlaceHolder("SIZE"),
		&f.Watch.Granularity,
	)
	watchCmd.Flag("count", "Exit after this many buckets. Zero means never.").
		Short('n').
		Default("0").
		IntVar(&f.Watch.Count)

	serveCmd := app.Command(CommandServe, "Serve an HTTP API, healthchecks, and Prometheus metrics.")
	serveCmd.Flag("cache.ttl", "How long to cache split windows.").
		Default(defaultCacheTTL.String()).
		DurationVar(&f.Serve.CacheTTL)
	serveCmd.Flag("serve.max-windows", "Reject requests that could split into more windows than this. Zero means no limit.").
		Default(strconv.Itoa(defaultMaxWindows)).
		Int64Var(&f.Serve.MaxWindows)
	f.Serve.ServerFlags = cmd.NewServerFlags(serveCmd, defaultPort)

	return &f
}
