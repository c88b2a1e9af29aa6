package cmd

import (
	"context"
	"net/http"
	"net/url"
	"time"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.

	"github.com/mintel/timebucket/pkg/esquery" // Elasticsearch bucketed counts.
)

// ElasticsearchFlags represents a base set of flags for
// connecting to Elasticsearch.
type ElasticsearchFlags struct {
	// URL(s) of Elasticsearch nodes to connect to.
	URLs []*url.URL

	// Exponential backoff retries flags.
	Retry struct {
		// Initial backoff duration.
		Init time.Duration

		// Max backoff duration.
		Max time.Duration
	}

	// Sniff for other nodes in the cluster.
	Sniff bool
}

// NewElasticsearchFlags returns a new ElasticsearchFlags.
func NewElasticsearchFlags(app Flagger, retryInit, retryMax time.Duration) *ElasticsearchFlags {
	var f ElasticsearchFlags

	app.Flag("elasticsearch.url", "URL(s) of Elasticsearch.").
		Short('e').
		Default(elastic.DefaultURL).
		URLListVar(&f.URLs)

	app.Flag("elasticsearch.sniff", "Discover the other nodes of the Elasticsearch cluster.").
		BoolVar(&f.Sniff)

	app.Flag("elasticsearch.retry.init", "Initial duration of Elasticsearch exponential backoff retries.").
		Hidden().
		Default(retryInit.String()).
		DurationVar(&f.Retry.Init)

	app.Flag("elasticsearch.retry.max", "Max duration of Elasticsearch exponential backoff retries.").
		Hidden().
		Default(retryMax.String()).
		DurationVar(&f.Retry.Max)

	return &f
}

// NewElasticsearchClient returns a new Elasticsearch client
// configured with the URL and retry flag values. If httpClient
// isn't nil the Elasticsearch client sends requests with it.
// Any other options passed in are applied last.
func (f *ElasticsearchFlags) NewElasticsearchClient(ctx context.Context, httpClient *http.Client, options ...elastic.ClientOptionFunc) (*elastic.Client, error) {
	urls := make([]string, len(f.URLs))
	for i, u := range f.URLs {
		urls[i] = u.String()
	}
	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(urls...),
		elastic.SetSniff(f.Sniff),
	}
	if httpClient != nil {
		opts = append(opts, elastic.SetHttpClient(httpClient))
	}
	return esquery.DialContextRetry(ctx, f.Retry.Init, f.Retry.Max, append(opts, options...)...)
}
