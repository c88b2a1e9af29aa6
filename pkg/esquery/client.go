package esquery

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"           // Retry with exponential backoff.
	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.
	"go.uber.org/zap"                       // Logging.

	"github.com/mintel/timebucket/pkg/ctxlog" // Logger from context.
)

// DialContextRetry returns a new Elasticsearch client. Unlike
// elastic.DialContext, the initial connection to Elasticsearch is retried
// with exponential backoff, starting at init and giving up after max.
//
// If max <= 0 the connection is tried once.
// Errors other than connection errors are never retried.
func DialContextRetry(ctx context.Context, init, max time.Duration, options ...elastic.ClientOptionFunc) (*elastic.Client, error) {
	if max <= 0 {
		return elastic.DialContext(ctx, options...)
	}
	logger := ctxlog.L(ctx)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = init
	b.MaxInterval = max
	b.MaxElapsedTime = max

	var client *elastic.Client
	attempt := 0
	op := func() error {
		attempt++
		c, err := elastic.DialContext(ctx, options...)
		switch {
		case err == nil:
			client = c
			return nil
		case elastic.IsConnErr(err):
			logger.Debug("error connecting to Elasticsearch", zap.Error(err), zap.Int("attempt", attempt))
			return err
		default:
			return backoff.Permanent(err)
		}
	}
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return client, nil
}
