// Package testutil contains miscellaneous testing utilities.
package testutil

import (
	"bytes"
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httputil"
	"testing"

	"go.uber.org/zap"             // Logging.
	"go.uber.org/zap/zaptest"     // Logging to testing.T.
	gock "gopkg.in/h2non/gock.v1" // HTTP request mocking.

	"github.com/mintel/timebucket/pkg/ctxlog" // Logger from context.
)

// TestLogger returns a zap Logger that logs all messages to the given testing.TB.
// It replaces the zap global Logger and redirects the stdlib log to the test Logger.
func TestLogger(t testing.TB) (logger *zap.Logger, teardown func()) {
	logger = zaptest.NewLogger(t)
	teardownLogger1 := zap.ReplaceGlobals(logger)
	teardownLogger2 := zap.RedirectStdLog(logger)
	teardown = func() {
		teardownLogger2()
		teardownLogger1()
		_ = logger.Sync()
	}
	return
}

// GockLogObserver returns a gock.ObserverFunc that logs HTTP requests to a zap Logger.
func GockLogObserver(logger *zap.Logger) gock.ObserverFunc {
	return func(request *http.Request, mock gock.Mock) {
		dump, _ := httputil.DumpRequestOut(request, true)
		logger.Debug("gock intercepted http request",
			zap.String("request", string(dump)),
			zap.Bool("matches_mock", mock != nil),
		)
	}
}

// ClientTestSetup sets up zap test logging, intercepts HTTP requests using gock, and creates
// a context with the zap logger embedded.
func ClientTestSetup(t testing.TB) (ctx context.Context, logger *zap.Logger, teardown func()) {
	logger, teardownLogging := TestLogger(t)

	gock.Intercept()
	gock.Observe(GockLogObserver(logger))

	ctx, cancel := context.WithCancel(ctxlog.WithLogger(context.Background(), logger))

	teardown = func() {
		cancel()
		gock.OffAll()
		gock.Observe(nil)
		teardownLogging()
	}

	return
}

// ReadBody reads the body of an HTTP request, leaving it in place to be read again.
func ReadBody(req *http.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}
	b, err := ioutil.ReadAll(req.Body)
	req.Body.Close()
	req.Body = ioutil.NopCloser(bytes.NewReader(b))
	return b, err
}
