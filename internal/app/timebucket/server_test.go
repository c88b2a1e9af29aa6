package timebucket

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson" // Query JSON.
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer" // Inspect logs.

	"github.com/mintel/timebucket/pkg/ctxlog"
	"github.com/mintel/timebucket/pkg/datemath"
)

type testServer struct {
	app  *App
	mux  *http.ServeMux
	logs *observer.ObservedLogs
}

// newTestServer returns the API of an App parsed with serve and extra args.
func newTestServer(t *testing.T, serveArgs ...string) *testServer {
	app, _, _ := newTestApp(t, append([]string{"--now", testNow, "serve"}, serveArgs...)...)
	e, err := app.evaluator()
	require.NoError(t, err)

	core, logs := observer.New(zap.DebugLevel)
	mux := http.NewServeMux()
	app.ConfigureAPI(mux, zap.New(core), e)
	return &testServer{app: app, mux: mux, logs: logs}
}

func (s *testServer) get(path string, query url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path+"?"+query.Encode(), nil)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func TestServer_eval(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/v1/eval", url.Values{"expr": {"NOW/d-7d"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"expr":"NOW/d-7d","instant":"2014-02-05T00:00:00Z"}`, rec.Body.String())

	rec = s.get("/v1/eval", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, gjson.Get(rec.Body.String(), "error").String())

	rec = s.get("/v1/eval", url.Values{"expr": {"NOW+1fortnight"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_find(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/v1/find", url.Values{"granularity": {"15m"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"start":"2014-02-12T10:30:00Z","end":"2014-02-12T10:45:00Z"}`, rec.Body.String())

	rec = s.get("/v1/find", url.Values{"at": {"2014-03-31T12:00"}, "granularity": {"1 month"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"start":"2014-03-01T00:00:00Z","end":"2014-04-01T00:00:00Z"}`, rec.Body.String())

	for _, g := range []string{"", "2h", "soon"} {
		rec = s.get("/v1/find", url.Values{"granularity": {g}})
		assert.Equal(t, http.StatusBadRequest, rec.Code, g)
	}
}

func TestServer_windows(t *testing.T) {
	s := newTestServer(t)
	query := url.Values{
		"window":      {"[NOW/d-1d TO NOW/h]"},
		"granularity": {"1h", "1d"},
	}

	rec := s.get("/v1/windows", query)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ws := gjson.Parse(rec.Body.String()).Array()
	require.Len(t, ws, 11)
	assert.Equal(t, "2014-02-11T00:00:00Z", ws[0].Get("start").String())
	assert.Equal(t, "2014-02-12T00:00:00Z", ws[0].Get("end").String())
	assert.Equal(t, "2014-02-12T10:00:00Z", ws[10].Get("end").String())

	// The same bounds written differently share a cache entry.
	rec = s.get("/v1/windows", url.Values{
		"window":      {"[2014-02-11 TO 2014-02-12T10:00:00Z]"},
		"granularity": {"1h", "1d"},
		"edges":       {"shrink"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), promtestutil.ToFloat64(s.app.inst.CacheLookups.WithLabelValues(cacheMiss)))
	assert.Equal(t, float64(1), promtestutil.ToFloat64(s.app.inst.CacheLookups.WithLabelValues(cacheHit)))
	assert.Equal(t, float64(1), promtestutil.ToFloat64(s.app.inst.CacheItems))
	assert.Equal(t, float64(22), promtestutil.ToFloat64(s.app.inst.Windows))

	// A different edge mode is a different entry.
	query.Set("edges", "grow")
	rec = s.get("/v1/windows", query)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), promtestutil.ToFloat64(s.app.inst.CacheLookups.WithLabelValues(cacheMiss)))
}

func TestServer_windows_empty(t *testing.T) {
	s := newTestServer(t)
	rec := s.get("/v1/windows", url.Values{"window": {"[NOW TO NOW-1h]"}, "granularity": {"1h"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestServer_windows_badRequest(t *testing.T) {
	testCases := []struct {
		desc  string
		query url.Values
	}{
		{desc: "no_window", query: url.Values{"granularity": {"1h"}}},
		{desc: "bad_window", query: url.Values{"window": {"NOW TO NOW"}, "granularity": {"1h"}}},
		{desc: "unbounded", query: url.Values{"window": {"[* TO NOW]"}, "granularity": {"1h"}}},
		{desc: "bad_granularity", query: url.Values{"window": {"[NOW-1d TO NOW]"}, "granularity": {"1h", "often"}}},
		{desc: "unsupported_granularity", query: url.Values{"window": {"[NOW-1d TO NOW]"}, "granularity": {"90m"}}},
		{desc: "bad_edges", query: url.Values{"window": {"[NOW-1d TO NOW]"}, "granularity": {"1h"}, "edges": {"stretch"}}},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			s := newTestServer(t)
			rec := s.get("/v1/windows", tC.query)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.True(t, gjson.Get(rec.Body.String(), "error").Exists(), rec.Body.String())
		})
	}
}

func TestServer_windows_tooMany(t *testing.T) {
	s := newTestServer(t)
	rec := s.get("/v1/windows", url.Values{
		"window":      {"[2004-01-01 TO 2014-01-01]"},
		"granularity": {"1m"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, gjson.Get(rec.Body.String(), "error").String(), "too many windows")
	assert.Equal(t, float64(0), promtestutil.ToFloat64(s.app.inst.CacheItems), "rejected requests aren't cached")
	assert.Equal(t, float64(0), promtestutil.ToFloat64(s.app.inst.Windows))

	// The limit is configurable.
	query := url.Values{"window": {"[NOW/d TO NOW/h]"}, "granularity": {"1h"}}
	s = newTestServer(t, "--serve.max-windows", "5")
	rec = s.get("/v1/windows", query)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s = newTestServer(t, "--serve.max-windows", "0")
	rec = s.get("/v1/windows", query)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, gjson.Parse(rec.Body.String()).Array(), 10)
}

func TestServer_requestID(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/v1/eval", url.Values{"expr": {"NOW"}})
	id := rec.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)

	req := httptest.NewRequest(http.MethodGet, "/v1/eval?expr=NOW", nil)
	req.Header.Set(RequestIDHeader, "abc123")
	rec = httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	assert.Equal(t, "abc123", rec.Header().Get(RequestIDHeader))

	entries := s.logs.FilterField(zap.String(ctxlog.RequestIDField, "abc123")).All()
	assert.NotEmpty(t, entries)
}

func TestServer_methodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/eval?expr=NOW", nil)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestStatusCode(t *testing.T) {
	_, err := datemath.Evaluate("")
	assert.Equal(t, http.StatusBadRequest, statusCode(err))
	assert.Equal(t, http.StatusInternalServerError, statusCode(assert.AnError))
}
