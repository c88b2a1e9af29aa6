package timebucket

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"                         // Request IDs.
	"github.com/pkg/errors"                          // Wrap errors with context.
	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
	"go.uber.org/zap"                                // Logging.
	tomb "gopkg.in/tomb.v2"                          // Goroutine management.

	"github.com/mintel/timebucket/pkg/ctxlog"     // Logger from context.
	"github.com/mintel/timebucket/pkg/datemath"   // NOW/d-7d expressions.
	ptime "github.com/mintel/timebucket/pkg/time" // Calendar durations.
	"github.com/mintel/timebucket/pkg/window"     // Window tiling.
)

// RequestIDHeader is the HTTP header carrying the request ID.
// If a request doesn't have one, a random UUID is generated.
const RequestIDHeader = "X-Request-Id"

// Values of the metrics.LabelResult label.
const (
	cacheHit  = "hit"
	cacheMiss = "miss"
)

// EvalResponse is the body returned by /v1/eval.
type EvalResponse struct {
	Expr    string    `json:"expr"`
	Instant time.Time `json:"instant"`
}

// ErrorResponse is the body returned when a request fails.
type ErrorResponse struct {
	Error string `json:"error"`
}

// serve serves the API, healthchecks, and Prometheus metrics until ctx is canceled.
func (app *App) serve(ctx context.Context, e *datemath.Evaluator, g prometheus.Gatherer) error {
	f := app.flags.Serve
	logger := ctxlog.L(ctx)

	mux := http.NewServeMux()
	app.ConfigureAPI(mux, logger, e)
	f.ConfigureMux(mux, app.health.Handler, g)
	srv := f.NewServer(mux)

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return errors.Wrap(err, "error listening")
	}
	logger.Info("serving", zap.String("address", ln.Addr().String()))
	app.health.Listening.Store(true)

	t, ctx := tomb.WithContext(ctx)
	t.Go(func() error {
		if err := srv.Serve(ln); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	t.Go(func() error {
		<-ctx.Done()
		app.health.Listening.Store(false)
		logger.Info("shutting down server", zap.Duration("timeout", f.Shutdown))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), f.Shutdown)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := t.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// ConfigureAPI adds the API endpoints to mux. Expressions are
// evaluated with e, and logs are written to logger.
func (app *App) ConfigureAPI(mux *http.ServeMux, logger *zap.Logger, e *datemath.Evaluator) {
	routes := map[string]http.HandlerFunc{
		"/v1/eval":    app.handleEval(e),
		"/v1/find":    app.handleFind(e),
		"/v1/windows": app.handleWindows(e),
	}
	for path, h := range routes {
		name := strings.TrimPrefix(path, "/v1/")
		mux.Handle(path, app.inst.Handlers.InstrumentHandler(name, withRequestContext(logger, onlyGET(h))))
	}
}

// withRequestContext embeds logger and a request ID in the request Context.
func withRequestContext(logger *zap.Logger, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := ctxlog.WithLogger(r.Context(), logger)
		ctx = ctxlog.WithRequestID(ctx, id)
		ctxlog.L(ctx).Debug("serving request",
			zap.String("method", r.Method),
			zap.String("uri", r.RequestURI))
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

func onlyGET(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			writeError(w, r, http.StatusMethodNotAllowed, errors.Errorf("method %s not allowed", r.Method))
			return
		}
		h(w, r)
	}
}

// GET /v1/eval?expr=NOW/d
func (app *App) handleEval(e *datemath.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		expr := r.URL.Query().Get("expr")
		t, err := e.Evaluate(expr)
		if err != nil {
			writeError(w, r, statusCode(err), err)
			return
		}
		writeJSON(w, r, http.StatusOK, EvalResponse{Expr: expr, Instant: t})
	}
}

// GET /v1/find?at=NOW&granularity=15m
func (app *App) handleFind(e *datemath.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		expr := q.Get("at")
		if expr == "" {
			expr = "NOW"
		}
		at, err := e.Evaluate(expr)
		if err != nil {
			writeError(w, r, statusCode(err), err)
			return
		}
		d, err := ptime.ParseAny(q.Get("granularity"))
		if err != nil {
			writeError(w, r, statusCode(err), errors.Wrap(err, "invalid granularity"))
			return
		}
		found, err := window.Find(at, d)
		if err != nil {
			writeError(w, r, statusCode(err), err)
			return
		}
		app.observeWindows(1)
		writeJSON(w, r, http.StatusOK, found)
	}
}

// GET /v1/windows?window=[NOW/d-7d TO NOW/d]&granularity=1d&granularity=1h&edges=grow
func (app *App) handleWindows(e *datemath.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		win, err := window.ParseWith(e, q.Get("window"))
		if err != nil {
			writeError(w, r, statusCode(err), err)
			return
		}
		start, end, err := win.Bounds()
		if err != nil {
			writeError(w, r, statusCode(err), errors.Wrapf(err, "cannot split %s", win))
			return
		}
		gs := make([]ptime.Duration, 0, len(q["granularity"]))
		for _, s := range q["granularity"] {
			d, err := ptime.ParseAny(s)
			if err != nil {
				writeError(w, r, statusCode(err), errors.Wrap(err, "invalid granularity"))
				return
			}
			gs = append(gs, d)
		}
		mode, err := window.ParseEdgeMode(q.Get("edges"))
		if err != nil {
			writeError(w, r, statusCode(err), err)
			return
		}

		ws, err := app.between(start, end, gs, mode)
		if err != nil {
			writeError(w, r, statusCode(err), err)
			return
		}
		app.observeWindows(len(ws))
		writeJSON(w, r, http.StatusOK, ws)
	}
}

// between is window.BetweenMax, limited by the max windows flag, and cached.
func (app *App) between(start, end time.Time, gs []ptime.Duration, mode window.EdgeMode) ([]window.Window, error) {
	key := cacheKey(start, end, gs, mode)
	if v, ok := app.windows.Get(key); ok {
		app.inst.CacheLookups.WithLabelValues(cacheHit).Inc()
		return v.([]window.Window), nil
	}
	app.inst.CacheLookups.WithLabelValues(cacheMiss).Inc()

	ws, err := window.BetweenMax(start, end, gs, mode, app.flags.Serve.MaxWindows)
	if err != nil {
		return nil, err
	}
	app.windows.Set(key, ws, app.flags.Serve.CacheTTL)
	return ws, nil
}

// cacheKey identifies a call to window.Between by its evaluated
// bounds, so relative expressions that evaluate to the same instants
// share cache entries.
func cacheKey(start, end time.Time, gs []ptime.Duration, mode window.EdgeMode) string {
	sizes := make([]string, len(gs))
	for i, d := range gs {
		sizes[i] = d.Compact()
	}
	return fmt.Sprintf("%d|%d|%s|%s", start.UnixNano(), end.UnixNano(), strings.Join(sizes, ","), mode)
}

// statusCode maps errors caused by bad input to 400 Bad Request,
// and everything else to 500 Internal Server Error.
func statusCode(err error) int {
	switch {
	case errors.Is(err, ptime.ErrFormat),
		errors.Is(err, ptime.ErrEmpty),
		errors.Is(err, window.ErrUnsupportedGranularity),
		errors.Is(err, window.ErrUnbounded),
		errors.Is(err, window.ErrTooManyWindows):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	logger := ctxlog.L(r.Context())
	if code >= http.StatusInternalServerError {
		logger.Error("error serving request", zap.Error(err))
	} else {
		logger.Debug("bad request", zap.Error(err))
	}
	writeJSON(w, r, code, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.L(r.Context()).Warn("error writing response", zap.Error(err))
	}
}
