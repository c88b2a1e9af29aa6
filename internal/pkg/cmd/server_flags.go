package cmd

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/heptiolabs/healthcheck"              // Healthchecks framework.
	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerFlags represents a set of flags for setting up
// a server with healthchecks and Prometheus metrics.
type ServerFlags struct {
	Address     string        // Address to listen on.
	Port        uint16        // Port to serve the API, health checks, and Prometheus metrics on.
	LivePath    string        // HTTP path to serve the liveness healthcheck at.
	ReadyPath   string        // HTTP path to serve the readiness healthcheck at.
	MetricsPath string        // HTTP path to serve Prometheus metrics at.
	Shutdown    time.Duration // Time to wait for requests to finish when shutting down.
}

// NewServerFlags returns a new ServerFlags.
func NewServerFlags(app Flagger, port int) *ServerFlags {
	var f ServerFlags

	app.Flag("serve.address", "Address on which to listen.").
		Default("0.0.0.0").
		StringVar(&f.Address)

	app.Flag("serve.port", "Port on which to serve the API, healthchecks, and Prometheus metrics.").
		Default(strconv.Itoa(port)).
		Uint16Var(&f.Port)

	app.Flag("serve.metrics", "Path at which to serve Prometheus metrics.").
		Default("/metrics").
		StringVar(&f.MetricsPath)

	app.Flag("serve.live", "Path at which to serve liveness healthcheck.").
		Default("/livez").
		StringVar(&f.LivePath)

	app.Flag("serve.ready", "Path at which to serve readiness healthcheck.").
		Default("/readyz").
		StringVar(&f.ReadyPath)

	app.Flag("serve.shutdown-timeout", "Time to wait for in-flight requests when shutting down.").
		Hidden().
		Default("10s").
		DurationVar(&f.Shutdown)

	return &f
}

// ConfigureMux sets a mux to serve healthchecks and Prometheus metrics
// based on the path flags in f.
func (f *ServerFlags) ConfigureMux(mux *http.ServeMux, h healthcheck.Handler, g prometheus.Gatherer) *http.ServeMux {
	mux.Handle(f.MetricsPath, promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc(f.LivePath, h.LiveEndpoint)
	mux.HandleFunc(f.ReadyPath, h.ReadyEndpoint)
	return mux
}

// NewServer returns a new HTTP server configured to listen on the
// address and port flags.
func (f *ServerFlags) NewServer(h http.Handler) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", f.Address, f.Port),
		Handler: h,
	}
}
