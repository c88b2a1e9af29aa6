package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InstrumentHTTP returns a new HTTP client instrumented
// with Prometheus metrics.
//
// If the base Client is nil, http.DefaultClient is used.
//
// A Gauge is observed for in-flight requests.
// A histogram of request duration is observed with labels for
// HTTP method and returned status code, and histograms of DNS
// lookup and TLS handshake times with a label for the event.
//
// Example:
//
//   client, err := InstrumentHTTP(nil, prometheus.DefaultRegisterer, "timebucket_elasticsearch", nil)
//
func InstrumentHTTP(base *http.Client, reg prometheus.Registerer, namespace string, constLabels map[string]string) (*http.Client, error) {
	if base == nil {
		base = http.DefaultClient
	}

	i := &httpClientInstrumentation{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "http",
				Name:        "request_duration_seconds",
				Help:        "A histogram of HTTP request latencies.",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: constLabels,
			},
			[]string{LabelStatusCode, LabelMethod},
		),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "A gauge of in-flight HTTP requests.",
			ConstLabels: constLabels,
		}),
		dnsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "http",
				Name:        "dns_duration_seconds",
				Help:        "A histogram of DNS lookup latencies.",
				Buckets:     []float64{.005, .01, .025, .05},
				ConstLabels: constLabels,
			},
			[]string{LabelEvent},
		),
		tlsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "http",
				Name:        "tls_duration_seconds",
				Help:        "A histogram of TLS handshake latencies.",
				Buckets:     []float64{.05, .1, .25, .5},
				ConstLabels: constLabels,
			},
			[]string{LabelEvent},
		),
	}
	if err := reg.Register(i); err != nil {
		return nil, err
	}

	trace := &promhttp.InstrumentTrace{
		DNSStart:          i.dnsDuration.WithLabelValues("dns_start").Observe,
		DNSDone:           i.dnsDuration.WithLabelValues("dns_done").Observe,
		TLSHandshakeStart: i.tlsDuration.WithLabelValues("tls_handshake_start").Observe,
		TLSHandshakeDone:  i.tlsDuration.WithLabelValues("tls_handshake_done").Observe,
	}

	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	transport = promhttp.InstrumentRoundTripperDuration(i.duration, transport)
	transport = promhttp.InstrumentRoundTripperInFlight(i.inflight, transport)
	transport = promhttp.InstrumentRoundTripperTrace(trace, transport)

	return &http.Client{
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
		Timeout:       base.Timeout,
		Transport:     transport,
	}, nil
}

type httpClientInstrumentation struct {
	duration    *prometheus.HistogramVec
	inflight    prometheus.Gauge
	dnsDuration *prometheus.HistogramVec
	tlsDuration *prometheus.HistogramVec
}

// Describe implements prometheus.Collector interface.
func (i *httpClientInstrumentation) Describe(c chan<- *prometheus.Desc) {
	i.duration.Describe(c)
	i.inflight.Describe(c)
	i.dnsDuration.Describe(c)
	i.tlsDuration.Describe(c)
}

// Collect implements prometheus.Collector interface.
func (i *httpClientInstrumentation) Collect(c chan<- prometheus.Metric) {
	i.duration.Collect(c)
	i.inflight.Collect(c)
	i.dnsDuration.Collect(c)
	i.tlsDuration.Collect(c)
}

// HandlerInstrumentation holds Prometheus metrics for HTTP handlers.
// Use InstrumentHandler to wrap each handler.
type HandlerInstrumentation struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

// NewHandlerInstrumentation returns a new HandlerInstrumentation.
// It must be registered before use.
func NewHandlerInstrumentation(namespace string) *HandlerInstrumentation {
	return &HandlerInstrumentation{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Count of HTTP requests served.",
		}, []string{LabelHandler, LabelStatusCode, LabelMethod}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "request_duration_seconds",
			Help:      "A histogram of HTTP request latencies.",
			Buckets:   prometheus.DefBuckets,
		}, []string{LabelHandler, LabelStatusCode, LabelMethod}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "in_flight_requests",
			Help:      "A gauge of HTTP requests being served.",
		}),
	}
}

// InstrumentHandler wraps h so its requests are counted and timed
// with the handler label set to name.
func (i *HandlerInstrumentation) InstrumentHandler(name string, h http.Handler) http.Handler {
	l := prometheus.Labels{LabelHandler: name}
	h = promhttp.InstrumentHandlerDuration(i.duration.MustCurryWith(l), h)
	h = promhttp.InstrumentHandlerCounter(i.requests.MustCurryWith(l), h)
	return promhttp.InstrumentHandlerInFlight(i.inflight, h)
}

// Describe implements prometheus.Collector interface.
func (i *HandlerInstrumentation) Describe(c chan<- *prometheus.Desc) {
	i.requests.Describe(c)
	i.duration.Describe(c)
	i.inflight.Describe(c)
}

// Collect implements prometheus.Collector interface.
func (i *HandlerInstrumentation) Collect(c chan<- prometheus.Metric) {
	i.requests.Collect(c)
	i.duration.Collect(c)
	i.inflight.Collect(c)
}
