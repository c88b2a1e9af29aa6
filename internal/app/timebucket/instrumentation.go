package timebucket

import (
	cache "github.com/patrickmn/go-cache"            // In-memory cache.
	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.

	"github.com/mintel/timebucket/internal/pkg/metrics" // Prometheus metrics tools.
)

// Instrumentation holds Prometheus metrics specific to
// the timebucket App.
type Instrumentation struct {
	// Total number of windows printed or served.
	Windows prometheus.Counter

	// Lookups in the cache of split windows, by hit or miss.
	CacheLookups *prometheus.CounterVec

	// Number of items in the cache of split windows.
	CacheItems prometheus.GaugeFunc

	// Latency of counting documents in Elasticsearch, by success or error.
	CountDuration *prometheus.HistogramVec

	// Served HTTP requests.
	Handlers *metrics.HandlerInstrumentation
}

// NewInstrumentation returns a new Instrumentation.
func NewInstrumentation(namespace string, windowCache *cache.Cache) *Instrumentation {
	return &Instrumentation{
		Windows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "windows_total",
			Help:      "Total number of windows printed or served.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Count of lookups in the cache of split windows.",
		}, []string{metrics.LabelResult}),
		CacheItems: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "items",
			Help:      "Number of items in the cache of split windows.",
		}, func() float64 { return float64(windowCache.ItemCount()) }),
		CountDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "elasticsearch",
			Name:      "count_duration_seconds",
			Help:      "A histogram of the time taken to count documents in windows.",
			Buckets:   prometheus.DefBuckets,
		}, []string{metrics.LabelStatus}),
		Handlers: metrics.NewHandlerInstrumentation(namespace),
	}
}

// Describe implements the prometheus.Collector interface.
func (m *Instrumentation) Describe(c chan<- *prometheus.Desc) {
	m.Windows.Describe(c)
	m.CacheLookups.Describe(c)
	m.CacheItems.Describe(c)
	m.CountDuration.Describe(c)
	m.Handlers.Describe(c)
}

// Collect implements the prometheus.Collector interface.
func (m *Instrumentation) Collect(c chan<- prometheus.Metric) {
	m.Windows.Collect(c)
	m.CacheLookups.Collect(c)
	m.CacheItems.Collect(c)
	m.CountDuration.Collect(c)
	m.Handlers.Collect(c)
}
