// Package metrics holds constants and utilities for instrumenting timebucket
// with Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
)

// MustRegisterOnce registers a set of Prometheus Collectors with r,
// ignoring AlreadyRegisteredErrors. Other errors cause a panic.
// If r is nil, the default Registerer is used.
func MustRegisterOnce(r prometheus.Registerer, cs ...prometheus.Collector) {
	if r == nil {
		r = prometheus.DefaultRegisterer
	}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}
}
