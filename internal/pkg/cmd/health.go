package cmd

import (
	"github.com/heptiolabs/healthcheck"              // Healthchecks framework.
	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
)

// NewHealthchecksHandler returns a new healthcheck.Handler, configured
// with a basic liveness check and Prometheus healthcheck status
// metrics under the given metrics namespace.
func NewHealthchecksHandler(r prometheus.Registerer, namespace string) healthcheck.Handler {
	h := healthcheck.NewMetricsHandler(r, namespace)
	h.AddLivenessCheck("alive", func() error { return nil })
	return h
}
