package timebucket

import (
	"github.com/heptiolabs/healthcheck"              // Healthchecks framework.
	"github.com/pkg/errors"                          // Wrap errors with context.
	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
	"go.uber.org/atomic"                             // Atomic values.

	"github.com/mintel/timebucket/internal/pkg/cmd" // Common command line app tools.
)

// Healthchecks serves liveness and readiness checks.
type Healthchecks struct {
	Handler healthcheck.Handler

	// Set once the server is accepting connections.
	Listening *atomic.Bool
}

// NewHealthchecks returns a new Healthchecks.
func NewHealthchecks(r prometheus.Registerer, namespace string) *Healthchecks {
	h := &Healthchecks{
		Handler:   cmd.NewHealthchecksHandler(r, namespace),
		Listening: atomic.NewBool(false),
	}
	h.Handler.AddReadinessCheck("listening", func() error {
		if !h.Listening.Load() {
			return errors.New("server isn't listening yet")
		}
		return nil
	})
	return h
}
