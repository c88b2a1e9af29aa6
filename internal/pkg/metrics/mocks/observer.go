// Package mocks holds testify mocks of Prometheus metric types.
package mocks

import (
	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
	"github.com/stretchr/testify/mock"               // Mocking for tests.
)

// Observer is a mock prometheus.Observer.
type Observer struct {
	mock.Mock
}

var _ prometheus.Observer = (*Observer)(nil)

// Observe records the call.
func (m *Observer) Observe(f float64) {
	m.Called(f)
}
