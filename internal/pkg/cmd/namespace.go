package cmd

import (
	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
)

// Namespace is the namespace to be used for Prometheus
// metrics throughout timebucket.
const Namespace = "timebucket"

// BuildPromFQName joins Namespace, subsystem, and name with underscores.
func BuildPromFQName(subsystem, name string) string {
	return prometheus.BuildFQName(Namespace, subsystem, name)
}
