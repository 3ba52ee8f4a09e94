package shimhttp

import "github.com/prometheus/client_golang/prometheus"

// newIsolatedRegistry gives each test its own Prometheus registry so
// repeated NewService calls in the same test binary never collide over
// the default global registerer.
func newIsolatedRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}
