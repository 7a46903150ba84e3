package api

import (
	"net/http"

	"github.com/okian/sentiscope/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler exposes the service metrics registry as its health probe.
type HealthHandler struct {
	metrics http.Handler
}

// NewHealthHandler creates a health handler over the global metrics registry.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{EnableOpenMetrics: true}),
	}
}

// HandleHealth handles GET /healthz requests. Analysis, extraction, queue and
// worker series are included.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}
	h.metrics.ServeHTTP(w, r)
}
