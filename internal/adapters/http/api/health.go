package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Diego-de-Souza/service-generate-content/pkg/metrics"
)

// HealthHandler handles health check and metrics requests.
type HealthHandler struct {
	deps Dependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps Dependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

type healthResponse struct {
	Status            string          `json:"status"`
	ReadyForBatch     bool            `json:"ready_for_batch"`
	AIServices        map[string]bool `json:"ai_services"`
	SourcesConfigured int             `json:"sources_configured"`
	Timestamp         time.Time       `json:"timestamp"`
}

// HandleHealth handles GET /health requests. The endpoint reports degraded
// readiness rather than failing; monitoring decides what to do with it.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	ready := h.deps.Ready()
	status := "ok"
	if !ready {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:            status,
		ReadyForBatch:     ready,
		AIServices:        h.deps.AIServices(),
		SourcesConfigured: h.deps.SourceCount(),
		Timestamp:         time.Now().UTC(),
	})
}

// HandleMetrics serves the Prometheus exposition from the custom registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
