package api

import (
	"net/http"
	"runtime"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/buildlab/pkg/metrics"
)

// HealthHandler serves the Prometheus registry.
type HealthHandler struct {
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz requests. Runtime gauges are refreshed
// on every scrape.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	sampleRuntime()
	h.metrics.ServeHTTP(w, r)
}

func sampleRuntime() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	metrics.UpdateSystemMemoryUsage(ms.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if ms.NumGC > 0 {
		last := ms.PauseNs[(ms.NumGC+255)%256]
		metrics.RecordSystemGCPauseTime(float64(last) / 1e6)
	}
}
