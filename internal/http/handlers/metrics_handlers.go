package handlers

import (
	"net/http"
)

// GetDashboardMetricsHandler godoc
// @Summary Dashboard metrics
// @Description Product count, low-stock count, total quantity and inventory value
// @Tags metrics
// @Produce json
// @Success 200 {object} repo.Metrics
// @Failure 500 {object} ErrorResponse
// @Router /api/metrics [get]
func GetDashboardMetricsHandler(w http.ResponseWriter, r *http.Request) {
	m, err := metricsRepo.GetDashboardMetrics(r.Context())
	if err != nil {
		writeStoreError(w, r, "metrics", err)
		return
	}
	respond(w, r, http.StatusOK, m)
}
