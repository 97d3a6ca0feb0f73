package handlers

import "net/http"

// HealthHandler godoc
// @Summary Backend health
// @Tags health
// @Produce json
// @Success 200 {object} repo.HealthStatus
// @Failure 503 {object} repo.HealthStatus
// @Router /api/health [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	h := productRepo.Health(r.Context())
	status := http.StatusOK
	if !h.OK() {
		status = http.StatusServiceUnavailable
	}
	respond(w, r, status, h)
}
