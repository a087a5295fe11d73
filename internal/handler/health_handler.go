package handler

import (
	"encoding/json"
	"net/http"
)

// HealthChecker verifies backing-store connectivity. *sql.DB satisfies it.
type HealthChecker interface {
	Ping() error
}

// HealthHandler serves the liveness endpoints.
type HealthHandler struct {
	checker HealthChecker
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// healthResponse is the health check payload.
type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Health reports service and store health. Used by container health checks.
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := h.checker.Ping(); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(healthResponse{Status: "unhealthy", Service: "nexttrack-api"})
		return
	}

	json.NewEncoder(w).Encode(healthResponse{Status: "healthy", Service: "nexttrack-api"})
}

// Root serves the service banner.
// GET /
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Next Action Tracker API",
		"version": "1.0.0",
	})
}
