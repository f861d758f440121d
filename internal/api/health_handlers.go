package api

import (
	"net/http"

	"github.com/keydashapp/keydash-sync/internal/http/response"
)

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealthCheck reports liveness. Clients probe this endpoint to decide
// whether the backend is reachable, and require a JSON response: a captive
// portal answering 200 with an HTML page must not count as healthy.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, HealthResponse{Status: "healthy"}, s.logger)
}
