package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetStats returns the search statistics.
// GET /api/v1/stats?format=text
func (s *APIV1Service) GetStats(c echo.Context) error {
	st := s.Stats.GetStats()
	if c.QueryParam("format") == "text" {
		return c.String(http.StatusOK, st.GetSummary())
	}
	return c.JSON(http.StatusOK, st)
}

// HealthResponse is the body of the health check.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	QueueDepth  int    `json:"queue_depth"`
	Subscribers int    `json:"subscribers"`
}

// Healthz reports liveness.
// GET /healthz
func (s *APIV1Service) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:      "ok",
		Version:     s.Profile.Version,
		QueueDepth:  s.Runner.Len(),
		Subscribers: s.Hub.Len(),
	})
}
