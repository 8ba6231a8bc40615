package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/searchviz/internal/profile"
	"github.com/hrygo/searchviz/server/internal/observability"
	ratelimit "github.com/hrygo/searchviz/server/middleware"
	"github.com/hrygo/searchviz/server/runner/ingest"
	"github.com/hrygo/searchviz/server/stats"
	"github.com/hrygo/searchviz/store"
)

// maxEventBytes bounds the body of one ingestion request.
const maxEventBytes = 1 << 20

type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store
	Runner  *ingest.Runner
	Stats   *stats.Collector
	Metrics *observability.Metrics
	Hub     *StreamHub

	rateLimiter *ratelimit.RateLimiter
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, runner *ingest.Runner, collector *stats.Collector, metrics *observability.Metrics, hub *StreamHub) *APIV1Service {
	return &APIV1Service{
		Profile:     profile,
		Store:       store,
		Runner:      runner,
		Stats:       collector,
		Metrics:     metrics,
		Hub:         hub,
		rateLimiter: ratelimit.NewRateLimiter(profile.RateLimit, profile.RateBurst),
	}
}

// RegisterRoutes registers the ingestion and read endpoints with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	echoServer.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"*"},
	}))

	// The producer posts to /event; /api/v1/events is the same handler.
	throttle := s.rateLimiter.Throttle()
	echoServer.POST("/event", s.IngestEvent, throttle)
	echoServer.POST("/api/v1/events", s.IngestEvent, throttle)

	apiGroup := echoServer.Group("/api/v1")
	apiGroup.GET("/graph", s.GetGraph)
	apiGroup.GET("/graph/stream", s.StreamGraph)
	apiGroup.GET("/stats", s.GetStats)

	echoServer.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	echoServer.GET("/healthz", s.Healthz)
}
