package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/searchviz/internal/profile"
	"github.com/hrygo/searchviz/server/internal/observability"
	"github.com/hrygo/searchviz/server/reducer"
	apiv1 "github.com/hrygo/searchviz/server/router/api/v1"
	"github.com/hrygo/searchviz/server/runner/ingest"
	"github.com/hrygo/searchviz/server/stats"
	"github.com/hrygo/searchviz/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	reducer    *reducer.Reducer
	runner     *ingest.Runner
	stats      *stats.Collector
	metrics    *observability.Metrics
	hub        *apiv1.StreamHub
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	s := &Server{
		Profile: profile,
		Store:   store,
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())
	s.echoServer = echoServer

	s.metrics = observability.NewMetrics()
	s.reducer = reducer.New(store)
	s.stats = stats.NewCollector(store)
	s.hub = apiv1.NewStreamHub(profile.StreamBuffer, s.metrics)
	s.reducer.Subscribe(s.hub)
	s.runner = ingest.NewRunner(store, s.reducer, s.stats, s.metrics, profile.QueueSize)

	apiV1Service := apiv1.NewAPIV1Service(profile, store, s.runner, s.stats, s.metrics, s.hub)
	apiV1Service.RegisterRoutes(echoServer)

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to create server")
	}
	return s, nil
}

// Start runs the ingest runner and the HTTP server until ctx is done or
// either of them fails.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.Profile.Address())
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}
	s.echoServer.Listener = listener

	g, gctx := errgroup.WithContext(ctx)

	s.stats.Start(gctx)

	runnerCtx, cancelRunner := context.WithCancel(context.Background())
	g.Go(func() error {
		s.runner.Run(runnerCtx)
		return nil
	})

	g.Go(func() error {
		slog.Info("searchviz server listening", "addr", listener.Addr().String(), "version", s.Profile.Version, "mode", s.Profile.Mode)
		if err := s.echoServer.Start(s.Profile.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server failed")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Shutdown(shutdownCtx)
		// Stop the runner only once no handler can enqueue anymore.
		cancelRunner()
		return nil
	})

	err = g.Wait()
	if closeErr := s.Store.Close(); closeErr != nil {
		slog.Error("failed to close store", slog.String("error", closeErr.Error()))
	}
	slog.Info("server stopped properly")
	return err
}

func (s *Server) Shutdown(ctx context.Context) {
	slog.Info("server shutting down")

	// Streams never end on their own, close them before draining requests.
	s.hub.Close()
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	s.stats.Stop()
}
