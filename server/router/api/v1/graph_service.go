package v1

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const streamKeepAlive = 15 * time.Second

// GetGraph returns the current graph snapshot.
// GET /api/v1/graph
func (s *APIV1Service) GetGraph(c echo.Context) error {
	graph, err := s.Store.Snapshot()
	if err != nil {
		slog.Error("failed to snapshot graph", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to read graph"})
	}
	return c.JSON(http.StatusOK, graph)
}

// StreamGraph streams graph changes as Server-Sent Events.
// GET /api/v1/graph/stream
//
// The first message is a "snapshot" event with the whole graph, followed by
// one "change" event per applied event with a version above the snapshot's.
func (s *APIV1Service) StreamGraph(c echo.Context) error {
	// Subscribe before the snapshot so no change falls between the two.
	id, changes, cancel := s.Hub.Subscribe()
	defer cancel()

	graph, err := s.Store.Snapshot()
	if err != nil {
		slog.Error("failed to snapshot graph", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to read graph"})
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	if err := writeSSE(res, "snapshot", graph.Version, graph); err != nil {
		return nil
	}
	slog.Debug("graph stream opened", "subscriber", id, "version", graph.Version)

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			slog.Debug("graph stream closed by client", "subscriber", id)
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if change.Version <= graph.Version {
				continue
			}
			if err := writeSSE(res, "change", change.Version, change); err != nil {
				return nil
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": keep-alive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

func writeSSE(res *echo.Response, name string, version int64, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "id: %d\nevent: %s\ndata: %s\n\n", version, name, data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
