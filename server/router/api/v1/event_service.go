package v1

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/searchviz/server/event"
	everrors "github.com/hrygo/searchviz/server/internal/errors"
	"github.com/hrygo/searchviz/server/internal/observability"
	"github.com/hrygo/searchviz/server/runner/ingest"
)

// IngestEvent accepts one event and hands it to the ingest queue.
// POST /event
//
// The producer never learns about failures: every request is acknowledged
// with an empty 200 and dropped events are only logged and counted.
func (s *APIV1Service) IngestEvent(c echo.Context) error {
	reqCtx := observability.NewRequestContext(slog.Default(), c.RealIP())

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxEventBytes))
	if err != nil {
		s.dropEvent(reqCtx, everrors.InvalidPayload(err))
		return c.NoContent(http.StatusOK)
	}

	ev, err := event.Decode(body)
	if err != nil {
		s.dropEvent(reqCtx, err)
		return c.NoContent(http.StatusOK)
	}
	if ev.MessageID() == "" {
		ev = event.WithMessageID(ev, observability.NewMessageID())
	}
	reqCtx.MessageID = ev.MessageID()
	reqCtx.EventType = string(ev.Type())

	env := ingest.Envelope{
		Event:      ev,
		RequestID:  reqCtx.RequestID,
		ReceivedAt: reqCtx.StartTime,
	}
	ctx := observability.WithRequestContext(c.Request().Context(), reqCtx)
	if err := s.Runner.Enqueue(ctx, env); err != nil {
		s.dropEvent(reqCtx, err)
		return c.NoContent(http.StatusOK)
	}

	reqCtx.Debug("event queued", slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
	return c.NoContent(http.StatusOK)
}

func (s *APIV1Service) dropEvent(reqCtx *observability.RequestContext, err error) {
	reason := string(everrors.GetCodeFromError(err, everrors.ErrCodeInvalidPayload))
	s.Stats.RecordDropped(reason)
	s.Metrics.RecordDropped(reason)
	reqCtx.Warn("event dropped",
		slog.String(observability.LogFieldErrorCode, reason),
		slog.String("error", err.Error()),
	)
}
