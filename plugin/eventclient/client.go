// Package eventclient posts search events to a searchviz server.
package eventclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrDisabled is returned by Send once the client has stopped sending.
var ErrDisabled = errors.New("event client disabled after transport failure")

// Config holds event client configuration.
type Config struct {
	URL     string
	Timeout time.Duration
	Headers map[string]string
}

// Client sends one event per request. After the first transport failure it
// stops sending for good, so an unreachable viewer never slows the search.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	disabled   atomic.Bool
}

// New creates an event client.
func New(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: slog.Default(),
	}
}

// Disabled reports whether a transport failure has switched the client off.
func (c *Client) Disabled() bool {
	return c.disabled.Load()
}

// Send posts one event payload. A message_id is stamped on payloads that
// lack one; the payload map is modified in place.
func (c *Client) Send(ctx context.Context, payload map[string]any) error {
	if c.Disabled() {
		return ErrDisabled
	}

	if id, _ := payload["message_id"].(string); id == "" {
		payload["message_id"] = newMessageID()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create event request")
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			c.disabled.Store(true)
		}
		c.logger.Error("event request failed, disabling client", "url", c.config.URL, "error", err)
		return errors.Wrap(err, "event request failed")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		c.logger.Warn("event endpoint returned error", "url", c.config.URL, "status", resp.StatusCode)
		return errors.Errorf("event endpoint returned status %d", resp.StatusCode)
	}

	c.logger.Debug("event sent",
		"event_type", payload["event_type"],
		"message_id", payload["message_id"],
		"status", resp.StatusCode,
	)
	return nil
}

// ReplayResult summarises one Replay call.
type ReplayResult struct {
	Sent    int
	Skipped int
	Failed  int
}

// Replay sends every JSON object of a JSON-lines stream in order. Blank and
// undecodable lines are skipped; it stops early when the client is disabled
// or ctx is done.
func (c *Client) Replay(ctx context.Context, r io.Reader, interval time.Duration) (ReplayResult, error) {
	var result ReplayResult

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var payload map[string]any
		if err := json.Unmarshal(raw, &payload); err != nil {
			c.logger.Warn("skipping undecodable line", "line", line, "error", err)
			result.Skipped++
			continue
		}

		if err := c.Send(ctx, payload); err != nil {
			result.Failed++
			if c.Disabled() || ctx.Err() != nil {
				return result, err
			}
			continue
		}
		result.Sent++

		if interval > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(interval):
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return result, errors.Wrap(err, "failed to read events")
	}
	return result, nil
}

// newMessageID returns a time-based uuid, falling back to a random one.
func newMessageID() string {
	id, err := uuid.NewUUID()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
