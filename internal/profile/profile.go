package profile

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	defaultPort         = 3000
	defaultQueueSize    = 1024
	defaultStreamBuffer = 256
	defaultDriver       = "memory"
)

// Profile is the configuration to start the searchviz server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Driver is the graph storage driver (only "memory")
	Driver string
	// Version is the current version of server
	Version string

	// QueueSize bounds the ingest FIFO between the HTTP handlers and the reducer.
	QueueSize int
	// StreamBuffer is the per-subscriber buffer of the graph change stream.
	StreamBuffer int
	// RateLimit is the sustained events/sec allowed per client, 0 disables throttling.
	RateLimit float64
	// RateBurst is the burst size of the per-client limiter.
	RateBurst int

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFormat is "text" or "json". Empty picks text in dev and json in prod.
	LogFormat string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// Address returns the host:port the HTTP server listens on.
func (p *Profile) Address() string {
	return net.JoinHostPort(p.Addr, strconv.Itoa(p.Port))
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (p *Profile) SlogLevel() slog.Level {
	switch strings.ToLower(p.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Port == 0 {
		p.Port = defaultPort
	}
	if p.Port < 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}

	if p.Driver == "" {
		p.Driver = defaultDriver
	}
	if p.QueueSize <= 0 {
		p.QueueSize = defaultQueueSize
	}
	if p.StreamBuffer <= 0 {
		p.StreamBuffer = defaultStreamBuffer
	}

	if p.RateLimit < 0 {
		return errors.Errorf("invalid rate limit %v: must not be negative", p.RateLimit)
	}
	if p.RateLimit > 0 && p.RateBurst <= 0 {
		p.RateBurst = int(p.RateLimit) * 2
		if p.RateBurst < 1 {
			p.RateBurst = 1
		}
	}

	switch strings.ToLower(p.LogFormat) {
	case "":
		if p.IsDev() {
			p.LogFormat = "text"
		} else {
			p.LogFormat = "json"
		}
	case "text", "json":
		p.LogFormat = strings.ToLower(p.LogFormat)
	default:
		return errors.Wrap(fmt.Errorf("unsupported log format %q", p.LogFormat), "invalid profile")
	}

	return nil
}
