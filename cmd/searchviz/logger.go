package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/hrygo/searchviz/internal/profile"
)

// envKeyReplacer maps flag names onto environment keys: queue-size reads
// SEARCHVIZ_QUEUE_SIZE.
var envKeyReplacer = strings.NewReplacer("-", "_")

func newLogger(p *profile.Profile, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     p.SlogLevel(),
		AddSource: p.IsDev() && p.SlogLevel() == slog.LevelDebug,
	}

	var handler slog.Handler
	if p.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("service", "searchviz")
}
