// Package logging configures the structured logger shared by the CLI and
// the completion hosts.
package logging

import (
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
)

// Leveler is the process-wide level. Hosts adjust it at runtime
// (LSP setTrace, --verbose) without rebuilding loggers.
var Leveler = &AtomicLeveler{}

func init() {
	Leveler.SetLevel(slog.LevelWarn)
}

type AtomicLeveler struct {
	level atomic.Int32
}

func (a *AtomicLeveler) SetLevel(level slog.Level) {
	a.level.Store(int32(level))
}

// Level implements slog.Leveler.
func (a *AtomicLeveler) Level() slog.Level {
	return slog.Level(a.level.Load())
}

var _ slog.Leveler = (*AtomicLeveler)(nil)

func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "err", "error":
		return slog.LevelError, true
	default:
		return 0, false
	}
}

// New returns a text logger writing to w at the shared level.
func New(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: Leveler}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
