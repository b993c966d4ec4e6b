package termatlas

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record; it is the default logger's handler so
// a host process that never calls SetLogger gets silence.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler       { return h }
func (h nopHandler) WithGroup(string) slog.Handler            { return h }

var defaultLogger = slog.New(nopHandler{})

var pkgLogger atomic.Pointer[slog.Logger]

func init() {
	pkgLogger.Store(defaultLogger)
}

// SetLogger installs the logger used for the package's internal
// diagnostics: debug for internal bookkeeping, info for lifecycle events
// (atlas growth, device (re)creation), warn for non-fatal issues (shaping
// fallback, atlas reset, device loss). Passing nil restores the silent
// default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = defaultLogger
	}
	pkgLogger.Store(l)
}

// Logger returns the currently installed logger.
func Logger() *slog.Logger {
	return pkgLogger.Load()
}
