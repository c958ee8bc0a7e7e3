package uniforms

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely,
// making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// loggerPtr stores the active logger. Accessed atomically so that SetLogger can
// be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := slog.New(nopHandler{})
	loggerPtr.Store(l)
}

// SetLogger configures the logger used by the uniforms package. By default the
// package produces no log output. Recoverable failures (unknown names, size
// mismatches, out-of-range writes, missing textures) are reported here once per
// distinct cause; construction-time programmer errors panic instead.
//
// SetLogger is safe for concurrent use. Pass nil to restore the silent default.
//
// Parameters:
//   - l: the logger to install, or nil to disable logging
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by the uniforms package.
//
// Returns:
//   - *slog.Logger: the active logger
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// onceIndex deduplicates recoverable-error logging so a failure repeated every
// frame is reported a single time per distinct cause. It carries its own lock
// because read-only registry users may hit logging paths concurrently.
type onceIndex struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// first reports whether key has not been seen before, recording it as seen.
//
// Parameters:
//   - key: the distinct-cause key
//
// Returns:
//   - bool: true exactly once per key
func (o *onceIndex) first(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.seen == nil {
		o.seen = make(map[string]struct{})
	}
	if _, ok := o.seen[key]; ok {
		return false
	}
	o.seen[key] = struct{}{}
	return true
}

// errorOnce logs msg with args at error level, once per distinct formatted message.
func (su *shaderUniforms) errorOnce(msg string, args ...any) {
	if su.once.first(fmt.Sprint(append([]any{msg}, args...)...)) {
		Logger().Error(msg, args...)
	}
}

// warnOnce logs msg with args at warn level, once per distinct formatted message.
func (su *shaderUniforms) warnOnce(msg string, args ...any) {
	if su.once.first(fmt.Sprint(append([]any{msg}, args...)...)) {
		Logger().Warn(msg, args...)
	}
}
