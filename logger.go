package atomicconfig

import (
	"context"
	"fmt"
	"log/slog"
)

// Logger is the warn/error sink Store reports non-fatal, "skip and
// continue" conditions to: an unknown configuration property, an
// attempt to register a duplicate index engine, a locale that failed to
// resolve. It deliberately does not carry Debugf/Infof — the package's
// own verbose tracing (scan.go's debugLogRawScans) goes through a plain
// *slog.Logger instead, since it's an implementation detail, not
// something a caller of Store is meant to configure.
type Logger interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// slogLogger adapts a *slog.Logger to Logger; it's the default used when
// Options.Logger is nil.
type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps l (or slog.Default() if l is nil) as a Logger.
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return &slogLogger{l: l}
}

func (s *slogLogger) Warnf(format string, args ...any) {
	s.l.LogAttrs(context.Background(), slog.LevelWarn, fmt.Sprintf(format, args...))
}

func (s *slogLogger) Errorf(format string, args ...any) {
	s.l.LogAttrs(context.Background(), slog.LevelError, fmt.Sprintf(format, args...))
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// NewNopLogger returns a Logger that discards everything; useful for tests
// that want to assert on behavior without asserting on log output.
func NewNopLogger() Logger { return nopLogger{} }

// noopSlog backs scan.go's debug tracing, which is compiled out by the
// debugLogRawScans constant but still needs a non-nil *slog.Logger to call
// into if that constant is ever flipped on for local debugging.
var noopSlog = slog.New(slog.NewTextHandler(discardWriter{}, nil))

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
