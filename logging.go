package parallel

import "log/slog"

// Logger is the diagnostic sink consumed by FailureCapture. It receives the
// message of every failure offered to Capture, winners and losers alike.
// Implementations must be safe for concurrent use.
//
// Keep this interface minimal: a message-string sink is all failure capture
// needs. Adapt richer loggers via NewSlogLogger or a small shim.
type Logger interface {
	Warn(msg string)
}

// NewSlogLogger adapts a *slog.Logger to the Logger interface.
// A nil argument yields the slog default logger.
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return slogLogger{l: l}
}

type slogLogger struct {
	l *slog.Logger
}

func (s slogLogger) Warn(msg string) { s.l.Warn(msg) }

// noopLogger discards all messages. It is the default sink.
type noopLogger struct{}

func (noopLogger) Warn(string) {}
