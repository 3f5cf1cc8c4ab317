package observability

import "log/slog"

// SlogLogger adapts a *slog.Logger to the Logger interface.
type SlogLogger struct {
	L *slog.Logger
}

// NewSlog wraps l; a nil l uses slog.Default.
func NewSlog(l *slog.Logger) SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return SlogLogger{L: l}
}

func slogArgs(fields []Field) []any {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, slog.Any(f.Key(), f.Value()))
	}
	return args
}

func (s SlogLogger) Debug(msg string, fields ...Field) { s.L.Debug(msg, slogArgs(fields)...) }
func (s SlogLogger) Info(msg string, fields ...Field)  { s.L.Info(msg, slogArgs(fields)...) }
func (s SlogLogger) Warn(msg string, fields ...Field)  { s.L.Warn(msg, slogArgs(fields)...) }
func (s SlogLogger) Error(msg string, fields ...Field) { s.L.Error(msg, slogArgs(fields)...) }

func (s SlogLogger) With(fields ...Field) Logger {
	return SlogLogger{L: s.L.With(slogArgs(fields)...)}
}
