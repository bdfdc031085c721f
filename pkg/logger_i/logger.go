package logger_i

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/akolanti/PaperRAG/internal/config"
)

type Logger struct {
	attrs []any
}

// Init installs the process wide handler. Prod logs JSON, dev logs text.
func Init(isProd bool, level string) {
	InitWithWriter(os.Stdout, isProd, level)
}

func InitWithWriter(w io.Writer, isProd bool, level string) {
	options := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if isProd {
		if options.Level.Level() < config.LOG_LEVEL_PROD {
			options.Level = config.LOG_LEVEL_PROD
		}
		handler = slog.NewJSONHandler(w, options)
	} else {
		handler = slog.NewTextHandler(w, options)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

// NewLogger resolves the default handler on every call, so package level loggers follow Init.
func NewLogger(section string) *Logger {
	return &Logger{attrs: []any{"component", section}}
}

func (l *Logger) inner() *slog.Logger {
	return slog.Default().With(l.attrs...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.inner().Info(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.inner().Error(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.inner().Warn(msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	inner := l.inner()
	if !inner.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	inner.Debug(msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	attrs := make([]any, 0, len(l.attrs)+len(args))
	attrs = append(attrs, l.attrs...)
	return &Logger{attrs: append(attrs, args...)}
}

// WithContext tags the logger with the trace id carried by ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	if trace, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok && trace != "" {
		return l.With("traceId", trace)
	}
	return l
}

// TraceId returns the trace id stored in ctx or "".
func TraceId(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	trace, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return trace
}
