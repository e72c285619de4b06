package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// L is the global logger. It writes text to stderr until InitLogger runs.
var L = slog.New(slog.NewTextHandler(os.Stderr, nil))

type contextKey string

const loggerKey contextKey = "logger"

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown values yield
// INFO and ok=false.
func ParseLevel(s string) (level slog.Level, ok bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		s = "warn"
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, false
	}
	return level, true
}

// New builds the JSON logger the service runs with. Times are RFC3339.
func New(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// InitLogger replaces L with a JSON logger on stdout. Call it once, after
// loading config.
func InitLogger(logLevelStr string) {
	level, ok := ParseLevel(logLevelStr)
	L = New(os.Stdout, level)
	slog.SetDefault(L)
	if !ok {
		L.Warn("Invalid LOG_LEVEL specified, defaulting to INFO", "configuredLevel", logLevelStr)
	}
	L.Info("Logger initialized", "level", level.String())
}

// FromContext returns the request-scoped logger, or L.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return L
}

func ToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// With returns ctx carrying its logger extended with args, so later calls
// down the stack log them too.
func With(ctx context.Context, args ...any) context.Context {
	return ToContext(ctx, FromContext(ctx).With(args...))
}
