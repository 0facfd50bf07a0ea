package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	ServiceKey   contextKey = "service"
	BrowserIDKey contextKey = "browser_id"
)

// contextKeys are copied from the context onto every record, in this order.
var contextKeys = []contextKey{RequestIDKey, UserIDKey, ServiceKey, BrowserIDKey}

// redacted attribute keys never reach the output.
var redacted = map[string]bool{
	"password":      true,
	"token":         true,
	"access_token":  true,
	"authorization": true,
}

var defaultLogger = New(os.Stdout, "info", "json")

// New builds a logger writing to w. level is debug, info, warn or error;
// format is json or text. Unknown values fall back to info and json.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(level),
		ReplaceAttr: redact,
	}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Setup replaces the package logger once configuration is known.
func Setup(level, format string) {
	defaultLogger = New(os.Stdout, level, format)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func redact(_ []string, a slog.Attr) slog.Attr {
	if redacted[strings.ToLower(a.Key)] {
		return slog.String(a.Key, "[REDACTED]")
	}
	return a
}

func Default() *slog.Logger {
	return defaultLogger
}

// SetDefault swaps the package logger, mainly so tests can capture output.
func SetDefault(l *slog.Logger) {
	defaultLogger = l
}

// WithContext returns the package logger carrying the request-scoped values
// found in ctx.
func WithContext(ctx context.Context) *slog.Logger {
	var attrs []any
	for _, key := range contextKeys {
		if v := ctx.Value(key); v != nil {
			attrs = append(attrs, string(key), v)
		}
	}
	if len(attrs) == 0 {
		return defaultLogger
	}
	return defaultLogger.With(attrs...)
}

func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Info(msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Error(msg, args...)
}

func DebugContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Debug(msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Warn(msg, args...)
}
