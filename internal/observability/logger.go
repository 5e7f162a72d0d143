package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type ctxKey string

const (
	ctxKeyConversationID ctxKey = "conversation_id"
)

// JSON logger; stderr until Init points it somewhere the TUI does not draw.
var logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))

// Init replaces the package logger.
func Init(w io.Writer, level string) *slog.Logger {
	logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
	return logger
}

// Discard silences logging, used by tests and one-shot commands.
func Discard() {
	logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func Logger() *slog.Logger {
	return logger
}

// WithFields returns a logger with additional fields.
func WithFields(kv ...any) *slog.Logger {
	return logger.With(kv...)
}

// WithConversationID stores a conversation_id in the context.
func WithConversationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyConversationID, id)
}

// LoggerFromContext adds conversation_id if present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	id, _ := ctx.Value(ctxKeyConversationID).(string)
	if id == "" {
		return logger
	}
	return logger.With("conversation_id", id)
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
