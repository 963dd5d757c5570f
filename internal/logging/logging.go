package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/masq"
)

// New creates a slog.Logger writing to stdout. Attributes tagged `masq:"secret"` or named
// like credentials are redacted, and a request id stored with WithRequestID is attached.
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: levelFromString(level),
		ReplaceAttr: masq.New(
			masq.WithTag("secret"),
			masq.WithFieldName("Password"),
			masq.WithFieldName("APIKey"),
			masq.WithFieldName("Token"),
			masq.WithFieldName("EncryptionKey"),
			masq.WithFieldName("PasswordHash"),
		),
	}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(contextHandler{handler})
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
