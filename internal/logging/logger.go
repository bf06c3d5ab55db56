package logging

import (
    "log/slog"
    "os"
    "strings"

    "github.com/Subham7008/Quick-Serve/internal/config"
)

// New builds a slog.Logger configured according to the provided logging config.
func New(cfg config.LoggingConfig) *slog.Logger {
    opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

    var handler slog.Handler
    if strings.EqualFold(cfg.Format, "json") {
        handler = slog.NewJSONHandler(os.Stdout, opts)
    } else {
        handler = slog.NewTextHandler(os.Stdout, opts)
    }
    return slog.New(handler)
}

func parseLevel(level string) slog.Level {
    switch strings.ToLower(strings.TrimSpace(level)) {
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
