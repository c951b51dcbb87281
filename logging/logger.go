package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/turbot/pipe-fittings/sanitize"
	"github.com/wirvsvirus/landingzone/constants"
)

func Initialize(appName string) {
	slog.SetDefault(NewLogger(appName, os.Stderr))
}

// NewLogger returns a JSON logger writing to w which sanitizes log entries
func NewLogger(appName string, w io.Writer) *slog.Logger {
	level := getLogLevel()
	if level == constants.LogLevelOff {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	}

	handlerOptions := &slog.HandlerOptions{
		Level: level,

		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			sanitized := sanitize.Instance.SanitizeKeyValue(a.Key, a.Value.Any())

			return slog.Attr{
				Key:   a.Key,
				Value: slog.AnyValue(sanitized),
			}
		},
	}
	return slog.New(slog.NewJSONHandler(w, handlerOptions)).With("source", appName)
}

func getLogLevel() slog.Level {
	levelEnv := os.Getenv(constants.EnvLogLevel)

	switch strings.ToLower(levelEnv) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "off":
		return constants.LogLevelOff
	default:
		// batch runs are expected to report progress
		return slog.LevelInfo
	}
}
