package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wirvsvirus/landingzone/constants"
)

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		env  string
		want slog.Level
	}{
		{env: "", want: slog.LevelInfo},
		{env: "DEBUG", want: slog.LevelDebug},
		{env: "warn", want: slog.LevelWarn},
		{env: "error", want: slog.LevelError},
		{env: "off", want: constants.LogLevelOff},
		{env: "nonsense", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(constants.EnvLogLevel, tt.env)
			assert.Equal(t, tt.want, getLogLevel())
		})
	}
}

func TestNewLogger_Off(t *testing.T) {
	t.Setenv(constants.EnvLogLevel, "off")
	var buf bytes.Buffer
	NewLogger("test", &buf).Error("should not be written")
	assert.Empty(t, buf.String())
}
