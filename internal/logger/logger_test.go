package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Writer: &buf,
		Format: "json",
		Level:  slog.LevelInfo,
	})

	log.Info("station starting", "port", "8090")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"msg":"station starting"`)
	assert.Contains(t, out, `"port":"8090"`)
}

func TestNew_ProductionDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Writer:      &buf,
		Environment: "production",
	})

	log.Info("hello")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Writer: &buf,
		Format: "pretty",
		Level:  slog.LevelWarn,
	})

	log.Debug("too quiet")
	log.Info("still too quiet")
	assert.Empty(t, buf.String())

	log.Warn("feed sync degraded")
	assert.Contains(t, buf.String(), "feed sync degraded")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json"})

	log.WithError(assert.AnError).Error("gateway call failed")
	assert.Contains(t, buf.String(), assert.AnError.Error())
}
