package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestConfigDefaults(t *testing.T) {
	resolved := (&Config{}).withDefaults()

	assert.Equal(t, "info", resolved.Level)
	assert.Equal(t, "json", resolved.Format)
	assert.Equal(t, "stdout", resolved.Output)
	assert.Equal(t, defaultTimeFormat, resolved.TimeFormat)
}

func TestConfigDefaultsKeepExplicitValues(t *testing.T) {
	resolved := (&Config{Level: "debug", Format: "console", Output: "stderr"}).withDefaults()

	assert.Equal(t, "debug", resolved.Level)
	assert.Equal(t, "console", resolved.Format)
	assert.Equal(t, "stderr", resolved.Output)
	assert.Equal(t, defaultTimeFormat, resolved.TimeFormat)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"zero config", &Config{}},
		{"json to stdout", &Config{Level: "info", Format: "json", Output: "stdout"}},
		{"console to stderr", &Config{Level: "debug", Format: "console", Output: "stderr"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestNewUnwritableFileOutput(t *testing.T) {
	_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "connector.log")})
	assert.Error(t, err)
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connector.log")
	log, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	log.Info("backend registered", zap.String("backend", "p21"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, "backend registered", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "p21", entry["backend"])
	assert.NotEmpty(t, entry["time"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}

func TestLevelFiltersEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connector.log")
	log, err := New(&Config{Level: "warn", Format: "json", Output: path})
	require.NoError(t, err)

	log.Info("suppressed")
	log.Warn("kept")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "suppressed")
	assert.Contains(t, string(raw), "kept")
}

func TestSync(t *testing.T) {
	log, err := New(&Config{Output: "stderr"})
	require.NoError(t, err)

	// Sync may refuse on character devices depending on the platform; it
	// must not panic either way.
	assert.NotPanics(t, func() { _ = Sync(log) })
}
