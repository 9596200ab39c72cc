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

func TestConfigs(t *testing.T) {
	t.Run("default is console on stdout", func(t *testing.T) {
		cfg := DefaultConfig()

		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "console", cfg.Format)
		assert.Equal(t, "stdout", cfg.Output)
		assert.NotEmpty(t, cfg.TimeFormat)
	})

	t.Run("production is json on stdout", func(t *testing.T) {
		cfg := ProductionConfig()

		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "json", cfg.Format)
		assert.Equal(t, "stdout", cfg.Output)
		assert.NotEmpty(t, cfg.TimeFormat)
	})
}

func TestNew(t *testing.T) {
	cases := []struct {
		name string
		cfg  *Config
	}{
		{"default config", DefaultConfig()},
		{"production config", ProductionConfig()},
		{"debug console", &Config{Level: "debug", Format: "console", Output: "stdout"}},
		{"json without explicit time layout", &Config{Level: "info", Format: "json", Output: "stdout"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			log, err := New(tc.cfg)
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestNewForEnvironment(t *testing.T) {
	for _, env := range []string{"development", "production", "staging"} {
		t.Run(env, func(t *testing.T) {
			log, err := NewForEnvironment(env)
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestLevelFor(t *testing.T) {
	cases := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			assert.Equal(t, tc.expected, levelFor(tc.level))
		})
	}
}

func TestNewSink(t *testing.T) {
	t.Run("standard streams", func(t *testing.T) {
		for _, output := range []string{"stdout", "stderr", "STDOUT", ""} {
			assert.NotNil(t, newSink(output))
		}
	})

	t.Run("file path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		assert.NotNil(t, newSink(path))

		_, err := os.Stat(path)
		assert.NoError(t, err, "sink should create the log file")
	})

	t.Run("unopenable path falls back to stdout", func(t *testing.T) {
		assert.NotNil(t, newSink(filepath.Join(t.TempDir(), "missing", "dir", "app.log")))
	})
}

func TestFileOutputProducesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	log.Info("order opened", zap.String("order_number", "NT-20260815-00001"))
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, "order opened", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "NT-20260815-00001", entry["order_number"])
}

func TestDebugIsFilteredAtInfoLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	log.Debug("should not appear")
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestEncoders(t *testing.T) {
	assert.NotNil(t, newEncoder(&Config{Format: "console"}))
	assert.NotNil(t, newEncoder(&Config{Format: "json"}))
}

func TestChildLoggers(t *testing.T) {
	log, err := NewForEnvironment("development")
	require.NoError(t, err)

	assert.NotEqual(t, log, With(log, zap.String("key", "value")))
	assert.NotEqual(t, log, Named(log, "ledger"))
}
