package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Run("writes JSON with timestamp key", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Config{Level: "info", Format: "json", Output: &buf})

		log.Info("counter received", zap.String("operation", "42"), zap.Uint64("count", 7))
		require.NoError(t, log.Sync())

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, "counter received", entry["msg"])
		assert.Equal(t, "42", entry["operation"])
		assert.EqualValues(t, 7, entry["count"])
		assert.Contains(t, entry, "timestamp")
	})

	t.Run("respects level", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Config{Level: "warn", Output: &buf})

		log.Info("dropped")
		assert.Zero(t, buf.Len())

		log.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Config{Level: "loud", Output: &buf})

		log.Debug("dropped")
		log.Info("kept")
		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("console format", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Config{Level: "info", Format: "console", Output: &buf})

		log.Info("hello")
		assert.Contains(t, buf.String(), "hello")
		assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
	})
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Output: &buf})

	WithRequestID(log, "req-1").Info("x")
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)

	assert.Same(t, log, WithRequestID(log, ""))
}
