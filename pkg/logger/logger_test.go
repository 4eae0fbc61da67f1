package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONWithService(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Service: "inventory"})
	log.Info("Pool created", "pool_id", "p-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Pool created", entry["msg"])
	assert.Equal(t, "inventory", entry[SERVICE])
	assert.Equal(t, "p-1", entry["pool_id"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Level: WARN, Format: "text"})
	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "msg=shown"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(EMPTY))
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Output: &buf})
	tagged := base.With("request_id", "r-1")

	assert.Same(t, base, FromContext(context.Background(), base))
	got := FromContext(NewContext(context.Background(), tagged), base)
	require.Same(t, tagged, got)

	got.Info("tagged")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "r-1", entry["request_id"])
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Level: INFO})

	log.Printer(slog.LevelDebug, "kafka client", "topic", "alerts").Printf("dial %s", "broker:9092")
	assert.Zero(t, buf.Len(), "debug bridge is filtered at info")

	log.Printer(slog.LevelError, "kafka client error", "topic", "alerts").Printf("write %d messages: %v", 2, "timeout")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kafka client error", entry["msg"])
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "alerts", entry["topic"])
	assert.Equal(t, "write 2 messages: timeout", entry["detail"])
}
