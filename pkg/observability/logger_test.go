package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithField("developer", "jane@example.com").Info("developer synchronized")

	entry := logLine(t, &buf)
	assert.Equal(t, "developer synchronized", entry["msg"])
	assert.Equal(t, "jane@example.com", entry["developer"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WarnLevel, &buf)

	logger.Info("ignored")
	assert.Empty(t, buf.Bytes())

	logger.Warn("kept")
	assert.NotEmpty(t, buf.Bytes())
}

func TestLoggerSetLevelAffectsDerived(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)
	derived := logger.WithField("component", "cache")

	logger.SetLevel(ErrorLevel)

	derived.Info("ignored")
	assert.Empty(t, buf.Bytes())
}

func TestWithErrorIncludesType(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithError(errors.New("boom")).Error("operation failed")

	entry := logLine(t, &buf)
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "*errors.errorString", entry["error_type"])
}

func TestWithErrorNil(t *testing.T) {
	logger := NewLogger(InfoLevel, nil)
	assert.Same(t, logger, logger.WithError(nil))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLogLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLogLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLogLevel("ERROR"))
	assert.Equal(t, InfoLevel, ParseLogLevel("bogus"))
}

func TestFromContextIncludesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	ctx := WithLogger(context.Background(), logger)
	ctx = WithRequestID(ctx, "req-123")

	FromContext(ctx).Info("handled")

	entry := logLine(t, &buf)
	assert.Equal(t, "req-123", entry["request_id"])
}
