package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	context_ "github.com/mkrupp/clickcard/internal/infra/context"
	. "github.com/mkrupp/clickcard/internal/infra/logging"
)

// These tests reconfigure the global logger and must not run in parallel.

//nolint:paralleltest
func TestGetLogger_JSON(t *testing.T) {
	var buf bytes.Buffer

	Configure(context.Background(), LoggerConfig{
		Level:        "info",
		JSON:         true,
		OutputHandle: &buf,
	}, "clickcard.test")

	log := GetLogger("svc.cardsvc.test")

	ctx := context_.WithTraceID(context.Background(), "trace-1")
	ctx = context_.WithCardID(ctx, "card-1")

	log.DebugContext(ctx, "hidden")
	log.InfoContext(ctx, "visible", "answer", 42)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))

	assert.Equal(t, "visible", record["msg"])
	assert.Equal(t, "clickcard.test", record["app"])
	assert.Equal(t, "svc.cardsvc.test", record["logger"])
	assert.EqualValues(t, 42, record["answer"])
	assert.Equal(t, map[string]any{"id": "trace-1"}, record["trace"])
	assert.Equal(t, map[string]any{"id": "card-1"}, record["card"])
}

//nolint:paralleltest
func TestGetLogger_Filter(t *testing.T) {
	var buf bytes.Buffer

	Configure(context.Background(), LoggerConfig{
		Level:        "error",
		Filter:       "svc:debug,svc.cardsvc.quiet:error",
		OutputHandle: &buf,
	}, "test")

	GetLogger("svc.cardsvc.loud").Debug("from loud")
	GetLogger("svc.cardsvc.quiet").Warn("from quiet")
	GetLogger("repo.asset").Info("from repo")

	out := buf.String()
	assert.Contains(t, out, "from loud")
	assert.NotContains(t, out, "from quiet")
	assert.NotContains(t, out, "from repo")
}

//nolint:paralleltest
func TestGetLogger_Discard(t *testing.T) {
	Configure(context.Background(), LoggerConfig{Output: "discard"}, "test")

	log := GetLogger("anything")
	assert.False(t, log.Enabled(context.Background(), LevelError))
}
