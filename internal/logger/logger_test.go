package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	dec := json.NewDecoder(buf)
	for dec.More() {
		var m map[string]interface{}
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestLogger_WritesCommonFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("api-server", &buf, "debug")

	log.Info("order_created", "Order created", "req-1", map[string]interface{}{"order_id": 7})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	entry := lines[0]
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "api-server", entry["service"])
	assert.Equal(t, "order_created", entry["action"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "Order created", entry["message"])
	assert.EqualValues(t, 7, entry["order_id"])
	assert.NotEmpty(t, entry["timestamp"])
}

func TestLogger_ErrorObject(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("api-server", &buf, "debug")

	log.Error("db_query_failed", "Query failed", "req-2", errors.New("boom"), nil)
	log.Error("validation_failed", "No cause", "req-3", nil, nil)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	errObj, ok := lines[0]["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "boom", errObj["msg"])
	assert.NotContains(t, lines[1], "error")
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("api-server", &buf, "warn")

	log.Debug("request_started", "GET /", "", nil)
	log.Info("service_started", "started", "", nil)
	log.Warn("event_publish_failed", "broker down", "", nil)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "warn", lines[0]["level"])
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", RequestID(ctx))

	id := GenerateRequestID()
	assert.Len(t, id, 36)
	assert.Equal(t, id, RequestID(WithRequestID(ctx, id)))
}
