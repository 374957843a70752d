package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := log
	log = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() { log = previous })
	return &buf
}

func TestWithAndWithError_AddFields(t *testing.T) {
	buf := captureLogs(t)

	With("worker", "subscription_worker").Warn("Worker loop disabled")
	assert.Contains(t, buf.String(), `"worker":"subscription_worker"`)
	assert.Contains(t, buf.String(), `"level":"WARN"`)

	buf.Reset()
	WithError(errors.New("dial tcp: connection refused")).Warn("Redis cache unavailable")
	assert.Contains(t, buf.String(), `"error":"dial tcp: connection refused"`)
}

func TestDebugAndWorkerLog_Levels(t *testing.T) {
	buf := captureLogs(t)

	Debug("Worker pass found nothing", "operation", "expiry_sweep")
	assert.Contains(t, buf.String(), `"level":"DEBUG"`)

	buf.Reset()
	WorkerLog("subscription_worker", "index_reconcile", 2, nil)
	assert.Contains(t, buf.String(), `"level":"INFO"`)
	assert.Contains(t, buf.String(), `"affected":2`)

	buf.Reset()
	WorkerLog("subscription_worker", "index_reconcile", 0, errors.New("boom"))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}
