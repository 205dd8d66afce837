package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepoLogger_LogWrite(t *testing.T) {
	var buf bytes.Buffer
	prev := GlobalLogger
	SetLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer SetLogger(prev)

	NewRepoLogger("posts").LogWrite(context.Background(), "create", 7, slog.String("author", "alice"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "repository create", entry["msg"])
	assert.Equal(t, "posts", entry["table"])
	assert.Equal(t, float64(7), entry["id"])
	assert.Equal(t, "alice", entry["author"])
}

func TestRepoLogger_LogError(t *testing.T) {
	var buf bytes.Buffer
	prev := GlobalLogger
	SetLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer SetLogger(prev)

	NewRepoLogger("comments").LogError(context.Background(), errors.New("boom"), "delete")
	assert.Contains(t, buf.String(), `"error":"boom"`)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

func TestSetLogger_IgnoresNil(t *testing.T) {
	prev := GlobalLogger
	SetLogger(nil)
	assert.Same(t, prev, GlobalLogger)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestRecordMutation(t *testing.T) {
	before := counterValue(t, Mutations.WithLabelValues("post.create", "error"))
	RecordMutation("post.create", errors.New("duplicate"))
	assert.Equal(t, before+1, counterValue(t, Mutations.WithLabelValues("post.create", "error")))

	beforeOK := counterValue(t, Mutations.WithLabelValues("post.create", "ok"))
	RecordMutation("post.create", nil)
	assert.Equal(t, beforeOK+1, counterValue(t, Mutations.WithLabelValues("post.create", "ok")))
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "blogfeed-test"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	span, ctx := StartFeedSpan(context.Background(), "home", 2)
	assert.NotNil(t, ctx)
	span.SetError(errors.New("ignored"))
	span.End()
}
