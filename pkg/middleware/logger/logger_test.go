package logger

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddleware_LogsAllowlistedBodiesAndRestoresStream(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	SetAccessLogger(zap.New(core))
	AddBodyLogPaths("/webhook")

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		seen = string(b)
		w.WriteHeader(http.StatusAccepted)
	})
	h := (&Middleware{bodies: true}).Middleware(nil)(next)

	body := `{"model":"tenant"}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, body, seen)
	entries := logs.TakeAll()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, body, fields["requestData"])
	assert.EqualValues(t, http.StatusAccepted, fields["status"])
	assert.Equal(t, "/webhook", fields["uri"])

	// Large bodies pass through whole but are not logged.
	big := `{"x":"` + strings.Repeat("a", maxLoggedBody) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, big, seen)
	entries = logs.TakeAll()
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].ContextMap(), "requestData")

	// Off by default.
	h = (&Middleware{}).Middleware(nil)(next)
	req = httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), req)
	entries = logs.TakeAll()
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].ContextMap(), "requestData")
}
