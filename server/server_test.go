package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/honeymesh/engine"
	"github.com/hupe1980/honeymesh/model"
	"github.com/hupe1980/honeymesh/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, optFns ...func(o *Options)) *Server {
	t.Helper()
	m := model.NewMockModel("test")
	m.AddResponse("", `{"reply":"Sir which account number are you seeing on your side?","scamDetected":true,"confidence":0.9}`)

	eng, err := engine.New(session.NewInMemoryStore(), m)
	require.NoError(t, err)
	return New(eng, optFns...)
}

func doJSON(t *testing.T, handler http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_Analyze(t *testing.T) {
	handler := newTestServer(t).Handler()

	rec := doJSON(t, handler, http.MethodPost, "/analyze",
		`{"sessionId":"s1","message":{"sender":"scammer","text":"your account is blocked"}}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])
	assert.NotEmpty(t, resp["reply"])
}

func TestServer_AnalyzeToleratesSnakeCase(t *testing.T) {
	handler := newTestServer(t).Handler()

	rec := doJSON(t, handler, http.MethodPost, "/analyze",
		`{"session_id":"s1","message":{"sender":"scammer","text":"share otp now"},"conversation_history":[{"sender":"scammer","text":"hello"}]}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_AnalyzeToleratesEpochTimestamps(t *testing.T) {
	handler := newTestServer(t).Handler()

	rec := doJSON(t, handler, http.MethodPost, "/analyze",
		`{"sessionId":"s1","message":{"sender":"scammer","text":"urgent","timestamp":1735725000000}}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_AnalyzeInvalidJSON(t *testing.T) {
	handler := newTestServer(t).Handler()
	rec := doJSON(t, handler, http.MethodPost, "/analyze", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_AnalyzeMissingMessage(t *testing.T) {
	handler := newTestServer(t).Handler()
	rec := doJSON(t, handler, http.MethodPost, "/analyze", `{"sessionId":"s1"}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServer_APIKey(t *testing.T) {
	handler := newTestServer(t, func(o *Options) { o.APIKey = "secret" }).Handler()
	body := `{"sessionId":"s1","message":{"sender":"scammer","text":"hello sir"}}`

	t.Run("missing key", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/analyze", body, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong key", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/analyze", body, map[string]string{"x-api-key": "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("header key", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/analyze", body, map[string]string{"x-api-key": "secret"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("query key", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/analyze?apikey=secret", body, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestServer_AnalyzeProbe(t *testing.T) {
	handler := newTestServer(t, func(o *Options) { o.APIKey = "secret" }).Handler()

	// The GET probe needs no auth; it exists so misdirected monitors see a
	// friendly hint instead of 405.
	rec := doJSON(t, handler, http.MethodGet, "/analyze", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alive", resp["status"])
}

func TestServer_Ping(t *testing.T) {
	handler := newTestServer(t).Handler()

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodPost} {
		rec := doJSON(t, handler, method, "/ping", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, method)
	}
	assert.Equal(t, "alive", doJSON(t, handler, http.MethodGet, "/ping", "", nil).Body.String())

	rec := doJSON(t, handler, http.MethodDelete, "/ping", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_HealthAndRoot(t *testing.T) {
	handler := newTestServer(t).Handler()

	rec := doJSON(t, handler, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])

	rec = doJSON(t, handler, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "honeymesh")
}

func TestServer_RequestID(t *testing.T) {
	handler := newTestServer(t).Handler()

	rec := doJSON(t, handler, http.MethodGet, "/health", "", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = doJSON(t, handler, http.MethodGet, "/health", "", map[string]string{"X-Request-Id": "req-42"})
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))
}

func TestServer_CapacityGate(t *testing.T) {
	srv := newTestServer(t, func(o *Options) { o.MaxConcurrent = 1 })
	handler := srv.Handler()

	// Hold the only slot, then observe the immediate 503.
	require.True(t, srv.gate.TryAcquire(1))
	defer srv.gate.Release(1)

	rec := doJSON(t, handler, http.MethodPost, "/analyze",
		`{"sessionId":"s1","message":{"sender":"scammer","text":"hello sir"}}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_RecoversPanickingHandler(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.recoverPanics(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := doJSON(t, handler, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp["status"])
}

func TestServer_ShutdownFlushesReports(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))
}
