package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/honeymesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookSink_DeliversEvaluatorSchema(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "secret", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, func(o *WebhookOptions) {
		o.APIKey = "secret"
	})

	var intel core.IntelligenceRecord
	intel.Add(core.CategoryPaymentHandles, "fraud@paytm")

	err := sink.Deliver(context.Background(), core.Report{
		SessionID:          "s1",
		Status:             "scam_detected",
		ScamDetected:       true,
		ScamType:           "upi_fraud",
		Confidence:         0.9,
		Intel:              intel,
		TotalTurns:         18,
		TotalMessages:      36,
		EngagementDuration: 540,
		Notes:              "Scammer requested OTP or sensitive credentials.",
	})
	require.NoError(t, err)

	assert.Equal(t, "s1", got["sessionId"])
	assert.Equal(t, true, got["scamDetected"])
	assert.Equal(t, "upi_fraud", got["scamType"])
	assert.Equal(t, 0.9, got["confidenceLevel"])
	assert.Equal(t, float64(18), got["totalTurns"])
	assert.Equal(t, float64(540), got["engagementDurationSeconds"])
	assert.Contains(t, got, "extractedIntelligence")
	assert.Contains(t, got, "agentNotes")
}

func TestWebhookSink_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, func(o *WebhookOptions) {
		o.Retries = 2
		o.Backoff = time.Millisecond
	})
	err := sink.Deliver(context.Background(), core.Report{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebhookSink_FailsAfterRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, func(o *WebhookOptions) {
		o.Retries = 1
		o.Backoff = time.Millisecond
	})
	err := sink.Deliver(context.Background(), core.Report{SessionID: "s1"})
	assert.Error(t, err)
}

func TestCollector_RecordsReports(t *testing.T) {
	c := NewCollector()
	require.NoError(t, c.Deliver(context.Background(), core.Report{SessionID: "a"}))
	require.NoError(t, c.Deliver(context.Background(), core.Report{SessionID: "b"}))

	reports := c.Reports()
	require.Len(t, reports, 2)
	assert.Equal(t, "a", reports[0].SessionID)
	assert.Equal(t, "b", reports[1].SessionID)
}
