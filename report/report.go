// Package report delivers final session intelligence reports to external
// sinks. The engine fires deliveries asynchronously; sinks must therefore be
// safe for concurrent use and bound their own I/O.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hupe1980/honeymesh/core"
	"github.com/hupe1980/honeymesh/logging"
)

// WebhookOptions configure a WebhookSink.
type WebhookOptions struct {
	// Timeout bounds a single delivery attempt end to end.
	Timeout time.Duration
	// Retries is the number of additional attempts after a failed delivery.
	Retries int
	// Backoff is the base wait between attempts; attempt n waits n*Backoff.
	Backoff time.Duration
	// APIKey, when set, is sent as the x-api-key header.
	APIKey string
	// HTTPClient overrides the default client; its Timeout is left untouched.
	HTTPClient *http.Client
	// Logger receives delivery outcomes.
	Logger logging.Logger
}

// WebhookSink POSTs the report as JSON to a fixed URL. A non-2xx response is
// a delivery failure.
type WebhookSink struct {
	url    string
	client *http.Client
	opts   WebhookOptions
}

var _ core.ReportSink = (*WebhookSink)(nil)

// NewWebhookSink creates a sink delivering to url.
func NewWebhookSink(url string, optFns ...func(o *WebhookOptions)) *WebhookSink {
	opts := WebhookOptions{
		Timeout: 10 * time.Second,
		Retries: 2,
		Backoff: 500 * time.Millisecond,
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &WebhookSink{url: url, client: client, opts: opts}
}

// Deliver implements core.ReportSink. Attempts are spaced by a short linear
// backoff; the context cancels both the in-flight request and the waits.
func (s *WebhookSink) Deliver(ctx context.Context, rep core.Report) error {
	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= s.opts.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * s.opts.Backoff):
			}
		}

		lastErr = s.post(ctx, body)
		if lastErr == nil {
			s.opts.Logger.Info("report delivered", "session_id", rep.SessionID, "attempt", attempt+1)
			return nil
		}
		s.opts.Logger.Warn("report delivery attempt failed",
			"session_id", rep.SessionID, "attempt", attempt+1, "error", lastErr.Error())
	}
	return fmt.Errorf("deliver report for session %s: %w", rep.SessionID, lastErr)
}

func (s *WebhookSink) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.opts.APIKey != "" {
		req.Header.Set("x-api-key", s.opts.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Collector is an in-memory sink that records every delivered report. It is
// used in tests and as a default when no webhook is configured.
type Collector struct {
	mu      sync.Mutex
	reports []core.Report
}

var _ core.ReportSink = (*Collector)(nil)

// NewCollector creates an empty Collector.
func NewCollector() *Collector { return &Collector{} }

// Deliver implements core.ReportSink.
func (c *Collector) Deliver(_ context.Context, rep core.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, rep)
	return nil
}

// Reports returns a copy of everything delivered so far.
func (c *Collector) Reports() []core.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.Report(nil), c.reports...)
}
