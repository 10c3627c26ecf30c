// Package server exposes the turn-processing engine over HTTP. The analyze
// endpoint is deliberately tolerant: upstream callers disagree about field
// casing and timestamp types, and a rejected request wastes an engagement
// turn.
//
// Endpoints:
//   - POST /analyze — process one turn (authenticated)
//   - GET  /analyze — liveness hint for callers probing with the wrong verb
//   - GET|HEAD|POST /ping — plain keep-alive
//   - GET  /health — health check
//   - GET  / — service info
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hupe1980/honeymesh/core"
	"github.com/hupe1980/honeymesh/engine"
	"github.com/hupe1980/honeymesh/internal/util"
	"github.com/hupe1980/honeymesh/logging"
	"golang.org/x/sync/semaphore"
)

// Options configure the Server.
type Options struct {
	// Addr is the listen address.
	Addr string
	// APIKey protects POST /analyze via the x-api-key header or the apikey
	// query parameter. An empty key disables authentication.
	APIKey string
	// MaxConcurrent bounds simultaneously processed turns; excess requests
	// receive 503 immediately instead of queueing into the deadline.
	MaxConcurrent int64
	// Logger receives request telemetry.
	Logger logging.Logger
}

// Server is the HTTP front of one Engine.
type Server struct {
	engine *engine.Engine
	gate   *semaphore.Weighted
	opts   Options
	logger *logging.HoneymeshLogger
	http   *http.Server
}

// New creates a Server around eng.
func New(eng *engine.Engine, optFns ...func(o *Options)) *Server {
	opts := Options{
		Addr:          ":8080",
		MaxConcurrent: 64,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{
		engine: eng,
		gate:   semaphore.NewWeighted(opts.MaxConcurrent),
		opts:   opts,
		logger: logging.Wrap(opts.Logger).WithComponent("server"),
	}
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler, exported for tests and embedding.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", s.requireAPIKey(s.handleAnalyze))
	mux.HandleFunc("GET /analyze", s.handleAnalyzeProbe)
	mux.HandleFunc("/ping", s.handlePing)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)
	return s.recoverPanics(s.logRequests(mux))
}

// ListenAndServe blocks serving requests until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("server listening", "addr", s.opts.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests, then flushes pending report
// deliveries.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	s.engine.Flush()
	return err
}

// analyzeRequest tolerates both camelCase and snake_case field names.
type analyzeRequest struct {
	SessionID    string         `json:"sessionId"`
	SessionIDAlt string         `json:"session_id"`
	Message      core.Message   `json:"message"`
	History      []core.Message `json:"conversationHistory"`
	HistoryAlt   []core.Message `json:"conversation_history"`
	Metadata     core.Metadata  `json:"metadata"`
}

func (r analyzeRequest) turn() core.Turn {
	id := r.SessionID
	if id == "" {
		id = r.SessionIDAlt
	}
	if id == "" {
		// Callers that omit the id still deserve an engagement; they all
		// share one bucket.
		id = "unknown"
	}
	history := r.History
	if len(history) == 0 {
		history = r.HistoryAlt
	}
	return core.Turn{
		SessionID: id,
		Message:   r.Message,
		History:   history,
		Metadata:  r.Metadata,
	}
}

// analyzeResponse is the wire reply for a processed turn.
type analyzeResponse struct {
	Status string `json:"status"`
	Reply  string `json:"reply"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !s.gate.TryAcquire(1) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "error", "detail": "server is at capacity, retry shortly",
		})
		return
	}
	defer s.gate.Release(1)

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status": "error", "detail": "invalid JSON: " + err.Error(),
		})
		return
	}
	if req.Message.Text == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"status": "error", "detail": "message.text is required",
		})
		return
	}

	result, err := s.engine.ProcessTurn(r.Context(), req.turn())
	if err != nil {
		s.logger.Error("turn processing failed", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "error", "detail": "turn processing failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{Status: "success", Reply: result.Reply})
}

func (s *Server) handleAnalyzeProbe(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "alive",
		"message": "Server is running. Send POST request to analyze messages.",
	})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodPost:
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write([]byte("alive")) //nolint:errcheck
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "honeymesh",
		"description": "scam honeypot engagement and intelligence extraction service",
		"endpoints": map[string]string{
			"POST /analyze": "Analyze message and generate honeypot response",
			"GET /health":   "Health check",
			"GET /ping":     "Keep-alive",
		},
	})
}

// requireAPIKey accepts the key via the x-api-key header or the apikey query
// parameter. When no key is configured the check is a no-op.
func (s *Server) requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.opts.APIKey == "" {
			next(w, r)
			return
		}
		received := r.Header.Get("x-api-key")
		if received == "" {
			received = r.URL.Query().Get("apikey")
		}
		if received == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"status": "error", "detail": "missing API key: use header 'x-api-key' or query param 'apikey'",
			})
			return
		}
		if received != s.opts.APIKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"status": "error", "detail": "invalid API key",
			})
			return
		}
		next(w, r)
	}
}

// logRequests assigns each request an id and records method, path, status
// and latency. Inbound X-Request-Id headers are kept so callers can correlate.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = util.NewID()
		}
		w.Header().Set("X-Request-Id", requestID)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.Info("request handled",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start),
		)
	})
}

// recoverPanics converts a panicking handler into a 500 with a logged stack
// instead of a dropped connection.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.ErrorWithStack(fmt.Errorf("%v", rec), "handler panicked",
					"method", r.Method, "path", r.URL.Path)
				writeJSON(w, http.StatusInternalServerError, map[string]string{
					"status": "error", "detail": "internal server error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
