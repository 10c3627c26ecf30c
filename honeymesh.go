// Package honeymesh provides a high-level façade over the turn-processing
// Engine and its services (sessions, transcripts, reporting & logging) for
// building scam-honeypot agents. Most applications interact with this package
// by:
//  1. Creating a Honeymesh via New() with a generation model (optionally
//     overriding the default in-memory services)
//  2. Feeding it incoming scammer messages via ProcessTurn or Reply
//  3. Collecting final intelligence reports from the configured sink
//
// The façade delegates orchestration to engine.Engine while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply durable store
// implementations, a webhook report sink and a structured logger.
package honeymesh

import (
	"context"

	"github.com/hupe1980/honeymesh/core"
	"github.com/hupe1980/honeymesh/engine"
	"github.com/hupe1980/honeymesh/logging"
	"github.com/hupe1980/honeymesh/model"
	"github.com/hupe1980/honeymesh/session"
	"github.com/hupe1980/honeymesh/transcript"
)

// Options configures the Honeymesh instance.
type Options struct {
	// SessionStore persists per-conversation state. Defaults to an in-memory
	// implementation.
	SessionStore core.SessionStore

	// Transcript, when set, records each turn's engagement entry.
	Transcript transcript.Store

	// ReportSink receives final intelligence reports. Defaults to an
	// in-memory collector.
	ReportSink core.ReportSink

	// Engine tuning passed through to engine.New.
	EngineOptions []func(o *engine.Options)

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Honeymesh is the high-level façade aggregating the underlying engine and
// services.
type Honeymesh struct {
	opts   Options
	engine *engine.Engine
}

// New creates a new Honeymesh instance around the given generation model.
// Any unset service is initialized with an in-memory implementation.
func New(m model.Model, optFns ...func(o *Options)) (*Honeymesh, error) {
	opts := Options{
		SessionStore: session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	engineOpts := []func(o *engine.Options){
		engine.WithLogger(opts.Logger),
	}
	if opts.Transcript != nil {
		engineOpts = append(engineOpts, engine.WithTranscript(opts.Transcript))
	}
	if opts.ReportSink != nil {
		engineOpts = append(engineOpts, engine.WithReportSink(opts.ReportSink))
	}
	engineOpts = append(engineOpts, opts.EngineOptions...)

	eng, err := engine.New(opts.SessionStore, m, engineOpts...)
	if err != nil {
		return nil, err
	}

	return &Honeymesh{opts: opts, engine: eng}, nil
}

// Engine exposes the underlying engine for callers that need full control,
// e.g. to mount it behind the server package.
func (h *Honeymesh) Engine() *engine.Engine { return h.engine }

// ProcessTurn runs one incoming message through the strategy race and returns
// the full turn result.
func (h *Honeymesh) ProcessTurn(ctx context.Context, turn core.Turn) (*engine.TurnResult, error) {
	return h.engine.ProcessTurn(ctx, turn)
}

// Reply is a convenience helper for the common case: one scammer message in,
// one honeypot reply out. Session state carries the conversation across
// calls.
func (h *Honeymesh) Reply(ctx context.Context, sessionID, text string) (string, error) {
	result, err := h.engine.ProcessTurn(ctx, core.Turn{
		SessionID: sessionID,
		Message:   core.Message{Sender: "scammer", Text: text},
	})
	if err != nil {
		return "", err
	}
	return result.Reply, nil
}

// Session returns a snapshot of the accumulated state for sessionID.
func (h *Honeymesh) Session(ctx context.Context, sessionID string) (*core.SessionState, error) {
	return h.opts.SessionStore.GetOrCreate(ctx, sessionID)
}

// Flush blocks until all pending report deliveries have finished. Call it
// before process exit.
func (h *Honeymesh) Flush() { h.engine.Flush() }
