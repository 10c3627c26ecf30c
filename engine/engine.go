package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/honeymesh/agent"
	"github.com/hupe1980/honeymesh/core"
	"github.com/hupe1980/honeymesh/extract"
	"github.com/hupe1980/honeymesh/logging"
	"github.com/hupe1980/honeymesh/model"
	"github.com/hupe1980/honeymesh/report"
	"github.com/hupe1980/honeymesh/strategy"
	"github.com/hupe1980/honeymesh/transcript"
)

// Options configure an Engine.
type Options struct {
	// Logger receives turn processing telemetry.
	Logger logging.Logger
	// Strategies is the ordered strategy set to race. Defaults to the three
	// production personas.
	Strategies strategy.Set
	// Deadline bounds one turn's strategy race.
	Deadline time.Duration
	// ScoreConfig holds the candidate scoring weights.
	ScoreConfig ScoreConfig
	// ReportPolicy holds the report trigger thresholds.
	ReportPolicy ReportPolicy
	// ReportSink receives final reports. Defaults to an in-memory collector.
	ReportSink core.ReportSink
	// ReportTimeout bounds one asynchronous report delivery.
	ReportTimeout time.Duration
	// Transcript, when set, records each turn's engagement entry.
	Transcript transcript.Store
	// ExtractConfig holds the pattern tables for regex extraction.
	ExtractConfig extract.Config
	// MaxTokens is the model completion budget per strategy call.
	MaxTokens int64
}

// TurnResult is what a processed turn sends back to the caller.
type TurnResult struct {
	SessionID       string
	TurnNumber      int
	Reply           string
	Strategy        string
	Tier            core.Tier
	Score           float64
	ScamDetected    bool
	ScamType        string
	Confidence      float64
	ReportTriggered bool
}

// Engine wires dispatcher, scorer, selector and report trigger around a
// session store. One Engine serves all sessions concurrently; per-session
// serialization is the store's job.
type Engine struct {
	store      core.SessionStore
	runner     *agent.Runner
	dispatcher *Dispatcher
	scorer     *Scorer
	selector   *Selector
	extractor  *extract.Extractor
	strategies strategy.Set
	policy     ReportPolicy
	sink       core.ReportSink
	transcript transcript.Store
	logger     *logging.HoneymeshLogger

	reportTimeout time.Duration
	reportWG      sync.WaitGroup
}

// New creates an Engine processing turns with the given session store and
// generation model.
func New(store core.SessionStore, m model.Model, optFns ...func(o *Options)) (*Engine, error) {
	opts := Options{
		Logger:        logging.NoOpLogger{},
		Strategies:    strategy.DefaultSet(),
		Deadline:      DefaultDeadline,
		ScoreConfig:   DefaultScoreConfig(),
		ReportPolicy:  DefaultReportPolicy(),
		ReportTimeout: 15 * time.Second,
		ExtractConfig: extract.DefaultConfig(),
		MaxTokens:     1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if store == nil {
		return nil, fmt.Errorf("engine requires a session store")
	}
	if m == nil {
		return nil, fmt.Errorf("engine requires a model")
	}
	if len(opts.Strategies) == 0 {
		return nil, fmt.Errorf("engine requires at least one strategy")
	}

	extractor, err := extract.New(opts.ExtractConfig)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}
	sink := opts.ReportSink
	if sink == nil {
		sink = report.NewCollector()
	}

	runner := agent.NewRunner(m, func(o *agent.Options) {
		o.Logger = opts.Logger
		o.MaxTokens = opts.MaxTokens
	})

	return &Engine{
		store:         store,
		runner:        runner,
		dispatcher:    NewDispatcher(runner, opts.Strategies, opts.Deadline, opts.Logger),
		scorer:        NewScorer(opts.ScoreConfig),
		selector:      NewSelector(opts.Strategies),
		extractor:     extractor,
		strategies:    opts.Strategies,
		policy:        opts.ReportPolicy,
		sink:          sink,
		transcript:    opts.Transcript,
		logger:        logging.Wrap(opts.Logger).WithComponent("engine"),
		reportTimeout: opts.ReportTimeout,
	}, nil
}

// WithLogger sets the engine logger.
func WithLogger(logger logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = logger }
}

// WithDeadline sets the per-turn strategy race deadline.
func WithDeadline(d time.Duration) func(o *Options) {
	return func(o *Options) { o.Deadline = d }
}

// WithReportSink sets the report destination.
func WithReportSink(sink core.ReportSink) func(o *Options) {
	return func(o *Options) { o.ReportSink = sink }
}

// WithTranscript enables per-turn transcript recording.
func WithTranscript(store transcript.Store) func(o *Options) {
	return func(o *Options) { o.Transcript = store }
}

// ProcessTurn runs one inbound turn end to end and returns the selected
// reply. The error path is narrow: only invalid input or a failing session
// store surfaces an error, never a model or scoring problem.
func (e *Engine) ProcessTurn(ctx context.Context, turn core.Turn) (*TurnResult, error) {
	if turn.SessionID == "" {
		return nil, fmt.Errorf("turn is missing a session id")
	}

	state, err := e.store.GetOrCreate(ctx, turn.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", turn.SessionID, err)
	}

	tc := e.buildTurnContext(turn, state)
	logger := e.logger.WithSession(turn.SessionID, tc.TurnNumber)

	candidates := e.dispatcher.Dispatch(ctx, tc)
	scored := e.scorer.ScoreAll(candidates, tc)

	selected, ok := e.selector.Select(scored)
	if !ok {
		// Nothing completed before the deadline: synthesize locally so the
		// scammer still gets an answer this turn.
		forced := e.runner.RunOffline(e.strategies.First(), tc)
		selected = ScoredCandidate{Candidate: forced, Score: e.scorer.Score(forced, tc)}
		logger.Warn("no candidates completed, forced offline reply")
	}

	// Intelligence from every completed candidate is folded in, not just the
	// winner's: a losing reply can still have spotted a value.
	var merged core.IntelligenceRecord
	merged.Merge(tc.Extracted)
	for _, cand := range candidates {
		merged.Merge(cand.Intel)
	}
	merged.Merge(selected.Candidate.Intel)

	newState, err := e.store.ApplyTurn(ctx, turn.SessionID, core.TurnUpdate{
		Intel:        merged,
		ScamDetected: selected.Candidate.ScamDetected,
		ScamType:     selected.Candidate.ScamType,
		Confidence:   selected.Candidate.Confidence,
		Note:         selected.Candidate.Notes,
		ReplyID:      selected.Candidate.ReplyID,
	})
	if err != nil {
		return nil, fmt.Errorf("apply turn for session %s: %w", turn.SessionID, err)
	}

	e.recordTranscript(ctx, turn, tc, selected)

	reportTriggered := e.maybeReport(turn, newState, selected.Candidate)

	logger.Info("turn processed",
		"strategy", selected.Candidate.Strategy,
		"tier", selected.Candidate.Tier.String(),
		"score", selected.Score,
		"intel_total", newState.Intel.Count(),
	)

	return &TurnResult{
		SessionID:       turn.SessionID,
		TurnNumber:      newState.TurnCount,
		Reply:           selected.Candidate.Reply,
		Strategy:        selected.Candidate.Strategy,
		Tier:            selected.Candidate.Tier,
		Score:           selected.Score,
		ScamDetected:    newState.ScamDetected,
		ScamType:        newState.ScamType,
		Confidence:      newState.Confidence,
		ReportTriggered: reportTriggered,
	}, nil
}

// buildTurnContext derives the shared per-turn context every strategy sees.
func (e *Engine) buildTurnContext(turn core.Turn, state *core.SessionState) strategy.TurnContext {
	extracted := e.extractor.ExtractTurn(turn)
	known := state.Intel.Clone()
	known.Merge(extracted)

	turnNumber := state.TurnCount + 1
	return strategy.TurnContext{
		Turn:        turn,
		Session:     state,
		TurnNumber:  turnNumber,
		Phase:       strategy.PhaseForTurn(turnNumber),
		Extracted:   extracted,
		Known:       known,
		Missing:     known.MissingCategories(),
		Language:    turn.Language(),
		LastReplyID: state.LastReplyID,
	}
}

func (e *Engine) recordTranscript(ctx context.Context, turn core.Turn, tc strategy.TurnContext, selected ScoredCandidate) {
	if e.transcript == nil {
		return
	}
	err := e.transcript.Append(ctx, turn.SessionID, transcript.Entry{
		Turn:      tc.TurnNumber,
		Inbound:   turn.Message.Text,
		Reply:     selected.Candidate.Reply,
		Strategy:  selected.Candidate.Strategy,
		Tier:      selected.Candidate.Tier.String(),
		Score:     selected.Score,
		Timestamp: time.Now(),
	})
	if err != nil {
		e.logger.Warn("transcript append failed",
			"session_id", turn.SessionID, "error", err.Error())
	}
}

// maybeReport fires the final report when the policy and the store's
// test-and-set both agree. Delivery happens on a detached context so the
// caller's request finishing (or failing) cannot cancel it.
func (e *Engine) maybeReport(turn core.Turn, state *core.SessionState, winner core.CandidateResult) bool {
	if !e.policy.ShouldReport(state, winner) {
		return false
	}

	won, err := e.store.MarkReportSent(context.Background(), state.ID)
	if err != nil {
		e.logger.Error("report flag update failed",
			"session_id", state.ID, "error", err.Error())
		return false
	}
	if !won {
		return false
	}

	rep := e.buildReport(turn, state)
	logger := e.logger.WithSession(state.ID, state.TurnCount)
	e.reportWG.Add(1)
	go func() {
		defer e.reportWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), e.reportTimeout)
		defer cancel()

		start := time.Now()
		err := e.sink.Deliver(ctx, rep)
		logger.LogReportDelivery(rep.SessionID, time.Since(start), err)
	}()
	return true
}

func (e *Engine) buildReport(turn core.Turn, state *core.SessionState) core.Report {
	return core.Report{
		SessionID:          state.ID,
		Status:             "scam_detected",
		ScamDetected:       state.ScamDetected,
		ScamType:           state.ScamType,
		Confidence:         state.Confidence,
		Intel:              state.Intel.Clone(),
		TotalTurns:         state.TurnCount,
		TotalMessages:      turn.MessageCount() + 1,
		EngagementDuration: int(state.Elapsed().Seconds()),
		Notes:              state.Notes,
	}
}

// Flush blocks until every in-flight report delivery has finished. Call it
// during shutdown so fire-and-forget deliveries are not cut off mid-request.
func (e *Engine) Flush() { e.reportWG.Wait() }
