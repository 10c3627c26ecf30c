package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/honeymesh/core"
	"github.com/hupe1980/honeymesh/extract"
	"github.com/hupe1980/honeymesh/logging"
	"github.com/hupe1980/honeymesh/model"
	"github.com/hupe1980/honeymesh/strategy"
)

// Options configure a Runner.
type Options struct {
	// Logger receives per-run tier and latency information.
	Logger logging.Logger
	// MaxTokens is the completion budget for model calls.
	MaxTokens int64
	// Synthesizer produces offline replies. Defaults to a fresh synthesizer.
	Synthesizer *strategy.Synthesizer
}

// Runner executes one strategy against one turn, walking the degradation
// ladder until a rung yields a candidate. Run never returns an error: the
// offline rung always produces something sendable. Runners are stateless and
// safe for concurrent use, so the dispatcher shares one across strategies.
type Runner struct {
	model model.Model
	synth *strategy.Synthesizer
	log   *logging.HoneymeshLogger
	opts  Options
}

// NewRunner creates a Runner backed by the given generation model.
func NewRunner(m model.Model, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Logger:    logging.NoOpLogger{},
		MaxTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	synth := opts.Synthesizer
	if synth == nil {
		synth = strategy.NewSynthesizer()
	}
	return &Runner{
		model: m,
		synth: synth,
		log:   logging.Wrap(opts.Logger).WithComponent("runner"),
		opts:  opts,
	}
}

// Run produces the candidate for one strategy on one turn. The tiers are
// attempted in order; the first that yields a valid candidate wins. Context
// cancellation aborts the model call but never the offline rung, so a
// deadline still produces a usable reply.
func (r *Runner) Run(ctx context.Context, strat strategy.Strategy, tc strategy.TurnContext) core.CandidateResult {
	start := time.Now()

	cand, ok := r.runStructured(ctx, strat, tc)
	if !ok {
		cand, ok = r.runRecovery(ctx, strat, tc)
	}
	if !ok {
		cand = r.RunOffline(strat, tc)
	}

	// Regex-extracted intelligence is unioned into every candidate so a model
	// that misses a value in plain sight cannot lose it.
	cand.Intel.Merge(tc.Extracted)

	r.log.WithSession(tc.Turn.SessionID, tc.TurnNumber).
		LogStrategyRun(strat.Name, cand.Tier.String(), time.Since(start))
	return cand
}

// runStructured makes the schema-bound model call and accepts only a clean
// structured parse.
func (r *Runner) runStructured(ctx context.Context, strat strategy.Strategy, tc strategy.TurnContext) (core.CandidateResult, bool) {
	raw, err := r.generate(ctx, buildTierInstruction(strat, tc), strat, tc.Turn)
	if err != nil {
		r.log.Warn("structured model call failed",
			"strategy", strat.Name, "error", err.Error())
		return core.CandidateResult{}, false
	}
	sr, ok := parseStructured(raw)
	if !ok {
		r.log.Warn("structured output did not parse, retrying relaxed",
			"strategy", strat.Name, "output_len", len(raw))
		return core.CandidateResult{}, false
	}
	return r.candidateFrom(sr, strat, tc, core.TierStructured), true
}

// runRecovery issues a fresh model call with a looser JSON-only instruction
// and salvages whatever comes back: a clean parse, an embedded JSON block, or
// bare prose.
func (r *Runner) runRecovery(ctx context.Context, strat strategy.Strategy, tc strategy.TurnContext) (core.CandidateResult, bool) {
	raw, err := r.generate(ctx, buildRecoveryInstruction(strat, tc), strat, tc.Turn)
	if err != nil {
		r.log.Warn("recovery model call failed, falling back offline",
			"strategy", strat.Name, "error", err.Error())
		return core.CandidateResult{}, false
	}

	if sr, ok := parseStructured(raw); ok {
		return r.candidateFrom(sr, strat, tc, core.TierRecovered), true
	}
	if sr, ok := recoverResponse(raw); ok {
		return r.candidateFrom(sr, strat, tc, core.TierRecovered), true
	}

	r.log.Warn("model output unusable, falling back offline",
		"strategy", strat.Name, "output_len", len(raw))
	return core.CandidateResult{}, false
}

// generate makes one model call with the given instruction and the strategy's
// sampling bias.
func (r *Runner) generate(ctx context.Context, instructions string, strat strategy.Strategy, turn core.Turn) (string, error) {
	bias := strat.Bias
	req := model.Request{
		Instructions: instructions,
		Contents:     conversationContents(turn),
		Temperature:  &bias,
		MaxTokens:    r.opts.MaxTokens,
	}

	start := time.Now()
	respCh, errCh := r.model.Generate(ctx, req)
	text, err := r.await(ctx, respCh, errCh)
	r.log.LogModelCall(r.model.Info().Name, time.Since(start), err)
	return text, err
}

// await blocks on the model's channel pair until text, an error or the
// context deadline arrives.
func (r *Runner) await(ctx context.Context, respCh <-chan model.Response, errCh <-chan error) (string, error) {
	select {
	case resp, ok := <-respCh:
		if !ok {
			// Response channel closed without a value: the error channel holds
			// the cause.
			if err := <-errCh; err != nil {
				return "", err
			}
			return "", fmt.Errorf("model closed response channel without output")
		}
		return resp.Text(), nil
	case err := <-errCh:
		if err != nil {
			return "", err
		}
		resp, ok := <-respCh
		if !ok {
			return "", fmt.Errorf("model closed both channels without output")
		}
		return resp.Text(), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// candidateFrom converts a parsed response into a candidate, filling gaps the
// model left (scam type, notes) from the deterministic classifiers.
func (r *Runner) candidateFrom(sr structuredResponse, strat strategy.Strategy, tc strategy.TurnContext, tier core.Tier) core.CandidateResult {
	scamType := sr.ScamType
	if scamType == "" {
		scamType = strategy.DetectScamType(tc.Turn.Texts())
	}
	notes := strings.TrimSpace(sr.Notes)
	if notes == "" {
		notes = analystNotes(tc)
	}
	return core.CandidateResult{
		Strategy:     strat.Name,
		Reply:        sr.Reply,
		ScamDetected: sr.ScamDetected,
		Confidence:   sr.Confidence,
		ScamType:     scamType,
		Intel:        sr.intel(),
		Notes:        notes,
		Tier:         tier,
	}
}

// RunOffline synthesizes a candidate without any model call. The engine also
// invokes it directly when selection ends up with no scored candidates at
// all. The offline rung always labels the turn a scam: by the time a
// conversation reaches this honeypot it has already been routed here by an
// upstream screen, and a canned probing reply is harmless on a false
// positive.
func (r *Runner) RunOffline(strat strategy.Strategy, tc strategy.TurnContext) core.CandidateResult {
	reply, replyID := r.synth.Synthesize(tc, strat)
	return core.CandidateResult{
		Strategy:     strat.Name,
		Reply:        reply,
		ReplyID:      replyID,
		ScamDetected: true,
		Confidence:   0.8,
		ScamType:     strategy.DetectScamType(tc.Turn.Texts()),
		Intel:        tc.Extracted.Clone(),
		Notes:        analystNotes(tc),
		Tier:         core.TierOffline,
	}
}

// analystNotes summarizes observed tactics for the report's agentNotes field.
func analystNotes(tc strategy.TurnContext) string {
	flags := extract.DetectRedFlags(tc.Turn.ScammerTexts())
	if len(flags) == 0 {
		return fmt.Sprintf("Engaged scammer across %d turns; no overt pressure tactics observed yet.", tc.TurnNumber)
	}
	return "Scammer " + extract.RedFlagNarrative(flags) + "."
}

// conversationContents converts the turn's history plus current message into
// role-tagged contents, honeypot replies as assistant turns.
func conversationContents(turn core.Turn) []core.Content {
	contents := make([]core.Content, 0, len(turn.History)+1)
	for _, m := range turn.History {
		if m.Text == "" {
			continue
		}
		if m.Sender == "user" {
			contents = append(contents, core.NewAssistantContent(m.Text))
		} else {
			contents = append(contents, core.NewUserContent(m.Text))
		}
	}
	if turn.Message.Text != "" {
		contents = append(contents, core.NewUserContent(turn.Message.Text))
	}
	return contents
}

// buildTierInstruction appends the JSON response contract to the strategy's
// persona instruction.
func buildTierInstruction(strat strategy.Strategy, tc strategy.TurnContext) string {
	var b strings.Builder
	b.WriteString(strat.BuildInstruction(tc))
	b.WriteString("\n\nRESPONSE FORMAT: respond with a single JSON object matching this schema, no prose before or after:\n")
	b.WriteString(responseSchemaJSON)
	return b.String()
}

// buildRecoveryInstruction keeps the persona but trades the full schema for a
// short JSON-only demand with a worked example. Models that choke on the
// schema usually manage this one.
func buildRecoveryInstruction(strat strategy.Strategy, tc strategy.TurnContext) string {
	var b strings.Builder
	b.WriteString(strat.BuildInstruction(tc))
	b.WriteString("\n\nRespond with ONLY a JSON object. The most important field is \"reply\": your in-character answer to the scammer. Example:\n")
	b.WriteString(`{"reply": "your response here", "scamDetected": true, "confidence": 0.85, "scamType": "bank_fraud"}`)
	return b.String()
}
