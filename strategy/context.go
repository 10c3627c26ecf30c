package strategy

import "github.com/hupe1980/honeymesh/core"

// TurnContext carries everything a strategy needs to produce one candidate.
// The engine computes it exactly once per turn and hands the same value to
// every strategy, so all candidates bias toward the same gaps.
type TurnContext struct {
	// Turn is the immutable inbound turn.
	Turn core.Turn
	// Session is a snapshot of the session state before this turn's update.
	Session *core.SessionState
	// TurnNumber is the 1-based number this turn will have once applied.
	TurnNumber int
	// Phase is derived from TurnNumber.
	Phase Phase
	// Extracted is the pattern extractor's output for this turn.
	Extracted core.IntelligenceRecord
	// Known is the accumulated record unioned with Extracted: everything the
	// system already holds when strategies run.
	Known core.IntelligenceRecord
	// Missing lists the scored categories with zero known entries, in
	// priority order.
	Missing []core.Category
	// Language is the conversation language from turn metadata.
	Language string
	// LastReplyID is the most recently used canned-reply id for this
	// session; the synthesizer excludes it to avoid immediate repeats.
	LastReplyID string
}
