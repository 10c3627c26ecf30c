package engine

import "github.com/hupe1980/honeymesh/core"

// ReportPolicy decides when a session has earned its final report. The
// thresholds deliberately favor long engagements: reporting early would cut
// off intelligence still being extracted.
type ReportPolicy struct {
	// MinTurns is the turn count a session must reach.
	MinTurns int
	// MinConfidence is the detection confidence the session must carry.
	MinConfidence float64
}

// DefaultReportPolicy returns the production thresholds.
func DefaultReportPolicy() ReportPolicy {
	return ReportPolicy{MinTurns: 18, MinConfidence: 0.7}
}

// ShouldReport reports whether the session depth and the current turn's
// winning candidate cross every threshold with no report sent yet. Detection
// is judged on the winner, not the session's ratcheted flag: an early
// high-confidence turn must not let a later shaky one fire the report. The
// caller must still win the store's test-and-set before delivering; this
// check alone does not reserve the send.
func (p ReportPolicy) ShouldReport(state *core.SessionState, winner core.CandidateResult) bool {
	return state.TurnCount >= p.MinTurns &&
		winner.ScamDetected &&
		winner.Confidence >= p.MinConfidence &&
		!state.ReportSent
}
