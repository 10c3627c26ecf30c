package engine

import (
	"testing"

	"github.com/hupe1980/honeymesh/core"
	"github.com/hupe1980/honeymesh/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelector_PicksHighestScore(t *testing.T) {
	s := NewSelector(strategy.DefaultSet())

	best, ok := s.Select([]ScoredCandidate{
		{Candidate: core.CandidateResult{Strategy: "confused_uncle"}, Score: 12},
		{Candidate: core.CandidateResult{Strategy: "eager_victim"}, Score: 40},
		{Candidate: core.CandidateResult{Strategy: "worried_citizen"}, Score: 25},
	})
	require.True(t, ok)
	assert.Equal(t, "eager_victim", best.Candidate.Strategy)
}

func TestSelector_TieBreaksByDeclarationOrder(t *testing.T) {
	s := NewSelector(strategy.DefaultSet())

	// Arrival order is worried first; declaration order must still win.
	best, ok := s.Select([]ScoredCandidate{
		{Candidate: core.CandidateResult{Strategy: "worried_citizen"}, Score: 30},
		{Candidate: core.CandidateResult{Strategy: "eager_victim"}, Score: 30},
		{Candidate: core.CandidateResult{Strategy: "confused_uncle"}, Score: 30},
	})
	require.True(t, ok)
	assert.Equal(t, "confused_uncle", best.Candidate.Strategy)
}

func TestSelector_EmptyInput(t *testing.T) {
	s := NewSelector(strategy.DefaultSet())
	_, ok := s.Select(nil)
	assert.False(t, ok)
}

func TestReportPolicy_Thresholds(t *testing.T) {
	p := DefaultReportPolicy()

	confident := core.CandidateResult{ScamDetected: true, Confidence: 0.9}
	tests := []struct {
		name   string
		state  core.SessionState
		winner core.CandidateResult
		want   bool
	}{
		{"all thresholds met", core.SessionState{TurnCount: 18}, core.CandidateResult{ScamDetected: true, Confidence: 0.7}, true},
		{"deep session", core.SessionState{TurnCount: 40}, confident, true},
		{"too few turns", core.SessionState{TurnCount: 17}, confident, false},
		{"winner without detection", core.SessionState{TurnCount: 20}, core.CandidateResult{Confidence: 0.9}, false},
		{"winner low confidence", core.SessionState{TurnCount: 20}, core.CandidateResult{ScamDetected: true, Confidence: 0.69}, false},
		{"already sent", core.SessionState{TurnCount: 20, ReportSent: true}, confident, false},
		// The session's ratcheted detection must not stand in for the
		// current turn's winner.
		{
			"shaky winner despite confident session",
			core.SessionState{TurnCount: 18, ScamDetected: true, Confidence: 0.95},
			core.CandidateResult{ScamDetected: true, Confidence: 0.3},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ShouldReport(&tt.state, tt.winner))
		})
	}
}
