package testutil

import (
	"time"

	"github.com/hupe1980/honeymesh/core"
)

// SessionBuilder helps construct session state with fluent chaining for
// tests. Example:
//
//	state := NewSessionBuilder("sess-1").Turns(18).Detected("upi_fraud", 0.85).Build()
type SessionBuilder struct {
	state core.SessionState
}

// NewSessionBuilder creates a new builder for a session with the given id.
func NewSessionBuilder(id string) *SessionBuilder {
	return &SessionBuilder{state: core.SessionState{
		ID:        id,
		StartedAt: time.Now().Add(-time.Minute),
	}}
}

// Turns sets the accumulated turn counter (chainable).
func (b *SessionBuilder) Turns(n int) *SessionBuilder {
	b.state.TurnCount = n
	return b
}

// Detected marks the session as a detected scam with the given label and
// confidence (chainable).
func (b *SessionBuilder) Detected(scamType string, confidence float64) *SessionBuilder {
	b.state.ScamDetected = true
	b.state.ScamType = scamType
	b.state.Confidence = confidence
	return b
}

// Intel adds values to a category of the accumulated record (chainable).
func (b *SessionBuilder) Intel(cat core.Category, values ...string) *SessionBuilder {
	b.state.Intel.Add(cat, values...)
	return b
}

// LastReply records the canned reply id used on the previous turn (chainable).
func (b *SessionBuilder) LastReply(id string) *SessionBuilder {
	b.state.LastReplyID = id
	return b
}

// ReportSent marks the report as already delivered (chainable).
func (b *SessionBuilder) ReportSent() *SessionBuilder {
	b.state.ReportSent = true
	return b
}

// StartedAt overrides the session start time (chainable).
func (b *SessionBuilder) StartedAt(t time.Time) *SessionBuilder {
	b.state.StartedAt = t
	return b
}

// Build returns a *core.SessionState snapshot.
func (b *SessionBuilder) Build() *core.SessionState {
	return b.state.Clone()
}
