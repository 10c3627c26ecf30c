package testutil

import (
	"github.com/hupe1980/honeymesh/core"
)

// TurnBuilder provides a fluent helper for constructing turns in tests.
// Example:
//
//	turn := NewTurnBuilder("sess-1").
//		Scammer("Your account is blocked").
//		User("oh no what do I do").
//		Incoming("Share the OTP now").
//		Build()
//
// All history methods are chainable; the incoming message defaults to an
// empty scammer message if never set.
type TurnBuilder struct {
	sessionID string
	history   []core.Message
	incoming  core.Message
	metadata  core.Metadata
}

// NewTurnBuilder creates a builder for a turn in the given session.
func NewTurnBuilder(sessionID string) *TurnBuilder {
	return &TurnBuilder{
		sessionID: sessionID,
		incoming:  core.Message{Sender: "scammer"},
	}
}

// Scammer appends a scammer-authored message to the history (chainable).
func (b *TurnBuilder) Scammer(text string) *TurnBuilder {
	b.history = append(b.history, core.Message{Sender: "scammer", Text: text})
	return b
}

// User appends a honeypot reply to the history (chainable).
func (b *TurnBuilder) User(text string) *TurnBuilder {
	b.history = append(b.history, core.Message{Sender: "user", Text: text})
	return b
}

// Incoming sets the current inbound message (chainable).
func (b *TurnBuilder) Incoming(text string) *TurnBuilder {
	b.incoming = core.Message{Sender: "scammer", Text: text}
	return b
}

// Exchanges appends n scammer/user message pairs of filler text, useful for
// driving the turn counter past a threshold (chainable).
func (b *TurnBuilder) Exchanges(n int) *TurnBuilder {
	for range n {
		b.Scammer("please cooperate with the verification")
		b.User("okay let me check")
	}
	return b
}

// Language sets the conversation language metadata (chainable).
func (b *TurnBuilder) Language(lang string) *TurnBuilder {
	b.metadata.Language = lang
	return b
}

// Build constructs the core.Turn value.
func (b *TurnBuilder) Build() core.Turn {
	return core.Turn{
		SessionID: b.sessionID,
		Message:   b.incoming,
		History:   append([]core.Message(nil), b.history...),
		Metadata:  b.metadata,
	}
}
