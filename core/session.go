package core

import (
	"context"
	"time"
)

// SessionState is the durable per-conversation accumulator. The intelligence
// record only ever grows, the turn counter only ever increments, and the
// report flag is write-once true. State is owned exclusively by a
// SessionStore: callers receive snapshots and mutate only through ApplyTurn
// and MarkReportSent, never by read-modify-write.
type SessionState struct {
	ID           string             `json:"id"`
	Intel        IntelligenceRecord `json:"intel"`
	TurnCount    int                `json:"turnCount"`
	StartedAt    time.Time          `json:"startedAt"`
	ScamDetected bool               `json:"scamDetected"`
	ScamType     string             `json:"scamType"`
	Confidence   float64            `json:"confidence"`
	LastReplyID  string             `json:"lastReplyId"`
	Notes        string             `json:"notes"`
	ReportSent   bool               `json:"reportSent"`
}

// Elapsed returns the time since the session's first turn.
func (s *SessionState) Elapsed() time.Duration { return time.Since(s.StartedAt) }

// Clone returns a deep copy safe for use outside the store's lock.
func (s *SessionState) Clone() *SessionState {
	out := *s
	out.Intel = s.Intel.Clone()
	return &out
}

// TurnUpdate is the single per-turn mutation applied to a session:
//
//   - Intel is unioned into the accumulated record (normalization is
//     re-applied because values from different turns may collide)
//   - the turn counter increments
//   - the scam-type label and confidence are replaced only when this turn's
//     detection confidence exceeds the recorded one
//   - Note replaces the running analyst summary when non-empty
//   - ReplyID records the canned reply used, for repeat avoidance
type TurnUpdate struct {
	Intel        IntelligenceRecord
	ScamDetected bool
	ScamType     string
	Confidence   float64
	Note         string
	ReplyID      string
}

// SessionStore provides durable per-conversation state. Implementations must
// serialize updates per session identifier while letting distinct sessions
// proceed concurrently, and must return snapshots that callers can read
// without racing the store.
type SessionStore interface {
	// GetOrCreate returns the session for id, creating it with the current
	// time as StartedAt on first use.
	GetOrCreate(ctx context.Context, id string) (*SessionState, error)

	// ApplyTurn atomically applies a turn's update and returns the resulting
	// state snapshot. Applying the same intelligence twice must yield the
	// same accumulated record as applying it once.
	ApplyTurn(ctx context.Context, id string, update TurnUpdate) (*SessionState, error)

	// MarkReportSent atomically test-and-sets the report flag. It returns
	// true exactly once per session; later calls return false so concurrent
	// turns cannot double-trigger a report.
	MarkReportSent(ctx context.Context, id string) (bool, error)
}

// ApplyTurnUpdate applies update to state in place. Store implementations
// share this so the accumulation semantics cannot drift between backends;
// callers outside a store must never invoke it directly.
func ApplyTurnUpdate(state *SessionState, update TurnUpdate) {
	state.Intel.Merge(update.Intel)
	state.TurnCount++
	if update.ScamDetected {
		// The detection flag ratchets; the label and confidence move only on
		// strictly higher confidence, so a tie never relabels the scam.
		state.ScamDetected = true
		if update.Confidence > state.Confidence {
			state.ScamType = update.ScamType
			state.Confidence = update.Confidence
		}
	}
	if update.Note != "" {
		state.Notes = update.Note
	}
	if update.ReplyID != "" {
		state.LastReplyID = update.ReplyID
	}
}
