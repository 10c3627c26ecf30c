// Package transcript records per-turn engagement history for later analyst
// review. The transcript is an audit artifact, not an input to turn
// processing: the engine writes entries after selection and never reads them
// back on the hot path.
package transcript

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when no transcript exists for a session.
var ErrNotFound = errors.New("transcript: session not found")

// Entry is one turn's engagement record.
type Entry struct {
	Turn      int       `json:"turn"`
	Inbound   string    `json:"inbound"`
	Reply     string    `json:"reply"`
	Strategy  string    `json:"strategy"`
	Tier      string    `json:"tier"`
	Score     float64   `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// Store persists transcripts per session. Implementations must be safe for
// concurrent use.
type Store interface {
	// Append adds one entry to the session's transcript.
	Append(ctx context.Context, sessionID string, entry Entry) error

	// Get returns the session's entries in append order, or ErrNotFound.
	Get(ctx context.Context, sessionID string) ([]Entry, error)

	// Sessions lists the session ids with at least one entry, sorted.
	Sessions(ctx context.Context) ([]string, error)
}

// InMemoryStore keeps transcripts in process memory. Suitable for tests and
// single-instance deployments; entries vanish on restart.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]Entry
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string][]Entry)}
}

// Append implements Store.
func (s *InMemoryStore) Append(_ context.Context, sessionID string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	s.entries[sessionID] = append(s.entries[sessionID], entry)
	return nil
}

// Get implements Store.
func (s *InMemoryStore) Get(_ context.Context, sessionID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, ok := s.entries[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]Entry(nil), entries...), nil
}

// Sessions implements Store.
func (s *InMemoryStore) Sessions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
