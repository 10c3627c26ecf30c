package session

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/honeymesh/core"
)

// InMemoryStore is a volatile SessionStore keeping state in a process local
// map. Updates are serialized per session id while distinct sessions proceed
// concurrently; callers always receive clones so snapshots never race the
// store.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*lockedSession
}

type lockedSession struct {
	mu    sync.Mutex
	state *core.SessionState
}

var _ core.SessionStore = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*lockedSession)}
}

// slot returns the per-session lock holder, creating it on first use.
func (s *InMemoryStore) slot(id string) *lockedSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.sessions[id]
	if !ok {
		ls = &lockedSession{state: &core.SessionState{ID: id, StartedAt: time.Now()}}
		s.sessions[id] = ls
	}
	return ls
}

// GetOrCreate implements core.SessionStore.
func (s *InMemoryStore) GetOrCreate(_ context.Context, id string) (*core.SessionState, error) {
	ls := s.slot(id)
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.state.Clone(), nil
}

// ApplyTurn implements core.SessionStore.
func (s *InMemoryStore) ApplyTurn(_ context.Context, id string, update core.TurnUpdate) (*core.SessionState, error) {
	ls := s.slot(id)
	ls.mu.Lock()
	defer ls.mu.Unlock()
	core.ApplyTurnUpdate(ls.state, update)
	return ls.state.Clone(), nil
}

// MarkReportSent implements core.SessionStore.
func (s *InMemoryStore) MarkReportSent(_ context.Context, id string) (bool, error) {
	ls := s.slot(id)
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.state.ReportSent {
		return false, nil
	}
	ls.state.ReportSent = true
	return true, nil
}
