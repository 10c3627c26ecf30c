// Package sqlite provides a durable SessionStore backed by an embedded
// SQLite database. State is stored as one JSON document per session, so the
// schema never needs migrating when the accumulator grows a field. The
// cgo-free driver keeps the binary self-contained.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/honeymesh/core"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	state       TEXT NOT NULL,
	report_sent INTEGER NOT NULL DEFAULT 0,
	updated_at  TEXT NOT NULL
);`

// Store is a SessionStore persisting to a SQLite file. Read-modify-write
// cycles run inside transactions and behind a store-level mutex: SQLite
// serializes writers anyway, and the mutex avoids busy-retry loops under
// concurrent turns.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

var _ core.SessionStore = (*Store)(nil)

// New opens (and creates if necessary) the database at path. Use ":memory:"
// for an ephemeral store in tests.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection sidesteps table-lock contention between pooled
	// connections on the same file.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// GetOrCreate implements core.SessionStore.
func (s *Store) GetOrCreate(ctx context.Context, id string) (*core.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx, s.db, id)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	state = &core.SessionState{ID: id, StartedAt: time.Now()}
	if err := s.save(ctx, s.db, state); err != nil {
		return nil, err
	}
	return state.Clone(), nil
}

// ApplyTurn implements core.SessionStore.
func (s *Store) ApplyTurn(ctx context.Context, id string, update core.TurnUpdate) (*core.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	state, err := s.load(ctx, tx, id)
	if errors.Is(err, sql.ErrNoRows) {
		state = &core.SessionState{ID: id, StartedAt: time.Now()}
		err = nil
	}
	if err != nil {
		return nil, err
	}

	core.ApplyTurnUpdate(state, update)
	if err := s.save(ctx, tx, state); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit turn update: %w", err)
	}
	return state.Clone(), nil
}

// MarkReportSent implements core.SessionStore.
func (s *Store) MarkReportSent(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	state, err := s.load(ctx, tx, id)
	if errors.Is(err, sql.ErrNoRows) {
		state = &core.SessionState{ID: id, StartedAt: time.Now()}
		err = nil
	}
	if err != nil {
		return false, err
	}
	if state.ReportSent {
		return false, nil
	}

	state.ReportSent = true
	if err := s.save(ctx, tx, state); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit report flag: %w", err)
	}
	return true, nil
}

// querier is the subset of sql.DB/sql.Tx the store uses.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) load(ctx context.Context, q querier, id string) (*core.SessionState, error) {
	var doc string
	err := q.QueryRowContext(ctx, `SELECT state FROM sessions WHERE id = ?`, id).Scan(&doc)
	if err != nil {
		return nil, err
	}
	var state core.SessionState
	if err := json.Unmarshal([]byte(doc), &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &state, nil
}

func (s *Store) save(ctx context.Context, q querier, state *core.SessionState) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", state.ID, err)
	}
	reportSent := 0
	if state.ReportSent {
		reportSent = 1
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO sessions (id, state, report_sent, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET state = excluded.state,
			report_sent = excluded.report_sent, updated_at = excluded.updated_at`,
		state.ID, string(doc), reportSent, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save session %s: %w", state.ID, err)
	}
	return nil
}
