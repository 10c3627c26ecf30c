// Package firestore provides a durable SessionStore backed by Cloud
// Firestore, for deployments where multiple instances share session state.
// Every mutation runs inside a Firestore transaction, so the accumulate-only
// invariants hold even when concurrent turns for the same session land on
// different instances.
package firestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/hupe1980/honeymesh/core"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Options configure the Firestore store.
type Options struct {
	// Collection is the collection holding session documents.
	Collection string
}

// Store is a SessionStore persisting to a Firestore collection. State is
// stored as a JSON document field rather than native Firestore fields so it
// round-trips exactly like the other backends.
type Store struct {
	client *firestore.Client
	opts   Options
}

// sessionDoc is the Firestore document wrapping the serialized state. The
// report flag is duplicated as a native field so the test-and-set condition
// stays readable in the console.
type sessionDoc struct {
	State      string    `firestore:"state"`
	ReportSent bool      `firestore:"report_sent"`
	UpdatedAt  time.Time `firestore:"updated_at"`
}

var _ core.SessionStore = (*Store)(nil)

// New creates a Store for the given project.
func New(ctx context.Context, projectID string, optFns ...func(o *Options)) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore session store requires a project id")
	}
	opts := Options{Collection: "honeypot_sessions"}
	for _, fn := range optFns {
		fn(&opts)
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return &Store{client: client, opts: opts}, nil
}

// NewFromClient wraps an existing client, used with the emulator in tests.
func NewFromClient(client *firestore.Client, optFns ...func(o *Options)) *Store {
	opts := Options{Collection: "honeypot_sessions"}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{client: client, opts: opts}
}

// Close releases the underlying client.
func (s *Store) Close() error { return s.client.Close() }

func (s *Store) doc(id string) *firestore.DocumentRef {
	return s.client.Collection(s.opts.Collection).Doc(id)
}

// GetOrCreate implements core.SessionStore.
func (s *Store) GetOrCreate(ctx context.Context, id string) (*core.SessionState, error) {
	var state *core.SessionState
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		loaded, err := s.loadTx(tx, id)
		if err != nil {
			return err
		}
		if loaded != nil {
			state = loaded
			return nil
		}
		state = &core.SessionState{ID: id, StartedAt: time.Now()}
		return s.saveTx(tx, state)
	})
	if err != nil {
		return nil, fmt.Errorf("firestore get session %s: %w", id, err)
	}
	return state, nil
}

// ApplyTurn implements core.SessionStore.
func (s *Store) ApplyTurn(ctx context.Context, id string, update core.TurnUpdate) (*core.SessionState, error) {
	var state *core.SessionState
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		loaded, err := s.loadTx(tx, id)
		if err != nil {
			return err
		}
		if loaded == nil {
			loaded = &core.SessionState{ID: id, StartedAt: time.Now()}
		}
		core.ApplyTurnUpdate(loaded, update)
		state = loaded
		return s.saveTx(tx, loaded)
	})
	if err != nil {
		return nil, fmt.Errorf("firestore apply turn for session %s: %w", id, err)
	}
	return state, nil
}

// MarkReportSent implements core.SessionStore.
func (s *Store) MarkReportSent(ctx context.Context, id string) (bool, error) {
	won := false
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		won = false
		loaded, err := s.loadTx(tx, id)
		if err != nil {
			return err
		}
		if loaded == nil {
			loaded = &core.SessionState{ID: id, StartedAt: time.Now()}
		}
		if loaded.ReportSent {
			return nil
		}
		loaded.ReportSent = true
		won = true
		return s.saveTx(tx, loaded)
	})
	if err != nil {
		return false, fmt.Errorf("firestore mark report sent for session %s: %w", id, err)
	}
	return won, nil
}

// loadTx reads the session inside a transaction; a nil state means the
// document does not exist yet.
func (s *Store) loadTx(tx *firestore.Transaction, id string) (*core.SessionState, error) {
	snap, err := tx.Get(s.doc(id))
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode session document: %w", err)
	}
	var state core.SessionState
	if err := json.Unmarshal([]byte(doc.State), &state); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}
	return &state, nil
}

func (s *Store) saveTx(tx *firestore.Transaction, state *core.SessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}
	return tx.Set(s.doc(state.ID), sessionDoc{
		State:      string(raw),
		ReportSent: state.ReportSent,
		UpdatedAt:  time.Now(),
	})
}
