package session

import (
	"context"
	"sync"
	"testing"

	"github.com/hupe1980/honeymesh/core"
	"github.com/hupe1980/honeymesh/session/sessiontest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_Conformance(t *testing.T) {
	sessiontest.Run(t, func(t *testing.T) core.SessionStore {
		return NewInMemoryStore()
	})
}

func TestInMemoryStore_ConcurrentTurnsSerialize(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	const turns = 50
	var wg sync.WaitGroup
	for i := range turns {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var update core.TurnUpdate
			update.Intel.Add(core.CategoryReferenceIDs, "REF12345")
			update.Confidence = float64(i%10) / 10
			update.ScamDetected = true
			update.ScamType = "bank_fraud"
			_, err := store.ApplyTurn(ctx, "s1", update)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	state, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, turns, state.TurnCount)
	assert.Len(t, state.Intel.Values(core.CategoryReferenceIDs), 1)
}
