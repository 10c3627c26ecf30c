// Package sessiontest contains a conformance suite run against every
// SessionStore backend, so accumulation and report-flag semantics cannot
// drift between implementations.
package sessiontest

import (
	"context"
	"sync"
	"testing"

	"github.com/hupe1980/honeymesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run executes the conformance suite. factory must return a fresh, empty
// store per invocation.
func Run(t *testing.T, factory func(t *testing.T) core.SessionStore) {
	t.Helper()

	t.Run("GetOrCreateInitializesState", func(t *testing.T) {
		store := factory(t)
		state, err := store.GetOrCreate(context.Background(), "s1")
		require.NoError(t, err)
		assert.Equal(t, "s1", state.ID)
		assert.Equal(t, 0, state.TurnCount)
		assert.False(t, state.StartedAt.IsZero())
		assert.False(t, state.ReportSent)
	})

	t.Run("GetOrCreateIsStable", func(t *testing.T) {
		store := factory(t)
		ctx := context.Background()
		first, err := store.GetOrCreate(ctx, "s1")
		require.NoError(t, err)

		var update core.TurnUpdate
		update.Intel.Add(core.CategoryPhoneNumbers, "9876543210")
		_, err = store.ApplyTurn(ctx, "s1", update)
		require.NoError(t, err)

		again, err := store.GetOrCreate(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, 1, again.TurnCount)
	})

	t.Run("ApplyTurnAccumulates", func(t *testing.T) {
		store := factory(t)
		ctx := context.Background()

		var u1 core.TurnUpdate
		u1.Intel.Add(core.CategoryPhoneNumbers, "+91 98765 43210")
		u1.ScamDetected = true
		u1.ScamType = "bank_fraud"
		u1.Confidence = 0.7
		state, err := store.ApplyTurn(ctx, "s1", u1)
		require.NoError(t, err)
		assert.Equal(t, 1, state.TurnCount)
		assert.Equal(t, []string{"9876543210"}, state.Intel.Values(core.CategoryPhoneNumbers))

		// Same phone in a different format must not duplicate; a lower
		// confidence detection must not downgrade the label.
		var u2 core.TurnUpdate
		u2.Intel.Add(core.CategoryPhoneNumbers, "9876543210")
		u2.Intel.Add(core.CategoryPaymentHandles, "fraud@paytm")
		u2.ScamDetected = true
		u2.ScamType = "upi_fraud"
		u2.Confidence = 0.5
		state, err = store.ApplyTurn(ctx, "s1", u2)
		require.NoError(t, err)
		assert.Equal(t, 2, state.TurnCount)
		assert.Len(t, state.Intel.Values(core.CategoryPhoneNumbers), 1)
		assert.Equal(t, []string{"fraud@paytm"}, state.Intel.Values(core.CategoryPaymentHandles))
		assert.Equal(t, "bank_fraud", state.ScamType)
		assert.InDelta(t, 0.7, state.Confidence, 1e-9)
	})

	t.Run("MarkReportSentReturnsTrueExactlyOnce", func(t *testing.T) {
		store := factory(t)
		ctx := context.Background()
		_, err := store.GetOrCreate(ctx, "s1")
		require.NoError(t, err)

		var wg sync.WaitGroup
		wins := make(chan bool, 16)
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := store.MarkReportSent(ctx, "s1")
				assert.NoError(t, err)
				wins <- ok
			}()
		}
		wg.Wait()
		close(wins)

		total := 0
		for ok := range wins {
			if ok {
				total++
			}
		}
		assert.Equal(t, 1, total)
	})

	t.Run("SessionsAreIndependent", func(t *testing.T) {
		store := factory(t)
		ctx := context.Background()

		var update core.TurnUpdate
		update.Intel.Add(core.CategoryBankAccounts, "12345678901")
		_, err := store.ApplyTurn(ctx, "a", update)
		require.NoError(t, err)

		other, err := store.GetOrCreate(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, 0, other.TurnCount)
		assert.Empty(t, other.Intel.Values(core.CategoryBankAccounts))
	})

	t.Run("SnapshotsDoNotAliasStoreState", func(t *testing.T) {
		store := factory(t)
		ctx := context.Background()

		var update core.TurnUpdate
		update.Intel.Add(core.CategoryPhoneNumbers, "9876543210")
		snap, err := store.ApplyTurn(ctx, "s1", update)
		require.NoError(t, err)

		snap.Intel.Add(core.CategoryPhoneNumbers, "1112223334")
		snap.TurnCount = 99

		fresh, err := store.GetOrCreate(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 1, fresh.TurnCount)
		assert.Len(t, fresh.Intel.Values(core.CategoryPhoneNumbers), 1)
	})
}
