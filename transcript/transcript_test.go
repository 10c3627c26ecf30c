package transcript

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	e1 := Entry{Turn: 1, Inbound: "your account is blocked", Reply: "which account sir?", Strategy: "confused_uncle", Tier: "structured", Score: 42, Timestamp: time.Now().UTC().Truncate(time.Second)}
	e2 := Entry{Turn: 2, Inbound: "share the otp", Reply: "give me your number first", Strategy: "worried_citizen", Tier: "offline", Score: 17, Timestamp: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, store.Append(ctx, "s1", e1))
	require.NoError(t, store.Append(ctx, "s1", e2))
	require.NoError(t, store.Append(ctx, "s2", e1))

	entries, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Turn)
	assert.Equal(t, "which account sir?", entries[0].Reply)
	assert.Equal(t, "offline", entries[1].Tier)

	ids, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, ids)
}

func TestInMemoryStore(t *testing.T) {
	testStore(t, NewInMemoryStore())
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	testStore(t, store)
}

func TestFileStore_SanitizesSessionIDs(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Append(ctx, "../../etc/passwd", Entry{Turn: 1, Reply: "hello sir"}))

	ids, err := store.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.NotContains(t, ids[0], "/")
}
