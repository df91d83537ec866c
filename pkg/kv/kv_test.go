package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unowned-ai/moalif/pkg/db"
)

func setupSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()

	conn, err := db.OpenDBConnection(ctx, ":memory:", db.Options{Sync: "NORMAL"})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, db.InitializeSchema(ctx, conn, db.TargetSchemaVersion))
	return NewSQLiteStore(conn)
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"sqlite": func(t *testing.T) Store { return setupSQLiteStore(t) },
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			ctx := context.Background()

			_, ok, err := store.Get(ctx, "@books")
			require.NoError(t, err)
			assert.False(t, ok, "unwritten key must report ok=false")

			require.NoError(t, store.Set(ctx, "@books", `{"1":{}}`))
			value, ok, err := store.Get(ctx, "@books")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"1":{}}`, value)

			require.NoError(t, store.Set(ctx, "@books", `{}`))
			value, _, err = store.Get(ctx, "@books")
			require.NoError(t, err)
			assert.Equal(t, `{}`, value, "Set overwrites the previous value")

			require.NoError(t, store.Set(ctx, "", ""))
			value, ok, err = store.Get(ctx, "")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Empty(t, value)
		})
	}
}

func TestMemoryStore_ZeroValue(t *testing.T) {
	var store MemoryStore
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", "v"))
	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Set(ctx, "k", "v"), context.Canceled)
	_, _, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
