package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/worklog/internal/persistence"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	t.Run("puts, gets, lists, and deletes values", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := persistence.NewMemoryStore()

		require.NoError(t, store.Put(ctx, persistence.KeyPresets, []byte(`[]`)))
		require.NoError(t, store.Put(ctx, persistence.KeyArticles, []byte(`[{"id":"a"}]`)))

		got, err := store.Get(ctx, persistence.KeyArticles)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"a"}]`, string(got))

		keys, err := store.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{persistence.KeyArticles, persistence.KeyPresets}, keys)

		require.NoError(t, store.Delete(ctx, persistence.KeyArticles))
		_, err = store.Get(ctx, persistence.KeyArticles)
		assert.ErrorIs(t, err, persistence.ErrNotFound)
		assert.ErrorIs(t, store.Delete(ctx, persistence.KeyArticles), persistence.ErrNotFound)
	})

	t.Run("returns independent copies", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := persistence.NewMemoryStore()
		value := []byte(`"x"`)
		require.NoError(t, store.Put(ctx, "k", value))
		value[1] = 'y'

		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, `"x"`, string(got))
	})

	t.Run("rejects blank keys", func(t *testing.T) {
		t.Parallel()

		store := persistence.NewMemoryStore()
		assert.ErrorIs(t, store.Put(context.Background(), " ", nil), persistence.ErrEmptyKey)
	})
}

func TestJSONHelpers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := persistence.NewMemoryStore()

	var missing []string
	found, err := persistence.GetJSON(ctx, store, "absent", &missing)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, persistence.PutJSON(ctx, store, "tags", []string{"debug", "ops"}))
	var tags []string
	found, err = persistence.GetJSON(ctx, store, "tags", &tags)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"debug", "ops"}, tags)

	require.NoError(t, store.Put(ctx, "broken", []byte("{not json")))
	found, err = persistence.GetJSON(ctx, store, "broken", &tags)
	assert.True(t, found)
	assert.Error(t, err)
}
