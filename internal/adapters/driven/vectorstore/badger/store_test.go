package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	chunk := domain.Chunk{ID: "c1", Text: "persisted text", Title: "Doc", Hash: "c1"}
	vec := []float32{0.2, 0.8, 0.1}
	require.NoError(t, store.Upsert(ctx, chunk, domain.Embedding{ChunkID: "c1", Vector: vec}))

	got, err := store.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "persisted text", got.Text)
	assert.Equal(t, "Doc", got.Title)

	hits, err := store.Search(ctx, vec, 1, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c1", hits[0].Chunk.ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestStore_GetByID_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)

	vec := []float32{1, 0, 0}
	require.NoError(t, store.Upsert(ctx, domain.Chunk{ID: "c1", Text: "survives"},
		domain.Embedding{ChunkID: "c1", Vector: vec}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "survives", got.Text)

	// Dimensionality is recovered from persisted vectors.
	err = reopened.Upsert(ctx, domain.Chunk{ID: "c2", Text: "short"},
		domain.Embedding{ChunkID: "c2", Vector: []float32{1, 0}})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestStore_SearchOrderingAndFloor(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Upsert(ctx, domain.Chunk{ID: "near", Text: "near"},
		domain.Embedding{ChunkID: "near", Vector: []float32{0.99, 0.14, 0}}))
	require.NoError(t, store.Upsert(ctx, domain.Chunk{ID: "far", Text: "far"},
		domain.Embedding{ChunkID: "far", Vector: []float32{0.05, 0.999, 0}}))

	hits, err := store.Search(ctx, []float32{1, 0, 0}, 5, 0.5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "near", hits[0].Chunk.ID)
}

func TestStore_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	vec := []float32{1, 0}
	require.NoError(t, store.Upsert(ctx, domain.Chunk{ID: "c1"}, domain.Embedding{ChunkID: "c1", Vector: vec}))
	require.NoError(t, store.Upsert(ctx, domain.Chunk{ID: "c2"}, domain.Embedding{ChunkID: "c2", Vector: vec}))

	require.NoError(t, store.Delete(ctx, "c1"))
	_, err := store.GetByID(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, store.Clear(ctx))
	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
