package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
)

func chunkFixture(id, text string) domain.Chunk {
	return domain.Chunk{ID: id, Text: text, Hash: id}
}

func embeddingFixture(id string, vector []float32) domain.Embedding {
	return domain.Embedding{ChunkID: id, Vector: vector, Model: "test-embed"}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	chunk := chunkFixture("c1", "hello world")
	vec := []float32{0.1, 0.9, 0.3}
	require.NoError(t, store.Upsert(ctx, chunk, embeddingFixture("c1", vec)))

	got, err := store.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got.Text)

	// Searching with the stored vector returns the chunk itself at
	// similarity ~1.0.
	hits, err := store.Search(ctx, vec, 1, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c1", hits[0].Chunk.ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestStore_GetByID_NotFound(t *testing.T) {
	store := NewStore()

	_, err := store.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_UpsertIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	vec := []float32{1, 0}
	require.NoError(t, store.Upsert(ctx, chunkFixture("c1", "first"), embeddingFixture("c1", vec)))
	require.NoError(t, store.Upsert(ctx, chunkFixture("c1", "second"), embeddingFixture("c1", vec)))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := store.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Text, "same-ID upsert overwrites")
}

func TestStore_SearchOrderingAndFloor(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	// One close neighbour and four distant ones.
	require.NoError(t, store.Upsert(ctx, chunkFixture("near", "near"),
		embeddingFixture("near", []float32{0.99, 0.14, 0})))
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("far-%d", i)
		require.NoError(t, store.Upsert(ctx, chunkFixture(id, id),
			embeddingFixture(id, []float32{0.05, 0.999, 0})))
	}

	hits, err := store.Search(ctx, []float32{1, 0, 0}, 5, 0.5)
	require.NoError(t, err)
	require.Len(t, hits, 1, "minScore excludes the distant chunks")
	assert.Equal(t, "near", hits[0].Chunk.ID)
}

func TestStore_SearchTieBreak(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	vec := []float32{1, 0}
	for _, id := range []string{"zeta", "alpha", "mike"} {
		require.NoError(t, store.Upsert(ctx, chunkFixture(id, id), embeddingFixture(id, vec)))
	}

	hits, err := store.Search(ctx, vec, 3, 0)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "alpha", hits[0].Chunk.ID)
	assert.Equal(t, "mike", hits[1].Chunk.ID)
	assert.Equal(t, "zeta", hits[2].Chunk.ID)
}

func TestStore_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.Upsert(ctx, chunkFixture("c1", "x"), embeddingFixture("c1", []float32{1, 0, 0})))

	err := store.Upsert(ctx, chunkFixture("c2", "y"), embeddingFixture("c2", []float32{1, 0}))
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = store.Search(ctx, []float32{1, 0}, 1, 0)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestStore_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	vec := []float32{1, 0}
	require.NoError(t, store.Upsert(ctx, chunkFixture("c1", "x"), embeddingFixture("c1", vec)))
	require.NoError(t, store.Upsert(ctx, chunkFixture("c2", "y"), embeddingFixture("c2", vec)))

	require.NoError(t, store.Delete(ctx, "c1"))
	_, err := store.GetByID(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Clear(ctx))
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := fmt.Sprintf("w%d-c%d", w, i)
				_ = store.Upsert(ctx, chunkFixture(id, id), embeddingFixture(id, []float32{1, float32(i)}))
				_, _ = store.Search(ctx, []float32{1, 0}, 3, 0)
			}
		}(w)
	}
	wg.Wait()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200, count)
}
