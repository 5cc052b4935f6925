package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
)

func TestNew_MemoryBackend(t *testing.T) {
	store, err := New(context.Background(), domain.StoreSettings{Backend: domain.StoreBackendMemory}, 3)
	require.NoError(t, err)
	defer store.Close()

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestNew_BadgerBackend(t *testing.T) {
	store, err := New(context.Background(), domain.StoreSettings{
		Backend: domain.StoreBackendBadger,
		Path:    t.TempDir(),
	}, 3)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Upsert(context.Background(),
		domain.Chunk{ID: "c1", Text: "x"},
		domain.Embedding{ChunkID: "c1", Vector: []float32{1, 0, 0}}))
}

func TestNew_HNSWBackend(t *testing.T) {
	store, err := New(context.Background(), domain.StoreSettings{Backend: domain.StoreBackendHNSW}, 3)
	require.NoError(t, err)
	defer store.Close()
}

func TestNew_RESTBackendRequiresConfig(t *testing.T) {
	_, err := New(context.Background(), domain.StoreSettings{Backend: domain.StoreBackendREST}, 3)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestNew_PGVectorRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), domain.StoreSettings{Backend: domain.StoreBackendPGVector}, 3)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), domain.StoreSettings{Backend: "carrier-pigeon"}, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
