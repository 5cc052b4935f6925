package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
)

func TestStore_UpsertSendsAuthAndPayload(t *testing.T) {
	var gotAuth, gotMethod, gotPath string
	var gotBody upsertRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store, err := NewStore(server.URL, "secret-key", "docs")
	require.NoError(t, err)

	err = store.Upsert(context.Background(),
		domain.Chunk{ID: "c1", Text: "hello", Hash: "h1"},
		domain.Embedding{ChunkID: "c1", Vector: []float32{0.1, 0.2}})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/v1/collections/docs/chunks/c1", gotPath)
	assert.Equal(t, "hello", gotBody.Chunk.Text)
	assert.Equal(t, []float32{0.1, 0.2}, gotBody.Vector)
}

func TestStore_SearchDecodesHits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 3, req.TopK)
		assert.InDelta(t, 0.4, req.MinScore, 1e-9)

		_ = json.NewEncoder(w).Encode(searchResponse{
			Hits: []struct {
				Chunk wireChunk `json:"chunk"`
				Score float64   `json:"score"`
			}{
				{Chunk: wireChunk{ID: "c1", Text: "first"}, Score: 0.91},
				{Chunk: wireChunk{ID: "c2", Text: "second"}, Score: 0.55},
			},
		})
	}))
	defer server.Close()

	store, err := NewStore(server.URL, "", "docs")
	require.NoError(t, err)

	hits, err := store.Search(context.Background(), []float32{1, 0}, 3, 0.4)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "c1", hits[0].Chunk.ID)
	assert.InDelta(t, 0.91, hits[0].Score, 1e-9)
	assert.Equal(t, "second", hits[1].Chunk.Text)
}

func TestStore_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	store, err := NewStore(server.URL, "", "docs")
	require.NoError(t, err)

	_, err = store.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ServerErrorMapsToUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"index rebuilding"}`))
	}))
	defer server.Close()

	store, err := NewStore(server.URL, "", "docs")
	require.NoError(t, err)

	_, err = store.Count(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "index rebuilding")
}

func TestStore_ConfigurationValidation(t *testing.T) {
	_, err := NewStore("", "key", "docs")
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = NewStore("https://vectors.example.com", "key", "")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
