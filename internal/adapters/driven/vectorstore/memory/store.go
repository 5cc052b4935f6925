// Package memory provides an in-process exact vector store. It is the
// reference implementation of the VectorStore contract: every other
// backend must match its observable behaviour.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lore-cli/internal/vectormath"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store keeps chunks and embeddings in maps guarded by a RWMutex.
// Search is an exact scan over all stored vectors.
type Store struct {
	mu      sync.RWMutex
	chunks  map[string]domain.Chunk
	vectors map[string][]float32
	dims    int
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		chunks:  make(map[string]domain.Chunk),
		vectors: make(map[string][]float32),
	}
}

// Upsert stores a chunk with its embedding, overwriting any entry with
// the same chunk ID. The first upsert fixes the store's vector
// dimensionality.
func (s *Store) Upsert(_ context.Context, chunk domain.Chunk, embedding domain.Embedding) error {
	if chunk.ID == "" {
		return fmt.Errorf("%w: chunk ID is empty", domain.ErrInvalidInput)
	}
	if len(embedding.Vector) == 0 {
		return fmt.Errorf("%w: embedding vector is empty", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dims == 0 {
		s.dims = len(embedding.Vector)
	} else if len(embedding.Vector) != s.dims {
		return fmt.Errorf("%w: expected %d dimensions, got %d",
			domain.ErrDimensionMismatch, s.dims, len(embedding.Vector))
	}

	s.chunks[chunk.ID] = chunk
	s.vectors[chunk.ID] = embedding.Vector
	return nil
}

// GetByID retrieves a stored chunk.
func (s *Store) GetByID(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunk, ok := s.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &chunk, nil
}

// Search scans all stored vectors and returns the topK most similar
// chunks above minScore, ties broken by ascending chunk ID.
func (s *Store) Search(_ context.Context, query []float32, topK int, minScore float64) ([]driven.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dims > 0 && len(query) != s.dims {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d",
			domain.ErrDimensionMismatch, s.dims, len(query))
	}

	scored := make([]vectormath.Scored, 0, len(s.vectors))
	for id, vector := range s.vectors {
		score, err := vectormath.Cosine(query, vector)
		if err != nil {
			return nil, err
		}
		scored = append(scored, vectormath.Scored{ID: id, Score: score})
	}

	ranked := vectormath.Rank(scored, topK, minScore)

	hits := make([]driven.SearchHit, len(ranked))
	for i, s2 := range ranked {
		hits[i] = driven.SearchHit{Chunk: s.chunks[s2.ID], Score: s2.Score}
	}
	return hits, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// Delete removes a chunk and its vector.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chunks, id)
	delete(s.vectors, id)
	return nil
}

// Clear removes all stored chunks.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = make(map[string]domain.Chunk)
	s.vectors = make(map[string][]float32)
	s.dims = 0
	return nil
}

// Close releases resources. The in-memory store holds none.
func (s *Store) Close() error {
	return nil
}
