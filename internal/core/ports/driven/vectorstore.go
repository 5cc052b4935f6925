package driven

import (
	"context"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
)

// VectorStore is the uniform contract over all store backend variants.
// An Upsert must be visible to a Search or GetByID issued after it
// completes within the same store instance (read-your-writes), because
// ingestion immediately followed by retrieval must work.
//
// Approximate backends may trade exactness for speed but must still
// respect the topK, minScore and tie-break contract within their
// documented tolerance.
type VectorStore interface {
	// Upsert stores a chunk with its embedding. It is idempotent by
	// chunk ID: an existing entry with the same ID is overwritten.
	Upsert(ctx context.Context, chunk domain.Chunk, embedding domain.Embedding) error

	// GetByID retrieves a stored chunk. Returns domain.ErrNotFound if
	// the ID is unknown.
	GetByID(ctx context.Context, id string) (*domain.Chunk, error)

	// Search returns up to topK chunks ordered by descending cosine
	// similarity in [-1, 1]. Entries scoring below minScore are
	// excluded. Ties break by ascending chunk ID for determinism.
	// Returns domain.ErrDimensionMismatch if the query vector length
	// differs from the stored vector length.
	Search(ctx context.Context, query []float32, topK int, minScore float64) ([]SearchHit, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Delete removes a chunk and its embedding. Backends that cannot
	// delete return domain.ErrUnsupportedType.
	Delete(ctx context.Context, id string) error

	// Clear removes all chunks in the store's scope. Used by
	// rebuild-index ingestion.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// SearchHit is a single similarity search result.
type SearchHit struct {
	// Chunk is the matched chunk.
	Chunk domain.Chunk

	// Score is the cosine similarity to the query in [-1, 1].
	Score float64
}
