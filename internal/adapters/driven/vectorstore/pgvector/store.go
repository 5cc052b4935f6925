// Package pgvector provides a PostgreSQL-backed vector store using the
// pgvector extension. Similarity search runs inside the database, so it
// scales past what the in-process backends can hold.
package pgvector

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store keeps chunks and embeddings in a single pgvector-typed table.
// The embedding column is dimensioned at creation, so the database
// itself rejects mismatched vectors.
type Store struct {
	pool *pgxpool.Pool
	dims int
}

// NewStore connects to PostgreSQL, enables the pgvector extension and
// creates the chunk table when missing.
func NewStore(ctx context.Context, dsn string, dims int) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres DSN is empty", domain.ErrConfiguration)
	}
	if dims <= 0 {
		return nil, fmt.Errorf("%w: embedding dimensions must be positive, got %d", domain.ErrConfiguration, dims)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: connect postgres: %w", domain.ErrStoreUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping postgres: %w", domain.ErrStoreUnavailable, err)
	}

	s := &Store{pool: pool, dims: dims}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id          TEXT PRIMARY KEY,
			text        TEXT NOT NULL,
			title       TEXT NOT NULL DEFAULT '',
			section     TEXT NOT NULL DEFAULT '',
			source_path TEXT NOT NULL DEFAULT '',
			hash        TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			embedding   vector(%d) NOT NULL
		)`, s.dims),
		`CREATE INDEX IF NOT EXISTS chunks_embedding_idx
			ON chunks USING hnsw (embedding vector_cosine_ops)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: migrate chunk table: %w", domain.ErrStoreUnavailable, err)
		}
	}
	return nil
}

// Upsert stores a chunk and its embedding, replacing any row with the
// same chunk ID.
func (s *Store) Upsert(ctx context.Context, chunk domain.Chunk, embedding domain.Embedding) error {
	if chunk.ID == "" {
		return fmt.Errorf("%w: chunk ID is empty", domain.ErrInvalidInput)
	}
	if len(embedding.Vector) == 0 {
		return fmt.Errorf("%w: embedding vector is empty", domain.ErrInvalidInput)
	}
	if len(embedding.Vector) != s.dims {
		return fmt.Errorf("%w: expected %d dimensions, got %d",
			domain.ErrDimensionMismatch, s.dims, len(embedding.Vector))
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO chunks (id, text, title, section, source_path, hash, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			title = EXCLUDED.title,
			section = EXCLUDED.section,
			source_path = EXCLUDED.source_path,
			hash = EXCLUDED.hash,
			embedding = EXCLUDED.embedding`,
		chunk.ID, chunk.Text, chunk.Title, chunk.Section, chunk.SourcePath, chunk.Hash,
		pgv.NewVector(embedding.Vector))
	if err != nil {
		return fmt.Errorf("upsert chunk %s: %w", chunk.ID, err)
	}
	return nil
}

// GetByID retrieves a stored chunk.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.Chunk, error) {
	var chunk domain.Chunk
	err := s.pool.QueryRow(ctx, `
		SELECT id, text, title, section, source_path, hash, created_at
		FROM chunks WHERE id = $1`, id).
		Scan(&chunk.ID, &chunk.Text, &chunk.Title, &chunk.Section,
			&chunk.SourcePath, &chunk.Hash, &chunk.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chunk %s: %w", id, err)
	}
	return &chunk, nil
}

// Search ranks chunks by cosine similarity inside the database. Ties
// break by ascending chunk ID to keep results deterministic.
func (s *Store) Search(ctx context.Context, query []float32, topK int, minScore float64) ([]driven.SearchHit, error) {
	if len(query) != s.dims {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d",
			domain.ErrDimensionMismatch, s.dims, len(query))
	}
	if topK <= 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, text, title, section, source_path, hash, created_at,
			1 - (embedding <=> $1) AS score
		FROM chunks
		WHERE 1 - (embedding <=> $1) >= $2
		ORDER BY score DESC, id ASC
		LIMIT $3`,
		pgv.NewVector(query), minScore, topK)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	var hits []driven.SearchHit
	for rows.Next() {
		var hit driven.SearchHit
		if err := rows.Scan(&hit.Chunk.ID, &hit.Chunk.Text, &hit.Chunk.Title,
			&hit.Chunk.Section, &hit.Chunk.SourcePath, &hit.Chunk.Hash,
			&hit.Chunk.CreatedAt, &hit.Score); err != nil {
			return nil, fmt.Errorf("scan search hit: %w", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search hits: %w", err)
	}
	return hits, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}

// Delete removes a chunk.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM chunks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete chunk %s: %w", id, err)
	}
	return nil
}

// Clear removes all stored chunks.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE chunks`); err != nil {
		return fmt.Errorf("clear chunks: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
