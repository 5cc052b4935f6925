// Package badger provides a file-backed exact vector store on BadgerDB.
// Chunks are stored as JSON values and vectors as little-endian float32
// blobs; search is an exact scan over the vector keyspace.
package badger

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lore-cli/internal/logger"
	"github.com/custodia-labs/lore-cli/internal/vectormath"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Key prefixes for the two record kinds.
const (
	chunkPrefix  = "chunk:"
	vectorPrefix = "vec:"
)

// Store is a BadgerDB-backed vector store. Badger serialises writes
// internally, so the store is safe for concurrent ingestion.
type Store struct {
	db *badgerdb.DB

	mu   sync.Mutex
	dims int
}

// badgerLogger routes Badger's own logging through the CLI logger.
type badgerLogger struct{}

var _ badgerdb.Logger = badgerLogger{}

func (badgerLogger) Errorf(msg string, args ...any)   { logger.Error("badger: "+msg, args...) }
func (badgerLogger) Warningf(msg string, args ...any) { logger.Warn("badger: "+msg, args...) }
func (badgerLogger) Infof(msg string, args ...any)    { logger.Debug("badger: "+msg, args...) }
func (badgerLogger) Debugf(msg string, args ...any)   { logger.Debug("badger: "+msg, args...) }

// NewStore opens (or creates) a BadgerDB store at the given directory.
// An empty path opens an in-memory database, used by tests.
func NewStore(path string) (*Store, error) {
	var opts badgerdb.Options
	if path == "" {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badgerdb.DefaultOptions(path)
	}
	opts.Logger = badgerLogger{}
	opts.Compression = options.None

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger at %q: %w", domain.ErrStoreUnavailable, path, err)
	}

	s := &Store{db: db}
	if err := s.recoverDims(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// recoverDims restores the store's vector dimensionality from the first
// persisted vector, so a reopened store keeps rejecting mismatched
// embeddings.
func (s *Store) recoverDims() error {
	return s.db.View(func(tx *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(vectorPrefix)
		it := tx.NewIterator(opts)
		defer it.Close()

		it.Rewind()
		if !it.Valid() {
			return nil
		}
		return it.Item().Value(func(val []byte) error {
			s.dims = len(val) / 4
			return nil
		})
	})
}

// checkDims validates a vector length against the fixed dimensionality,
// fixing it on first use when fix is set.
func (s *Store) checkDims(n int, fix bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dims == 0 {
		if fix {
			s.dims = n
		}
		return nil
	}
	if n != s.dims {
		return fmt.Errorf("%w: expected %d dimensions, got %d", domain.ErrDimensionMismatch, s.dims, n)
	}
	return nil
}

// Upsert stores a chunk and its vector in one transaction.
func (s *Store) Upsert(_ context.Context, chunk domain.Chunk, embedding domain.Embedding) error {
	if chunk.ID == "" {
		return fmt.Errorf("%w: chunk ID is empty", domain.ErrInvalidInput)
	}
	if len(embedding.Vector) == 0 {
		return fmt.Errorf("%w: embedding vector is empty", domain.ErrInvalidInput)
	}
	if err := s.checkDims(len(embedding.Vector), true); err != nil {
		return err
	}

	chunkValue, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("marshal chunk: %w", err)
	}

	return s.db.Update(func(tx *badgerdb.Txn) error {
		if err := tx.Set(chunkKey(chunk.ID), chunkValue); err != nil {
			return fmt.Errorf("set chunk: %w", err)
		}
		if err := tx.Set(vectorKey(chunk.ID), encodeVector(embedding.Vector)); err != nil {
			return fmt.Errorf("set vector: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a stored chunk.
func (s *Store) GetByID(_ context.Context, id string) (*domain.Chunk, error) {
	var chunk domain.Chunk
	err := s.db.View(func(tx *badgerdb.Txn) error {
		item, err := tx.Get(chunkKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &chunk)
		})
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chunk %s: %w", id, err)
	}
	return &chunk, nil
}

// Search scans every stored vector and ranks by cosine similarity.
func (s *Store) Search(ctx context.Context, query []float32, topK int, minScore float64) ([]driven.SearchHit, error) {
	if err := s.checkDims(len(query), false); err != nil {
		return nil, err
	}

	var scored []vectormath.Scored

	err := s.db.View(func(tx *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(vectorPrefix)
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			id := string(bytes.TrimPrefix(item.Key(), []byte(vectorPrefix)))

			var scoreErr error
			if err := item.Value(func(val []byte) error {
				score, err := vectormath.Cosine(query, decodeVector(val))
				if err != nil {
					scoreErr = err
					return nil
				}
				scored = append(scored, vectormath.Scored{ID: id, Score: score})
				return nil
			}); err != nil {
				return err
			}
			if scoreErr != nil {
				return scoreErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ranked := vectormath.Rank(scored, topK, minScore)

	hits := make([]driven.SearchHit, 0, len(ranked))
	for _, sc := range ranked {
		chunk, err := s.GetByID(ctx, sc.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		hits = append(hits, driven.SearchHit{Chunk: *chunk, Score: sc.Score})
	}
	return hits, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(_ context.Context) (int, error) {
	count := 0
	err := s.db.View(func(tx *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		opts.PrefetchValues = false
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}

// Delete removes a chunk and its vector.
func (s *Store) Delete(_ context.Context, id string) error {
	return s.db.Update(func(tx *badgerdb.Txn) error {
		if err := tx.Delete(chunkKey(id)); err != nil {
			return err
		}
		return tx.Delete(vectorKey(id))
	})
}

// Clear drops every chunk and vector record.
func (s *Store) Clear(_ context.Context) error {
	if err := s.db.DropPrefix([]byte(chunkPrefix), []byte(vectorPrefix)); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	s.mu.Lock()
	s.dims = 0
	s.mu.Unlock()
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func chunkKey(id string) []byte {
	return []byte(chunkPrefix + id)
}

func vectorKey(id string) []byte {
	return []byte(vectorPrefix + id)
}

// encodeVector packs a vector as little-endian float32s.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector unpacks a little-endian float32 blob.
func decodeVector(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}
