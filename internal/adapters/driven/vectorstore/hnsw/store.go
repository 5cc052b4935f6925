// Package hnsw provides an in-process approximate vector store built on
// a navigable small-world graph. It trades exactness for sub-linear
// search on large collections while honouring the same ranking contract
// as the exact backends: descending score, ascending chunk ID on ties,
// minScore floor, topK cap.
package hnsw

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

const (
	// maxNeighbors bounds the out-degree of each graph node.
	maxNeighbors = 16

	// efSearch is the beam width during search. Wider beams find more
	// of the true neighbours at the cost of more distance evaluations.
	efSearch = 64

	// efConstruction is the beam width during insertion.
	efConstruction = 100
)

type node struct {
	id        string
	vector    []float32
	neighbors []string
	deleted   bool
}

// Store is a single-layer small-world graph over the stored vectors.
// Nodes removed by Delete stay in the graph as tombstones so routing
// through them keeps working; they are never returned from Search.
type Store struct {
	mu     sync.RWMutex
	chunks map[string]domain.Chunk
	nodes  map[string]*node
	entry  string
	dims   int
}

// NewStore creates an empty approximate store.
func NewStore() *Store {
	return &Store{
		chunks: make(map[string]domain.Chunk),
		nodes:  make(map[string]*node),
	}
}

// Upsert inserts a chunk into the graph, overwriting the vector and
// relinking when the chunk ID already exists.
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

	if existing, ok := s.nodes[chunk.ID]; ok {
		existing.vector = embedding.Vector
		existing.deleted = false
		existing.neighbors = nil
		s.link(existing)
		return nil
	}

	n := &node{id: chunk.ID, vector: embedding.Vector}
	s.nodes[chunk.ID] = n

	if s.entry == "" {
		s.entry = chunk.ID
		return nil
	}

	s.link(n)
	return nil
}

// link connects n to its approximate nearest neighbours and back. The
// node itself may surface in the candidate list on re-upsert and is
// skipped.
func (s *Store) link(n *node) {
	nearest := s.searchGraph(n.vector, efConstruction)
	for _, sc := range nearest {
		if sc.ID == n.id {
			continue
		}
		if len(n.neighbors) == maxNeighbors {
			break
		}
		n.neighbors = append(n.neighbors, sc.ID)
		s.linkBack(sc.ID, n.id, n.vector)
	}
}

// linkBack adds newID to the neighbour list of id, evicting the least
// similar neighbour when the list is full.
func (s *Store) linkBack(id, newID string, newVector []float32) {
	n := s.nodes[id]
	if len(n.neighbors) < maxNeighbors {
		n.neighbors = append(n.neighbors, newID)
		return
	}

	worstIdx := -1
	worstScore := 2.0
	for i, nbID := range n.neighbors {
		nb, ok := s.nodes[nbID]
		if !ok {
			worstIdx = i
			break
		}
		score, err := vectormath.Cosine(n.vector, nb.vector)
		if err != nil {
			continue
		}
		if score < worstScore {
			worstScore = score
			worstIdx = i
		}
	}
	if worstIdx < 0 {
		return
	}

	newScore, err := vectormath.Cosine(n.vector, newVector)
	if err == nil && newScore > worstScore {
		n.neighbors[worstIdx] = newID
	}
}

// searchGraph runs a greedy beam search from the entry point and
// returns candidates ordered by the shared ranking rules. Tombstoned
// nodes participate in routing but are excluded from the result.
// Caller must hold at least a read lock.
func (s *Store) searchGraph(query []float32, ef int) []vectormath.Scored {
	if s.entry == "" {
		return nil
	}

	visited := map[string]bool{s.entry: true}
	frontier := []string{s.entry}
	scores := map[string]float64{}

	entryScore, err := vectormath.Cosine(query, s.nodes[s.entry].vector)
	if err != nil {
		return nil
	}
	scores[s.entry] = entryScore

	// Expand the best unexplored candidates until the beam stops
	// improving.
	for len(frontier) > 0 {
		// Pick the best-scoring frontier node.
		bestIdx := 0
		for i := 1; i < len(frontier); i++ {
			if scores[frontier[i]] > scores[frontier[bestIdx]] {
				bestIdx = i
			}
		}
		current := frontier[bestIdx]
		frontier = append(frontier[:bestIdx], frontier[bestIdx+1:]...)

		for _, nbID := range s.nodes[current].neighbors {
			if visited[nbID] {
				continue
			}
			visited[nbID] = true

			nb, ok := s.nodes[nbID]
			if !ok {
				continue
			}
			score, err := vectormath.Cosine(query, nb.vector)
			if err != nil {
				continue
			}
			scores[nbID] = score
			frontier = append(frontier, nbID)
		}

		if len(visited) >= ef {
			break
		}
	}

	candidates := make([]vectormath.Scored, 0, len(scores))
	for id, score := range scores {
		if s.nodes[id].deleted {
			continue
		}
		candidates = append(candidates, vectormath.Scored{ID: id, Score: score})
	}
	return vectormath.Rank(candidates, 0, -1)
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

// Search returns the approximate topK most similar chunks above
// minScore.
func (s *Store) Search(_ context.Context, query []float32, topK int, minScore float64) ([]driven.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dims > 0 && len(query) != s.dims {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d",
			domain.ErrDimensionMismatch, s.dims, len(query))
	}

	ranked := vectormath.Rank(s.searchGraph(query, efSearch), topK, minScore)

	hits := make([]driven.SearchHit, len(ranked))
	for i, sc := range ranked {
		hits[i] = driven.SearchHit{Chunk: s.chunks[sc.ID], Score: sc.Score}
	}
	return hits, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// Delete tombstones a chunk. The graph node is kept for routing.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.chunks, id)
	if n, ok := s.nodes[id]; ok {
		n.deleted = true
	}
	return nil
}

// Clear removes all stored chunks and the graph.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chunks = make(map[string]domain.Chunk)
	s.nodes = make(map[string]*node)
	s.entry = ""
	s.dims = 0
	return nil
}

// Close releases resources. The in-memory graph holds none.
func (s *Store) Close() error {
	return nil
}
