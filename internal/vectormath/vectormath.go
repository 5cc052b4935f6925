// Package vectormath provides the similarity and ranking primitives
// shared by the vector store backends.
package vectormath

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
)

// Cosine returns the cosine similarity of two vectors in [-1, 1].
// Returns domain.ErrDimensionMismatch when the lengths differ.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: query has %d dimensions, stored vector has %d",
			domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Scored pairs a chunk ID with its similarity score.
type Scored struct {
	// ID is the chunk ID.
	ID string

	// Score is the cosine similarity to the query.
	Score float64
}

// Rank orders scored IDs by descending score, excludes entries below
// minScore, caps the result at topK, and breaks score ties by ascending
// chunk ID for determinism.
func Rank(scored []Scored, topK int, minScore float64) []Scored {
	kept := make([]Scored, 0, len(scored))
	for _, s := range scored {
		if s.Score >= minScore {
			kept = append(kept, s)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		return kept[i].ID < kept[j].ID
	})

	if topK > 0 && len(kept) > topK {
		kept = kept[:topK]
	}
	return kept
}
