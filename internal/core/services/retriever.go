package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lore-cli/internal/logger"
)

// rerankBlend weights the vector similarity against the lexical overlap
// signal during the optional re-rank pass.
const rerankBlend = 0.7

// Retriever embeds the query and fetches the most relevant chunks. The
// result it returns is frozen: later grounding checks compare against
// exactly this set.
type Retriever struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
}

// NewRetriever creates a retriever over the given embedding service and
// vector store.
func NewRetriever(embedder driven.EmbeddingService, store driven.VectorStore) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Retrieve returns the topK chunks above minScore for the question,
// ordered by relevance. With rerank enabled, a lexical-overlap pass
// reorders the hits before they are frozen.
func (r *Retriever) Retrieve(ctx context.Context, question string, settings domain.RetrievalSettings) ([]driven.SearchHit, error) {
	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.store.Search(ctx, vector, settings.TopK, settings.MinScore)
	if err != nil {
		return nil, fmt.Errorf("search store: %w", err)
	}
	logger.Debug("retrieved %d chunk(s) (topK=%d minScore=%.2f)",
		len(hits), settings.TopK, settings.MinScore)

	if settings.EnableRerank && len(hits) > 1 {
		rerank(question, hits)
	}
	return hits, nil
}

// rerank reorders hits in place by blending the vector similarity with
// a lexical term-overlap score. Ties keep the ascending-ID rule.
func rerank(question string, hits []driven.SearchHit) {
	queryTerms := termSet(question)

	blended := make(map[string]float64, len(hits))
	for _, hit := range hits {
		overlap := lexicalOverlap(queryTerms, hit.Chunk.Text)
		blended[hit.Chunk.ID] = rerankBlend*hit.Score + (1-rerankBlend)*overlap
	}

	sort.SliceStable(hits, func(i, j int) bool {
		si, sj := blended[hits[i].Chunk.ID], blended[hits[j].Chunk.ID]
		if si != sj {
			return si > sj
		}
		return hits[i].Chunk.ID < hits[j].Chunk.ID
	})
}

// termSet lowercases and splits text into a set of terms.
func termSet(text string) map[string]bool {
	terms := make(map[string]bool)
	for _, term := range strings.Fields(strings.ToLower(text)) {
		terms[strings.Trim(term, ".,;:!?\"'()")] = true
	}
	delete(terms, "")
	return terms
}

// lexicalOverlap returns the fraction of query terms present in the
// chunk text, in [0, 1].
func lexicalOverlap(queryTerms map[string]bool, text string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	chunkTerms := termSet(text)

	matched := 0
	for term := range queryTerms {
		if chunkTerms[term] {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTerms))
}
