package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
)

// mockEmbedder returns canned vectors by exact text, falling back to a
// fixed default vector. Safe for concurrent use: ingestion workers
// share one embedder.
type mockEmbedder struct {
	mu           sync.Mutex
	vectors      map[string][]float32
	defaultVec   []float32
	failWith     error
	embedCalls   int
	lastEmbedded []string
}

var _ driven.EmbeddingService = (*mockEmbedder)(nil)

func newMockEmbedder(defaultVec []float32) *mockEmbedder {
	return &mockEmbedder{
		vectors:    make(map[string][]float32),
		defaultVec: defaultVec,
	}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.embedCalls++
	m.lastEmbedded = append(m.lastEmbedded, text)
	if vec, ok := m.vectors[text]; ok {
		return vec, nil
	}
	return m.defaultVec, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return len(m.defaultVec) }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockGenerator returns a canned completion and records the prompts it
// saw.
type mockGenerator struct {
	response string
	failWith error
	prompts  []string
}

var _ driven.GenerationService = (*mockGenerator)(nil)

func (m *mockGenerator) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (*driven.GenerationResult, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.prompts = append(m.prompts, prompt)
	return &driven.GenerationResult{
		Text:         m.response,
		InputTokens:  len(prompt) / 4,
		OutputTokens: len(m.response) / 4,
	}, nil
}

func (m *mockGenerator) ModelName() string            { return "mock-gen" }
func (m *mockGenerator) Ping(_ context.Context) error { return nil }
func (m *mockGenerator) Close() error                 { return nil }

// mockClassifier returns a canned moderation verdict.
type mockClassifier struct {
	result domain.ModerationResult
}

var _ driven.ModerationClassifier = (*mockClassifier)(nil)

func (m *mockClassifier) Classify(_ context.Context, _ string) (domain.ModerationResult, error) {
	return m.result, nil
}

func allowAll() *mockClassifier {
	return &mockClassifier{result: domain.ModerationResult{Action: domain.ActionAllow}}
}

func blockAll() *mockClassifier {
	return &mockClassifier{result: domain.ModerationResult{
		Flagged:         true,
		OverallSeverity: domain.SeverityHigh,
		Action:          domain.ActionBlock,
		Categories: []domain.CategoryResult{
			{Category: "violence", Severity: domain.SeverityHigh},
		},
	}}
}

// hitFixture builds a search hit for grounding tests.
func hitFixture(id string, score float64) driven.SearchHit {
	return driven.SearchHit{
		Chunk: domain.Chunk{ID: id, Text: "text of " + id, Hash: id},
		Score: score,
	}
}

// turnFixture builds a conversation turn.
func turnFixture(i int, content string) domain.ConversationTurn {
	return domain.ConversationTurn{
		ID:             fmt.Sprintf("t%d", i),
		ConversationID: "conv",
		Role:           "user",
		Content:        content,
	}
}
