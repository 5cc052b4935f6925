package driving

import (
	"context"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
)

// AskRequest describes one question against the knowledge base.
type AskRequest struct {
	// Question is the user's question.
	Question string

	// ConversationID selects bounded conversation memory for the
	// drafting prompt. Empty means no memory.
	ConversationID string

	// PersonaID selects a drafting persona. Empty means none.
	PersonaID string

	// Intent pins the request intent. When set, the router's
	// classification is advisory only and this value wins.
	Intent domain.Intent

	// MaxTokens is the per-request token budget. Zero selects the
	// configured default.
	MaxTokens int

	// TopK overrides the configured retrieval bound when positive.
	TopK int

	// MinScore overrides the configured similarity floor when positive.
	MinScore float64

	// EnableRerank turns on the secondary relevance pass.
	EnableRerank bool
}

// AskResult carries the validated answer and its pipeline metadata.
type AskResult struct {
	// Answer is the validated answer.
	Answer domain.Answer

	// CorrelationID threads this request's trace and audit record.
	CorrelationID string

	// PromptDigest is the SHA-256 digest of the drafting prompt.
	PromptDigest string

	// Model is the generation model name.
	Model string

	// InputTokens and OutputTokens are the request's token counts.
	InputTokens  int
	OutputTokens int

	// RetrievedChunks is the size of the frozen retrieved set.
	RetrievedChunks int

	// Trace is the complete stage timeline.
	Trace []domain.TraceEntry

	// State is the terminal pipeline state.
	State domain.PipelineState
}

// Asker answers questions through the agent pipeline.
type Asker interface {
	// Ask routes, retrieves, drafts and validates an answer for the
	// request. Soft governance failures (moderation block, dropped
	// citations) downgrade the answer but still return nil error.
	Ask(ctx context.Context, req AskRequest) (*AskResult, error)
}
