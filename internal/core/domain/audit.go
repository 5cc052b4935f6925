package domain

import "time"

// AuditLogEntry is the append-only record of one completed or failed
// pipeline run. It is immutable once written.
type AuditLogEntry struct {
	// ID is the unique identifier assigned by the audit store.
	ID string

	// CorrelationID threads the request's trace and audit record together.
	CorrelationID string

	// Operation is the pipeline operation (ask, draft, ingest).
	Operation Intent

	// PromptDigest is the SHA-256 digest of the prompt sent to the
	// generation model. The prompt itself is not stored.
	PromptDigest string

	// Model is the generation model name.
	Model string

	// Question is the inbound question, redacted when policy requires it.
	Question string

	// AnswerContent is the final answer text, redacted when policy
	// requires it.
	AnswerContent string

	// CitationIDs are the chunk IDs cited by the validated answer.
	CitationIDs []string

	// Trace is the complete stage timeline up to completion or failure.
	Trace []TraceEntry

	// Moderation is the final moderation verdict.
	Moderation ModerationResult

	// InputTokens and OutputTokens are the request's token counts.
	InputTokens  int
	OutputTokens int

	// Duration is the total pipeline run time.
	Duration time.Duration

	// State is the terminal pipeline state.
	State PipelineState

	// CreatedAt is when the entry was written.
	CreatedAt time.Time
}
