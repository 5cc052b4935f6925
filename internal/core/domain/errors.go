package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates an invalid configuration value,
	// such as a chunk size smaller than its overlap or an unknown
	// store backend.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrUnsupportedType indicates an unknown file extension, parser
	// or store backend type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Store Errors.

	// ErrStoreUnavailable indicates the vector store backend is unreachable.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrDimensionMismatch indicates a query vector length does not match
	// the stored vector length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// Pipeline Errors.

	// ErrGenerationFailed indicates the generation call errored or timed out.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrModerationBlocked indicates content was blocked by moderation.
	// This is a soft failure by default: the answer is replaced with a
	// refusal message and the run still completes.
	ErrModerationBlocked = errors.New("content blocked by moderation")

	// ErrGroundingFailed indicates a citation does not reference a chunk
	// from the request's retrieved set. Soft failure by default: the
	// citation is dropped.
	ErrGroundingFailed = errors.New("citation not grounded in retrieved set")

	// ErrPipelineAborted indicates a stage failed and the remaining
	// stages were skipped.
	ErrPipelineAborted = errors.New("pipeline aborted")
)
