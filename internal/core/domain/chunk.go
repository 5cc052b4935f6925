package domain

import "time"

// Chunk represents a content-addressed retrieval unit produced by the
// chunking engine. Once stored its hash and text are immutable; the
// vector store owns the record thereafter.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Text is the chunk content.
	Text string

	// Title is the title of the source document.
	Title string

	// Section is the section heading the chunk was cut from, if any.
	Section string

	// SourcePath is the original file location.
	SourcePath string

	// Hash is the deterministic content digest of the normalised text.
	// It determines dedup identity within an ingestion scope.
	Hash string

	// CreatedAt is when the chunk was created.
	CreatedAt time.Time

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]string
}

// Embedding is the vector representation of a chunk under one model.
// One embedding exists per (ChunkID, Model) pair; re-embedding under a
// new model coexists with the old.
type Embedding struct {
	// ChunkID links to the embedded chunk.
	ChunkID string

	// Vector is the fixed-length embedding. Its length is determined by
	// the model and must match the query vector length at search time.
	Vector []float32

	// Model is the embedding model name.
	Model string

	// CreatedAt is when the embedding was generated.
	CreatedAt time.Time
}
