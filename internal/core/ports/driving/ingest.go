// Package driving defines the inbound ports of the core (primary
// interfaces): ingestion and question answering.
package driving

import (
	"context"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
)

// IngestRequest describes one ingestion batch.
type IngestRequest struct {
	// Path is the source directory to ingest.
	Path string

	// ChunkSize overrides the configured chunk size when positive.
	ChunkSize int

	// ChunkOverlap overrides the configured overlap when non-negative.
	ChunkOverlap int

	// RebuildIndex clears the scoped prior content before upserting the
	// full dataset. Otherwise chunks are merged incrementally.
	RebuildIndex bool

	// SupportedExtensions restricts which files are enumerated. Empty
	// means every extension with a registered parser.
	SupportedExtensions []string

	// Workers bounds file-level parallelism. Zero selects a default.
	Workers int
}

// Ingestor runs ingestion batches against the knowledge base.
type Ingestor interface {
	// Ingest enumerates, parses, chunks, dedups, embeds and stores the
	// files under the request path. Per-file failures are recorded in
	// the report and do not abort the batch; a non-nil error means the
	// batch failed entirely.
	Ingest(ctx context.Context, req IngestRequest) (*domain.IngestReport, error)
}
