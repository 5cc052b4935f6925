package driven

import (
	"context"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
)

// AuditStore persists append-only pipeline run records. Entries are
// immutable once written. Implementations must tolerate concurrent
// appends from independent requests.
type AuditStore interface {
	// Append writes an entry and returns its assigned ID.
	Append(ctx context.Context, entry domain.AuditLogEntry) (string, error)

	// Get retrieves an entry by ID. Returns domain.ErrNotFound if the
	// ID is unknown.
	Get(ctx context.Context, id string) (*domain.AuditLogEntry, error)

	// List returns the most recent entries, newest first.
	List(ctx context.Context, limit int) ([]domain.AuditLogEntry, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
