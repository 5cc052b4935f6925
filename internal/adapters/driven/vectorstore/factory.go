// Package vectorstore selects and constructs the configured store
// backend.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lore-cli/internal/adapters/driven/vectorstore/badger"
	"github.com/custodia-labs/lore-cli/internal/adapters/driven/vectorstore/hnsw"
	"github.com/custodia-labs/lore-cli/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/lore-cli/internal/adapters/driven/vectorstore/pgvector"
	"github.com/custodia-labs/lore-cli/internal/adapters/driven/vectorstore/rest"
	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lore-cli/internal/logger"
)

// New constructs the vector store selected by the settings. dims is the
// embedding dimensionality, required by backends that fix it up front.
func New(ctx context.Context, settings domain.StoreSettings, dims int) (driven.VectorStore, error) {
	logger.Debug("opening %s vector store", settings.Backend)

	switch settings.Backend {
	case domain.StoreBackendMemory:
		return memory.NewStore(), nil
	case domain.StoreBackendBadger:
		return badger.NewStore(settings.Path)
	case domain.StoreBackendHNSW:
		return hnsw.NewStore(), nil
	case domain.StoreBackendPGVector:
		return pgvector.NewStore(ctx, settings.DSN, dims)
	case domain.StoreBackendREST:
		return rest.NewStore(settings.BaseURL, settings.APIKey, settings.Collection)
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", domain.ErrConfiguration, settings.Backend)
	}
}
