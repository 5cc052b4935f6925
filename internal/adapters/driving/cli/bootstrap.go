package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/lore-cli/internal/adapters/driven/config/file"
	embedollama "github.com/custodia-labs/lore-cli/internal/adapters/driven/embedding/ollama"
	embedopenai "github.com/custodia-labs/lore-cli/internal/adapters/driven/embedding/openai"
	genollama "github.com/custodia-labs/lore-cli/internal/adapters/driven/generation/ollama"
	genopenai "github.com/custodia-labs/lore-cli/internal/adapters/driven/generation/openai"
	"github.com/custodia-labs/lore-cli/internal/adapters/driven/moderation/rules"
	"github.com/custodia-labs/lore-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lore-cli/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lore-cli/internal/core/services"
	"github.com/custodia-labs/lore-cli/internal/logger"
	"github.com/custodia-labs/lore-cli/internal/parsers"
)

// currentSettings holds the configuration loaded during bootstrap, for
// commands that fold settings defaults into request parameters.
var currentSettings *domain.Settings

var closers []func() error

// ensureServices wires the full service graph from configuration. It is
// idempotent: commands call it lazily and the first caller wins.
func ensureServices(ctx context.Context) error {
	if askService != nil && ingestService != nil {
		return nil
	}

	store, err := file.NewSettingsStore(configDir)
	if err != nil {
		return fmt.Errorf("opening settings: %w", err)
	}
	settingsStore = store

	settings, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if settings.Verbose {
		logger.SetVerbose(true)
	}
	currentSettings = settings

	embedder, err := buildEmbedder(settings.Embedding)
	if err != nil {
		return err
	}
	closers = append(closers, embedder.Close)

	generator, err := buildGenerator(settings.Generation)
	if err != nil {
		return err
	}
	closers = append(closers, generator.Close)

	dims := settings.Embedding.Dimensions
	if dims == 0 {
		dims = embedder.Dimensions()
	}
	vectors, err := vectorstore.New(ctx, settings.Store, dims)
	if err != nil {
		return fmt.Errorf("opening vector store: %w", err)
	}
	closers = append(closers, vectors.Close)

	var dataDir string
	if configDir != "" {
		dataDir = filepath.Join(configDir, "data")
	}
	metadata, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening metadata store: %w", err)
	}
	closers = append(closers, metadata.Close)
	auditLog = metadata.AuditStore()

	gate := services.NewGovernanceGate(rules.NewClassifier())
	askService = services.NewOrchestrator(
		services.NewRouter(),
		services.NewRetriever(embedder, vectors),
		services.NewDrafter(generator),
		services.NewCiteChecker(gate),
		gate,
		generator,
		metadata.MemoryStore(),
		auditLog,
		settings.Retrieval,
		settings.Policy,
	)
	ingestService = services.NewIngestionService(
		parsers.Defaults(),
		embedder,
		vectors,
		settings.Chunking,
	)
	return nil
}

// buildEmbedder selects the embedding adapter for the configured
// provider.
func buildEmbedder(cfg domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case domain.AIProviderOllama, "":
		return embedollama.NewEmbeddingService(embedollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		}), nil
	case domain.AIProviderOpenAI:
		return embedopenai.NewEmbeddingService(embedopenai.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrConfiguration, cfg.Provider)
	}
}

// buildGenerator selects the generation adapter for the configured
// provider.
func buildGenerator(cfg domain.GenerationSettings) (driven.GenerationService, error) {
	switch cfg.Provider {
	case domain.AIProviderOllama, "":
		return genollama.NewGenerationService(genollama.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}), nil
	case domain.AIProviderOpenAI:
		return genopenai.NewGenerationService(genopenai.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	default:
		return nil, fmt.Errorf("%w: unknown generation provider %q", domain.ErrConfiguration, cfg.Provider)
	}
}

// closeServices releases everything the bootstrap opened, in reverse
// order.
func closeServices() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			logger.Warn("closing service: %v", err)
		}
	}
	closers = nil
}
