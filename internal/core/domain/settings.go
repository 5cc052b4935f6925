package domain

import "fmt"

const unknownDescription = "Unknown"

// StoreBackend identifies a vector store variant.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendMemory is the in-process exact store.
	StoreBackendMemory StoreBackend = "memory"

	// StoreBackendBadger is the file-backed exact store on BadgerDB.
	StoreBackendBadger StoreBackend = "badger"

	// StoreBackendHNSW is the in-process approximate index.
	StoreBackendHNSW StoreBackend = "hnsw"

	// StoreBackendPGVector is PostgreSQL with the pgvector extension.
	StoreBackendPGVector StoreBackend = "pgvector"

	// StoreBackendREST is a managed document+vector service over HTTPS.
	StoreBackendREST StoreBackend = "rest"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendMemory, StoreBackendBadger, StoreBackendHNSW,
		StoreBackendPGVector, StoreBackendREST:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StoreBackend) Description() string {
	switch b {
	case StoreBackendMemory:
		return "In-memory (exact search, volatile)"
	case StoreBackendBadger:
		return "BadgerDB (exact search, file-backed)"
	case StoreBackendHNSW:
		return "HNSW (approximate search, in-process)"
	case StoreBackendPGVector:
		return "PostgreSQL + pgvector"
	case StoreBackendREST:
		return "Managed vector service (REST)"
	default:
		return unknownDescription
	}
}

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// ChunkingSettings configures the chunking engine. Sizes are in
// characters, consistent with the embedding model's character limits.
type ChunkingSettings struct {
	// ChunkSize is the window size in characters.
	ChunkSize int

	// Overlap is the number of characters repeated from the previous
	// chunk at the head of the next one.
	Overlap int
}

// Validate checks the chunking configuration.
func (s ChunkingSettings) Validate() error {
	if s.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrConfiguration, s.ChunkSize)
	}
	if s.Overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrConfiguration, s.Overlap)
	}
	if s.ChunkSize <= s.Overlap {
		return fmt.Errorf("%w: chunk size %d must exceed overlap %d", ErrConfiguration, s.ChunkSize, s.Overlap)
	}
	return nil
}

// RetrievalSettings configures the Retriever stage.
type RetrievalSettings struct {
	// TopK bounds the number of retrieved chunks.
	TopK int

	// MinScore is the similarity floor; results below it are excluded.
	MinScore float64

	// EnableRerank turns on the secondary relevance pass.
	EnableRerank bool
}

// StoreSettings configures the vector store backend.
type StoreSettings struct {
	// Backend selects the store variant.
	Backend StoreBackend

	// Path is the data directory for file-backed variants.
	Path string

	// DSN is the connection string for the pgvector variant.
	DSN string

	// BaseURL is the endpoint for the REST variant.
	BaseURL string

	// APIKey authenticates the REST variant.
	APIKey string

	// Collection namespaces chunks within shared backends.
	Collection string
}

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	// Provider selects the adapter.
	Provider AIProvider

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey authenticates cloud providers.
	APIKey string

	// Model is the embedding model name.
	Model string

	// Dimensions is the vector size produced by the model.
	Dimensions int
}

// IsConfigured returns true if the settings name a provider.
func (s *EmbeddingSettings) IsConfigured() bool {
	return s != nil && s.Provider != ""
}

// GenerationSettings configures the generation provider.
type GenerationSettings struct {
	// Provider selects the adapter.
	Provider AIProvider

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey authenticates cloud providers.
	APIKey string

	// Model is the generation model name.
	Model string

	// MaxTokens is the default per-request token budget.
	MaxTokens int
}

// IsConfigured returns true if the settings name a provider.
func (s *GenerationSettings) IsConfigured() bool {
	return s != nil && s.Provider != ""
}

// Settings aggregates all configuration for the CLI.
type Settings struct {
	// Verbose enables debug logging.
	Verbose bool

	// Chunking configures the chunking engine.
	Chunking ChunkingSettings

	// Retrieval configures the retriever stage.
	Retrieval RetrievalSettings

	// Store configures the vector store backend.
	Store StoreSettings

	// Embedding configures the embedding provider.
	Embedding EmbeddingSettings

	// Generation configures the generation provider.
	Generation GenerationSettings

	// Policy configures governance behaviour.
	Policy PolicyDocument
}

// DefaultSettings returns the configuration used when no file exists.
func DefaultSettings() *Settings {
	return &Settings{
		Chunking: ChunkingSettings{
			ChunkSize: 1000,
			Overlap:   200,
		},
		Retrieval: RetrievalSettings{
			TopK:     5,
			MinScore: 0.3,
		},
		Store: StoreSettings{
			Backend:    StoreBackendMemory,
			Collection: "default",
		},
		Policy: PolicyDocument{
			ID:                 "default",
			Name:               "Default policy",
			RedactAuditContent: true,
		},
	}
}
