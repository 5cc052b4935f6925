// Package file provides a TOML-backed settings store with change
// notification via filesystem watching.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lore-cli/internal/logger"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// SettingsStore is a file-based implementation of driven.SettingsStore
// using TOML. Configuration is stored within the lore config directory.
type SettingsStore struct {
	mu       sync.RWMutex
	filePath string
}

// fileSettings is the on-disk TOML layout.
type fileSettings struct {
	Verbose bool `toml:"verbose"`

	Chunking struct {
		ChunkSize int `toml:"chunk_size"`
		Overlap   int `toml:"overlap"`
	} `toml:"chunking"`

	Retrieval struct {
		TopK         int     `toml:"top_k"`
		MinScore     float64 `toml:"min_score"`
		EnableRerank bool    `toml:"enable_rerank"`
	} `toml:"retrieval"`

	Store struct {
		Backend    string `toml:"backend"`
		Path       string `toml:"path"`
		DSN        string `toml:"dsn"`
		BaseURL    string `toml:"base_url"`
		APIKey     string `toml:"api_key"`
		Collection string `toml:"collection"`
	} `toml:"store"`

	Embedding struct {
		Provider   string `toml:"provider"`
		BaseURL    string `toml:"base_url"`
		APIKey     string `toml:"api_key"`
		Model      string `toml:"model"`
		Dimensions int    `toml:"dimensions"`
	} `toml:"embedding"`

	Generation struct {
		Provider  string `toml:"provider"`
		BaseURL   string `toml:"base_url"`
		APIKey    string `toml:"api_key"`
		Model     string `toml:"model"`
		MaxTokens int    `toml:"max_tokens"`
	} `toml:"generation"`

	Policy struct {
		ID                  string `toml:"id"`
		HardFailOnBlock     bool   `toml:"hard_fail_on_block"`
		HardFailOnGrounding bool   `toml:"hard_fail_on_grounding"`
		RedactAuditContent  bool   `toml:"redact_audit_content"`
	} `toml:"policy"`
}

// NewSettingsStore creates a new TOML-based settings store.
// If configDir is empty, defaults to ~/.lore/config.toml.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".lore")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	return &SettingsStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Path returns the configuration file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

// Load reads the current settings, falling back to defaults when no
// configuration file exists. Unset sections keep their defaults.
func (s *SettingsStore) Load() (*domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := domain.DefaultSettings()

	raw, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fs fileSettings
	if err := toml.Unmarshal(raw, &fs); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", domain.ErrConfiguration, s.filePath, err)
	}

	applyFile(settings, fs)
	return settings, nil
}

// applyFile overlays non-zero file values onto the defaults.
func applyFile(settings *domain.Settings, fs fileSettings) {
	settings.Verbose = settings.Verbose || fs.Verbose

	if fs.Chunking.ChunkSize > 0 {
		settings.Chunking.ChunkSize = fs.Chunking.ChunkSize
	}
	if fs.Chunking.Overlap > 0 {
		settings.Chunking.Overlap = fs.Chunking.Overlap
	}

	if fs.Retrieval.TopK > 0 {
		settings.Retrieval.TopK = fs.Retrieval.TopK
	}
	if fs.Retrieval.MinScore > 0 {
		settings.Retrieval.MinScore = fs.Retrieval.MinScore
	}
	settings.Retrieval.EnableRerank = fs.Retrieval.EnableRerank

	if fs.Store.Backend != "" {
		settings.Store.Backend = domain.StoreBackend(fs.Store.Backend)
	}
	if fs.Store.Path != "" {
		settings.Store.Path = fs.Store.Path
	}
	if fs.Store.DSN != "" {
		settings.Store.DSN = fs.Store.DSN
	}
	if fs.Store.BaseURL != "" {
		settings.Store.BaseURL = fs.Store.BaseURL
	}
	if fs.Store.APIKey != "" {
		settings.Store.APIKey = fs.Store.APIKey
	}
	if fs.Store.Collection != "" {
		settings.Store.Collection = fs.Store.Collection
	}

	if fs.Embedding.Provider != "" {
		settings.Embedding.Provider = domain.AIProvider(fs.Embedding.Provider)
	}
	settings.Embedding.BaseURL = fs.Embedding.BaseURL
	settings.Embedding.APIKey = fs.Embedding.APIKey
	if fs.Embedding.Model != "" {
		settings.Embedding.Model = fs.Embedding.Model
	}
	if fs.Embedding.Dimensions > 0 {
		settings.Embedding.Dimensions = fs.Embedding.Dimensions
	}

	if fs.Generation.Provider != "" {
		settings.Generation.Provider = domain.AIProvider(fs.Generation.Provider)
	}
	settings.Generation.BaseURL = fs.Generation.BaseURL
	settings.Generation.APIKey = fs.Generation.APIKey
	if fs.Generation.Model != "" {
		settings.Generation.Model = fs.Generation.Model
	}
	if fs.Generation.MaxTokens > 0 {
		settings.Generation.MaxTokens = fs.Generation.MaxTokens
	}

	if fs.Policy.ID != "" {
		settings.Policy.ID = fs.Policy.ID
		settings.Policy.HardFailOnBlock = fs.Policy.HardFailOnBlock
		settings.Policy.HardFailOnGrounding = fs.Policy.HardFailOnGrounding
		settings.Policy.RedactAuditContent = fs.Policy.RedactAuditContent
	}
}

// Save persists the settings to the TOML file.
func (s *SettingsStore) Save(settings *domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fs fileSettings
	fs.Verbose = settings.Verbose
	fs.Chunking.ChunkSize = settings.Chunking.ChunkSize
	fs.Chunking.Overlap = settings.Chunking.Overlap
	fs.Retrieval.TopK = settings.Retrieval.TopK
	fs.Retrieval.MinScore = settings.Retrieval.MinScore
	fs.Retrieval.EnableRerank = settings.Retrieval.EnableRerank
	fs.Store.Backend = string(settings.Store.Backend)
	fs.Store.Path = settings.Store.Path
	fs.Store.DSN = settings.Store.DSN
	fs.Store.BaseURL = settings.Store.BaseURL
	fs.Store.APIKey = settings.Store.APIKey
	fs.Store.Collection = settings.Store.Collection
	fs.Embedding.Provider = string(settings.Embedding.Provider)
	fs.Embedding.BaseURL = settings.Embedding.BaseURL
	fs.Embedding.APIKey = settings.Embedding.APIKey
	fs.Embedding.Model = settings.Embedding.Model
	fs.Embedding.Dimensions = settings.Embedding.Dimensions
	fs.Generation.Provider = string(settings.Generation.Provider)
	fs.Generation.BaseURL = settings.Generation.BaseURL
	fs.Generation.APIKey = settings.Generation.APIKey
	fs.Generation.Model = settings.Generation.Model
	fs.Generation.MaxTokens = settings.Generation.MaxTokens
	fs.Policy.ID = settings.Policy.ID
	fs.Policy.HardFailOnBlock = settings.Policy.HardFailOnBlock
	fs.Policy.HardFailOnGrounding = settings.Policy.HardFailOnGrounding
	fs.Policy.RedactAuditContent = settings.Policy.RedactAuditContent

	data, err := toml.Marshal(fs)
	if err != nil {
		return fmt.Errorf("marshalling settings: %w", err)
	}

	// Write atomically via temp file + rename
	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmpFile, s.filePath); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("replacing settings file: %w", err)
	}
	return nil
}

// Watch invokes onChange with freshly loaded settings whenever the
// config file changes, until the context is cancelled.
func (s *SettingsStore) Watch(ctx context.Context, onChange func(*domain.Settings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	// Watch the directory: editors replace files via rename, which
	// drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching config directory: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.filePath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				settings, err := s.Load()
				if err != nil {
					logger.Warn("reloading settings: %v", err)
					continue
				}
				logger.Debug("settings reloaded from %s", s.filePath)
				onChange(settings)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("settings watcher: %v", err)
			}
		}
	}()

	return nil
}
