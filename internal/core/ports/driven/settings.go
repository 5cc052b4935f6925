package driven

import (
	"context"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
)

// SettingsStore loads and persists CLI configuration.
type SettingsStore interface {
	// Load reads the current settings, falling back to defaults when no
	// configuration exists.
	Load() (*domain.Settings, error)

	// Save persists the settings.
	Save(settings *domain.Settings) error

	// Watch invokes onChange with freshly loaded settings whenever the
	// backing file changes, until the context is cancelled.
	Watch(ctx context.Context, onChange func(*domain.Settings)) error
}
