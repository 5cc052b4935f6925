package driven

import (
	"context"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
)

// ModerationClassifier grades content risk across named categories.
// The concrete model behind it is an external capability; only the
// verdict contract matters to the core.
type ModerationClassifier interface {
	// Classify scores the content and returns the typed verdict,
	// including the gating action.
	Classify(ctx context.Context, content string) (domain.ModerationResult, error)
}
