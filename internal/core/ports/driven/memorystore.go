package driven

import (
	"context"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
)

// MemoryStore persists conversation turns, persona profiles and policy
// documents keyed by stable IDs. It is shared across concurrent
// requests and must serialise its writes internally.
type MemoryStore interface {
	// AppendTurn adds a turn to a conversation.
	AppendTurn(ctx context.Context, turn domain.ConversationTurn) error

	// Turns returns up to limit most recent turns for a conversation,
	// oldest first. A zero limit returns all turns.
	Turns(ctx context.Context, conversationID string, limit int) ([]domain.ConversationTurn, error)

	// SavePersona stores or updates a persona profile.
	SavePersona(ctx context.Context, persona domain.PersonaProfile) error

	// Persona retrieves a persona by ID. Returns domain.ErrNotFound if
	// the ID is unknown.
	Persona(ctx context.Context, id string) (*domain.PersonaProfile, error)

	// SavePolicy stores or updates a policy document.
	SavePolicy(ctx context.Context, policy domain.PolicyDocument) error

	// Policy retrieves a policy by ID. Returns domain.ErrNotFound if
	// the ID is unknown.
	Policy(ctx context.Context, id string) (*domain.PolicyDocument, error)

	// Close releases resources.
	Close() error
}
