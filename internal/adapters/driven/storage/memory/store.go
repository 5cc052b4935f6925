// Package memory provides in-process implementations of the audit and
// conversation stores, used when no durable storage is configured and
// by the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
)

// AuditStore is an in-process append-only audit log.
type AuditStore struct {
	mu      sync.RWMutex
	entries []domain.AuditLogEntry
	byID    map[string]int
}

var _ driven.AuditStore = (*AuditStore)(nil)

// NewAuditStore creates an empty in-process audit store.
func NewAuditStore() *AuditStore {
	return &AuditStore{byID: make(map[string]int)}
}

// Append writes an entry and returns its assigned ID.
func (s *AuditStore) Append(_ context.Context, entry domain.AuditLogEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.byID[entry.ID] = len(s.entries)
	s.entries = append(s.entries, entry)
	return entry.ID, nil
}

// Get retrieves an entry by ID.
func (s *AuditStore) Get(_ context.Context, id string) (*domain.AuditLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	entry := s.entries[idx]
	return &entry, nil
}

// List returns the most recent entries, newest first.
func (s *AuditStore) List(_ context.Context, limit int) ([]domain.AuditLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.AuditLogEntry, len(s.entries))
	copy(out, s.entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count returns the number of stored entries.
func (s *AuditStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Close releases resources. The in-process store holds none.
func (s *AuditStore) Close() error {
	return nil
}

// MemoryStore is an in-process conversation, persona and policy store.
type MemoryStore struct {
	mu       sync.RWMutex
	turns    map[string][]domain.ConversationTurn
	personas map[string]domain.PersonaProfile
	policies map[string]domain.PolicyDocument
}

var _ driven.MemoryStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-process conversation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		turns:    make(map[string][]domain.ConversationTurn),
		personas: make(map[string]domain.PersonaProfile),
		policies: make(map[string]domain.PolicyDocument),
	}
}

// AppendTurn adds a turn to a conversation.
func (s *MemoryStore) AppendTurn(_ context.Context, turn domain.ConversationTurn) error {
	if turn.ConversationID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	s.turns[turn.ConversationID] = append(s.turns[turn.ConversationID], turn)
	return nil
}

// Turns returns up to limit most recent turns, oldest first.
func (s *MemoryStore) Turns(_ context.Context, conversationID string, limit int) ([]domain.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[conversationID]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	out := make([]domain.ConversationTurn, len(turns))
	copy(out, turns)
	return out, nil
}

// SavePersona stores or updates a persona profile.
func (s *MemoryStore) SavePersona(_ context.Context, persona domain.PersonaProfile) error {
	if persona.ID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.personas[persona.ID] = persona
	return nil
}

// Persona retrieves a persona by ID.
func (s *MemoryStore) Persona(_ context.Context, id string) (*domain.PersonaProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	persona, ok := s.personas[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &persona, nil
}

// SavePolicy stores or updates a policy document.
func (s *MemoryStore) SavePolicy(_ context.Context, policy domain.PolicyDocument) error {
	if policy.ID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[policy.ID] = policy
	return nil
}

// Policy retrieves a policy by ID.
func (s *MemoryStore) Policy(_ context.Context, id string) (*domain.PolicyDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	policy, ok := s.policies[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &policy, nil
}

// Close releases resources. The in-process store holds none.
func (s *MemoryStore) Close() error {
	return nil
}
