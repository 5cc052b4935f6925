package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
)

func TestAuditStore_AppendListCount(t *testing.T) {
	ctx := context.Background()
	store := NewAuditStore()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		id, err := store.Append(ctx, domain.AuditLogEntry{
			CorrelationID: fmt.Sprintf("corr-%d", i),
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		require.NotEmpty(t, id)
	}

	entries, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "corr-2", entries[0].CorrelationID)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStore_TurnWindow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.AppendTurn(ctx, domain.ConversationTurn{
			ConversationID: "conv-1",
			Role:           "user",
			Content:        fmt.Sprintf("turn %d", i),
		}))
	}

	turns, err := store.Turns(ctx, "conv-1", 2)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "turn 3", turns[0].Content)
	assert.Equal(t, "turn 4", turns[1].Content)
}

func TestMemoryStore_PersonaAndPolicy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.SavePersona(ctx, domain.PersonaProfile{ID: "p1", Name: "Archivist"}))
	persona, err := store.Persona(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Archivist", persona.Name)

	require.NoError(t, store.SavePolicy(ctx, domain.PolicyDocument{ID: "strict", HardFailOnBlock: true}))
	policy, err := store.Policy(ctx, "strict")
	require.NoError(t, err)
	assert.True(t, policy.HardFailOnBlock)

	_, err = store.Policy(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
