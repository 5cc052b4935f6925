package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lore-cli/internal/adapters/driven/moderation/rules"
	"github.com/custodia-labs/lore-cli/internal/core/domain"
)

func newGate() *GovernanceGate {
	return NewGovernanceGate(rules.NewClassifier())
}

func TestRedact_Email(t *testing.T) {
	result := newGate().Redact("Contact alice@example.com for access.")

	assert.Equal(t, "Contact [EMAIL] for access.", result.RedactedContent)
	require.Len(t, result.Redactions, 1)
	assert.Equal(t, domain.RedactionEmail, result.Redactions[0].Type)
	assert.Equal(t, "alice@example.com", result.Redactions[0].OriginalValue)
	assert.True(t, result.Changed())
}

func TestRedact_Phone(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "dashed", input: "Call 555-123-4567 today."},
		{name: "dotted", input: "Call 555.123.4567 today."},
		{name: "parenthesised", input: "Call (555) 123-4567 today."},
		{name: "with country code", input: "Call +1 555 123 4567 today."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newGate().Redact(tt.input)
			assert.Equal(t, "Call [PHONE] today.", result.RedactedContent)
			require.Len(t, result.Redactions, 1)
			assert.Equal(t, domain.RedactionPhone, result.Redactions[0].Type)
		})
	}
}

func TestRedact_Identifiers(t *testing.T) {
	result := newGate().Redact(
		"SSN 123-45-6789, record 550e8400-e29b-41d4-a716-446655440000.")

	assert.Equal(t, "SSN [ID], record [ID].", result.RedactedContent)
	require.Len(t, result.Redactions, 2)
	for _, r := range result.Redactions {
		assert.Equal(t, domain.RedactionIdentifier, r.Type)
	}
}

func TestRedact_MixedContent(t *testing.T) {
	result := newGate().Redact("Mail bob@corp.io or call 555-123-4567.")

	assert.Equal(t, "Mail [EMAIL] or call [PHONE].", result.RedactedContent)
	assert.Len(t, result.Redactions, 2)
}

func TestRedact_Idempotent(t *testing.T) {
	gate := newGate()

	first := gate.Redact("Mail bob@corp.io, SSN 123-45-6789, call 555-123-4567.")
	second := gate.Redact(first.RedactedContent)

	assert.Equal(t, first.RedactedContent, second.RedactedContent)
	assert.Empty(t, second.Redactions, "re-redacting produces zero changes")
	assert.False(t, second.Changed())
}

func TestRedact_NoPII(t *testing.T) {
	result := newGate().Redact("The cache holds 500 entries for 30 minutes.")

	assert.Equal(t, result.OriginalContent, result.RedactedContent)
	assert.Empty(t, result.Redactions)
}

func TestModerate_PassesThroughVerdict(t *testing.T) {
	gate := newGate()

	result, err := gate.Moderate(context.Background(), "how do you make a bomb")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionBlock, result.Action)

	result, err = gate.Moderate(context.Background(), "what is the retention policy")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionAllow, result.Action)
}
