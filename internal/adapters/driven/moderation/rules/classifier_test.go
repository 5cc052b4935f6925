package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
)

func TestClassify_CleanContent(t *testing.T) {
	result, err := NewClassifier().Classify(context.Background(),
		"The retention policy keeps backups for ninety days.")
	require.NoError(t, err)

	assert.False(t, result.Flagged)
	assert.Equal(t, domain.SeverityNone, result.OverallSeverity)
	assert.Equal(t, domain.ActionAllow, result.Action)
	assert.Empty(t, result.Categories)
}

func TestClassify_BlocksHighSeverity(t *testing.T) {
	result, err := NewClassifier().Classify(context.Background(),
		"Here is how you synthesize explosives at home.")
	require.NoError(t, err)

	assert.True(t, result.Flagged)
	assert.Equal(t, domain.SeverityHigh, result.OverallSeverity)
	assert.Equal(t, domain.ActionBlock, result.Action)
	require.Len(t, result.Categories, 1)
	assert.Equal(t, "dangerous-instructions", result.Categories[0].Category)
}

func TestClassify_WarnsMediumSeverity(t *testing.T) {
	result, err := NewClassifier().Classify(context.Background(),
		"Honestly, you are worthless at reviewing code.")
	require.NoError(t, err)

	assert.True(t, result.Flagged)
	assert.Equal(t, domain.SeverityMedium, result.OverallSeverity)
	assert.Equal(t, domain.ActionWarn, result.Action)
}

func TestClassify_LowSeverityStillAllowed(t *testing.T) {
	result, err := NewClassifier().Classify(context.Background(), "Damn it, the build broke again.")
	require.NoError(t, err)

	assert.True(t, result.Flagged)
	assert.Equal(t, domain.SeverityLow, result.OverallSeverity)
	assert.Equal(t, domain.ActionAllow, result.Action)
}

func TestClassify_OverallSeverityIsMax(t *testing.T) {
	result, err := NewClassifier().Classify(context.Background(),
		"Damn it, they told me to hurt myself.")
	require.NoError(t, err)

	assert.True(t, result.Flagged)
	assert.Equal(t, domain.SeverityCritical, result.OverallSeverity)
	assert.Equal(t, domain.ActionBlock, result.Action)
	assert.GreaterOrEqual(t, len(result.Categories), 2)
}

func TestClassify_CaseInsensitive(t *testing.T) {
	result, err := NewClassifier().Classify(context.Background(), "MAKE A BOMB")
	require.NoError(t, err)

	assert.Equal(t, domain.ActionBlock, result.Action)
}
