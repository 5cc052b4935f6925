package vectormath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 0, 0}, b: []float32{1, 0, 0}, want: 1.0},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0.0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1.0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 2}, []float32{1, 2, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestRank_OrderAndFloor(t *testing.T) {
	scored := []Scored{
		{ID: "c", Score: 0.2},
		{ID: "a", Score: 0.9},
		{ID: "b", Score: 0.7},
	}

	ranked := Rank(scored, 10, 0.5)
	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].ID)
	assert.Equal(t, "b", ranked[1].ID)
}

func TestRank_TieBreakByID(t *testing.T) {
	scored := []Scored{
		{ID: "z", Score: 0.8},
		{ID: "a", Score: 0.8},
		{ID: "m", Score: 0.8},
	}

	ranked := Rank(scored, 10, 0)
	require.Len(t, ranked, 3)
	assert.Equal(t, []Scored{{ID: "a", Score: 0.8}, {ID: "m", Score: 0.8}, {ID: "z", Score: 0.8}}, ranked)
}

func TestRank_TopKCap(t *testing.T) {
	scored := []Scored{
		{ID: "a", Score: 0.9},
		{ID: "b", Score: 0.8},
		{ID: "c", Score: 0.7},
	}

	ranked := Rank(scored, 2, 0)
	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].ID)
	assert.Equal(t, "b", ranked[1].ID)
}
