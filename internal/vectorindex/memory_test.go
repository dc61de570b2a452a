package vectorindex

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIndex_FindSimilarSortsDescendingAndLimits(t *testing.T) {
	t.Parallel()

	idx := NewInMemoryIndex()
	require.NoError(t, idx.Upsert([]Record{
		{ID: "a", Embedding: []float32{1, 0}},
		{ID: "b", Embedding: []float32{0.9, 0.1}},
		{ID: "c", Embedding: []float32{0, 1}},
	}))

	matches, err := idx.FindSimilar([]float32{1, 0}, 1, 0.5)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].Record.ID)
}

func TestInMemoryIndex_ThresholdFiltersLowSimilarity(t *testing.T) {
	t.Parallel()

	idx := NewInMemoryIndex()
	require.NoError(t, idx.Upsert([]Record{
		{ID: "a", Embedding: []float32{1, 0}},
		{ID: "b", Embedding: []float32{0, 1}},
	}))

	matches, err := idx.FindSimilar([]float32{1, 0}, 10, 0.9)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].Record.ID)
}

func TestInMemoryIndex_ZeroMagnitudeYieldsZeroSimilarity(t *testing.T) {
	t.Parallel()

	idx := NewInMemoryIndex()
	require.NoError(t, idx.Upsert([]Record{{ID: "zero", Embedding: []float32{0, 0}}}))

	matches, err := idx.FindSimilar([]float32{1, 0}, 10, 0)

	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestInMemoryIndex_DimensionMismatchOnUpsert(t *testing.T) {
	t.Parallel()

	idx := NewInMemoryIndex()
	require.NoError(t, idx.Upsert([]Record{{ID: "a", Embedding: []float32{1, 0, 0}}}))

	err := idx.Upsert([]Record{{ID: "b", Embedding: []float32{1, 0}}})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestInMemoryIndex_DimensionMismatchOnQuery(t *testing.T) {
	t.Parallel()

	idx := NewInMemoryIndex()
	require.NoError(t, idx.Upsert([]Record{{ID: "a", Embedding: []float32{1, 0, 0}}}))

	_, err := idx.FindSimilar([]float32{1, 0}, 10, 0.5)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestInMemoryIndex_DeleteRemovesRecord(t *testing.T) {
	t.Parallel()

	idx := NewInMemoryIndex()
	require.NoError(t, idx.Upsert([]Record{{ID: "a", Embedding: []float32{1, 0}}}))
	require.NoError(t, idx.Delete([]string{"a"}))

	assert.Equal(t, 0, idx.Count())
}
