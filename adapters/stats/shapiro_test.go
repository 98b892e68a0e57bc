package stats

import (
	"math"
	"testing"

	"epmstat/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapiroWilk_ExactAtN3(t *testing.T) {
	// For n=3 the weights are exact and an equally spaced sample is a
	// perfect fit: W = 1 and the small-sample p transform gives exactly 1.
	w, p, err := ShapiroWilk([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, w, 1e-9)
	assert.InDelta(t, 1.0, p, 1e-9)
}

func TestShapiroWilk_SymmetricSampleLooksNormal(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	w, p, err := ShapiroWilk(data)
	require.NoError(t, err)
	assert.Greater(t, w, 0.9)
	assert.Greater(t, p, 0.5)
}

func TestShapiroWilk_OutlierRejectsNormality(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 1000}
	_, p, err := ShapiroWilk(data)
	require.NoError(t, err)
	assert.Less(t, p, 0.05)
}

func TestShapiroWilk_SampleSizeBounds(t *testing.T) {
	_, _, err := ShapiroWilk([]float64{1, 2})
	assert.ErrorIs(t, err, core.ErrSampleSize)
}

func TestShapiroWilk_ZeroRange(t *testing.T) {
	_, _, err := ShapiroWilk([]float64{4, 4, 4, 4})
	assert.ErrorIs(t, err, core.ErrDegenerateSample)
}

func TestDifferencesNormal_SmallSampleDefaultsNonNormal(t *testing.T) {
	normal, p := DifferencesNormal([]float64{1, 2}, 0.05)
	assert.False(t, normal)
	assert.True(t, math.IsNaN(p))
}

func TestDifferencesNormal_ConstantDefaultsNonNormal(t *testing.T) {
	normal, p := DifferencesNormal([]float64{2, 2, 2, 2}, 0.05)
	assert.False(t, normal)
	assert.True(t, math.IsNaN(p))
}

func TestDifferencesNormal_BoundaryFallsNonNormal(t *testing.T) {
	// The rule is p > alpha, so a p-value equal to alpha must classify
	// non-normal. Reuse the sample's own p-value as the threshold to pin
	// the boundary exactly.
	diff := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	_, p, err := ShapiroWilk(diff)
	require.NoError(t, err)

	normal, _ := DifferencesNormal(diff, p)
	assert.False(t, normal)

	normal, _ = DifferencesNormal(diff, p-1e-12)
	assert.True(t, normal)
}
