package pmf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyGround_EmptyInput(t *testing.T) {
	t.Parallel()

	mask, err := ClassifyGround(nil, nil, nil, DefaultParams())
	require.NoError(t, err)
	assert.Empty(t, mask)
}

func TestClassifyGround_SinglePointIsGround(t *testing.T) {
	t.Parallel()

	mask, err := ClassifyGround([]float64{5}, []float64{5}, []float64{12.3}, DefaultParams())
	require.NoError(t, err)
	require.Len(t, mask, 1)
	assert.True(t, mask[0])
}

func TestClassifyGround_FlatPlaneAllGround(t *testing.T) {
	t.Parallel()

	var x, y, z []float64
	for row := 0; row < 20; row++ {
		for col := 0; col < 20; col++ {
			x = append(x, float64(col))
			y = append(y, float64(row))
			z = append(z, 10.0)
		}
	}

	mask, err := ClassifyGround(x, y, z, DefaultParams())
	require.NoError(t, err)
	require.Len(t, mask, len(x))
	for i, g := range mask {
		assert.True(t, g, "point %d should be classified ground on a flat plane", i)
	}
}

func TestClassifyGround_ElevatedBlockIsNonGround(t *testing.T) {
	t.Parallel()

	var x, y, z []float64
	for row := 0; row < 30; row++ {
		for col := 0; col < 30; col++ {
			elevation := 10.0
			// A tight, tall block well inside the plane, narrower than
			// the filter's largest opening window, should get removed.
			if row >= 13 && row <= 16 && col >= 13 && col <= 16 {
				elevation = 25.0
			}
			x = append(x, float64(col))
			y = append(y, float64(row))
			z = append(z, elevation)
		}
	}

	mask, err := ClassifyGround(x, y, z, DefaultParams())
	require.NoError(t, err)

	idx := func(row, col int) int { return row*30 + col }
	assert.False(t, mask[idx(14, 14)], "center of elevated block should be non-ground")
	assert.True(t, mask[idx(0, 0)], "flat corner should remain ground")
}

func TestClassifyGround_InvalidParams(t *testing.T) {
	t.Parallel()

	p := DefaultParams()
	p.Slope = 0
	_, err := ClassifyGround([]float64{1, 2}, []float64{1, 2}, []float64{1, 2}, p)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestWindowSizes_TargetAppearsOnceAtEnd(t *testing.T) {
	t.Parallel()

	sizes := windowSizes(1.0, 33)
	require.NotEmpty(t, sizes)
	assert.Equal(t, 33, sizes[len(sizes)-1])

	count := 0
	for _, s := range sizes {
		if s == 33 {
			count++
		}
	}
	assert.Equal(t, 1, count)

	for i := 1; i < len(sizes)-1; i++ {
		assert.Equal(t, 2*sizes[i-1]+1, sizes[i])
	}
}

