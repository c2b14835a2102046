package normalize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatPlaneFixture(n int, groundZ, treeZ float64) (x, y, z []float64, ground []bool, returnNumber []uint8) {
	side := 20
	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			elevation := groundZ
			isGround := true
			if row >= 9 && row <= 11 && col >= 9 && col <= 11 {
				elevation = treeZ
				isGround = false
			}
			x = append(x, float64(col))
			y = append(y, float64(row))
			z = append(z, elevation)
			ground = append(ground, isGround)
			returnNumber = append(returnNumber, 1)
		}
	}
	return x, y, z, ground, returnNumber
}

func TestNormalize_FlatGroundZeroCHM(t *testing.T) {
	t.Parallel()

	var x, y, z []float64
	var ground []bool
	var ret []uint8
	for row := 0; row < 15; row++ {
		for col := 0; col < 15; col++ {
			x = append(x, float64(col))
			y = append(y, float64(row))
			z = append(z, 50.0)
			ground = append(ground, true)
			ret = append(ret, 1)
		}
	}

	params := DefaultParams()
	result, err := Normalize(x, y, z, ground, ret, true, params)
	require.NoError(t, err)

	for i, v := range result.CHM.Values {
		assert.InDelta(t, 0.0, v, 1e-6, "chm cell %d should be ~0 on flat ground", i)
	}
}

func TestNormalize_CHMNeverNegative(t *testing.T) {
	t.Parallel()

	x, y, z, ground, ret := flatPlaneFixture(400, 10.0, 25.0)
	result, err := Normalize(x, y, z, ground, ret, true, DefaultParams())
	require.NoError(t, err)

	for i, v := range result.CHM.Values {
		assert.GreaterOrEqual(t, v, 0.0, "chm cell %d negative", i)
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
	}
}

func TestNormalize_TreeBumpVisibleInCHM(t *testing.T) {
	t.Parallel()

	x, y, z, ground, ret := flatPlaneFixture(400, 10.0, 25.0)
	result, err := Normalize(x, y, z, ground, ret, true, DefaultParams())
	require.NoError(t, err)

	row, col := 10, 10
	peak := result.CHM.At(row, col)
	assert.InDelta(t, 15.0, peak, 2.0)
}

func TestNormalize_DSMFallsBackWithoutReturnNumbers(t *testing.T) {
	t.Parallel()

	x, y, z, ground, ret := flatPlaneFixture(400, 10.0, 25.0)
	withReturns, err := Normalize(x, y, z, ground, ret, true, DefaultParams())
	require.NoError(t, err)

	withoutReturns, err := Normalize(x, y, z, ground, ret, false, DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, withReturns.DSM.Values, withoutReturns.DSM.Values)
}

func TestNormalize_EmptyInput(t *testing.T) {
	t.Parallel()

	result, err := Normalize(nil, nil, nil, nil, nil, false, DefaultParams())
	require.NoError(t, err)
	require.NotNil(t, result.CHM)
	assert.Equal(t, 0.0, result.CHM.Values[0])
}

func TestNormalize_MismatchedLengthsError(t *testing.T) {
	t.Parallel()

	_, err := Normalize([]float64{1, 2}, []float64{1}, []float64{1, 2}, []bool{true, true}, nil, false, DefaultParams())
	assert.Error(t, err)
}
