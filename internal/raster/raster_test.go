package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDims(t *testing.T) {
	t.Parallel()

	rows, cols := Dims(0, 0, 10, 5, 1.0)
	assert.Equal(t, 6, rows)
	assert.Equal(t, 11, cols)
}

func TestRowCol_ClampsBoundary(t *testing.T) {
	t.Parallel()

	rows, cols := Dims(0, 0, 10, 10, 1.0)
	row, col := RowCol(10, 10, 0, 0, 1.0, rows, cols)
	assert.Equal(t, rows-1, row)
	assert.Equal(t, cols-1, col)

	row, col = RowCol(-5, -5, 0, 0, 1.0, rows, cols)
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)
}

func TestInfill_FillsFromNearestObserved(t *testing.T) {
	t.Parallel()

	r := NewRaster(5, 5, 1.0, 0, 0)
	r.Set(0, 0, 10.0)
	r.Set(4, 4, 20.0)

	Infill(r)

	for i, v := range r.Values {
		assert.True(t, IsObserved(v), "cell %d should be observed after infill", i)
	}
	assert.Equal(t, 10.0, r.At(0, 0))
	assert.Equal(t, 20.0, r.At(4, 4))
	// A cell adjacent to the single observed source should inherit it exactly.
	assert.Equal(t, 10.0, r.At(0, 1))
}

func TestInfill_AllUnobservedIsNoOp(t *testing.T) {
	t.Parallel()

	r := NewRaster(3, 3, 1.0, 0, 0)
	require.True(t, AllUnobserved(r))
	Infill(r)
	assert.True(t, AllUnobserved(r))
}

func TestSlidingMinMax(t *testing.T) {
	t.Parallel()

	values := []float64{5, 1, 4, 2, 8, 0, 3}
	min := SlidingMin(values, 3)
	max := SlidingMax(values, 3)
	require.Len(t, min, len(values))
	require.Len(t, max, len(values))

	// window centered at index 2 (value 4) covers indices 1..3 -> {1,4,2}
	assert.Equal(t, 1.0, min[2])
	assert.Equal(t, 4.0, max[2])
}

func TestMaxFilter2D_FlatRasterUnchanged(t *testing.T) {
	t.Parallel()

	r := NewRaster(6, 6, 1.0, 0, 0)
	for i := range r.Values {
		r.Values[i] = 7.0
	}
	out := MaxFilter2D(r, 3)
	for _, v := range out.Values {
		assert.Equal(t, 7.0, v)
	}
}

func TestInfill_SingleObservedFillsEverything(t *testing.T) {
	t.Parallel()

	r := NewRaster(3, 3, 1.0, 0, 0)
	r.Set(1, 1, 42.0)
	Infill(r)
	for _, v := range r.Values {
		assert.Equal(t, 42.0, v)
	}
}
