package raster

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadJSON_RoundTrips(t *testing.T) {
	t.Parallel()

	r := NewRaster(2, 3, 1.0, 10, 20)
	r.Set(0, 0, 5.5)
	r.Set(1, 2, -3.25)
	// (0,1) stays Unobserved.

	path := filepath.Join(t.TempDir(), "r.json")
	require.NoError(t, WriteJSON(r, path))

	got, err := ReadJSON(path)
	require.NoError(t, err)

	assert.Equal(t, r.Rows, got.Rows)
	assert.Equal(t, r.Cols, got.Cols)
	assert.Equal(t, r.CellSize, got.CellSize)
	assert.Equal(t, r.OriginX, got.OriginX)
	assert.Equal(t, r.OriginY, got.OriginY)
	assert.Equal(t, 5.5, got.At(0, 0))
	assert.Equal(t, -3.25, got.At(1, 2))
	assert.False(t, IsObserved(got.At(0, 1)))
}
