package quicklook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidarforest/processing/internal/raster"
)

func TestRenderPNG_WritesNonEmptyFile(t *testing.T) {
	r := raster.NewRaster(4, 4, 1.0, 0, 0)
	for i := range r.Values {
		r.Values[i] = float64(i)
	}

	path := filepath.Join(t.TempDir(), "dem.png")
	require.NoError(t, RenderPNG(r, "test DEM", path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderPNG_AllUnobservedStillProducesValidFile(t *testing.T) {
	r := raster.NewRaster(3, 3, 1.0, 0, 0)

	path := filepath.Join(t.TempDir(), "empty.png")
	require.NoError(t, RenderPNG(r, "empty", path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
