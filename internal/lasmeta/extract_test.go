package lasmeta

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidarforest/processing/internal/lasio"
)

func writeFixture(t *testing.T, n int) string {
	t.Helper()
	cloud := &lasio.PointCloud{
		Header: lasio.Header{ScaleX: 0.01, ScaleY: 0.01, ScaleZ: 0.01, CRS: `GEOGCS["WGS 84"]`},
		X:      make([]float64, n), Y: make([]float64, n), Z: make([]float64, n),
		Classification: make([]uint8, n),
		ReturnNumber:   make([]uint8, n),
	}
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n)
		cloud.X[i] = frac * 100
		cloud.Y[i] = frac * 50
		cloud.Z[i] = frac * 10
		if i%2 == 0 {
			cloud.Classification[i] = 2 // Ground
		} else {
			cloud.Classification[i] = 5 // High Vegetation
		}
		cloud.ReturnNumber[i] = 1
	}
	path := filepath.Join(t.TempDir(), "fixture.las")
	require.NoError(t, lasio.WritePointCloud(cloud, path, 3, false))
	return path
}

func TestExtract_Histograms(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, 1000)
	meta, err := Extract(path, DefaultOptions())
	require.NoError(t, err)

	assert.EqualValues(t, 1000, meta.PointCount)
	require.Len(t, meta.ClassificationHistogram, 2)
	assert.Equal(t, uint8(2), meta.ClassificationHistogram[0].Code)
	assert.Equal(t, "Ground", meta.ClassificationHistogram[0].Name)
	assert.EqualValues(t, 500, meta.ClassificationHistogram[0].Count)

	require.Len(t, meta.ReturnNumberHistogram, 1)
	assert.Equal(t, 1, meta.ReturnNumberHistogram[0].ReturnNumber)
	assert.InDelta(t, 100.0, meta.ReturnNumberHistogram[0].Percentage, 0.001)

	require.NotNil(t, meta.Density)
	assert.Greater(t, *meta.Density, 0.0)
}

func TestExtract_ChunkedStreamingMatchesSinglePass(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, 2500)
	opts := DefaultOptions()
	opts.ChunkSize = 300

	meta, err := Extract(path, opts)
	require.NoError(t, err)
	assert.EqualValues(t, 2500, meta.PointCount)

	var total uint64
	for _, b := range meta.ClassificationHistogram {
		total += b.Count
	}
	assert.EqualValues(t, 2500, total)
}

func TestExtract_ZeroAreaBoundsYieldsNilDensity(t *testing.T) {
	t.Parallel()

	cloud := &lasio.PointCloud{
		Header: lasio.Header{ScaleX: 0.01, ScaleY: 0.01, ScaleZ: 0.01},
		X:      []float64{5, 5, 5}, Y: []float64{5, 5, 5}, Z: []float64{1, 2, 3},
	}
	path := filepath.Join(t.TempDir(), "flat.las")
	require.NoError(t, lasio.WritePointCloud(cloud, path, 0, false))

	meta, err := Extract(path, DefaultOptions())
	require.NoError(t, err)
	assert.Nil(t, meta.Density)
}

func TestExtract_ProgressCallback(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, 1000)
	opts := DefaultOptions()
	opts.ChunkSize = 250

	var calls int
	var lastProcessed uint64
	opts.ProgressFunc = func(processed, total uint64) {
		calls++
		lastProcessed = processed
	}

	_, err := Extract(path, opts)
	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.EqualValues(t, 1000, lastProcessed)
}
