package lasvalidate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lidarforest/processing/internal/lasio"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

type syntheticLASOpts struct {
	pointCount int
	crs        string
	bounds     [6]float64 // minX, minY, minZ, maxX, maxY, maxZ
	scale      [3]float64
}

// writeSyntheticLAS builds a small, well-formed LAS 1.2 file (point
// format 0) spanning the requested bounds, for exercising the validator
// without depending on any real captured data.
func writeSyntheticLAS(t *testing.T, opts syntheticLASOpts) string {
	t.Helper()

	n := opts.pointCount
	cloud := &lasio.PointCloud{
		Header: lasio.Header{
			ScaleX: opts.scale[0], ScaleY: opts.scale[1], ScaleZ: opts.scale[2],
			CRS: opts.crs,
		},
		X: make([]float64, n),
		Y: make([]float64, n),
		Z: make([]float64, n),
	}
	denom := n - 1
	if denom < 1 {
		denom = 1
	}
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(denom)
		cloud.X[i] = opts.bounds[0] + frac*(opts.bounds[3]-opts.bounds[0])
		cloud.Y[i] = opts.bounds[1] + frac*(opts.bounds[4]-opts.bounds[1])
		cloud.Z[i] = opts.bounds[2] + frac*(opts.bounds[5]-opts.bounds[2])
	}

	path := filepath.Join(t.TempDir(), "synthetic.las")
	require.NoError(t, lasio.WritePointCloud(cloud, path, 0, false))
	return path
}
