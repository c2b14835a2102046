package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lidarforest/processing/internal/jobs"
	"github.com/lidarforest/processing/internal/lasio"
)

// writeSyntheticLAS builds a small, well-formed LAS 1.2 file whose
// points run along the diagonal of a 100x100m plot, z rising from 10m
// to 15m, with enough points to clear the validator's
// default minimum point count.
func writeSyntheticLAS(t *testing.T, pointCount int) string {
	t.Helper()
	cloud := &lasio.PointCloud{
		Header: lasio.Header{ScaleX: 0.001, ScaleY: 0.001, ScaleZ: 0.001, CRS: "EPSG:32610"},
		X:      make([]float64, pointCount),
		Y:      make([]float64, pointCount),
		Z:      make([]float64, pointCount),
	}
	denom := pointCount - 1
	if denom < 1 {
		denom = 1
	}
	for i := 0; i < pointCount; i++ {
		frac := float64(i) / float64(denom)
		cloud.X[i] = frac * 100
		cloud.Y[i] = frac * 100
		cloud.Z[i] = 10 + frac*5
	}
	path := filepath.Join(t.TempDir(), "synthetic.las")
	require.NoError(t, lasio.WritePointCloud(cloud, path, 0, false))
	return path
}

// runApp runs newApp() with args and returns whatever it printed to
// stdout plus the error Run returned.
func runApp(t *testing.T, args []string) (string, error) {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	origStdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = origStdout }()

	runErr := newApp().Run(append([]string{"lidarforest"}, args...))

	require.NoError(t, w.Close())
	os.Stdout = origStdout
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out), runErr
}

func TestValidateCommand_SyntheticFilePrintsCompletedResult(t *testing.T) {
	path := writeSyntheticLAS(t, 200)

	out, err := runApp(t, []string{"validate", "--file", path})
	require.NoError(t, err)

	var result jobs.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Equal(t, jobs.StatusCompleted, result.Status)
	require.Equal(t, jobs.TypeValidate, result.Type)
	require.Nil(t, result.Error)
}

func TestFullPipelineCommand_MissingFileFailsWithNonZeroExit(t *testing.T) {
	out, err := runApp(t, []string{"full-pipeline", "--file", "/no/such/file.las"})
	require.Error(t, err)

	var result jobs.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Equal(t, jobs.StatusFailed, result.Status)
	require.NotNil(t, result.Error)
}

func TestExtractMetadataCommand_RequiresFileFlag(t *testing.T) {
	_, err := runApp(t, []string{"extract-metadata"})
	require.Error(t, err)
}
