package trees

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidarforest/processing/internal/raster"
)

func flatCHM(rows, cols int, height float64) *raster.Raster {
	r := raster.NewRaster(rows, cols, 1.0, 0, 0)
	for i := range r.Values {
		r.Values[i] = height
	}
	return r
}

func bump(r *raster.Raster, centerRow, centerCol, radius int, peak float64) {
	for row := 0; row < r.Rows; row++ {
		for col := 0; col < r.Cols; col++ {
			dr, dc := row-centerRow, col-centerCol
			if dr*dr+dc*dc <= radius*radius {
				h := peak - 0.3*float64(dr*dr+dc*dc)
				if h > r.At(row, col) {
					r.Set(row, col, h)
				}
			}
		}
	}
}

func TestDetectTrees_FlatCanopyBelowThresholdYieldsNoTrees(t *testing.T) {
	chm := flatCHM(20, 20, 1.0)
	trees, _, err := DetectTrees(chm, DefaultParams())
	require.NoError(t, err)
	assert.Empty(t, trees)
}

func TestDetectTrees_SingleBumpYieldsOneTree(t *testing.T) {
	chm := flatCHM(20, 20, 0)
	bump(chm, 10, 10, 4, 15.0)

	trees, labels, err := DetectTrees(chm, DefaultParams())
	require.NoError(t, err)
	require.Len(t, trees, 1)
	assert.InDelta(t, 15.0, trees[0].Height, 0.01)
	assert.Equal(t, "tree_00001", trees[0].ID)
	assert.Greater(t, trees[0].CrownRadius, 0.0)
	assert.GreaterOrEqual(t, trees[0].Confidence, 0.0)
	assert.LessOrEqual(t, trees[0].Confidence, 1.0)
	assert.NotNil(t, labels)
}

func TestDetectTrees_ThreeWellSeparatedBumpsYieldThreeTrees(t *testing.T) {
	chm := flatCHM(40, 40, 0)
	bump(chm, 8, 8, 3, 12.0)
	bump(chm, 8, 32, 3, 18.0)
	bump(chm, 32, 20, 3, 9.0)

	params := DefaultParams()
	params.SmoothingSigma = 0
	trees, _, err := DetectTrees(chm, params)
	require.NoError(t, err)
	assert.Len(t, trees, 3)

	heights := make([]float64, len(trees))
	for i, tr := range trees {
		heights[i] = tr.Height
	}
	assert.Contains(t, roundAll(heights), 12.0)
	assert.Contains(t, roundAll(heights), 18.0)
	assert.Contains(t, roundAll(heights), 9.0)
}

func roundAll(vs []float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = float64(int(v + 0.5))
	}
	return out
}

func TestDetectTrees_InvalidParams(t *testing.T) {
	chm := flatCHM(5, 5, 0)
	_, _, err := DetectTrees(chm, Params{MinHeight: 0, MinTreeDistance: 3})
	assert.Error(t, err)
}

func TestDetectTrees_CrownMetricsSane(t *testing.T) {
	chm := flatCHM(30, 30, 0)
	bump(chm, 15, 15, 5, 20.0)

	trees, _, err := DetectTrees(chm, DefaultParams())
	require.NoError(t, err)
	require.Len(t, trees, 1)

	m := trees[0].CrownMetrics
	assert.Greater(t, m.AreaM2, 0.0)
	assert.InDelta(t, 20.0, m.MaxHeight, 0.01)
	assert.Less(t, m.MeanHeight, m.MaxHeight)
	assert.Greater(t, m.CrownRadius, 0.0)
}

func TestToGeoJSON_ShapeAndCount(t *testing.T) {
	trees := []Tree{
		{ID: "tree_00001", X: 1, Y: 2, Height: 10, CrownRadius: 3, Confidence: 0.8},
		{ID: "tree_00002", X: 3, Y: 4, Height: 12, CrownRadius: 2, Confidence: 0.5},
	}
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fc := ToGeoJSON(trees, "plot.las", "EPSG:32610", ts)

	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Len(t, fc.Features, 2)
	assert.Equal(t, 2, fc.Properties.TreeCount)
	assert.Equal(t, "plot.las", fc.Properties.SourceFile)
	assert.Equal(t, "2026-01-01T00:00:00Z", fc.Properties.DetectionTimestamp)
	assert.Equal(t, [2]float64{1, 2}, fc.Features[0].Geometry.Coordinates)
	require.NotNil(t, fc.Features[0].Properties.CrownRadius)
	assert.Equal(t, 3.0, *fc.Features[0].Properties.CrownRadius)
}
