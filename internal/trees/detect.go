package trees

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lidarforest/processing/internal/raster"
)

// ErrInvalidParam is returned when Params fails validation.
var ErrInvalidParam = errors.New("trees: invalid parameter")

// Validate reports whether p can be used by DetectTrees.
func (p Params) Validate() error {
	if p.MinHeight <= 0 {
		return fmt.Errorf("%w: min_height must be positive", ErrInvalidParam)
	}
	if p.MinTreeDistance <= 0 {
		return fmt.Errorf("%w: min_tree_distance must be positive", ErrInvalidParam)
	}
	if p.SmoothingSigma < 0 {
		return fmt.Errorf("%w: smoothing_sigma must not be negative", ErrInvalidParam)
	}
	return nil
}

// DetectTrees locates individual tree crowns in a Canopy Height Model.
// chm is smoothed, thresholded against MinHeight, and its local maxima
// become watershed markers (or, if UseMarkers is false, each connected
// region of masked cells becomes one marker). Crown heights are read
// from the unsmoothed chm. A CHM that yields no markers produces an
// empty tree list, not an error.
func DetectTrees(chm *raster.Raster, params Params) ([]Tree, *raster.Raster, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}

	smoothed := smooth(chm, params.SmoothingSigma)
	mask, peaks := findPeaks(smoothed, params.MinHeight, params.MinTreeDistance)

	if !params.UseMarkers {
		for i := range peaks {
			peaks[i] = mask[i]
		}
	}

	markers, count := labelMarkers(peaks, smoothed.Rows, smoothed.Cols)
	if count == 0 {
		return []Tree{}, markers2Raster(markers, smoothed), nil
	}

	labels := watershed(smoothed.Values, mask, markers, smoothed.Rows, smoothed.Cols)
	acc := crownMetricsFromLabels(labels, chm.Values, smoothed.Rows, smoothed.Cols, smoothed.CellSize)

	ids := make([]int, 0, len(acc))
	for id := range acc {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	trees := make([]Tree, 0, len(ids))
	for i, id := range ids {
		a := acc[id]
		if a.cellCount == 0 {
			continue
		}
		row, col := a.centroidRowCol()
		area := a.areaM2(smoothed.CellSize)
		x := smoothed.OriginX + (col+0.5)*smoothed.CellSize
		y := smoothed.OriginY + (row+0.5)*smoothed.CellSize
		trees = append(trees, Tree{
			ID:          fmt.Sprintf("tree_%05d", i+1),
			X:           x,
			Y:           y,
			Height:      a.maxHeight,
			CrownRadius: crownRadius(area),
			CrownMetrics: CrownMetrics{
				AreaM2:      area,
				MaxHeight:   a.maxHeight,
				MeanHeight:  a.meanHeight(),
				CrownRadius: crownRadius(area),
			},
			Confidence: a.confidence(),
			Species:    UnknownTag,
			Health:     UnknownTag,
		})
	}

	return trees, labelsToRaster(labels, smoothed), nil
}

func markers2Raster(markers []int, like *raster.Raster) *raster.Raster {
	return labelsToRaster(markers, like)
}

// labelsToRaster renders an integer label grid as a float raster (for
// debug/quicklook output), background cells left at 0.
func labelsToRaster(labels []int, like *raster.Raster) *raster.Raster {
	out := raster.NewRaster(like.Rows, like.Cols, like.CellSize, like.OriginX, like.OriginY)
	for i, l := range labels {
		out.Values[i] = float64(l)
	}
	return out
}
