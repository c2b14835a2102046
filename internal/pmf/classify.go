// Package pmf implements the Progressive Morphological Filter ground
// classifier (Zhang et al., 2003): a sequence of grey morphological
// openings at increasing window size, each followed by a height-above-
// surface threshold test that progressively demotes non-ground points.
package pmf

import "github.com/lidarforest/processing/internal/raster"

// GroundMask is a boolean vector of length = point count; element i is
// true iff point i was classified ground.
type GroundMask []bool

// ClassifyGround runs the filter over points (x,y,z), all of equal
// length, and returns the ground mask.
func ClassifyGround(x, y, z []float64, params Params) (GroundMask, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	n := len(x)
	if n == 0 {
		return GroundMask{}, nil
	}
	if n == 1 {
		return GroundMask{true}, nil
	}

	minX, maxX := x[0], x[0]
	minY, maxY := y[0], y[0]
	for i := 1; i < n; i++ {
		if x[i] < minX {
			minX = x[i]
		}
		if x[i] > maxX {
			maxX = x[i]
		}
		if y[i] < minY {
			minY = y[i]
		}
		if y[i] > maxY {
			maxY = y[i]
		}
	}

	rows, cols := raster.Dims(minX, minY, maxX, maxY, params.CellSize)
	pointRow := make([]int, n)
	pointCol := make([]int, n)
	for i := 0; i < n; i++ {
		pointRow[i], pointCol[i] = raster.RowCol(x[i], y[i], minX, minY, params.CellSize, rows, cols)
	}

	m, err := buildMinSurface(pointRow, pointCol, z, nil, rows, cols, params.CellSize, minX, minY)
	if err != nil {
		return nil, err
	}

	mask := make(GroundMask, n)
	for i := range mask {
		mask[i] = true
	}

	sizes := windowSizes(params.CellSize, params.MaxWindowSize)
	for k, w := range sizes {
		opened := opening(m, w)
		t := thresholdFor(k+1, w, params)

		for i := 0; i < n; i++ {
			if !mask[i] {
				continue
			}
			zSurf := opened.At(pointRow[i], pointCol[i])
			h := z[i] - zSurf
			if h > t {
				mask[i] = false
			}
		}

		if k == len(sizes)-1 {
			break
		}
		m, err = buildMinSurface(pointRow, pointCol, z, mask, rows, cols, params.CellSize, minX, minY)
		if err != nil {
			// The ground subset has been fully exhausted; the surface
			// from the previous iteration is the last meaningful one,
			// and every remaining point is already marked non-ground.
			break
		}
	}

	return mask, nil
}
