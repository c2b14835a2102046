package pmf

import "github.com/lidarforest/processing/internal/raster"

// buildMinSurface rasterizes the minimum z of every included point
// into its cell, then fills unobserved cells by nearest-neighbour
// infill. included may be nil, meaning every point is included.
func buildMinSurface(rows, cols []int, z []float64, included []bool, gridRows, gridCols int,
	cellSize, originX, originY float64) (*raster.Raster, error) {

	r := raster.NewRaster(gridRows, gridCols, cellSize, originX, originY)
	for i, zi := range z {
		if included != nil && !included[i] {
			continue
		}
		row, col := rows[i], cols[i]
		cur := r.At(row, col)
		if !raster.IsObserved(cur) || zi < cur {
			r.Set(row, col, zi)
		}
	}
	if raster.AllUnobserved(r) {
		return nil, ErrEmptyCloud
	}
	raster.Infill(r)
	return r, nil
}
