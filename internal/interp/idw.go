package interp

import (
	"math"
	"runtime"

	"github.com/alitto/pond"
	"gonum.org/v1/gonum/floats"

	"github.com/lidarforest/processing/internal/raster"
)

// minIDWDistance floors the distance term so a query point that lands
// exactly on a sample never divides by zero.
const minIDWDistance = 1e-9

// IDW interpolates samples onto a raster matching grid's geometry
// (rows, cols, cell size, origin; grid's own values are ignored). Each
// cell's value is the inverse-distance-weighted average of every
// sample within searchRadius of the cell centre; cells with no sample
// in range are left unobserved and resolved by raster.Infill. Rows are
// independent of one another, so they're filled concurrently across a
// worker pool sized to the available CPUs.
func IDW(samples []Sample, grid *raster.Raster, power, searchRadius float64) *raster.Raster {
	out := raster.NewRaster(grid.Rows, grid.Cols, grid.CellSize, grid.OriginX, grid.OriginY)
	radius2 := searchRadius * searchRadius

	parallelForRows(out.Rows, func(row int) {
		qy := out.OriginY + (float64(row)+0.5)*out.CellSize
		weights := make([]float64, 0, len(samples))
		values := make([]float64, 0, len(samples))

		for col := 0; col < out.Cols; col++ {
			qx := out.OriginX + (float64(col)+0.5)*out.CellSize

			weights = weights[:0]
			values = values[:0]
			for _, s := range samples {
				dx := qx - s.X
				dy := qy - s.Y
				d2 := dx*dx + dy*dy
				if d2 > radius2 {
					continue
				}
				d := math.Max(math.Sqrt(d2), minIDWDistance)
				weights = append(weights, 1/math.Pow(d, power))
				values = append(values, s.Z)
			}
			if len(weights) == 0 {
				continue
			}
			wSum := floats.Sum(weights)
			zSum := floats.Dot(weights, values)
			out.Set(row, col, zSum/wSum)
		}
	})

	raster.Infill(out)
	return out
}

// parallelForRows runs fn(row) for row in [0,rows) across a worker
// pool sized to the available CPUs, blocking until every row
// completes. Each row writes only to its own slice of out.Values, so
// no further synchronization is needed.
func parallelForRows(rows int, fn func(row int)) {
	if rows == 0 {
		return
	}
	workers := runtime.NumCPU()
	if workers > rows {
		workers = rows
	}
	if workers < 1 {
		workers = 1
	}
	pool := pond.New(workers, 0, pond.MinWorkers(workers))
	for i := 0; i < rows; i++ {
		i := i
		pool.Submit(func() { fn(i) })
	}
	pool.StopAndWait()
}
