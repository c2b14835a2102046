package pmf

import (
	"runtime"

	"github.com/alitto/pond"

	"github.com/lidarforest/processing/internal/raster"
)

// opening applies grey morphological opening (erosion then dilation)
// to r with a square structuring element of side w, returning a new
// raster. The 2-D min/max over a square window is separable into a
// row-wise then column-wise 1-D sliding extremum (raster.SlidingMin /
// raster.SlidingMax); rows, then columns, are processed concurrently
// since each line is independent of the others.
func opening(r *raster.Raster, w int) *raster.Raster {
	return dilate(erode(r, w), w)
}

func erode(r *raster.Raster, w int) *raster.Raster {
	return separableExtremum(r, w, raster.SlidingMin)
}

func dilate(r *raster.Raster, w int) *raster.Raster {
	return separableExtremum(r, w, raster.SlidingMax)
}

func separableExtremum(r *raster.Raster, w int, fn func([]float64, int) []float64) *raster.Raster {
	rows, cols := r.Rows, r.Cols
	rowPass := raster.NewRaster(rows, cols, r.CellSize, r.OriginX, r.OriginY)

	parallelFor(rows, func(row int) {
		line := make([]float64, cols)
		copy(line, r.Values[row*cols:(row+1)*cols])
		out := fn(line, w)
		copy(rowPass.Values[row*cols:(row+1)*cols], out)
	})

	result := raster.NewRaster(rows, cols, r.CellSize, r.OriginX, r.OriginY)
	parallelFor(cols, func(col int) {
		line := make([]float64, rows)
		for row := 0; row < rows; row++ {
			line[row] = rowPass.At(row, col)
		}
		out := fn(line, w)
		for row := 0; row < rows; row++ {
			result.Set(row, col, out[row])
		}
	})
	return result
}

// parallelFor runs fn(i) for i in [0,n) across a worker pool sized to
// the available CPUs, blocking until every call completes.
func parallelFor(n int, fn func(i int)) {
	if n == 0 {
		return
	}
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	pool := pond.New(workers, 0, pond.MinWorkers(workers))
	for i := 0; i < n; i++ {
		i := i
		pool.Submit(func() { fn(i) })
	}
	pool.StopAndWait()
}
