package trees

import (
	"math"
	"runtime"

	"github.com/alitto/pond"
	"gonum.org/v1/gonum/floats"

	"github.com/lidarforest/processing/internal/raster"
)

// gaussianKernel1D returns a normalized 1-D Gaussian kernel truncated
// at 3 standard deviations.
func gaussianKernel1D(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	for i := -radius; i <= radius; i++ {
		kernel[i+radius] = math.Exp(-float64(i*i) / (2 * sigma * sigma))
	}
	sum := floats.Sum(kernel)
	floats.Scale(1/sum, kernel)
	return kernel
}

// smooth applies a separable Gaussian blur to r with the given sigma.
// sigma <= 0 returns a copy of r unchanged. The row pass and column
// pass each process independent lines, so both run across a worker
// pool sized to the available CPUs.
func smooth(r *raster.Raster, sigma float64) *raster.Raster {
	if sigma <= 0 {
		out := raster.NewRaster(r.Rows, r.Cols, r.CellSize, r.OriginX, r.OriginY)
		copy(out.Values, r.Values)
		return out
	}
	kernel := gaussianKernel1D(sigma)

	rowPass := raster.NewRaster(r.Rows, r.Cols, r.CellSize, r.OriginX, r.OriginY)
	parallelForLines(r.Rows, func(row int) {
		line := r.Values[row*r.Cols : (row+1)*r.Cols]
		out := convolve1D(line, kernel)
		copy(rowPass.Values[row*r.Cols:(row+1)*r.Cols], out)
	})

	result := raster.NewRaster(r.Rows, r.Cols, r.CellSize, r.OriginX, r.OriginY)
	parallelForLines(r.Cols, func(col int) {
		line := make([]float64, r.Rows)
		for row := 0; row < r.Rows; row++ {
			line[row] = rowPass.At(row, col)
		}
		out := convolve1D(line, kernel)
		for row := 0; row < r.Rows; row++ {
			result.Set(row, col, out[row])
		}
	})
	return result
}

// parallelForLines runs fn(i) for i in [0,n) across a worker pool
// sized to the available CPUs, blocking until every call completes.
func parallelForLines(n int, fn func(i int)) {
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

// convolve1D applies kernel (odd length, centered) to values with
// edge-replicated boundaries.
func convolve1D(values, kernel []float64) []float64 {
	n := len(values)
	half := (len(kernel) - 1) / 2
	out := make([]float64, n)
	window := make([]float64, len(kernel))
	for i := 0; i < n; i++ {
		for k := -half; k <= half; k++ {
			j := i + k
			if j < 0 {
				j = 0
			}
			if j > n-1 {
				j = n - 1
			}
			window[k+half] = values[j]
		}
		out[i] = floats.Dot(window, kernel)
	}
	return out
}
