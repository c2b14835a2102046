// Package raster defines the 2-D axis-aligned grid shared by the ground
// classifier, interpolator, and height normalizer, plus the
// nearest-neighbour infill routine all three use to resolve unobserved
// cells.
package raster

import "math"

// Unobserved marks a cell that has never received a sample. It is NaN
// so that arithmetic on an unresolved raster conspicuously propagates
// rather than silently looking like a valid zero elevation.
var Unobserved = math.NaN()

// Raster is a dense rows x cols grid of float64 values over a bounding
// rectangle anchored at (OriginX, OriginY), the world (min_x, min_y)
// corner of cell (0,0). Cell (r,c) covers
// x in [OriginX + c*CellSize, OriginX + (c+1)*CellSize).
type Raster struct {
	Rows, Cols int
	CellSize   float64
	OriginX    float64
	OriginY    float64
	Values     []float64 // row-major, length Rows*Cols
}

// NewRaster allocates a Raster with every cell set to Unobserved.
func NewRaster(rows, cols int, cellSize, originX, originY float64) *Raster {
	values := make([]float64, rows*cols)
	for i := range values {
		values[i] = Unobserved
	}
	return &Raster{Rows: rows, Cols: cols, CellSize: cellSize, OriginX: originX, OriginY: originY, Values: values}
}

// At returns the value at (row, col).
func (r *Raster) At(row, col int) float64 {
	return r.Values[row*r.Cols+col]
}

// Set stores value at (row, col).
func (r *Raster) Set(row, col int, value float64) {
	r.Values[row*r.Cols+col] = value
}

// Dims describes the row/col extent a bounding rectangle spans at a
// given cell size: rows = ceil((yMax-yMin)/c)+1, cols analogous for x.
// This matches the ground classifier's cell-count derivation and is
// reused by the interpolator and height normalizer so the same point
// always maps to the same cell across components.
func Dims(minX, minY, maxX, maxY, cellSize float64) (rows, cols int) {
	rows = int(math.Ceil((maxY-minY)/cellSize)) + 1
	cols = int(math.Ceil((maxX-minX)/cellSize)) + 1
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return rows, cols
}

// RowCol maps a world (x,y) to a grid cell, flooring and clamping into
// [0,rows-1]x[0,cols-1] so a point on the exact boundary of the
// bounding rectangle still resolves to a valid cell.
func RowCol(x, y, originX, originY, cellSize float64, rows, cols int) (row, col int) {
	col = int(math.Floor((x - originX) / cellSize))
	row = int(math.Floor((y - originY) / cellSize))
	if col < 0 {
		col = 0
	}
	if col > cols-1 {
		col = cols - 1
	}
	if row < 0 {
		row = 0
	}
	if row > rows-1 {
		row = rows - 1
	}
	return row, col
}

// IsObserved reports whether v is a real (non-NaN) sample.
func IsObserved(v float64) bool {
	return !math.IsNaN(v)
}
