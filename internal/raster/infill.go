package raster

import "math"

// AllUnobserved reports whether every cell in r is still Unobserved.
func AllUnobserved(r *Raster) bool {
	for _, v := range r.Values {
		if IsObserved(v) {
			return false
		}
	}
	return true
}

// Infill resolves every Unobserved cell to the value of its nearest
// observed cell by Euclidean distance, in place. It is a no-op if r has
// no observed cells at all; callers must check AllUnobserved
// themselves, since an empty raster is a policy decision (EMPTY_CLOUD)
// that belongs to the caller, not this package.
//
// Implemented as a two-pass propagation of "nearest known source"
// pointers (Danielsson-style), which is exact in practice for the
// 8-neighbour adjacency used here and runs in two linear scans rather
// than a per-cell nearest-neighbour search. Ties between equidistant
// sources are broken by (row,col) lexicographic order of the source
// cell, so the result is reproducible regardless of scan direction.
func Infill(r *Raster) {
	if AllUnobserved(r) {
		return
	}
	rows, cols := r.Rows, r.Cols
	idx := func(row, col int) int { return row*cols + col }

	source := make([]int, rows*cols)
	for i, v := range r.Values {
		if IsObserved(v) {
			source[i] = i
		} else {
			source[i] = -1
		}
	}

	dist2 := func(row1, col1, row2, col2 int) float64 {
		dr := float64(row1 - row2)
		dc := float64(col1 - col2)
		return dr*dr + dc*dc
	}

	forwardOffsets := [][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}}
	backwardOffsets := [][2]int{{1, 1}, {1, 0}, {1, -1}, {0, 1}}

	// sourceLess reports whether the source cell at index a sorts before
	// the one at index b in (row,col) lexicographic order, the documented
	// tie-break for sources equidistant from a given cell.
	sourceLess := func(a, b int) bool {
		ar, ac := a/cols, a%cols
		br, bc := b/cols, b%cols
		if ar != br {
			return ar < br
		}
		return ac < bc
	}

	propagate := func(row, col int, offsets [][2]int) {
		i := idx(row, col)
		best := source[i]
		bestD := math.Inf(1)
		if best != -1 {
			bestD = dist2(row, col, best/cols, best%cols)
		}
		for _, off := range offsets {
			nr, nc := row+off[0], col+off[1]
			if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
				continue
			}
			ns := source[idx(nr, nc)]
			if ns == -1 {
				continue
			}
			d := dist2(row, col, ns/cols, ns%cols)
			if d < bestD || (d == bestD && best != -1 && sourceLess(ns, best)) {
				bestD = d
				best = ns
			}
		}
		source[i] = best
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			propagate(row, col, forwardOffsets)
		}
	}
	for row := rows - 1; row >= 0; row-- {
		for col := cols - 1; col >= 0; col-- {
			propagate(row, col, backwardOffsets)
		}
	}

	for i, s := range source {
		if s != -1 {
			r.Values[i] = r.Values[s]
		}
	}
}
