package raster

// SlidingMin returns, for each index i, the minimum of values over the
// window [i-half, i+half] with edge replication, half = (w-1)/2. w must
// be odd.
func SlidingMin(values []float64, w int) []float64 {
	return slidingExtremum(values, w, func(tail, v float64) bool { return tail >= v })
}

// SlidingMax is the maximum analogue of SlidingMin.
func SlidingMax(values []float64, w int) []float64 {
	return slidingExtremum(values, w, func(tail, v float64) bool { return tail <= v })
}

// slidingExtremum is the classic monotonic-deque sliding window
// extremum: pop discards trailing entries superseded by v (e.g. for a
// min-deque, discard any tail entry >= v, since v is both closer and
// no larger, so the tail entry can never again be the answer).
func slidingExtremum(values []float64, w int, pop func(tail, v float64) bool) []float64 {
	n := len(values)
	half := (w - 1) / 2
	padded := make([]float64, n+2*half)
	for i := 0; i < half; i++ {
		padded[i] = values[0]
	}
	copy(padded[half:half+n], values)
	for i := 0; i < half; i++ {
		padded[half+n+i] = values[n-1]
	}

	out := make([]float64, n)
	type entry struct {
		idx int
		val float64
	}
	deque := make([]entry, 0, len(padded))
	for i, v := range padded {
		for len(deque) > 0 && pop(deque[len(deque)-1].val, v) {
			deque = deque[:len(deque)-1]
		}
		deque = append(deque, entry{idx: i, val: v})
		if deque[0].idx <= i-w {
			deque = deque[1:]
		}
		if i >= w-1 {
			out[i-(w-1)] = deque[0].val
		}
	}
	return out
}

// MinFilter2D and MaxFilter2D apply a separable 2-D extremum filter
// with a square window of side w: the 2-D min/max over a square window
// decomposes into a row-wise pass followed by a column-wise pass of the
// 1-D sliding extremum, each O(n) regardless of w.
func MinFilter2D(r *Raster, w int) *Raster {
	return separable2D(r, w, SlidingMin)
}

func MaxFilter2D(r *Raster, w int) *Raster {
	return separable2D(r, w, SlidingMax)
}

func separable2D(r *Raster, w int, fn func([]float64, int) []float64) *Raster {
	rows, cols := r.Rows, r.Cols
	rowPass := NewRaster(rows, cols, r.CellSize, r.OriginX, r.OriginY)
	for row := 0; row < rows; row++ {
		line := make([]float64, cols)
		copy(line, r.Values[row*cols:(row+1)*cols])
		copy(rowPass.Values[row*cols:(row+1)*cols], fn(line, w))
	}

	result := NewRaster(rows, cols, r.CellSize, r.OriginX, r.OriginY)
	for col := 0; col < cols; col++ {
		line := make([]float64, rows)
		for row := 0; row < rows; row++ {
			line[row] = rowPass.At(row, col)
		}
		out := fn(line, w)
		for row := 0; row < rows; row++ {
			result.Set(row, col, out[row])
		}
	}
	return result
}
