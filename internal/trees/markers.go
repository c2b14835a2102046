package trees

import "github.com/lidarforest/processing/internal/raster"

// findPeaks builds mask = chm >= minHeight, then marks a cell a peak
// iff its value equals the max-filter output over a square window of
// side 2*minTreeDistance+1 and the mask holds there.
func findPeaks(chm *raster.Raster, minHeight float64, minTreeDistance int) (mask []bool, peaks []bool) {
	n := len(chm.Values)
	mask = make([]bool, n)
	for i, v := range chm.Values {
		mask[i] = v >= minHeight
	}

	window := 2*minTreeDistance + 1
	maxFiltered := raster.MaxFilter2D(chm, window)

	peaks = make([]bool, n)
	for i, v := range chm.Values {
		peaks[i] = mask[i] && v == maxFiltered.Values[i]
	}
	return mask, peaks
}

// labelMarkers assigns each connected component (8-connectivity) of
// peaks a unique positive integer label; background cells are 0.
// Returns the label grid and the number of markers found.
func labelMarkers(peaks []bool, rows, cols int) (labels []int, count int) {
	labels = make([]int, rows*cols)
	idx := func(row, col int) int { return row*cols + col }

	var stack []int
	for start, isPeak := range peaks {
		if !isPeak || labels[start] != 0 {
			continue
		}
		count++
		labels[start] = count
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			row, col := cur/cols, cur%cols
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					if dr == 0 && dc == 0 {
						continue
					}
					nr, nc := row+dr, col+dc
					if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
						continue
					}
					ni := idx(nr, nc)
					if peaks[ni] && labels[ni] == 0 {
						labels[ni] = count
						stack = append(stack, ni)
					}
				}
			}
		}
	}
	return labels, count
}
