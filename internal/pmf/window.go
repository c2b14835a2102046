package pmf

import "math"

// windowSizes generates w1=3, w_{k+1}=2*wk+1, terminated so that
// ceil(wMax/cellSize) appears exactly once, at the end of the sequence.
func windowSizes(cellSize, wMax float64) []int {
	target := int(math.Ceil(wMax / cellSize))
	if target < 1 {
		target = 1
	}
	if target <= 3 {
		return []int{target}
	}
	sizes := []int{3}
	for sizes[len(sizes)-1] < target {
		next := 2*sizes[len(sizes)-1] + 1
		if next >= target {
			break
		}
		sizes = append(sizes, next)
	}
	if sizes[len(sizes)-1] != target {
		sizes = append(sizes, target)
	}
	return sizes
}

// thresholdFor returns the height threshold t_k for the k-th (1-indexed)
// window size w_k.
func thresholdFor(k int, wk int, p Params) float64 {
	if k == 1 {
		return p.InitialDistance
	}
	t := p.InitialDistance + p.Slope*float64(wk)*p.CellSize
	if t > p.MaxDistance {
		return p.MaxDistance
	}
	return t
}
