package trees

import "container/heap"

type wsItem struct {
	negHeight float64
	idx       int
}

type wsQueue []wsItem

func (q wsQueue) Len() int            { return len(q) }
func (q wsQueue) Less(i, j int) bool  { return q[i].negHeight < q[j].negHeight }
func (q wsQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *wsQueue) Push(x interface{}) { *q = append(*q, x.(wsItem)) }
func (q *wsQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// watershed floods outward from markers over chm, restricted to mask,
// processing cells in decreasing chm order (equivalently, increasing
// order of the negated surface), so each basin grows from its peak
// downward. Cells outside mask are never labeled (stay 0/background).
func watershed(chm []float64, mask []bool, markers []int, rows, cols int) []int {
	labels := make([]int, len(chm))
	copy(labels, markers)

	idx := func(row, col int) int { return row*cols + col }
	neighbors := func(i int) []int {
		row, col := i/cols, i%cols
		var out []int
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				nr, nc := row+dr, col+dc
				if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
					continue
				}
				out = append(out, idx(nr, nc))
			}
		}
		return out
	}

	queued := make([]bool, len(chm))
	pq := &wsQueue{}
	heap.Init(pq)

	enqueueNeighbors := func(i int) {
		for _, n := range neighbors(i) {
			if mask[n] && labels[n] == 0 && !queued[n] {
				queued[n] = true
				heap.Push(pq, wsItem{negHeight: -chm[n], idx: n})
			}
		}
	}

	for i, label := range labels {
		if label != 0 {
			enqueueNeighbors(i)
		}
	}

	for pq.Len() > 0 {
		item := heap.Pop(pq).(wsItem)
		i := item.idx
		queued[i] = false
		if labels[i] != 0 || !mask[i] {
			continue
		}

		best := 0
		for _, n := range neighbors(i) {
			if labels[n] != 0 && (best == 0 || labels[n] < best) {
				best = labels[n]
			}
		}
		if best == 0 {
			continue
		}
		labels[i] = best
		enqueueNeighbors(i)
	}

	return labels
}
