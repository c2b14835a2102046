package interp

import "math"

// triangle holds three indices into the point slice a triangulation
// was built over.
type triangle struct {
	a, b, c int
}

type edge struct {
	a, b int
}

func normalizeEdge(e edge) edge {
	if e.a > e.b {
		return edge{e.b, e.a}
	}
	return e
}

func triangleEdges(t triangle) [3]edge {
	return [3]edge{{t.a, t.b}, {t.b, t.c}, {t.c, t.a}}
}

// signedArea2 is twice the signed area of triangle (a,b,c); positive
// iff the vertices wind counter-clockwise.
func signedArea2(ax, ay, bx, by, cx, cy float64) float64 {
	return (bx-ax)*(cy-ay) - (cx-ax)*(by-ay)
}

// delaunay triangulates the 2-D points pts via the Bowyer-Watson
// incremental algorithm, returning triangles indexed into pts (points
// it synthesizes for the bounding super-triangle are never referenced
// in the result). Requires len(pts) >= 3.
func delaunay(pts [][2]float64) []triangle {
	n := len(pts)
	if n < 3 {
		return nil
	}

	minX, minY := pts[0][0], pts[0][1]
	maxX, maxY := pts[0][0], pts[0][1]
	for _, p := range pts {
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}
	dx, dy := maxX-minX, maxY-minY
	delta := math.Max(dx, dy)
	if delta == 0 {
		delta = 1
	}
	midX, midY := (minX+maxX)/2, (minY+maxY)/2

	all := make([][2]float64, n, n+3)
	copy(all, pts)
	all = append(all,
		[2]float64{midX - 20*delta, midY - delta},
		[2]float64{midX, midY + 20*delta},
		[2]float64{midX + 20*delta, midY - delta},
	)
	superA, superB, superC := n, n+1, n+2

	makeTri := func(a, b, c int) triangle {
		if signedArea2(all[a][0], all[a][1], all[b][0], all[b][1], all[c][0], all[c][1]) < 0 {
			a, b = b, a
		}
		return triangle{a, b, c}
	}

	triangles := []triangle{makeTri(superA, superB, superC)}

	for i := 0; i < n; i++ {
		px, py := all[i][0], all[i][1]

		var badIdx []int
		for ti, t := range triangles {
			if inCircumcircle(all, t, px, py) {
				badIdx = append(badIdx, ti)
			}
		}

		edgeCount := make(map[edge]int)
		for _, ti := range badIdx {
			for _, e := range triangleEdges(triangles[ti]) {
				edgeCount[normalizeEdge(e)]++
			}
		}
		var boundary []edge
		for _, ti := range badIdx {
			for _, e := range triangleEdges(triangles[ti]) {
				if edgeCount[normalizeEdge(e)] == 1 {
					boundary = append(boundary, e)
				}
			}
		}

		badSet := make(map[int]bool, len(badIdx))
		for _, ti := range badIdx {
			badSet[ti] = true
		}
		kept := triangles[:0:0]
		for ti, t := range triangles {
			if !badSet[ti] {
				kept = append(kept, t)
			}
		}
		for _, e := range boundary {
			kept = append(kept, makeTri(e.a, e.b, i))
		}
		triangles = kept
	}

	result := make([]triangle, 0, len(triangles))
	isSuper := func(idx int) bool { return idx == superA || idx == superB || idx == superC }
	for _, t := range triangles {
		if isSuper(t.a) || isSuper(t.b) || isSuper(t.c) {
			continue
		}
		result = append(result, t)
	}
	return result
}

// inCircumcircle reports whether (px,py) lies strictly inside the
// circumcircle of t, assuming t is wound counter-clockwise.
func inCircumcircle(pts [][2]float64, t triangle, px, py float64) bool {
	ax, ay := pts[t.a][0]-px, pts[t.a][1]-py
	bx, by := pts[t.b][0]-px, pts[t.b][1]-py
	cx, cy := pts[t.c][0]-px, pts[t.c][1]-py

	det := (ax*ax+ay*ay)*(bx*cy-cx*by) -
		(bx*bx+by*by)*(ax*cy-cx*ay) +
		(cx*cx+cy*cy)*(ax*by-bx*ay)
	return det > 0
}
