package interp

import "github.com/lidarforest/processing/internal/raster"

const barycentricEpsilon = 1e-9

// TIN interpolates samples onto a raster matching grid's geometry by
// Delaunay triangulation and barycentric interpolation: each cell
// centre is located within its containing triangle (if any) and
// assigned the barycentric combination of that triangle's three sample
// elevations. Cells outside the triangulation's convex hull are left
// unobserved and resolved by raster.Infill.
//
// degenerate reports whether the samples triangulated to no usable
// triangle (all collinear, most commonly): in that case TIN falls back
// to IDW internally rather than returning an empty raster, and the
// caller should annotate its result with the fallback.
func TIN(samples []Sample, grid *raster.Raster) (out *raster.Raster, degenerate bool) {
	out = raster.NewRaster(grid.Rows, grid.Cols, grid.CellSize, grid.OriginX, grid.OriginY)
	if len(samples) < 3 {
		// Too few points to triangulate: seed each sample's own cell
		// directly so infill has something to propagate from.
		for _, s := range samples {
			row, col := raster.RowCol(s.X, s.Y, out.OriginX, out.OriginY, out.CellSize, out.Rows, out.Cols)
			out.Set(row, col, s.Z)
		}
		raster.Infill(out)
		return out, false
	}

	pts := make([][2]float64, len(samples))
	for i, s := range samples {
		pts[i] = [2]float64{s.X, s.Y}
	}
	triangles := delaunay(pts)
	if len(triangles) == 0 {
		// Collinear (or otherwise degenerate) sample set: Bowyer-Watson
		// leaves no triangle bounded purely by real samples. IDW needs
		// no triangle at all, so fall back to it directly.
		return IDW(samples, grid, 2.0, autoIDWRadius(samples, grid.CellSize)), true
	}

	type bbox struct{ minX, minY, maxX, maxY float64 }
	boxes := make([]bbox, len(triangles))
	for i, t := range triangles {
		ax, ay := pts[t.a][0], pts[t.a][1]
		bx, by := pts[t.b][0], pts[t.b][1]
		cx, cy := pts[t.c][0], pts[t.c][1]
		boxes[i] = bbox{
			minX: minOf3(ax, bx, cx), maxX: maxOf3(ax, bx, cx),
			minY: minOf3(ay, by, cy), maxY: maxOf3(ay, by, cy),
		}
	}

	for row := 0; row < out.Rows; row++ {
		qy := out.OriginY + (float64(row)+0.5)*out.CellSize
		for col := 0; col < out.Cols; col++ {
			qx := out.OriginX + (float64(col)+0.5)*out.CellSize

			for i, t := range triangles {
				box := boxes[i]
				if qx < box.minX || qx > box.maxX || qy < box.minY || qy > box.maxY {
					continue
				}
				ax, ay := pts[t.a][0], pts[t.a][1]
				bx, by := pts[t.b][0], pts[t.b][1]
				cx, cy := pts[t.c][0], pts[t.c][1]
				u, v, w, ok := barycentric(qx, qy, ax, ay, bx, by, cx, cy)
				if !ok {
					continue
				}
				out.Set(row, col, u*samples[t.a].Z+v*samples[t.b].Z+w*samples[t.c].Z)
				break
			}
		}
	}

	raster.Infill(out)
	return out, false
}

// autoIDWRadius derives a fallback search radius from the sample
// extent when TIN falls back to IDW without a caller-supplied radius:
// at least 4 cells, widened to cover sparse samples.
func autoIDWRadius(samples []Sample, cellSize float64) float64 {
	if len(samples) == 0 {
		return 4 * cellSize
	}
	minX, maxX := samples[0].X, samples[0].X
	minY, maxY := samples[0].Y, samples[0].Y
	for _, s := range samples[1:] {
		if s.X < minX {
			minX = s.X
		}
		if s.X > maxX {
			maxX = s.X
		}
		if s.Y < minY {
			minY = s.Y
		}
		if s.Y > maxY {
			maxY = s.Y
		}
	}
	span := maxX - minX
	if maxY-minY > span {
		span = maxY - minY
	}
	r := 4 * cellSize
	if span > r {
		r = span
	}
	return r
}

// barycentric returns the barycentric coordinates (u,v,w) of (px,py)
// with respect to triangle (a,b,c); ok is false if the point falls
// outside the triangle (within barycentricEpsilon tolerance) or the
// triangle is degenerate.
func barycentric(px, py, ax, ay, bx, by, cx, cy float64) (u, v, w float64, ok bool) {
	denom := (by-cy)*(ax-cx) + (cx-bx)*(ay-cy)
	if denom == 0 {
		return 0, 0, 0, false
	}
	u = ((by-cy)*(px-cx) + (cx-bx)*(py-cy)) / denom
	v = ((cy-ay)*(px-cx) + (ax-cx)*(py-cy)) / denom
	w = 1 - u - v
	ok = u >= -barycentricEpsilon && v >= -barycentricEpsilon && w >= -barycentricEpsilon
	return u, v, w, ok
}

func minOf3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func maxOf3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
