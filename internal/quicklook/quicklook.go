// Package quicklook renders a persisted DEM/DSM/CHM raster to a PNG
// heatmap for operator debugging, the same role internal/lidar/monitor's
// GridPlotter plays for background grids: a throwaway visual, not a
// deliverable artifact.
package quicklook

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/lidarforest/processing/internal/raster"
)

// grid adapts a *raster.Raster to plotter.GridXYZ. Unobserved (NaN)
// cells are left as NaN in Z; gonum/plot's heatmapper skips them.
type grid struct {
	r *raster.Raster
}

func (g grid) Dims() (c, r int) { return g.r.Cols, g.r.Rows }

func (g grid) X(c int) float64 { return g.r.OriginX + (float64(c)+0.5)*g.r.CellSize }

func (g grid) Y(r int) float64 { return g.r.OriginY + (float64(r)+0.5)*g.r.CellSize }

func (g grid) Z(c, r int) float64 { return g.r.At(r, c) }

// RenderPNG writes r as a color heatmap PNG to path, titled title. The
// color scale spans the raster's observed min/max; a raster with no
// observed cells at all produces an empty (but valid) plot rather than
// an error, matching how gridplotter.GeneratePlots treats an empty
// sample set.
func RenderPNG(r *raster.Raster, title, path string) error {
	min, max := observedRange(r)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	if min <= max {
		pal := moreland.SmoothGreenRed()
		pal.SetMin(min)
		pal.SetMax(max)
		heat := plotter.NewHeatMap(grid{r: r}, pal)
		p.Add(heat)
	}

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("quicklook: save %s: %w", path, err)
	}
	return nil
}

func observedRange(r *raster.Raster) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range r.Values {
		if !raster.IsObserved(v) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
