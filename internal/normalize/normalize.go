// Package normalize builds a Digital Elevation Model (DEM), a Digital
// Surface Model (DSM), and a normalized Canopy Height Model (CHM) from
// a point cloud and its ground mask. It owns no numeric algorithm of
// its own; it orchestrates internal/raster and internal/interp the way
// a composition-root package orchestrates the layers beneath it.
package normalize

import (
	"errors"
	"fmt"
	"math"

	"github.com/lidarforest/processing/internal/interp"
	"github.com/lidarforest/processing/internal/raster"
)

// ErrNoGroundPoints is returned when normalization is requested but the
// supplied ground mask has no true entries for a non-empty cloud.
var ErrNoGroundPoints = errors.New("normalize: no ground points")

// Method selects the interpolation algorithm used to build the DEM.
type Method string

const (
	MethodIDW Method = "idw"
	MethodTIN Method = "tin"
)

// Params configures normalization.
type Params struct {
	CellSize     float64
	Method       Method
	IDWPower     float64
	SearchRadius float64 // 0 means "auto: max(4*CellSize, 3 * average point spacing)"
}

// DefaultParams returns the documented defaults; SearchRadius is left
// at 0 (auto) since it depends on the point cloud's density.
func DefaultParams() Params {
	return Params{CellSize: 1.0, Method: MethodIDW, IDWPower: 2.0}
}

// Result bundles the three rasters a normalization run produces. All
// three share identical grid geometry.
type Result struct {
	DEM *raster.Raster
	DSM *raster.Raster
	CHM *raster.Raster
	// NormalizedZ[i] = z[i] - DEM at point i's cell, one entry per input point.
	NormalizedZ []float64
	// Notes records local-recovery fallbacks the caller should surface
	// as warnings rather than failures (e.g. a degenerate TIN falling
	// back to IDW, or a DSM built without first-return data).
	Notes []string
}

// Normalize computes DEM/DSM/CHM for the full cloud (x,y,z) given a
// ground mask of the same length, plus optional per-point return
// number/whether return-number data exists at all (hasReturnNumbers).
// When hasReturnNumbers is false the DSM falls back to a max-z-per-cell
// over every point rather than first returns only.
func Normalize(x, y, z []float64, ground []bool, returnNumber []uint8, hasReturnNumbers bool, params Params) (Result, error) {
	n := len(x)
	if n != len(y) || n != len(z) || n != len(ground) {
		return Result{}, fmt.Errorf("normalize: x/y/z/ground must have equal length")
	}
	if params.CellSize <= 0 {
		return Result{}, fmt.Errorf("normalize: cell_size must be positive, got %g", params.CellSize)
	}

	if n == 0 {
		empty := raster.NewRaster(1, 1, params.CellSize, 0, 0)
		return Result{DEM: empty, DSM: empty, CHM: emptyCHM(empty)}, nil
	}

	minX, maxX := x[0], x[0]
	minY, maxY := y[0], y[0]
	for i := 1; i < n; i++ {
		minX, maxX = math.Min(minX, x[i]), math.Max(maxX, x[i])
		minY, maxY = math.Min(minY, y[i]), math.Max(maxY, y[i])
	}
	rows, cols := raster.Dims(minX, minY, maxX, maxY, params.CellSize)
	geometry := raster.NewRaster(rows, cols, params.CellSize, minX, minY)

	searchRadius := params.SearchRadius
	if searchRadius <= 0 {
		searchRadius = autoSearchRadius(x, y, params.CellSize)
	}

	var groundSamples []interp.Sample
	for i := 0; i < n; i++ {
		if ground[i] {
			groundSamples = append(groundSamples, interp.Sample{X: x[i], Y: y[i], Z: z[i]})
		}
	}
	if len(groundSamples) == 0 {
		return Result{}, ErrNoGroundPoints
	}

	var dem *raster.Raster
	var notes []string
	switch params.Method {
	case MethodTIN:
		var degenerate bool
		dem, degenerate = interp.TIN(groundSamples, geometry)
		if degenerate {
			notes = append(notes, "ground samples were collinear; TIN fell back to IDW for the DEM")
		}
	default:
		dem = interp.IDW(groundSamples, geometry, params.IDWPower, searchRadius)
	}

	normalizedZ := make([]float64, n)
	for i := 0; i < n; i++ {
		row, col := raster.RowCol(x[i], y[i], minX, minY, params.CellSize, rows, cols)
		normalizedZ[i] = z[i] - dem.At(row, col)
	}

	useFirstReturns := hasReturnNumbers
	if !useFirstReturns {
		notes = append(notes, "point cloud carries no return-number data; DSM used max-z-per-cell over all returns instead of first returns only")
	}
	dsm := raster.NewRaster(rows, cols, params.CellSize, minX, minY)
	anyPointInCell := make([]bool, rows*cols)
	for i := 0; i < n; i++ {
		row, col := raster.RowCol(x[i], y[i], minX, minY, params.CellSize, rows, cols)
		anyPointInCell[row*cols+col] = true
		if useFirstReturns && returnNumber[i] != 1 {
			continue
		}
		cur := dsm.At(row, col)
		if !raster.IsObserved(cur) || z[i] > cur {
			dsm.Set(row, col, z[i])
		}
	}
	raster.Infill(dsm)

	chm := raster.NewRaster(rows, cols, params.CellSize, minX, minY)
	for i := range chm.Values {
		if !anyPointInCell[i] {
			// No sample ever landed here: DEM/DSM values are pure
			// infill extrapolation, so treat the gap as ground.
			chm.Values[i] = 0
			continue
		}
		h := dsm.Values[i] - dem.Values[i]
		if h < 0 {
			h = 0
		}
		chm.Values[i] = h
	}

	return Result{DEM: dem, DSM: dsm, CHM: chm, NormalizedZ: normalizedZ, Notes: notes}, nil
}

func emptyCHM(geometry *raster.Raster) *raster.Raster {
	chm := raster.NewRaster(geometry.Rows, geometry.Cols, geometry.CellSize, geometry.OriginX, geometry.OriginY)
	for i := range chm.Values {
		chm.Values[i] = 0
	}
	return chm
}

// autoSearchRadius derives a default IDW search radius from the
// average nearest-neighbour point spacing, approximated from point
// density over the planar extent (a closed-form estimate rather than
// an explicit nearest-neighbour search, which would cost O(n^2) for
// no benefit here): spacing ~= sqrt(area / n), and the radius is at
// least 4 cells so IDW always has a chance of finding a sample.
func autoSearchRadius(x, y []float64, cellSize float64) float64 {
	n := len(x)
	if n == 0 {
		return 4 * cellSize
	}
	minX, maxX := x[0], x[0]
	minY, maxY := y[0], y[0]
	for i := 1; i < n; i++ {
		minX, maxX = math.Min(minX, x[i]), math.Max(maxX, x[i])
		minY, maxY = math.Min(minY, y[i]), math.Max(maxY, y[i])
	}
	area := (maxX - minX) * (maxY - minY)
	spacing := cellSize
	if area > 0 {
		spacing = math.Sqrt(area / float64(n))
	}
	r := 4 * cellSize
	if 3*spacing > r {
		r = 3 * spacing
	}
	return r
}
