package raster

import (
	"encoding/json"
	"fmt"
	"os"
)

// wireRaster is the on-disk JSON shape for a Raster: plain fields, no
// methods, so it round-trips without exposing Raster's internal
// row-major indexing scheme as part of the file format. Unobserved
// (NaN) cells encode as null, since JSON has no native NaN literal.
type wireRaster struct {
	Rows     int             `json:"rows"`
	Cols     int             `json:"cols"`
	CellSize float64         `json:"cell_size"`
	OriginX  float64         `json:"origin_x"`
	OriginY  float64         `json:"origin_y"`
	Values   []*float64      `json:"values"`
}

// WriteJSON persists r to path as JSON.
func WriteJSON(r *Raster, path string) error {
	values := make([]*float64, len(r.Values))
	for i, v := range r.Values {
		if IsObserved(v) {
			v := v
			values[i] = &v
		}
	}
	data, err := json.Marshal(wireRaster{r.Rows, r.Cols, r.CellSize, r.OriginX, r.OriginY, values})
	if err != nil {
		return fmt.Errorf("raster: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("raster: write %s: %w", path, err)
	}
	return nil
}

// ReadJSON loads a Raster previously written by WriteJSON. Null entries
// decode back to Unobserved.
func ReadJSON(path string) (*Raster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("raster: read %s: %w", path, err)
	}
	var w wireRaster
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("raster: decode %s: %w", path, err)
	}
	out := NewRaster(w.Rows, w.Cols, w.CellSize, w.OriginX, w.OriginY)
	for i, v := range w.Values {
		if v != nil {
			out.Values[i] = *v
		}
	}
	return out, nil
}
