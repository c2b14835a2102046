package trees

import "time"

// GeoJSONPoint is a GeoJSON Point geometry.
type GeoJSONPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// TreeProperties carries a detected tree's attributes as GeoJSON
// feature properties.
type TreeProperties struct {
	ID          string   `json:"id"`
	Height      float64  `json:"height"`
	CrownRadius *float64 `json:"crown_radius,omitempty"`
	DBH         *float64 `json:"dbh,omitempty"`
	Species     string   `json:"species,omitempty"`
	Health      string   `json:"health,omitempty"`
	Confidence  float64  `json:"confidence"`
}

// Feature is one tree rendered as a GeoJSON Feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   GeoJSONPoint   `json:"geometry"`
	Properties TreeProperties `json:"properties"`
}

// CollectionProperties describes the run that produced a FeatureCollection.
type CollectionProperties struct {
	SourceFile        string `json:"source_file"`
	DetectionTimestamp string `json:"detection_timestamp"`
	Algorithm         string `json:"algorithm"`
	TreeCount         int    `json:"tree_count"`
	CRS               string `json:"crs,omitempty"`
}

// FeatureCollection is the top-level GeoJSON document returned by tree
// detection: one Feature per tree plus run metadata.
type FeatureCollection struct {
	Type       string               `json:"type"`
	Features   []Feature            `json:"features"`
	Properties CollectionProperties `json:"properties"`
}

// ToGeoJSON renders trees as a GeoJSON FeatureCollection. detectedAt is
// stamped in by the caller (the package never reads the clock itself)
// so results stay reproducible in tests.
func ToGeoJSON(trees []Tree, sourceFile, crs string, detectedAt time.Time) FeatureCollection {
	features := make([]Feature, 0, len(trees))
	for _, t := range trees {
		radius := t.CrownRadius
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: GeoJSONPoint{Type: "Point", Coordinates: [2]float64{t.X, t.Y}},
			Properties: TreeProperties{
				ID:          t.ID,
				Height:      t.Height,
				CrownRadius: &radius,
				Species:     t.Species,
				Health:      t.Health,
				Confidence:  t.Confidence,
			},
		})
	}
	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
		Properties: CollectionProperties{
			SourceFile:         sourceFile,
			DetectionTimestamp: detectedAt.UTC().Format(time.RFC3339),
			Algorithm:          "watershed",
			TreeCount:          len(trees),
			CRS:                crs,
		},
	}
}
