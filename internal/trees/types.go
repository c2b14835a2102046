// Package trees detects individual trees from a Canopy Height Model:
// Gaussian smoothing, local-maximum marker detection, marker-controlled
// watershed segmentation, and per-crown metric extraction.
package trees

// Params configures tree detection.
type Params struct {
	MinHeight       float64 // h_min, meters
	MinTreeDistance int     // d_min, cells
	SmoothingSigma  float64 // sigma; 0 skips smoothing
	UseMarkers      bool
}

// DefaultParams matches the reference thresholds.
func DefaultParams() Params {
	return Params{MinHeight: 2.0, MinTreeDistance: 3, SmoothingSigma: 1.0, UseMarkers: true}
}

// UnknownTag is the default Species/Health value for a detected tree:
// this codec has no species classifier or health model, so every tree
// is tagged "Unknown" rather than left blank.
const UnknownTag = "Unknown"

// CrownMetrics describes one detected crown's shape.
type CrownMetrics struct {
	AreaM2      float64
	MaxHeight   float64
	MeanHeight  float64
	CrownRadius float64
}

// Tree is one detected tree crown.
type Tree struct {
	ID           string
	X, Y         float64
	Height       float64
	CrownRadius  float64
	CrownMetrics CrownMetrics
	Confidence   float64
	Species      string
	Health       string
}
