package worker

import (
	"github.com/lidarforest/processing/internal/lasmeta"
	"github.com/lidarforest/processing/internal/lasvalidate"
	"github.com/lidarforest/processing/internal/trees"
)

// ValidatePayload is the validate job's success payload: the
// ValidationResult plus the is_valid convenience flag callers poll for.
type ValidatePayload struct {
	lasvalidate.ValidationResult
	IsValid bool `json:"is_valid"`
}

// ExtractMetadataPayload is the extract_metadata job's success payload.
type ExtractMetadataPayload struct {
	lasmeta.LidarMetadata
}

// ClassifyGroundPayload is the classify_ground job's success payload.
type ClassifyGroundPayload struct {
	TotalPointCount  int     `json:"total_point_count"`
	GroundPointCount int     `json:"ground_point_count"`
	GroundFraction   float64 `json:"ground_fraction"`
	OutputPath       string  `json:"output_path,omitempty"`
}

// NormalizeHeightPayload is the normalize_height job's success payload.
// The DEM/DSM/CHM rasters themselves are written to disk (raster.WriteJSON)
// rather than inlined, per the data model's "only the final raster is
// persisted to disk" ownership rule; the payload carries where to find them.
type NormalizeHeightPayload struct {
	PointCount int     `json:"point_count"`
	Rows       int     `json:"rows"`
	Cols       int     `json:"cols"`
	CellSize   float64 `json:"cell_size"`
	DEMPath    string  `json:"dem_path,omitempty"`
	DSMPath    string  `json:"dsm_path,omitempty"`
	CHMPath    string  `json:"chm_path,omitempty"`
}

// DetectTreesPayload is the detect_trees job's success payload.
type DetectTreesPayload struct {
	Trees      []trees.Tree `json:"trees"`
	TreeCount  int          `json:"tree_count"`
	OutputPath string       `json:"output_path,omitempty"`
}

// FullPipelinePayload bundles each stage's payload; a nil field means
// that stage was never reached because an earlier one failed (the
// pipeline aborts on first error, so payloads fill in left to right).
type FullPipelinePayload struct {
	Validate        *ValidatePayload        `json:"validate,omitempty"`
	ClassifyGround  *ClassifyGroundPayload  `json:"classify_ground,omitempty"`
	NormalizeHeight *NormalizeHeightPayload `json:"normalize_height,omitempty"`
	DetectTrees     *DetectTreesPayload     `json:"detect_trees,omitempty"`
}
