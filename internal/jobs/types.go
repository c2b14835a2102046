// Package jobs defines the job and result types the dispatcher and
// worker exchange through the broker: a closed set of six job types,
// each with its own typed parameter record, and the result envelope
// the worker publishes back under the per-job result key.
package jobs

import "time"

// Type is one of the six canonical job kinds the dispatcher accepts.
type Type string

const (
	TypeValidate        Type = "validate"
	TypeExtractMetadata Type = "extract_metadata"
	TypeClassifyGround  Type = "classify_ground"
	TypeNormalizeHeight Type = "normalize_height"
	TypeDetectTrees     Type = "detect_trees"
	TypeFullPipeline    Type = "full_pipeline"
)

// legacyAliases maps historical job-type spellings onto their
// canonical name so that existing callers keep working; JobResult.Type
// always reports the canonical form regardless of which alias a caller
// submitted.
var legacyAliases = map[string]Type{
	"validate_and_extract": TypeExtractMetadata,
	"ground_classify":      TypeClassifyGround,
}

// CanonicalType resolves a raw job-type string (canonical or legacy
// alias) to its canonical Type, and reports whether it was recognized.
func CanonicalType(raw string) (Type, bool) {
	t := Type(raw)
	switch t {
	case TypeValidate, TypeExtractMetadata, TypeClassifyGround, TypeNormalizeHeight, TypeDetectTrees, TypeFullPipeline:
		return t, true
	}
	if canon, ok := legacyAliases[raw]; ok {
		return canon, true
	}
	return "", false
}

// Status is the job lifecycle state, one-way: pending -> processing ->
// (completed | failed).
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// PMFParams mirrors internal/pmf.Params as the wire shape for
// classify_ground job params.
type PMFParams struct {
	CellSize        float64 `json:"c,omitempty"`
	Slope           float64 `json:"s,omitempty"`
	MaxWindowSize   float64 `json:"W_max,omitempty"`
	InitialDistance float64 `json:"d0,omitempty"`
	MaxDistance     float64 `json:"d_max,omitempty"`
}

// NormalizeParams mirrors internal/normalize.Params as the wire shape
// for normalize_height job params.
type NormalizeParams struct {
	CellSize     float64 `json:"c,omitempty"`
	Method       string  `json:"method,omitempty"`
	IDWPower     float64 `json:"p,omitempty"`
	SearchRadius float64 `json:"r,omitempty"`
}

// TreeParams mirrors internal/trees.Params as the wire shape for
// detect_trees job params.
type TreeParams struct {
	MinHeight       float64 `json:"h_min,omitempty"`
	MinTreeDistance int     `json:"d_min,omitempty"`
	SmoothingSigma  float64 `json:"sigma,omitempty"`
	Algorithm       string  `json:"algorithm,omitempty"`
}

// ValidateParams is the param record for a validate job.
type ValidateParams struct {
	FilePath          string `json:"file_path"`
	RequireCRS        bool   `json:"require_crs,omitempty"`
	CheckPointDensity bool   `json:"check_point_density,omitempty"`
}

// ExtractMetadataParams is the param record for an extract_metadata job.
type ExtractMetadataParams struct {
	FilePath                    string `json:"file_path"`
	IncludeClassificationCounts bool   `json:"include_classification_counts,omitempty"`
	IncludeReturnStatistics     bool   `json:"include_return_statistics,omitempty"`
	CalculateDensity            bool   `json:"calculate_density,omitempty"`
	SampleSize                  int    `json:"sample_size,omitempty"`
}

// ClassifyGroundParams is the param record for a classify_ground job.
type ClassifyGroundParams struct {
	FilePath   string    `json:"file_path"`
	OutputPath string    `json:"output_path,omitempty"`
	Params     PMFParams `json:"params,omitempty"`
}

// NormalizeHeightParams is the param record for a normalize_height job.
type NormalizeHeightParams struct {
	FilePath   string          `json:"file_path"`
	OutputPath string          `json:"output_path,omitempty"`
	Params     NormalizeParams `json:"params,omitempty"`
}

// DetectTreesParams is the param record for a detect_trees job.
type DetectTreesParams struct {
	FilePath   string     `json:"file_path"`
	OutputPath string     `json:"output_path"`
	Params     TreeParams `json:"params,omitempty"`
}

// FullPipelineParams is the param record for a full_pipeline job: it
// runs validate -> classify_ground -> normalize_height -> detect_trees
// in order, aborting on the first stage failure.
type FullPipelineParams struct {
	FilePath        string          `json:"file_path"`
	OutputDir       string          `json:"output_dir,omitempty"`
	RequireCRS      bool            `json:"require_crs,omitempty"`
	PMFParams       PMFParams       `json:"pmf_params,omitempty"`
	NormalizeParams NormalizeParams `json:"normalize_params,omitempty"`
	TreeParams      TreeParams      `json:"tree_params,omitempty"`
}

// Job is an opaque descriptor popped from the broker queue. Params
// carries the job-type-specific record above, but travels as
// json.RawMessage on the wire so the queue itself stays untyped; the
// dispatcher decodes it into the concrete *Params struct for Type.
type Job struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	Params      RawParams `json:"params"`
	CallbackURL string    `json:"callback_url,omitempty"`
	Priority    int       `json:"priority,omitempty"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}

// RawParams defers decoding of the job's params to the dispatcher,
// which knows the concrete type for Job.Type.
type RawParams = []byte

// JobError is the typed error attached to a failed JobResult.
type JobError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the envelope the worker publishes under the per-job result
// key. Payload carries the type-specific success record for Type; it
// is nil when Status is failed.
type Result struct {
	JobID      string      `json:"job_id"`
	Status     Status      `json:"status"`
	Type       Type        `json:"job_type"`
	Payload    interface{} `json:"payload,omitempty"`
	Notes      []string    `json:"notes,omitempty"`
	Error      *JobError   `json:"error,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at,omitempty"`
}
