package worker

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/lidarforest/processing/internal/jobs"
	"github.com/lidarforest/processing/internal/kind"
	"github.com/lidarforest/processing/internal/lasio"
	"github.com/lidarforest/processing/internal/lasmeta"
	"github.com/lidarforest/processing/internal/lasvalidate"
	"github.com/lidarforest/processing/internal/normalize"
	"github.com/lidarforest/processing/internal/pmf"
	"github.com/lidarforest/processing/internal/raster"
	"github.com/lidarforest/processing/internal/trees"
)

// groundClass is the ASPRS classification code marking a ground point.
const groundClass = 2

func (w *Worker) handleValidate(_ context.Context, job jobs.Job) (interface{}, []string, error) {
	p, err := jobs.DecodeValidateParams(job)
	if err != nil {
		return nil, nil, err
	}

	opts := lasvalidate.DefaultOptions()
	opts.MaxFileSizeBytes = w.Settings.MaxFileSizeBytes()
	opts.MinPoints = uint64(w.Settings.MinPointCount)
	opts.RequireCRS = p.RequireCRS || w.Settings.RequireCRS
	opts.CheckPointDensity = p.CheckPointDensity

	result, err := lasvalidate.Validate(p.FilePath, opts)
	if err != nil {
		return nil, nil, err
	}
	return ValidatePayload{ValidationResult: result, IsValid: result.IsValid()}, nil, nil
}

func (w *Worker) handleExtractMetadata(_ context.Context, job jobs.Job) (interface{}, []string, error) {
	p, err := jobs.DecodeExtractMetadataParams(job)
	if err != nil {
		return nil, nil, err
	}

	opts := lasmeta.DefaultOptions()
	if len(job.Params) > 0 {
		// A caller that supplies params at all opts into exactly the
		// tallies it asks for, rather than inheriting every default.
		opts.IncludeClassificationCounts = p.IncludeClassificationCounts
		opts.IncludeReturnStatistics = p.IncludeReturnStatistics
		opts.CalculateDensity = p.CalculateDensity
	}
	if p.SampleSize > 0 {
		opts.ChunkSize = p.SampleSize
	}

	meta, err := lasmeta.Extract(p.FilePath, opts)
	if err != nil {
		return nil, nil, err
	}
	return ExtractMetadataPayload{LidarMetadata: meta}, nil, nil
}

func (w *Worker) handleClassifyGround(_ context.Context, job jobs.Job) (interface{}, []string, error) {
	p, err := jobs.DecodeClassifyGroundParams(job)
	if err != nil {
		return nil, nil, err
	}
	payload, _, err := w.classifyGround(p)
	return payload, nil, err
}

// classifyGround is factored out of handleClassifyGround so
// handleFullPipeline can reuse it and get back the ground mask/cloud
// needed to feed the next stage without re-reading the file from disk.
func (w *Worker) classifyGround(p jobs.ClassifyGroundParams) (ClassifyGroundPayload, *lasio.PointCloud, error) {
	cloud, err := lasio.ReadPointCloud(p.FilePath, lasio.ColumnSelection{Classification: true, ReturnNumber: true})
	if err != nil {
		return ClassifyGroundPayload{}, nil, err
	}

	params := pmfParamsFromWire(p.Params)
	mask, err := pmf.ClassifyGround(cloud.X, cloud.Y, cloud.Z, params)
	if err != nil {
		return ClassifyGroundPayload{}, nil, err
	}

	if cloud.Classification == nil {
		cloud.Classification = make([]uint8, cloud.PointCount())
	}
	groundCount := 0
	for i, ground := range mask {
		if ground {
			cloud.Classification[i] = groundClass
			groundCount++
		}
	}

	payload := ClassifyGroundPayload{
		TotalPointCount:  cloud.PointCount(),
		GroundPointCount: groundCount,
		OutputPath:       p.OutputPath,
	}
	if cloud.PointCount() > 0 {
		payload.GroundFraction = float64(groundCount) / float64(cloud.PointCount())
	}

	if p.OutputPath != "" {
		if err := lasio.WritePointCloud(cloud, p.OutputPath, cloud.Header.PointFormat, false); err != nil {
			return ClassifyGroundPayload{}, nil, err
		}
	}
	return payload, cloud, nil
}

func (w *Worker) handleNormalizeHeight(_ context.Context, job jobs.Job) (interface{}, []string, error) {
	p, err := jobs.DecodeNormalizeHeightParams(job)
	if err != nil {
		return nil, nil, err
	}
	payload, _, notes, err := w.normalizeHeight(p, nil)
	return payload, notes, err
}

// normalizeHeight normalizes the cloud at p.FilePath, or reuses cloud
// if the caller (handleFullPipeline) already has it in hand from the
// classify_ground stage that just ran.
func (w *Worker) normalizeHeight(p jobs.NormalizeHeightParams, cloud *lasio.PointCloud) (NormalizeHeightPayload, normalize.Result, []string, error) {
	var err error
	if cloud == nil {
		cloud, err = lasio.ReadPointCloud(p.FilePath, lasio.ColumnSelection{Classification: true, ReturnNumber: true})
		if err != nil {
			return NormalizeHeightPayload{}, normalize.Result{}, nil, err
		}
	}

	ground := make([]bool, cloud.PointCount())
	for i, c := range cloud.Classification {
		ground[i] = c == groundClass
	}

	params := normalizeParamsFromWire(p.Params)
	result, err := normalize.Normalize(cloud.X, cloud.Y, cloud.Z, ground, cloud.ReturnNumber, cloud.HasReturnNumbers(), params)
	if err != nil {
		return NormalizeHeightPayload{}, normalize.Result{}, nil, err
	}

	payload := NormalizeHeightPayload{
		PointCount: cloud.PointCount(),
		CellSize:   params.CellSize,
	}
	if result.DEM != nil {
		payload.Rows, payload.Cols = result.DEM.Rows, result.DEM.Cols
	}

	if p.OutputPath != "" {
		payload.DEMPath = p.OutputPath + ".dem.json"
		payload.DSMPath = p.OutputPath + ".dsm.json"
		payload.CHMPath = p.OutputPath + ".chm.json"
		for path, r := range map[string]*raster.Raster{
			payload.DEMPath: result.DEM,
			payload.DSMPath: result.DSM,
			payload.CHMPath: result.CHM,
		} {
			if err := raster.WriteJSON(r, path); err != nil {
				return NormalizeHeightPayload{}, normalize.Result{}, nil, err
			}
		}
	}
	return payload, result, result.Notes, nil
}

func (w *Worker) handleDetectTrees(_ context.Context, job jobs.Job) (interface{}, []string, error) {
	p, err := jobs.DecodeDetectTreesParams(job)
	if err != nil {
		return nil, nil, err
	}
	chm, err := raster.ReadJSON(p.FilePath)
	if err != nil {
		return nil, nil, err
	}
	payload, err := w.detectTrees(chm, treeParamsFromWire(p.Params), p.OutputPath)
	return payload, nil, err
}

func (w *Worker) detectTrees(chm *raster.Raster, params trees.Params, outputPath string) (DetectTreesPayload, error) {
	found, _, err := trees.DetectTrees(chm, params)
	if err != nil {
		return DetectTreesPayload{}, err
	}
	payload := DetectTreesPayload{Trees: found, TreeCount: len(found), OutputPath: outputPath}

	if outputPath != "" {
		collection := trees.ToGeoJSON(found, "", "", time.Now())
		data, err := json.MarshalIndent(collection, "", "  ")
		if err != nil {
			return DetectTreesPayload{}, err
		}
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return DetectTreesPayload{}, err
		}
	}
	return payload, nil
}

func (w *Worker) handleFullPipeline(ctx context.Context, job jobs.Job) (interface{}, []string, error) {
	p, err := jobs.DecodeFullPipelineParams(job)
	if err != nil {
		return nil, nil, err
	}

	var payload FullPipelinePayload
	var notes []string

	opts := lasvalidate.DefaultOptions()
	opts.MaxFileSizeBytes = w.Settings.MaxFileSizeBytes()
	opts.MinPoints = uint64(w.Settings.MinPointCount)
	opts.RequireCRS = p.RequireCRS || w.Settings.RequireCRS
	validation, err := lasvalidate.Validate(p.FilePath, opts)
	if err != nil {
		return nil, nil, err
	}
	validatePayload := ValidatePayload{ValidationResult: validation, IsValid: validation.IsValid()}
	payload.Validate = &validatePayload
	if !validation.IsValid() {
		return payload, notes, errInvalidInput(validation)
	}

	outputBase := p.OutputDir
	if outputBase != "" && !strings.HasSuffix(outputBase, "/") {
		outputBase += "/"
	}

	groundPayload, cloud, err := w.classifyGround(jobs.ClassifyGroundParams{
		FilePath:   p.FilePath,
		OutputPath: outputBase + "ground.las",
		Params:     p.PMFParams,
	})
	if err != nil {
		return payload, notes, err
	}
	payload.ClassifyGround = &groundPayload

	normPayload, normResult, normNotes, err := w.normalizeHeight(jobs.NormalizeHeightParams{
		FilePath:   p.FilePath,
		OutputPath: outputBase + "height",
		Params:     p.NormalizeParams,
	}, cloud)
	notes = append(notes, normNotes...)
	if err != nil {
		return payload, notes, err
	}
	payload.NormalizeHeight = &normPayload

	treesPayload, err := w.detectTrees(normResult.CHM, treeParamsFromWire(p.TreeParams), outputBase+"trees.geojson")
	if err != nil {
		return payload, notes, err
	}
	payload.DetectTrees = &treesPayload

	return payload, notes, nil
}

// errInvalidInput turns a failed ValidationResult into the Go error
// full_pipeline reports when it aborts before reaching classify_ground,
// carrying the first error-severity issue's own stable code forward
// rather than collapsing it to a generic failure.
func errInvalidInput(v lasvalidate.ValidationResult) error {
	for _, issue := range v.Issues {
		if issue.Severity == lasvalidate.SeverityError {
			return kind.NewCodedError(issue.Code, issue.Message)
		}
	}
	return kind.NewCodedError(kind.ReadFailed, "validation failed for an unreported reason")
}

// pmfParamsFromWire converts the job-wire PMFParams into pmf.Params,
// filling any zero field from pmf.DefaultParams() so a caller only
// needs to set the fields it wants to override.
func pmfParamsFromWire(w jobs.PMFParams) pmf.Params {
	p := pmf.DefaultParams()
	if w.CellSize > 0 {
		p.CellSize = w.CellSize
	}
	if w.Slope > 0 {
		p.Slope = w.Slope
	}
	if w.MaxWindowSize > 0 {
		p.MaxWindowSize = w.MaxWindowSize
	}
	if w.InitialDistance > 0 {
		p.InitialDistance = w.InitialDistance
	}
	if w.MaxDistance > 0 {
		p.MaxDistance = w.MaxDistance
	}
	return p
}

// normalizeParamsFromWire converts the job-wire NormalizeParams into
// normalize.Params, defaulting an unrecognized or absent method to IDW.
func normalizeParamsFromWire(w jobs.NormalizeParams) normalize.Params {
	p := normalize.DefaultParams()
	if w.CellSize > 0 {
		p.CellSize = w.CellSize
	}
	switch normalize.Method(w.Method) {
	case normalize.MethodTIN:
		p.Method = normalize.MethodTIN
	case normalize.MethodIDW, "":
		p.Method = normalize.MethodIDW
	}
	if w.IDWPower > 0 {
		p.IDWPower = w.IDWPower
	}
	if w.SearchRadius > 0 {
		p.SearchRadius = w.SearchRadius
	}
	return p
}

// treeParamsFromWire converts the job-wire TreeParams into trees.Params.
func treeParamsFromWire(w jobs.TreeParams) trees.Params {
	p := trees.DefaultParams()
	if w.MinHeight > 0 {
		p.MinHeight = w.MinHeight
	}
	if w.MinTreeDistance > 0 {
		p.MinTreeDistance = w.MinTreeDistance
	}
	if w.SmoothingSigma > 0 {
		p.SmoothingSigma = w.SmoothingSigma
	}
	return p
}
