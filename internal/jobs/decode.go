package jobs

import (
	"encoding/json"
	"fmt"
)

// DecodeValidateParams decodes j.Params for a validate job.
func DecodeValidateParams(j Job) (ValidateParams, error) {
	var p ValidateParams
	err := decode(j.Params, &p)
	return p, err
}

// DecodeExtractMetadataParams decodes j.Params for an extract_metadata job.
func DecodeExtractMetadataParams(j Job) (ExtractMetadataParams, error) {
	var p ExtractMetadataParams
	err := decode(j.Params, &p)
	return p, err
}

// DecodeClassifyGroundParams decodes j.Params for a classify_ground job.
func DecodeClassifyGroundParams(j Job) (ClassifyGroundParams, error) {
	var p ClassifyGroundParams
	err := decode(j.Params, &p)
	return p, err
}

// DecodeNormalizeHeightParams decodes j.Params for a normalize_height job.
func DecodeNormalizeHeightParams(j Job) (NormalizeHeightParams, error) {
	var p NormalizeHeightParams
	err := decode(j.Params, &p)
	return p, err
}

// DecodeDetectTreesParams decodes j.Params for a detect_trees job.
func DecodeDetectTreesParams(j Job) (DetectTreesParams, error) {
	var p DetectTreesParams
	err := decode(j.Params, &p)
	return p, err
}

// DecodeFullPipelineParams decodes j.Params for a full_pipeline job.
func DecodeFullPipelineParams(j Job) (FullPipelineParams, error) {
	var p FullPipelineParams
	err := decode(j.Params, &p)
	return p, err
}

func decode(raw RawParams, out interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("jobs: decode params: %w", err)
	}
	return nil
}
