package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalType_AcceptsCanonicalNames(t *testing.T) {
	for _, raw := range []string{"validate", "extract_metadata", "classify_ground", "normalize_height", "detect_trees", "full_pipeline"} {
		canon, ok := CanonicalType(raw)
		assert.True(t, ok)
		assert.Equal(t, Type(raw), canon)
	}
}

func TestCanonicalType_NormalizesLegacyAliases(t *testing.T) {
	canon, ok := CanonicalType("ground_classify")
	require.True(t, ok)
	assert.Equal(t, TypeClassifyGround, canon)

	canon, ok = CanonicalType("validate_and_extract")
	require.True(t, ok)
	assert.Equal(t, TypeExtractMetadata, canon)
}

func TestCanonicalType_RejectsUnknown(t *testing.T) {
	_, ok := CanonicalType("not_a_real_job_type")
	assert.False(t, ok)
}

func TestDecodeClassifyGroundParams(t *testing.T) {
	job := Job{
		Type:   TypeClassifyGround,
		Params: []byte(`{"file_path":"plot.las","params":{"c":0.5}}`),
	}
	p, err := DecodeClassifyGroundParams(job)
	require.NoError(t, err)
	assert.Equal(t, "plot.las", p.FilePath)
	assert.Equal(t, 0.5, p.Params.CellSize)
}

func TestDecodeParams_EmptyIsZeroValue(t *testing.T) {
	job := Job{Type: TypeValidate}
	p, err := DecodeValidateParams(job)
	require.NoError(t, err)
	assert.Equal(t, ValidateParams{}, p)
}
