package lasvalidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_FileNotFound(t *testing.T) {
	t.Parallel()

	result, err := Validate("/nonexistent/file.las", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, StatusInvalid, result.Status)
	assert.False(t, result.IsValid())
	require.Len(t, result.Issues, 1)
	assert.Equal(t, CodeFileNotFound, result.Issues[0].Code)
	assert.Equal(t, SeverityError, result.Issues[0].Severity)
}

func TestValidate_InvalidExtension(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "notlas.txt", []byte("hello"))
	result, err := Validate(path, DefaultOptions())
	require.NoError(t, err)
	assert.False(t, result.IsValid())
	assert.True(t, hasCode(result.Issues, CodeInvalidExtension))
}

func TestValidate_FileTooLarge(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "big.las", make([]byte, 1024))
	opts := DefaultOptions()
	opts.MaxFileSizeBytes = 100
	result, err := Validate(path, opts)
	require.NoError(t, err)
	assert.True(t, hasCode(result.Issues, CodeFileTooLarge))
}

func TestValidate_WellFormedFile(t *testing.T) {
	t.Parallel()

	path := writeSyntheticLAS(t, syntheticLASOpts{
		pointCount: 500,
		crs:        `GEOGCS["WGS 84"]`,
		bounds:     [6]float64{0, 0, 0, 100, 100, 20},
		scale:      [3]float64{0.01, 0.01, 0.01},
	})

	result, err := Validate(path, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, result.IsValid())
	assert.Equal(t, StatusValid, result.Status)
}

func TestValidate_MissingCRSIsWarningUnlessRequired(t *testing.T) {
	t.Parallel()

	path := writeSyntheticLAS(t, syntheticLASOpts{
		pointCount: 500,
		crs:        "",
		bounds:     [6]float64{0, 0, 0, 100, 100, 20},
		scale:      [3]float64{0.01, 0.01, 0.01},
	})

	result, err := Validate(path, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, StatusWarning, result.Status)
	assert.True(t, result.IsValid())

	opts := DefaultOptions()
	opts.RequireCRS = true
	result, err = Validate(path, opts)
	require.NoError(t, err)
	assert.False(t, result.IsValid())
	assert.Equal(t, StatusInvalid, result.Status)
}

func TestValidate_InsufficientPoints(t *testing.T) {
	t.Parallel()

	path := writeSyntheticLAS(t, syntheticLASOpts{
		pointCount: 3,
		crs:        `GEOGCS["WGS 84"]`,
		bounds:     [6]float64{0, 0, 0, 1, 1, 1},
		scale:      [3]float64{0.01, 0.01, 0.01},
	})

	result, err := Validate(path, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, hasCode(result.Issues, CodeInsufficientPoints))
}

func TestQuickCheck_StopsAtFirstError(t *testing.T) {
	t.Parallel()

	ok, err := QuickCheck("/nonexistent/file.las", DefaultOptions())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQuickCheck_PassesOnWarningOnly(t *testing.T) {
	t.Parallel()

	path := writeSyntheticLAS(t, syntheticLASOpts{
		pointCount: 500,
		crs:        "",
		bounds:     [6]float64{0, 0, 0, 100, 100, 20},
		scale:      [3]float64{0.01, 0.01, 0.01},
	})

	ok, err := QuickCheck(path, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, ok)
}

func hasCode(issues []Issue, code string) bool {
	for _, issue := range issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}
