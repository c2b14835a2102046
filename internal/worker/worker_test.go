package worker

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidarforest/processing/internal/config"
	"github.com/lidarforest/processing/internal/jobs"
	"github.com/lidarforest/processing/internal/kind"
	"github.com/lidarforest/processing/internal/lasio"
)

// writeSyntheticLAS builds a small, well-formed LAS 1.2 file whose
// points run along the diagonal of a 100x100m plot, z rising from 10m
// to 15m, for exercising the dispatcher end to end
// without depending on a real captured file.
func writeSyntheticLAS(t *testing.T, pointCount int) string {
	t.Helper()
	cloud := &lasio.PointCloud{
		Header: lasio.Header{ScaleX: 0.001, ScaleY: 0.001, ScaleZ: 0.001, CRS: "EPSG:32610"},
		X:      make([]float64, pointCount),
		Y:      make([]float64, pointCount),
		Z:      make([]float64, pointCount),
	}
	denom := pointCount - 1
	if denom < 1 {
		denom = 1
	}
	for i := 0; i < pointCount; i++ {
		frac := float64(i) / float64(denom)
		cloud.X[i] = frac * 100
		cloud.Y[i] = frac * 100
		cloud.Z[i] = 10 + frac*5
	}
	path := filepath.Join(t.TempDir(), "synthetic.las")
	require.NoError(t, lasio.WritePointCloud(cloud, path, 0, false))
	return path
}

func testSettings() config.Settings {
	s := config.Default()
	s.JobTimeout = time.Second
	s.MinPointCount = 10
	return s
}

func TestWorker_Run_DispatchesValidateJobAndPublishesResult(t *testing.T) {
	path := writeSyntheticLAS(t, 50)
	b := newFakeBroker()
	w := New(b, testSettings(), nil)

	params, err := json.Marshal(jobs.ValidateParams{FilePath: path})
	require.NoError(t, err)
	job := jobs.Job{ID: "job-1", Type: jobs.TypeValidate, Params: params, EnqueuedAt: time.Now()}
	raw, err := json.Marshal(job)
	require.NoError(t, err)
	b.enqueue(raw)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()
	require.NoError(t, w.Run(ctx))

	data, ok := b.result("job-1")
	require.True(t, ok, "expected a published result for job-1")

	var result jobs.Result
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, jobs.StatusCompleted, result.Status)
	assert.Equal(t, jobs.TypeValidate, result.Type)
	assert.Nil(t, result.Error)
}

func TestWorker_LegacyAliasResolvesToCanonicalType(t *testing.T) {
	path := writeSyntheticLAS(t, 50)
	b := newFakeBroker()
	w := New(b, testSettings(), nil)

	params, err := json.Marshal(jobs.ClassifyGroundParams{FilePath: path})
	require.NoError(t, err)
	job := jobs.Job{ID: "job-alias", Type: "ground_classify", Params: params, EnqueuedAt: time.Now()}

	w.process(context.Background(), job)

	data, ok := b.result("job-alias")
	require.True(t, ok)
	var result jobs.Result
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, jobs.TypeClassifyGround, result.Type)
}

func TestWorker_UnknownJobTypeFailsWithStableCode(t *testing.T) {
	b := newFakeBroker()
	w := New(b, testSettings(), nil)

	job := jobs.Job{ID: "job-2", Type: "not_a_real_type", EnqueuedAt: time.Now()}
	w.process(context.Background(), job)

	data, ok := b.result("job-2")
	require.True(t, ok)
	var result jobs.Result
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, jobs.StatusFailed, result.Status)
	require.NotNil(t, result.Error)
	assert.Equal(t, kind.UnknownJobType, result.Error.Code)
}

func TestWorker_HandlerExceedingJobTimeoutFailsWithJobTimeout(t *testing.T) {
	b := newFakeBroker()
	settings := testSettings()
	settings.JobTimeout = 20 * time.Millisecond
	w := New(b, settings, nil)
	w.handlers[jobs.TypeValidate] = func(ctx context.Context, _ jobs.Job) (interface{}, []string, error) {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}

	job := jobs.Job{ID: "job-3", Type: jobs.TypeValidate, EnqueuedAt: time.Now()}
	w.process(context.Background(), job)

	data, ok := b.result("job-3")
	require.True(t, ok)
	var result jobs.Result
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, jobs.StatusFailed, result.Status)
	require.NotNil(t, result.Error)
	assert.Equal(t, kind.JobTimeout, result.Error.Code)
}

func TestWorker_ValidateInvalidFileReportsValidationIssueCode(t *testing.T) {
	b := newFakeBroker()
	w := New(b, testSettings(), nil)

	params, err := json.Marshal(jobs.ValidateParams{FilePath: "/no/such/file.las"})
	require.NoError(t, err)
	job := jobs.Job{ID: "job-4", Type: jobs.TypeValidate, Params: params, EnqueuedAt: time.Now()}
	w.process(context.Background(), job)

	data, ok := b.result("job-4")
	require.True(t, ok)
	var result jobs.Result
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, jobs.StatusCompleted, result.Status)
	assert.Nil(t, result.Error)

	payload, ok := result.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, payload["is_valid"])
	issues, ok := payload["issues"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, issues)
	assert.Equal(t, "FILE_NOT_FOUND", issues[0].(map[string]interface{})["code"])
}
