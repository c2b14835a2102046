// Package worker implements the job dispatcher: it pops job
// descriptors off a broker.Client queue, decodes and routes them
// through a closed map[jobs.Type]Handler dispatch table, enforces a
// per-job timeout, publishes the result back to the broker (with
// retry) and, if the job carries a callback_url, delivers it there as
// a signed webhook.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lidarforest/processing/internal/archive"
	"github.com/lidarforest/processing/internal/broker"
	"github.com/lidarforest/processing/internal/config"
	"github.com/lidarforest/processing/internal/jobs"
	"github.com/lidarforest/processing/internal/kind"
)

// popTimeout bounds each blocking Pop call so the run loop notices
// context cancellation promptly instead of blocking indefinitely.
const popTimeout = 2 * time.Second

// Handler executes one job and returns its success payload plus any
// non-fatal recovery notes, or a non-nil error on failure.
type Handler func(ctx context.Context, job jobs.Job) (payload interface{}, notes []string, err error)

// Worker owns the broker client, configuration, and optional long-term
// archive it was constructed with; it holds no process-wide singleton
// of its own.
type Worker struct {
	Broker   broker.Client
	Settings config.Settings
	Archive  *archive.Archive // nil disables archival

	handlers   map[jobs.Type]Handler
	httpClient *http.Client
}

// New builds a Worker with the standard six-entry dispatch table.
func New(b broker.Client, settings config.Settings, arc *archive.Archive) *Worker {
	w := &Worker{
		Broker:     b,
		Settings:   settings,
		Archive:    arc,
		httpClient: &http.Client{Timeout: settings.CallbackTimeout},
	}
	w.handlers = map[jobs.Type]Handler{
		jobs.TypeValidate:        w.handleValidate,
		jobs.TypeExtractMetadata: w.handleExtractMetadata,
		jobs.TypeClassifyGround:  w.handleClassifyGround,
		jobs.TypeNormalizeHeight: w.handleNormalizeHeight,
		jobs.TypeDetectTrees:     w.handleDetectTrees,
		jobs.TypeFullPipeline:    w.handleFullPipeline,
	}
	return w
}

// Run pops and processes jobs until ctx is cancelled, at which point it
// stops popping new jobs and returns once any in-flight job finishes.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		raw, ok, err := w.Broker.Pop(ctx, w.Settings.QueueName, popTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			log.Printf("worker: pop failed: %v", err)
			continue
		}
		if !ok {
			continue
		}

		var job jobs.Job
		if err := json.Unmarshal(raw, &job); err != nil {
			log.Printf("worker: discarding malformed job payload: %v", err)
			continue
		}
		w.process(ctx, job)
	}
}

// process runs job to completion and publishes its result.
func (w *Worker) process(ctx context.Context, job jobs.Job) {
	result := w.Execute(ctx, job)
	w.publish(ctx, job, result)
}

// Execute runs job and returns its JobResult directly, without touching
// the broker. The handler's context expires after job_timeout; a job
// whose context has expired by the time its handler returns is recorded
// as failed with JOB_TIMEOUT, whether or not the handler stopped early
// (the built-in handlers do not check the context). It never
// returns a Go error: every failure is itself recorded as a failed
// JobResult. The CLI's one-shot subcommands call this directly so a
// local operation doesn't need a broker/queue at all.
func (w *Worker) Execute(ctx context.Context, job jobs.Job) jobs.Result {
	result := jobs.Result{JobID: job.ID, Type: job.Type, StartedAt: time.Now()}

	canonType, ok := jobs.CanonicalType(string(job.Type))
	if !ok {
		result.Status = jobs.StatusFailed
		result.Error = &jobs.JobError{Code: kind.UnknownJobType, Message: fmt.Sprintf("unknown job type %q", job.Type)}
		result.FinishedAt = time.Now()
		return result
	}
	result.Type = canonType

	handler := w.handlers[canonType]
	jobCtx, cancel := context.WithTimeout(ctx, w.Settings.JobTimeout)
	defer cancel()

	payload, notes, err := handler(jobCtx, job)
	result.FinishedAt = time.Now()
	result.Notes = notes

	switch {
	case errors.Is(jobCtx.Err(), context.DeadlineExceeded):
		result.Status = jobs.StatusFailed
		result.Error = &jobs.JobError{Code: kind.JobTimeout, Message: fmt.Sprintf("job exceeded timeout %s", w.Settings.JobTimeout)}
	case err != nil:
		result.Status = jobs.StatusFailed
		result.Error = &jobs.JobError{Code: kind.Code(err), Message: err.Error()}
	default:
		result.Status = jobs.StatusCompleted
		result.Payload = payload
	}

	return result
}

// publish writes result under its per-job result key (retrying through
// broker unavailability with backoff until shutdown), mirrors it to the
// archive if one is configured, and delivers the webhook callback if
// the job requested one.
func (w *Worker) publish(ctx context.Context, job jobs.Job, result jobs.Result) {
	data, err := json.Marshal(result)
	if err != nil {
		log.Printf("worker: marshal result for job %s: %v", job.ID, err)
		return
	}

	if err := w.setResultWithRetry(ctx, job.ID, data); err != nil {
		log.Printf("worker: giving up publishing result for job %s: %v", job.ID, err)
	}

	if w.Archive != nil {
		if err := w.Archive.Store(ctx, result); err != nil {
			log.Printf("worker: archiving result for job %s: %v", job.ID, err)
		}
	}

	if job.CallbackURL != "" {
		w.deliverCallback(ctx, job.CallbackURL, data)
	}
}

// setResultWithRetry retries broker.Set with exponential backoff (base
// 1s, factor 2, cap 30s) until it succeeds or ctx is done, per
// BROKER_UNAVAILABLE's propagation policy.
func (w *Worker) setResultWithRetry(ctx context.Context, jobID string, data []byte) error {
	key := w.Settings.ResultPrefix + jobID
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0

	return backoff.RetryNotify(
		func() error {
			return w.Broker.Set(ctx, key, data, w.Settings.ResultTTL)
		},
		backoff.WithContext(b, ctx),
		func(err error, d time.Duration) {
			log.Printf("worker: broker unavailable writing result for job %s: %v; retrying in %v", jobID, err, d)
		},
	)
}
