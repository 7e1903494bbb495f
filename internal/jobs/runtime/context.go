package runtime

import (
	"context"

	"github.com/veristudy/veristudy-backend/internal/data/store"
	"github.com/veristudy/veristudy-backend/internal/domain"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
	"github.com/veristudy/veristudy-backend/internal/services"
)

/*
Context is the execution contract between the job system and pipeline code.
It wraps the mutable job record, the job store, and the sanctioned ways to
report progress or terminate the run. Pipelines never write the job record
directly; every mutation goes through this object, which keeps two
invariants centralized:
  - progress is monotonically non-decreasing within a run,
  - every field change is persisted to the store immediately, so a polling
    observer sees live state.
*/
type Context struct {
	Ctx    context.Context
	Job    *domain.Job
	Store  store.JobStore
	Notify services.JobNotifier
	Log    *logger.Logger
}

func NewContext(ctx context.Context, job *domain.Job, jobStore store.JobStore, notify services.JobNotifier, log *logger.Logger) *Context {
	if notify == nil {
		notify = services.NopNotifier{}
	}
	return &Context{
		Ctx:    ctx,
		Job:    job,
		Store:  jobStore,
		Notify: notify,
		Log:    log.With("job_id", job.ID),
	}
}

// Update persists the given fields and mirrors them onto the in-memory job.
// Store write failures are logged, not propagated: losing one progress echo
// must not fail the run itself.
func (c *Context) Update(fields map[string]any) {
	updated, err := c.Store.Update(c.Ctx, c.Job.ID, fields)
	if err != nil {
		c.Log.Warn("Job store update failed", "error", err)
		return
	}
	if updated != nil {
		*c.Job = *updated
	}
}

// Progress publishes a non-terminal step/progress update. Progress values
// below the current one are raised to it, preserving monotonicity even if a
// caller recomputes a band slightly lower.
func (c *Context) Progress(step string, progress float64) {
	if progress < c.Job.Progress {
		progress = c.Job.Progress
	}
	c.Update(map[string]any{
		store.FieldStep:     step,
		store.FieldProgress: progress,
	})
	c.Notify.JobProgress(c.Job)
}

// Step updates the human-readable activity without touching progress.
func (c *Context) Step(step string) {
	c.Update(map[string]any{store.FieldStep: step})
	c.Notify.JobProgress(c.Job)
}

// AppendError records one recovered per-item failure. The error list is
// append-only for the lifetime of the run.
func (c *Context) AppendError(msg string) {
	errs := append(append([]string(nil), c.Job.Errors...), msg)
	c.Update(map[string]any{store.FieldErrors: errs})
}

// Fail marks the run terminally failed. Progress keeps its last value so a
// failed job retains partial progress for diagnosis.
func (c *Context) Fail(err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	errs := append(append([]string(nil), c.Job.Errors...), msg)
	c.Update(map[string]any{
		store.FieldStatus: domain.JobFailed,
		store.FieldStep:   "Failed",
		store.FieldErrors: errs,
	})
	c.Notify.JobFailed(c.Job)
}

// Complete marks the run terminally successful and records the pack id.
func (c *Context) Complete(packID string) {
	c.Update(map[string]any{
		store.FieldStatus:         domain.JobCompleted,
		store.FieldStep:           "Ready",
		store.FieldProgress:       1.0,
		store.FieldPackID:         packID,
		store.FieldCurrentLecture: "",
	})
	c.Notify.JobDone(c.Job)
}
