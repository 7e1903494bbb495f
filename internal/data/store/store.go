package store

import (
	"context"
	"fmt"
	"time"

	"github.com/veristudy/veristudy-backend/internal/domain"
)

// JobStore is the durable key/value record of job progress. Get returns
// (nil, nil) when the job is absent. Update is a shallow merge of the named
// fields onto the stored record; updates for a given job are applied in the
// order issued, so observers never see progress regress within a run.
type JobStore interface {
	Get(ctx context.Context, jobID string) (*domain.Job, error)
	Set(ctx context.Context, job *domain.Job) error
	Update(ctx context.Context, jobID string, fields map[string]any) (*domain.Job, error)
}

// PackStore persists the terminal pack artifact. Packs are written once by
// the pipeline; Set is also used by the later export/mastery flows that
// rewrite the whole aggregate.
type PackStore interface {
	Get(ctx context.Context, packID string) (*domain.Pack, error)
	Set(ctx context.Context, pack *domain.Pack) error
	List(ctx context.Context) ([]*domain.Pack, error)
}

// Field keys accepted by JobStore.Update.
const (
	FieldStatus            = "status"
	FieldStep              = "step"
	FieldProgress          = "progress"
	FieldTotalLectures     = "total_lectures"
	FieldCompletedLectures = "completed_lectures"
	FieldCurrentLecture    = "current_lecture"
	FieldErrors            = "errors"
	FieldPackID            = "pack_id"
)

// applyJobFields merges the named fields onto job in place and bumps
// UpdatedAt. Unknown keys are an error so typos fail loudly in tests rather
// than silently dropping progress updates.
func applyJobFields(job *domain.Job, fields map[string]any) error {
	for key, val := range fields {
		switch key {
		case FieldStatus:
			s, ok := val.(domain.JobStatus)
			if !ok {
				raw, sok := val.(string)
				if !sok {
					return fmt.Errorf("field %q: expected status, got %T", key, val)
				}
				s = domain.JobStatus(raw)
			}
			job.Status = s
		case FieldStep:
			s, ok := val.(string)
			if !ok {
				return fmt.Errorf("field %q: expected string, got %T", key, val)
			}
			job.Step = s
		case FieldProgress:
			f, ok := toFloat(val)
			if !ok {
				return fmt.Errorf("field %q: expected number, got %T", key, val)
			}
			job.Progress = f
		case FieldTotalLectures:
			n, ok := toInt(val)
			if !ok {
				return fmt.Errorf("field %q: expected int, got %T", key, val)
			}
			job.TotalLectures = n
		case FieldCompletedLectures:
			n, ok := toInt(val)
			if !ok {
				return fmt.Errorf("field %q: expected int, got %T", key, val)
			}
			job.CompletedLectures = n
		case FieldCurrentLecture:
			s, ok := val.(string)
			if !ok {
				return fmt.Errorf("field %q: expected string, got %T", key, val)
			}
			job.CurrentLecture = s
		case FieldErrors:
			errs, ok := val.([]string)
			if !ok {
				return fmt.Errorf("field %q: expected []string, got %T", key, val)
			}
			job.Errors = errs
		case FieldPackID:
			s, ok := val.(string)
			if !ok {
				return fmt.Errorf("field %q: expected string, got %T", key, val)
			}
			job.PackID = s
		default:
			return fmt.Errorf("unknown job field %q", key)
		}
	}
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func toFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func toInt(val any) (int, bool) {
	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
