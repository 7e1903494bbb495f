package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/veristudy/veristudy-backend/internal/data/repos"
	"github.com/veristudy/veristudy-backend/internal/domain"
	"github.com/veristudy/veristudy-backend/internal/platform/logger"
)

// GormJobStore backs the JobStore contract with the pack_job table. Field
// updates map straight onto columns, so the shallow-merge semantics come from
// a single UPDATE rather than read-modify-write.
type GormJobStore struct {
	repo repos.JobRecordRepo
	log  *logger.Logger
}

func NewGormJobStore(repo repos.JobRecordRepo, log *logger.Logger) *GormJobStore {
	return &GormJobStore{repo: repo, log: log.With("store", "GormJobStore")}
}

func jobToRecord(job *domain.Job) (*repos.JobRecord, error) {
	errsJSON, err := json.Marshal(job.Errors)
	if err != nil {
		return nil, err
	}
	return &repos.JobRecord{
		ID:                job.ID,
		Status:            string(job.Status),
		Step:              job.Step,
		Progress:          job.Progress,
		TotalLectures:     job.TotalLectures,
		CompletedLectures: job.CompletedLectures,
		CurrentLecture:    job.CurrentLecture,
		Errors:            datatypes.JSON(errsJSON),
		PackID:            job.PackID,
		CreatedAt:         job.CreatedAt,
		UpdatedAt:         job.UpdatedAt,
	}, nil
}

func recordToJob(rec *repos.JobRecord) (*domain.Job, error) {
	var errs []string
	if len(rec.Errors) > 0 {
		if err := json.Unmarshal(rec.Errors, &errs); err != nil {
			return nil, fmt.Errorf("decode job errors: %w", err)
		}
	}
	return &domain.Job{
		ID:                rec.ID,
		Status:            domain.JobStatus(rec.Status),
		Step:              rec.Step,
		Progress:          rec.Progress,
		TotalLectures:     rec.TotalLectures,
		CompletedLectures: rec.CompletedLectures,
		CurrentLecture:    rec.CurrentLecture,
		Errors:            errs,
		PackID:            rec.PackID,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
	}, nil
}

func (s *GormJobStore) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	rec, err := s.repo.GetByID(ctx, jobID)
	if err != nil || rec == nil {
		return nil, err
	}
	return recordToJob(rec)
}

func (s *GormJobStore) Set(ctx context.Context, job *domain.Job) error {
	rec, err := jobToRecord(job)
	if err != nil {
		return err
	}
	return s.repo.Upsert(ctx, rec)
}

func (s *GormJobStore) Update(ctx context.Context, jobID string, fields map[string]any) (*domain.Job, error) {
	updates := make(map[string]interface{}, len(fields)+1)
	for key, val := range fields {
		switch key {
		case FieldStatus:
			updates["status"] = fmt.Sprint(val)
		case FieldStep:
			updates["step"] = val
		case FieldProgress:
			updates["progress"] = val
		case FieldTotalLectures:
			updates["total_lectures"] = val
		case FieldCompletedLectures:
			updates["completed_lectures"] = val
		case FieldCurrentLecture:
			updates["current_lecture"] = val
		case FieldErrors:
			errs, ok := val.([]string)
			if !ok {
				return nil, fmt.Errorf("field %q: expected []string, got %T", key, val)
			}
			raw, err := json.Marshal(errs)
			if err != nil {
				return nil, err
			}
			updates["errors"] = datatypes.JSON(raw)
		case FieldPackID:
			updates["pack_id"] = val
		default:
			return nil, fmt.Errorf("unknown job field %q", key)
		}
	}
	updates["updated_at"] = time.Now().UTC()
	if err := s.repo.UpdateFields(ctx, jobID, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, jobID)
}

// GormPackStore backs the PackStore contract with the study_pack table.
type GormPackStore struct {
	repo repos.PackRecordRepo
	log  *logger.Logger
}

func NewGormPackStore(repo repos.PackRecordRepo, log *logger.Logger) *GormPackStore {
	return &GormPackStore{repo: repo, log: log.With("store", "GormPackStore")}
}

func (s *GormPackStore) Get(ctx context.Context, packID string) (*domain.Pack, error) {
	rec, err := s.repo.GetByID(ctx, packID)
	if err != nil || rec == nil {
		return nil, err
	}
	var pack domain.Pack
	if err := json.Unmarshal(rec.Data, &pack); err != nil {
		return nil, fmt.Errorf("decode pack %s: %w", packID, err)
	}
	return &pack, nil
}

func (s *GormPackStore) Set(ctx context.Context, pack *domain.Pack) error {
	raw, err := json.Marshal(pack)
	if err != nil {
		return err
	}
	return s.repo.Save(ctx, &repos.PackRecord{
		ID:        pack.ID,
		Title:     pack.Title,
		Input:     pack.Input,
		Data:      datatypes.JSON(raw),
		CreatedAt: pack.CreatedAt,
	})
}

func (s *GormPackStore) List(ctx context.Context) ([]*domain.Pack, error) {
	recs, err := s.repo.ListNewestFirst(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Pack, 0, len(recs))
	for _, rec := range recs {
		var pack domain.Pack
		if err := json.Unmarshal(rec.Data, &pack); err != nil {
			return nil, fmt.Errorf("decode pack %s: %w", rec.ID, err)
		}
		out = append(out, &pack)
	}
	return out, nil
}
