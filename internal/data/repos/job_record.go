package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/veristudy/veristudy-backend/internal/platform/logger"
)

// JobRecord is the relational row backing one pipeline job when the gorm
// store backend is selected.
type JobRecord struct {
	ID                string         `gorm:"primaryKey" json:"id"`
	Status            string         `gorm:"column:status;not null;index" json:"status"`
	Step              string         `gorm:"column:step" json:"step"`
	Progress          float64        `gorm:"column:progress;not null;default:0" json:"progress"`
	TotalLectures     int            `gorm:"column:total_lectures;not null;default:0" json:"total_lectures"`
	CompletedLectures int            `gorm:"column:completed_lectures;not null;default:0" json:"completed_lectures"`
	CurrentLecture    string         `gorm:"column:current_lecture" json:"current_lecture,omitempty"`
	Errors            datatypes.JSON `gorm:"column:errors;type:jsonb" json:"errors"`
	PackID            string         `gorm:"column:pack_id;index" json:"pack_id,omitempty"`
	CreatedAt         time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updated_at"`
}

func (JobRecord) TableName() string { return "pack_job" }

type JobRecordRepo interface {
	Upsert(ctx context.Context, rec *JobRecord) error
	GetByID(ctx context.Context, id string) (*JobRecord, error)
	UpdateFields(ctx context.Context, id string, updates map[string]interface{}) error
}

type jobRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRecordRepo(db *gorm.DB, baseLog *logger.Logger) JobRecordRepo {
	return &jobRecordRepo{
		db:  db,
		log: baseLog.With("repo", "JobRecordRepo"),
	}
}

func (r *jobRecordRepo) Upsert(ctx context.Context, rec *JobRecord) error {
	if rec == nil || rec.ID == "" {
		return errors.New("job record requires an id")
	}
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *jobRecordRepo) GetByID(ctx context.Context, id string) (*JobRecord, error) {
	if id == "" {
		return nil, nil
	}
	var rec JobRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == "" {
		return nil, nil
	}
	return &rec, nil
}

func (r *jobRecordRepo) UpdateFields(ctx context.Context, id string, updates map[string]interface{}) error {
	if id == "" || len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&JobRecord{}).
		Where("id = ?", id).
		Updates(updates).Error
}
