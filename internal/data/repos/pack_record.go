package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/veristudy/veristudy-backend/internal/platform/logger"
)

// PackRecord stores a finished pack as one jsonb document plus the columns
// listings need. Packs are written once; Save covers the later export-map
// rewrite as well.
type PackRecord struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"column:title;not null" json:"title"`
	Input     string         `gorm:"column:input;type:text" json:"input"`
	Data      datatypes.JSON `gorm:"column:data;type:jsonb" json:"data"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

func (PackRecord) TableName() string { return "study_pack" }

type PackRecordRepo interface {
	Save(ctx context.Context, rec *PackRecord) error
	GetByID(ctx context.Context, id string) (*PackRecord, error)
	ListNewestFirst(ctx context.Context) ([]*PackRecord, error)
}

type packRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPackRecordRepo(db *gorm.DB, baseLog *logger.Logger) PackRecordRepo {
	return &packRecordRepo{
		db:  db,
		log: baseLog.With("repo", "PackRecordRepo"),
	}
}

func (r *packRecordRepo) Save(ctx context.Context, rec *PackRecord) error {
	if rec == nil || rec.ID == "" {
		return errors.New("pack record requires an id")
	}
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *packRecordRepo) GetByID(ctx context.Context, id string) (*PackRecord, error) {
	if id == "" {
		return nil, nil
	}
	var rec PackRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == "" {
		return nil, nil
	}
	return &rec, nil
}

func (r *packRecordRepo) ListNewestFirst(ctx context.Context) ([]*PackRecord, error) {
	var recs []*PackRecord
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}
