package repository

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrailFilter narrows an audit trail query.
type TrailFilter struct {
	UserID    uuid.UUID
	TableName string
	Type      string
	From      *time.Time
	To        *time.Time
	Page      pagination.Params
}

// TrailRepository stores audit records. Trails are append-only; there is no
// update or delete path.
type TrailRepository interface {
	Append(ctx context.Context, trails []model.Trail) error
	Search(ctx context.Context, filter TrailFilter) ([]model.Trail, int64, error)
}

type trailRepository struct {
	db *gorm.DB
}

// NewTrailRepository returns a GORM-backed TrailRepository.
func NewTrailRepository(db *gorm.DB) TrailRepository {
	return &trailRepository{db: db}
}

func (r *trailRepository) Append(ctx context.Context, trails []model.Trail) error {
	if len(trails) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&trails).Error
}

func (r *trailRepository) Search(ctx context.Context, filter TrailFilter) ([]model.Trail, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.Trail{})

	if filter.UserID != uuid.Nil {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.TableName != "" {
		db = db.Where("table_name = ?", filter.TableName)
	}
	if filter.Type != "" {
		db = db.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		db = db.Where("date_time >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("date_time <= ?", *filter.To)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var trails []model.Trail
	if err := db.Order("date_time DESC").
		Offset(filter.Page.Offset).Limit(filter.Page.Limit).
		Find(&trails).Error; err != nil {
		return nil, 0, err
	}

	return trails, total, nil
}
