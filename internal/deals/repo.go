package deals

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealerhubhq/dealerhub-backend/pkg/db/models"
	"github.com/dealerhubhq/dealerhub-backend/pkg/enums"
)

// Repository persists deal records.
type Repository interface {
	Create(ctx context.Context, tx *gorm.DB, deal *models.Deal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Deal, error)
	List(ctx context.Context, status enums.DealStatus, limit, offset int) ([]models.Deal, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	return &gormRepository{db: db}, nil
}

func (r *gormRepository) Create(ctx context.Context, tx *gorm.DB, deal *models.Deal) error {
	handle := r.db
	if tx != nil {
		handle = tx
	}
	return handle.WithContext(ctx).Create(deal).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	if err := r.db.WithContext(ctx).First(&deal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *gormRepository) List(ctx context.Context, status enums.DealStatus, limit, offset int) ([]models.Deal, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := r.db.WithContext(ctx).Model(&models.Deal{}).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var out []models.Deal
	if err := query.Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
