package vehicles

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealerhubhq/dealerhub-backend/pkg/db/models"
	"github.com/dealerhubhq/dealerhub-backend/pkg/enums"
)

// Repository persists vehicle records.
type Repository interface {
	Create(ctx context.Context, tx *gorm.DB, vehicle *models.Vehicle) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	GetByVIN(ctx context.Context, vin string) (*models.Vehicle, error)
	List(ctx context.Context, status enums.VehicleStatus, limit, offset int) ([]models.Vehicle, error)
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

func (r *gormRepository) Create(ctx context.Context, tx *gorm.DB, vehicle *models.Vehicle) error {
	handle := r.db
	if tx != nil {
		handle = tx
	}
	return handle.WithContext(ctx).Create(vehicle).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *gormRepository) GetByVIN(ctx context.Context, vin string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "vin = ?", vin).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *gormRepository) List(ctx context.Context, status enums.VehicleStatus, limit, offset int) ([]models.Vehicle, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := r.db.WithContext(ctx).Model(&models.Vehicle{}).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var out []models.Vehicle
	if err := query.Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
