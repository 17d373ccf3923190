package vehicles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealerhubhq/dealerhub-backend/internal/wizard"
	"github.com/dealerhubhq/dealerhub-backend/pkg/db"
	"github.com/dealerhubhq/dealerhub-backend/pkg/db/models"
	"github.com/dealerhubhq/dealerhub-backend/pkg/enums"
	pkgerrors "github.com/dealerhubhq/dealerhub-backend/pkg/errors"
)

const vinUniqueConstraint = "idx_vehicles_vin"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service turns validated vehicle drafts into inventory records.
type Service interface {
	CreateFromDraft(ctx context.Context, draft wizard.VehicleFormData) (*models.Vehicle, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	List(ctx context.Context, status enums.VehicleStatus, limit, offset int) ([]models.Vehicle, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vehicle repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// CreateFromDraft validates every wizard step, builds the flat record and
// inserts it. A VIN collision maps to a conflict with its own message so the
// wizard can surface something better than a generic failure.
func (s *service) CreateFromDraft(ctx context.Context, draft wizard.VehicleFormData) (*models.Vehicle, error) {
	if errs := wizard.VehicleReviewErrors(draft); len(errs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle draft has validation errors").WithDetails(errs)
	}

	vehicle := buildVehicle(draft)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.Create(ctx, tx, vehicle)
	})
	if err != nil {
		if db.IsUniqueViolation(err, vinUniqueConstraint) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a vehicle with this VIN already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vehicle")
	}
	return vehicle, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	vehicle, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return vehicle, nil
}

func (s *service) List(ctx context.Context, status enums.VehicleStatus, limit, offset int) ([]models.Vehicle, error) {
	out, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}
	return out, nil
}

func buildVehicle(draft wizard.VehicleFormData) *models.Vehicle {
	vehicle := &models.Vehicle{
		StockNumber:   draft.StockNumber,
		VIN:           strings.ToUpper(strings.TrimSpace(draft.VIN)),
		Make:          strings.TrimSpace(draft.Make),
		Model:         strings.TrimSpace(draft.Model),
		Trim:          strings.TrimSpace(draft.Trim),
		BodyType:      strings.TrimSpace(draft.BodyType),
		Status:        enums.VehicleStatusAvailable,
		Condition:     draft.Condition,
		OdometerUnit:  draft.OdometerUnit,
		Fuel:          draft.Fuel,
		Transmission:  draft.Transmission,
		Drive:         draft.Drive,
		ExteriorColor: draft.ExteriorColor,
		InteriorColor: draft.InteriorColor,
		Engine:        draft.Engine,
		ImageURLs:     orderedImages(draft),
		Features:      append([]string(nil), draft.Features...),
		Description:   draft.Description,
	}
	if draft.Year != nil {
		vehicle.Year = *draft.Year
	}
	if draft.Mileage != nil {
		vehicle.Mileage = *draft.Mileage
	}
	if draft.Doors != nil {
		vehicle.Doors = *draft.Doors
	}
	if draft.Seats != nil {
		vehicle.Seats = *draft.Seats
	}
	if draft.RetailPriceCents != nil {
		vehicle.PriceCents = *draft.RetailPriceCents
	}
	if draft.PurchasePriceCents != nil {
		vehicle.CostCents = *draft.PurchasePriceCents
	}
	return vehicle
}

// orderedImages puts the primary image first so downstream listings can use
// position zero without knowing about the index.
func orderedImages(draft wizard.VehicleFormData) []string {
	if len(draft.ImageURLs) == 0 {
		return nil
	}
	idx := draft.PrimaryImageIndex
	if idx < 0 || idx >= len(draft.ImageURLs) {
		idx = 0
	}
	out := make([]string, 0, len(draft.ImageURLs))
	out = append(out, draft.ImageURLs[idx])
	for i, url := range draft.ImageURLs {
		// skip by position, not value, so duplicate URLs survive
		if i != idx {
			out = append(out, url)
		}
	}
	return out
}
