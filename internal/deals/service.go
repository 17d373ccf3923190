package deals

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealerhubhq/dealerhub-backend/internal/finance"
	"github.com/dealerhubhq/dealerhub-backend/internal/wizard"
	"github.com/dealerhubhq/dealerhub-backend/pkg/db"
	"github.com/dealerhubhq/dealerhub-backend/pkg/db/models"
	"github.com/dealerhubhq/dealerhub-backend/pkg/enums"
	pkgerrors "github.com/dealerhubhq/dealerhub-backend/pkg/errors"
)

const dealNumberUniqueConstraint = "idx_deals_deal_number"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type customerLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

type vehicleLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
}

// Service turns validated deal drafts into deal records with their financial
// snapshot.
type Service interface {
	CreateFromDraft(ctx context.Context, draft wizard.DealFormData) (*models.Deal, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Deal, error)
	List(ctx context.Context, status enums.DealStatus, limit, offset int) ([]models.Deal, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	customers customerLoader
	vehicles  vehicleLoader
}

func NewService(repo Repository, tx txRunner, customers customerLoader, vehicles vehicleLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("deal repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer loader required")
	}
	if vehicles == nil {
		return nil, fmt.Errorf("vehicle loader required")
	}
	return &service{repo: repo, tx: tx, customers: customers, vehicles: vehicles}, nil
}

// CreateFromDraft validates every wizard step, resolves the referenced
// customer and vehicle and snapshots the calculator outputs into the record.
// Totals are derived at this moment and never recomputed from the row.
func (s *service) CreateFromDraft(ctx context.Context, draft wizard.DealFormData) (*models.Deal, error) {
	if errs := wizard.DealReviewErrors(draft); len(errs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal draft has validation errors").WithDetails(errs)
	}

	customerID, err := uuid.Parse(draft.CustomerID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer reference is not a valid id").
			WithDetails(map[string]string{"customer_id": "must be a valid id"})
	}
	vehicleID, err := uuid.Parse(draft.VehicleID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle reference is not a valid id").
			WithDetails(map[string]string{"vehicle_id": "must be a valid id"})
	}

	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	vehicle, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}

	deal := buildDeal(draft, customer, vehicle)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.Create(ctx, tx, deal)
	})
	if err != nil {
		if db.IsUniqueViolation(err, dealNumberUniqueConstraint) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a deal with this number already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create deal")
	}
	return deal, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	deal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}
	return deal, nil
}

func (s *service) List(ctx context.Context, status enums.DealStatus, limit, offset int) ([]models.Deal, error) {
	out, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deals")
	}
	return out, nil
}

func buildDeal(draft wizard.DealFormData, customer *models.Customer, vehicle *models.Vehicle) *models.Deal {
	quote := finance.ComputeQuote(draft)

	title := strings.TrimSpace(draft.Title)
	if title == "" {
		title = fmt.Sprintf("%d %s %s for %s %s", vehicle.Year, vehicle.Make, vehicle.Model, customer.FirstName, customer.LastName)
	}

	deal := &models.Deal{
		DealNumber:          draft.DealNumber,
		Title:               title,
		Status:              enums.DealStatusOpen,
		CustomerID:          customer.ID,
		VehicleID:           vehicle.ID,
		Salesperson:         strings.TrimSpace(draft.Salesperson),
		ValueCents:          quote.Totals.TotalCents,
		TaxCents:            quote.Totals.TaxCents,
		DiscountCents:       draft.Discount(),
		DownPaymentCents:    draft.DownPayment(),
		FinancingType:       draft.FinancingType,
		PaymentMethod:       draft.PaymentMethod,
		PaymentFrequency:    draft.PaymentFrequency,
		LoanRateBps:         draft.LoanRate(),
		LendingInstitution:  draft.LendingInstitution,
		MonthlyPaymentCents: quote.Loan.MonthlyCents,
		CommissionCents:     finance.CommissionTotal(draft),
		Notes:               draft.Notes,
	}
	if draft.TradeInEnabled {
		deal.TradeInValueCents = draft.TradeInValue()
	}
	if draft.FinancingType.RequiresLender() {
		deal.TermMonths = draft.Term()
	}
	return deal
}
