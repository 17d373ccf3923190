package deals

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dealerhubhq/dealerhub-backend/internal/wizard"
	"github.com/dealerhubhq/dealerhub-backend/pkg/db/models"
	"github.com/dealerhubhq/dealerhub-backend/pkg/enums"
	pkgerrors "github.com/dealerhubhq/dealerhub-backend/pkg/errors"
)

type stubRepo struct {
	createErr error
	created   *models.Deal
	byID      *models.Deal
	byIDErr   error
	listed    []models.Deal
	listErr   error
}

func (s *stubRepo) Create(_ context.Context, _ *gorm.DB, deal *models.Deal) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = deal
	return nil
}

func (s *stubRepo) GetByID(context.Context, uuid.UUID) (*models.Deal, error) {
	return s.byID, s.byIDErr
}

func (s *stubRepo) List(context.Context, enums.DealStatus, int, int) ([]models.Deal, error) {
	return s.listed, s.listErr
}

type stubCustomers struct {
	customer *models.Customer
	err      error
}

func (s stubCustomers) GetByID(context.Context, uuid.UUID) (*models.Customer, error) {
	return s.customer, s.err
}

type stubVehicles struct {
	vehicle *models.Vehicle
	err     error
}

func (s stubVehicles) GetByID(context.Context, uuid.UUID) (*models.Vehicle, error) {
	return s.vehicle, s.err
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func int64p(v int64) *int64 { return &v }
func intp(v int) *int       { return &v }

func testCustomer() *models.Customer {
	return &models.Customer{ID: uuid.New(), FirstName: "Maria", LastName: "Lopez"}
}

func testVehicle() *models.Vehicle {
	return &models.Vehicle{ID: uuid.New(), Year: 2021, Make: "Ford", Model: "Mustang"}
}

func validDealDraft(customerID, vehicleID uuid.UUID) wizard.DealFormData {
	return wizard.DealFormData{
		DealNumber:        "DL-2026-00042",
		CustomerID:        customerID.String(),
		VehicleID:         vehicleID.String(),
		Salesperson:       "Jordan Blake",
		VehiclePriceCents: int64p(3450000),
		DiscountCents:     int64p(50000),
		AdditionalCosts: []wizard.AdditionalCost{
			{Name: "detailing", AmountCents: 50000},
			{Name: "delivery", AmountCents: 120000},
		},
		TaxRateBps:               int64p(1200),
		DownPaymentCents:         int64p(500000),
		PaymentMethod:            "financing",
		FinancingType:            enums.FinancingTypeFinance,
		LoanRateBps:              int64p(599),
		TermMonths:               intp(60),
		PaymentFrequency:         enums.PaymentFrequencyMonthly,
		LendingInstitution:       "First Auto Credit",
		WarrantyIncluded:         true,
		WarrantyCommissionCents:  int64p(15000),
		InsuranceIncluded:        true,
		InsuranceCommissionCents: int64p(10000),
		CommissionCents:          int64p(100000),
	}
}

func fixture(t *testing.T, repo *stubRepo, customer *models.Customer, vehicle *models.Vehicle) Service {
	t.Helper()
	svc, err := NewService(repo, passthroughTx{}, stubCustomers{customer: customer}, stubVehicles{vehicle: vehicle})
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(nil, passthroughTx{}, stubCustomers{}, stubVehicles{})
	require.Error(t, err)

	_, err = NewService(&stubRepo{}, nil, stubCustomers{}, stubVehicles{})
	require.Error(t, err)

	_, err = NewService(&stubRepo{}, passthroughTx{}, nil, stubVehicles{})
	require.Error(t, err)

	_, err = NewService(&stubRepo{}, passthroughTx{}, stubCustomers{}, nil)
	require.Error(t, err)
}

func TestCreateFromDraftSnapshotsQuote(t *testing.T) {
	repo := &stubRepo{}
	customer := testCustomer()
	vehicle := testVehicle()
	svc := fixture(t, repo, customer, vehicle)

	deal, err := svc.CreateFromDraft(context.Background(), validDealDraft(customer.ID, vehicle.ID))
	require.NoError(t, err)
	require.NotNil(t, repo.created)

	assert.Equal(t, "DL-2026-00042", deal.DealNumber)
	assert.Equal(t, enums.DealStatusOpen, deal.Status)
	assert.Equal(t, customer.ID, deal.CustomerID)
	assert.Equal(t, vehicle.ID, deal.VehicleID)

	// base 3450000-50000+170000=3570000, tax 12% = 428400
	assert.Equal(t, int64(428400), deal.TaxCents)
	assert.Equal(t, int64(3998400), deal.ValueCents)
	assert.Equal(t, int64(50000), deal.DiscountCents)
	assert.Equal(t, int64(500000), deal.DownPaymentCents)
	assert.Equal(t, int64(599), deal.LoanRateBps)
	assert.Equal(t, 60, deal.TermMonths)
	assert.Positive(t, deal.MonthlyPaymentCents)
	assert.Equal(t, int64(125000), deal.CommissionCents)

	// title falls back to customer and vehicle names
	assert.Equal(t, "2021 Ford Mustang for Maria Lopez", deal.Title)
}

func TestCreateFromDraftValidation(t *testing.T) {
	customer := testCustomer()
	vehicle := testVehicle()
	svc := fixture(t, &stubRepo{}, customer, vehicle)

	draft := validDealDraft(customer.ID, vehicle.ID)
	draft.Salesperson = ""
	draft.VehiclePriceCents = nil

	_, err := svc.CreateFromDraft(context.Background(), draft)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	details, ok := appErr.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "salesperson")
	assert.Contains(t, details, "vehicle_price_cents")
}

func TestCreateFromDraftBadReferenceID(t *testing.T) {
	customer := testCustomer()
	vehicle := testVehicle()
	svc := fixture(t, &stubRepo{}, customer, vehicle)

	draft := validDealDraft(customer.ID, vehicle.ID)
	draft.CustomerID = "not-a-uuid"

	_, err := svc.CreateFromDraft(context.Background(), draft)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCreateFromDraftMissingCustomer(t *testing.T) {
	vehicle := testVehicle()
	repo := &stubRepo{}
	svc, err := NewService(repo, passthroughTx{}, stubCustomers{err: gorm.ErrRecordNotFound}, stubVehicles{vehicle: vehicle})
	require.NoError(t, err)

	_, err = svc.CreateFromDraft(context.Background(), validDealDraft(uuid.New(), vehicle.ID))
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
	assert.Equal(t, "customer not found", appErr.Message())
}

func TestCreateFromDraftDuplicateNumber(t *testing.T) {
	customer := testCustomer()
	vehicle := testVehicle()
	repo := &stubRepo{
		createErr: errors.New(`duplicate key value violates unique constraint "idx_deals_deal_number"`),
	}
	svc := fixture(t, repo, customer, vehicle)

	_, err := svc.CreateFromDraft(context.Background(), validDealDraft(customer.ID, vehicle.ID))
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
	assert.Equal(t, "a deal with this number already exists", appErr.Message())
}

func TestCreateFromDraftCashSkipsTerm(t *testing.T) {
	customer := testCustomer()
	vehicle := testVehicle()
	repo := &stubRepo{}
	svc := fixture(t, repo, customer, vehicle)

	draft := validDealDraft(customer.ID, vehicle.ID)
	draft.FinancingType = enums.FinancingTypeCash
	draft.PaymentMethod = "cash"
	draft.LendingInstitution = ""

	deal, err := svc.CreateFromDraft(context.Background(), draft)
	require.NoError(t, err)
	assert.Zero(t, deal.TermMonths)
}

func TestGetNotFound(t *testing.T) {
	svc := fixture(t, &stubRepo{byIDErr: gorm.ErrRecordNotFound}, testCustomer(), testVehicle())

	_, err := svc.Get(context.Background(), uuid.New())
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestListWrapsRepoError(t *testing.T) {
	svc := fixture(t, &stubRepo{listErr: errors.New("connection refused")}, testCustomer(), testVehicle())

	_, err := svc.List(context.Background(), enums.DealStatusOpen, 10, 0)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeDependency, appErr.Code())
}
