package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dealerhubhq/dealerhub-backend/pkg/enums"
)

// Deal is the record created at deal wizard submission. Monetary totals are
// derived by the finance calculator at submit time and snapshotted here; they
// are never recomputed from the row.
type Deal struct {
	ID                  uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DealNumber          string                 `gorm:"column:deal_number;uniqueIndex:idx_deals_deal_number;not null"`
	Title               string                 `gorm:"column:title;not null"`
	Status              enums.DealStatus       `gorm:"column:status;not null;default:'open'"`
	CustomerID          uuid.UUID              `gorm:"column:customer_id;type:uuid;not null"`
	VehicleID           uuid.UUID              `gorm:"column:vehicle_id;type:uuid;not null"`
	Salesperson         string                 `gorm:"column:salesperson;not null"`
	ValueCents          int64                  `gorm:"column:value_cents;not null"`
	TaxCents            int64                  `gorm:"column:tax_cents;not null;default:0"`
	DiscountCents       int64                  `gorm:"column:discount_cents;not null;default:0"`
	TradeInValueCents   int64                  `gorm:"column:trade_in_value_cents;not null;default:0"`
	DownPaymentCents    int64                  `gorm:"column:down_payment_cents;not null;default:0"`
	FinancingType       enums.FinancingType    `gorm:"column:financing_type;not null;default:'cash'"`
	PaymentMethod       string                 `gorm:"column:payment_method"`
	PaymentFrequency    enums.PaymentFrequency `gorm:"column:payment_frequency;default:'monthly'"`
	LoanRateBps         int64                  `gorm:"column:loan_rate_bps;not null;default:0"`
	TermMonths          int                    `gorm:"column:term_months;not null;default:0"`
	LendingInstitution  string                 `gorm:"column:lending_institution"`
	MonthlyPaymentCents int64                  `gorm:"column:monthly_payment_cents;not null;default:0"`
	CommissionCents     int64                  `gorm:"column:commission_cents;not null;default:0"`
	Notes               string                 `gorm:"column:notes"`
	CreatedAt           time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
