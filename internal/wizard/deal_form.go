package wizard

import "github.com/dealerhubhq/dealerhub-backend/pkg/enums"

const (
	DealStepBasics  = 1
	DealStepPricing = 2
	DealStepPayment = 3
	DealStepAddOns  = 4
	DealStepReview  = 5
)

// AdditionalCost is a named charge added on top of the vehicle price.
type AdditionalCost struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
}

// Accessory is a selectable or ad-hoc line item attached to a deal.
type Accessory struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Custom     bool   `json:"custom"`
}

// DealFormData is the in-progress deal draft. Rates are basis points
// (tax_rate_bps 1200 = 12%, loan_rate_bps 599 = 5.99%) so drafts never hold
// floating point money or rates.
type DealFormData struct {
	// basics
	DealNumber   string `json:"deal_number"`
	Title        string `json:"title"`
	CustomerID   string `json:"customer_id"`
	VehicleID    string `json:"vehicle_id"`
	Salesperson  string `json:"salesperson"`
	SaleDate     string `json:"sale_date"`
	DeliveryDate string `json:"delivery_date"`

	// pricing
	VehiclePriceCents *int64           `json:"vehicle_price_cents"`
	DiscountCents     *int64           `json:"discount_cents"`
	DiscountReason    string           `json:"discount_reason"`
	TradeInEnabled    bool             `json:"trade_in_enabled"`
	TradeInVehicle    string           `json:"trade_in_vehicle"`
	TradeInValueCents *int64           `json:"trade_in_value_cents"`
	AdditionalCosts   []AdditionalCost `json:"additional_costs"`
	TaxRateBps        *int64           `json:"tax_rate_bps"`

	// payment and financing
	DownPaymentCents   *int64                 `json:"down_payment_cents"`
	PaymentMethod      string                 `json:"payment_method"`
	FinancingType      enums.FinancingType    `json:"financing_type"`
	LoanRateBps        *int64                 `json:"loan_rate_bps"`
	TermMonths         *int                   `json:"term_months"`
	PaymentFrequency   enums.PaymentFrequency `json:"payment_frequency"`
	LendingInstitution string                 `json:"lending_institution"`

	// add-ons
	WarrantyIncluded         bool        `json:"warranty_included"`
	WarrantyProvider         string      `json:"warranty_provider"`
	WarrantyTermMonths       *int        `json:"warranty_term_months"`
	WarrantyCostCents        *int64      `json:"warranty_cost_cents"`
	WarrantyCommissionCents  *int64      `json:"warranty_commission_cents"`
	InsuranceIncluded        bool        `json:"insurance_included"`
	InsuranceProvider        string      `json:"insurance_provider"`
	InsurancePremiumCents    *int64      `json:"insurance_premium_cents"`
	InsuranceCommissionCents *int64      `json:"insurance_commission_cents"`
	Accessories              []Accessory `json:"accessories"`

	// commission
	CommissionCents *int64 `json:"commission_cents"`
	Notes           string `json:"notes"`
}

func cents(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

// VehiclePrice, Discount and friends read optional amounts as zero when
// unset, which is what the calculator and validators want.
func (d DealFormData) VehiclePrice() int64 { return cents(d.VehiclePriceCents) }
func (d DealFormData) Discount() int64     { return cents(d.DiscountCents) }
func (d DealFormData) TradeInValue() int64 { return cents(d.TradeInValueCents) }
func (d DealFormData) DownPayment() int64  { return cents(d.DownPaymentCents) }
func (d DealFormData) TaxRate() int64      { return cents(d.TaxRateBps) }
func (d DealFormData) LoanRate() int64     { return cents(d.LoanRateBps) }

// Term returns the loan term in months, treating unset or zero as one period
// so straight-line division never divides by zero.
func (d DealFormData) Term() int {
	if d.TermMonths == nil || *d.TermMonths < 1 {
		return 1
	}
	return *d.TermMonths
}

// AdditionalTotal sums the named extra costs.
func (d DealFormData) AdditionalTotal() int64 {
	var sum int64
	for _, c := range d.AdditionalCosts {
		sum += c.AmountCents
	}
	return sum
}
