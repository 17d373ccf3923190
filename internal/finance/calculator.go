// Package finance derives every displayed monetary figure from a deal draft.
// All functions are pure: same draft in, same numbers out, draft untouched.
//
// Amounts are integer cents and rates are basis points. Intermediate values
// stay full-precision decimals; rounding (half away from zero, to the cent)
// happens once, at the output boundary, so cascading calculations never
// compound rounding error.
package finance

import (
	"github.com/shopspring/decimal"

	"github.com/dealerhubhq/dealerhub-backend/internal/wizard"
)

var (
	bpsDivisor    = decimal.NewFromInt(10000)
	monthsPerYear = decimal.NewFromInt(12)
)

// Totals are the deal's derived pricing figures, in cents.
type Totals struct {
	BaseCents       int64 `json:"base_cents"`
	AdditionalCents int64 `json:"additional_cents"`
	TaxCents        int64 `json:"tax_cents"`
	TotalCents      int64 `json:"total_cents"`
}

// Loan is the amortization breakdown for the financed portion, in cents.
type Loan struct {
	LoanCents          int64 `json:"loan_cents"`
	MonthlyCents       int64 `json:"monthly_cents"`
	TotalPaidCents     int64 `json:"total_paid_cents"`
	TotalInterestCents int64 `json:"total_interest_cents"`
}

// Quote bundles totals and loan for a single draft snapshot.
type Quote struct {
	Totals Totals `json:"totals"`
	Loan   Loan   `json:"loan"`
}

// ComputeTotals derives base, additional, tax and total:
//
//	base  = vehicle price - discount - trade-in (when enabled)
//	tax   = (base + additional) * tax rate
//	total = base + additional + tax
func ComputeTotals(draft wizard.DealFormData) Totals {
	base, additional, taxExact := totalsExact(draft)
	tax := taxExact.Round(0)
	return Totals{
		BaseCents:       base.IntPart(),
		AdditionalCents: additional.IntPart(),
		TaxCents:        tax.IntPart(),
		TotalCents:      base.Add(additional).Add(tax).IntPart(),
	}
}

// ComputeLoan amortizes the financed principal:
//
//	principal = max(total - down payment, 0)
//	r         = annual rate / 12
//	monthly   = principal*r / (1 - (1+r)^-n), straight-line when r = 0
//
// The principal is taken from the exact (unrounded) total so the loan does
// not inherit the display rounding of the tax line. The rounded outputs
// satisfy TotalPaid - TotalInterest == Loan exactly.
func ComputeLoan(draft wizard.DealFormData) Loan {
	base, additional, taxExact := totalsExact(draft)
	totalExact := base.Add(additional).Add(taxExact)

	principal := totalExact.Sub(decimal.NewFromInt(draft.DownPayment()))
	if principal.IsNegative() {
		principal = decimal.Zero
	}

	n := draft.Term()
	months := decimal.NewFromInt(int64(n))

	var monthlyExact decimal.Decimal
	rate := decimal.NewFromInt(draft.LoanRate()).Div(bpsDivisor).Div(monthsPerYear)
	if rate.IsZero() {
		monthlyExact = principal.Div(months)
	} else {
		// monthly = principal*r*(1+r)^n / ((1+r)^n - 1)
		growth := powInt(decimal.NewFromInt(1).Add(rate), n)
		monthlyExact = principal.Mul(rate).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1)))
	}

	loan := principal.Round(0).IntPart()
	monthly := monthlyExact.Round(0).IntPart()
	totalPaid := monthlyExact.Mul(months).Round(0).IntPart()
	interest := totalPaid - loan
	if interest < 0 {
		interest = 0
		totalPaid = loan
	}

	return Loan{
		LoanCents:          loan,
		MonthlyCents:       monthly,
		TotalPaidCents:     totalPaid,
		TotalInterestCents: interest,
	}
}

// ComputeQuote evaluates both pipelines in one pass.
func ComputeQuote(draft wizard.DealFormData) Quote {
	return Quote{
		Totals: ComputeTotals(draft),
		Loan:   ComputeLoan(draft),
	}
}

// CommissionTotal sums the flat commission with warranty and insurance
// commissions when those add-ons are included.
func CommissionTotal(draft wizard.DealFormData) int64 {
	total := valueOrZero(draft.CommissionCents)
	if draft.WarrantyIncluded {
		total += valueOrZero(draft.WarrantyCommissionCents)
	}
	if draft.InsuranceIncluded {
		total += valueOrZero(draft.InsuranceCommissionCents)
	}
	return total
}

func totalsExact(draft wizard.DealFormData) (base, additional, tax decimal.Decimal) {
	base = decimal.NewFromInt(draft.VehiclePrice()).
		Sub(decimal.NewFromInt(draft.Discount()))
	if draft.TradeInEnabled {
		base = base.Sub(decimal.NewFromInt(draft.TradeInValue()))
	}
	additional = decimal.NewFromInt(draft.AdditionalTotal())
	tax = base.Add(additional).
		Mul(decimal.NewFromInt(draft.TaxRate())).
		Div(bpsDivisor)
	return base, additional, tax
}

// powInt raises base to a non-negative integer power by squaring. Loan terms
// are small, but this keeps the decimal library's float-backed Pow out of the
// money path.
func powInt(base decimal.Decimal, exp int) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		exp >>= 1
	}
	return result
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
