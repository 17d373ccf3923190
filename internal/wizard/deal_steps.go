package wizard

import "strings"

// ValidateDealStep returns field -> message for every field failing the given
// step's rules. Empty map means the step may advance.
func ValidateDealStep(draft DealFormData, step int) map[string]string {
	errs := map[string]string{}

	switch step {
	case DealStepBasics:
		requireText(errs, "customer_id", draft.CustomerID)
		requireText(errs, "vehicle_id", draft.VehicleID)
		requireText(errs, "salesperson", draft.Salesperson)

	case DealStepPricing:
		requirePositiveAmount(errs, "vehicle_price_cents", draft.VehiclePriceCents)

	case DealStepPayment:
		requireText(errs, "payment_method", draft.PaymentMethod)
		if draft.FinancingType.RequiresLender() && strings.TrimSpace(draft.LendingInstitution) == "" {
			errs["lending_institution"] = "lending institution is required when financing"
		}
	}

	return errs
}

// DealReviewErrors re-runs the data-entry steps for review entry.
func DealReviewErrors(draft DealFormData) map[string]string {
	merged := map[string]string{}
	for step := DealStepBasics; step < DealStepReview; step++ {
		for field, msg := range ValidateDealStep(draft, step) {
			merged[field] = msg
		}
	}
	return merged
}
