package wizard

import (
	"fmt"
	"strings"
	"time"
)

const minVehicleYear = 1900

// ValidateVehicleStep returns field -> message for every field failing the
// given step's rules. An empty map means the step may advance. Unknown steps
// validate clean.
func ValidateVehicleStep(draft VehicleFormData, step int) map[string]string {
	errs := map[string]string{}

	switch step {
	case VehicleStepIdentity:
		vin := strings.TrimSpace(draft.VIN)
		if vin == "" {
			errs["vin"] = "VIN is required"
		} else if !ValidVIN(vin) {
			errs["vin"] = "VIN must be 17 characters (letters and digits, no I, O or Q)"
		}
		maxYear := time.Now().Year() + 1
		if draft.Year == nil {
			errs["year"] = "year is required"
		} else if *draft.Year < minVehicleYear || *draft.Year > maxYear {
			errs["year"] = fmt.Sprintf("year must be between %d and %d", minVehicleYear, maxYear)
		}
		requireText(errs, "make", draft.Make)
		requireText(errs, "model", draft.Model)
		requireText(errs, "body_type", draft.BodyType)

	case VehicleStepSpecification:
		requireText(errs, "condition", draft.Condition)
		requireText(errs, "fuel", draft.Fuel)
		requireText(errs, "transmission", draft.Transmission)
		requireText(errs, "drive", draft.Drive)
		requireText(errs, "exterior_color", draft.ExteriorColor)
		requireText(errs, "interior_color", draft.InteriorColor)
		if draft.Doors == nil || *draft.Doors <= 0 {
			errs["doors"] = "doors is required"
		}
		if draft.Seats == nil || *draft.Seats <= 0 {
			errs["seats"] = "seats is required"
		}

	case VehicleStepPricing:
		requirePositiveAmount(errs, "purchase_price_cents", draft.PurchasePriceCents)
		requirePositiveAmount(errs, "retail_price_cents", draft.RetailPriceCents)

	case VehicleStepMedia:
		if len(draft.ImageURLs) > MaxImagesPerDraft {
			errs["image_urls"] = fmt.Sprintf("at most %d images per listing", MaxImagesPerDraft)
		}
		if len(draft.Description) > MaxDescriptionLength {
			errs["description"] = fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength)
		}
	}

	return errs
}

// VehicleReviewErrors re-runs the data-entry steps for review entry.
func VehicleReviewErrors(draft VehicleFormData) map[string]string {
	merged := map[string]string{}
	for step := VehicleStepIdentity; step < VehicleStepReview; step++ {
		for field, msg := range ValidateVehicleStep(draft, step) {
			merged[field] = msg
		}
	}
	return merged
}

func requireText(errs map[string]string, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs[field] = strings.ReplaceAll(field, "_", " ") + " is required"
	}
}

func requirePositiveAmount(errs map[string]string, field string, value *int64) {
	if value == nil || *value <= 0 {
		errs[field] = strings.ReplaceAll(strings.TrimSuffix(field, "_cents"), "_", " ") + " must be greater than zero"
	}
}
