package wizard

import "github.com/dealerhubhq/dealerhub-backend/pkg/enums"

const (
	// VehicleStepIdentity through VehicleStepReview are the vehicle wizard
	// steps in order. Review has no fields of its own.
	VehicleStepIdentity      = 1
	VehicleStepSpecification = 2
	VehicleStepPricing       = 3
	VehicleStepMedia         = 4
	VehicleStepReview        = 5

	MaxDescriptionLength = 2000
	MaxImagesPerDraft    = 20
)

// VehicleFormData is the in-progress vehicle listing draft. Numeric fields
// are pointers so "not yet entered" is distinguishable from zero; monetary
// amounts are integer cents.
type VehicleFormData struct {
	// identity
	VIN         string `json:"vin"`
	StockNumber string `json:"stock_number"`
	Year        *int   `json:"year"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Trim        string `json:"trim"`
	BodyType    string `json:"body_type"`

	// specification
	Mileage       *int               `json:"mileage"`
	OdometerUnit  enums.OdometerUnit `json:"odometer_unit"`
	Condition     string             `json:"condition"`
	Fuel          string             `json:"fuel"`
	Transmission  string             `json:"transmission"`
	Drive         string             `json:"drive"`
	ExteriorColor string             `json:"exterior_color"`
	InteriorColor string             `json:"interior_color"`
	Doors         *int               `json:"doors"`
	Seats         *int               `json:"seats"`
	Engine        string             `json:"engine"`

	// pricing
	PurchasePriceCents *int64 `json:"purchase_price_cents"`
	RetailPriceCents   *int64 `json:"retail_price_cents"`
	SpecialPriceCents  *int64 `json:"special_price_cents"`
	ExtraCostsCents    *int64 `json:"extra_costs_cents"`
	TaxRateBps         *int64 `json:"tax_rate_bps"`

	// media and description
	ImageURLs         []string `json:"image_urls"`
	PrimaryImageIndex int      `json:"primary_image_index"`
	Features          []string `json:"features"`
	Description       string   `json:"description"`
}

// PrimaryImageURL returns the image the draft marks as primary, clamping the
// index into the list.
func (v VehicleFormData) PrimaryImageURL() string {
	if len(v.ImageURLs) == 0 {
		return ""
	}
	idx := v.PrimaryImageIndex
	if idx < 0 || idx >= len(v.ImageURLs) {
		idx = 0
	}
	return v.ImageURLs[idx]
}
