package enums

import "fmt"

// WizardKind names a multi-step creation flow. Draft slots, submit locks and
// metrics are all namespaced by it.
type WizardKind string

const (
	WizardKindVehicle WizardKind = "vehicle"
	WizardKindDeal    WizardKind = "deal"
)

var validWizardKinds = []WizardKind{
	WizardKindVehicle,
	WizardKindDeal,
}

// String implements fmt.Stringer.
func (w WizardKind) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WizardKind.
func (w WizardKind) IsValid() bool {
	for _, candidate := range validWizardKinds {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWizardKind converts raw input into a WizardKind.
func ParseWizardKind(value string) (WizardKind, error) {
	for _, candidate := range validWizardKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wizard kind %q", value)
}
