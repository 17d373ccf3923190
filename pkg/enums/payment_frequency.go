package enums

import "fmt"

// PaymentFrequency is how often a financed deal is paid down.
type PaymentFrequency string

const (
	PaymentFrequencyMonthly   PaymentFrequency = "monthly"
	PaymentFrequencyBiweekly  PaymentFrequency = "biweekly"
	PaymentFrequencyWeekly    PaymentFrequency = "weekly"
	PaymentFrequencySemiMonth PaymentFrequency = "semimonthly"
)

var validPaymentFrequencies = []PaymentFrequency{
	PaymentFrequencyMonthly,
	PaymentFrequencyBiweekly,
	PaymentFrequencyWeekly,
	PaymentFrequencySemiMonth,
}

// String implements fmt.Stringer.
func (p PaymentFrequency) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentFrequency.
func (p PaymentFrequency) IsValid() bool {
	for _, candidate := range validPaymentFrequencies {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentFrequency converts raw input into a PaymentFrequency.
func ParsePaymentFrequency(value string) (PaymentFrequency, error) {
	for _, candidate := range validPaymentFrequencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment frequency %q", value)
}
