package enums

import "fmt"

// DealStatus tracks a deal from first draft through closing.
type DealStatus string

const (
	DealStatusOpen      DealStatus = "open"
	DealStatusPending   DealStatus = "pending"
	DealStatusWon       DealStatus = "won"
	DealStatusLost      DealStatus = "lost"
	DealStatusCancelled DealStatus = "cancelled"
)

var validDealStatuses = []DealStatus{
	DealStatusOpen,
	DealStatusPending,
	DealStatusWon,
	DealStatusLost,
	DealStatusCancelled,
}

// String implements fmt.Stringer.
func (d DealStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DealStatus.
func (d DealStatus) IsValid() bool {
	for _, candidate := range validDealStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDealStatus converts raw input into a DealStatus.
func ParseDealStatus(value string) (DealStatus, error) {
	for _, candidate := range validDealStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deal status %q", value)
}
