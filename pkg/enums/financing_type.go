package enums

import "fmt"

// FinancingType distinguishes cash purchases from financed ones. Financing
// detail fields on a deal are only required when the type is not cash.
type FinancingType string

const (
	FinancingTypeCash    FinancingType = "cash"
	FinancingTypeFinance FinancingType = "finance"
	FinancingTypeLease   FinancingType = "lease"
)

var validFinancingTypes = []FinancingType{
	FinancingTypeCash,
	FinancingTypeFinance,
	FinancingTypeLease,
}

// String implements fmt.Stringer.
func (f FinancingType) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FinancingType.
func (f FinancingType) IsValid() bool {
	for _, candidate := range validFinancingTypes {
		if candidate == f {
			return true
		}
	}
	return false
}

// RequiresLender reports whether deals of this type need a lending institution.
func (f FinancingType) RequiresLender() bool {
	return f != "" && f != FinancingTypeCash
}

// ParseFinancingType converts raw input into a FinancingType.
func ParseFinancingType(value string) (FinancingType, error) {
	for _, candidate := range validFinancingTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid financing type %q", value)
}
