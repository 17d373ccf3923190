package enums

import "fmt"

// OdometerUnit is the unit a vehicle's mileage was recorded in.
type OdometerUnit string

const (
	OdometerUnitMiles      OdometerUnit = "mi"
	OdometerUnitKilometers OdometerUnit = "km"
)

var validOdometerUnits = []OdometerUnit{
	OdometerUnitMiles,
	OdometerUnitKilometers,
}

// String implements fmt.Stringer.
func (o OdometerUnit) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OdometerUnit.
func (o OdometerUnit) IsValid() bool {
	for _, candidate := range validOdometerUnits {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOdometerUnit converts raw input into an OdometerUnit.
func ParseOdometerUnit(value string) (OdometerUnit, error) {
	for _, candidate := range validOdometerUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid odometer unit %q", value)
}
