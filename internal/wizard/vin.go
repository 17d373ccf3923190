package wizard

const vinLength = 17

// ValidVIN reports whether value is a well-formed VIN: exactly 17 characters
// from [A-HJ-NPR-Z0-9], case-insensitive. I, O and Q are excluded by the
// standard because they read as 1 and 0.
func ValidVIN(value string) bool {
	if len(value) != vinLength {
		return false
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'Z':
			if c == 'I' || c == 'O' || c == 'Q' {
				return false
			}
		case c >= 'a' && c <= 'z':
			if c == 'i' || c == 'o' || c == 'q' {
				return false
			}
		default:
			return false
		}
	}
	return true
}
