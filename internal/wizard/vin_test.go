package wizard

import "testing"

func TestValidVIN(t *testing.T) {
	cases := []struct {
		name string
		vin  string
		want bool
	}{
		{"valid 17 chars", "1FA6P8F99G5123456", true},
		{"valid lowercase", "1fa6p8f99g5123456", true},
		{"too short", "1FA6P8F99G512345", false},
		{"too long", "1FA6P8F99G51234567", false},
		{"empty", "", false},
		{"contains I", "1FA6P8F99G512345I", false},
		{"contains O", "OFA6P8F99G5123456", false},
		{"contains Q", "1FA6P8F99Q5123456", false},
		{"contains lowercase q", "1fa6p8f99q5123456", false},
		{"contains symbol", "1FA6P8F99G51234-6", false},
		{"contains space", "1FA6P8F99G512345 ", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidVIN(tc.vin); got != tc.want {
				t.Fatalf("ValidVIN(%q) = %v, want %v", tc.vin, got, tc.want)
			}
		})
	}
}
