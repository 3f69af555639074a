package usecase

import "testing"

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "12-digit UPC-A unchanged", input: "036000291452", want: "036000291452"},
		{name: "EAN-13 with leading zero", input: "0036000291452", want: "036000291452"},
		{name: "dashes stripped", input: "0-36000-29145-2", want: "036000291452"},
		{name: "spaces stripped", input: "036 000 291 452", want: "036000291452"},
		{name: "13 digits without leading zero", input: "4006381333931", want: ""},
		{name: "too short", input: "12345", want: ""},
		{name: "14-digit GTIN", input: "00036000291452", want: ""},
		{name: "empty", input: "", want: ""},
		{name: "non-numeric", input: "not-a-upc", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeIdentifier(tt.input); got != tt.want {
				t.Errorf("NormalizeIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdentifierRoundTrip(t *testing.T) {
	// A canonical 12-digit UPC-A passes through unchanged.
	upc := "123456789012"
	if got := NormalizeIdentifier(NormalizeIdentifier(upc)); got != upc {
		t.Errorf("round trip = %q, want %q", got, upc)
	}
}
