package usecase

import "strings"

// NormalizeIdentifier canonicalizes GTIN/EAN/UPC variants to 12-digit
// UPC-A where derivable. A 13-digit value with a leading zero is an
// EAN-13 encoding of a UPC-A and drops the zero. Any other length is
// ambiguous or not a UPC, and yields "" so callers don't guess.
func NormalizeIdentifier(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case len(digits) == 12:
		return digits
	case len(digits) == 13 && digits[0] == '0':
		return digits[1:]
	default:
		return ""
	}
}
