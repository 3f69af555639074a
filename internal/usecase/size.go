package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dealradar/backend/internal/domain"
)

// DefaultSizeRatioThreshold is the minimum mass ratio for two size
// signatures to be considered the same product size.
const DefaultSizeRatioThreshold = 0.85

// unitToGrams converts recognized weight/volume units to grams. Volumes
// use a 1 g/ml density approximation; close enough for compatibility
// checks, which only compare ratios.
var unitToGrams = map[string]float64{
	"lb": 453.59237, "lbs": 453.59237,
	"pound": 453.59237, "pounds": 453.59237,
	"oz": 28.349523125, "ounce": 28.349523125, "ounces": 28.349523125,
	"kg": 1000,
	"g":  1, "gram": 1, "grams": 1,
	"ml": 1,
	"l":  1000, "liter": 1000, "liters": 1000,
}

// Compiled once; titles are scanned on every scoring attempt.
var (
	// Quantity with unit, e.g. "5 lb", "16.9 fl oz", "750ml"
	sizeQuantityRegex = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:fl\.?\s*)?(lbs?|pounds?|ounces?|oz|kg|grams?|g|ml|liters?|l)\b`)

	// Pack counts in their three common spellings
	packOfRegex = regexp.MustCompile(`(?i)\bpack\s*of\s*(\d+)\b`)
	countRegex  = regexp.MustCompile(`(?i)\b(\d+)\s*(?:ct|count)\b`)
	nPackRegex  = regexp.MustCompile(`(?i)\b(\d+)[-\s]?pack\b`)
)

// ExtractSize parses weight/volume and pack-count signals out of a title
// and canonicalizes them to grams x count. When several quantities match,
// the largest gram value wins: titles mention incidental small quantities
// ("2 oz sample included") alongside the primary size. Likewise the
// largest pack count wins. No quantity match yields nil grams, count 1,
// meaning "size unknown, do not block on it".
func ExtractSize(title string) domain.SizeSignature {
	sig := domain.SizeSignature{Count: 1}

	for _, m := range sizeQuantityRegex.FindAllStringSubmatch(title, -1) {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		factor, ok := unitToGrams[strings.ToLower(m[2])]
		if !ok {
			continue
		}
		grams := value * factor
		if sig.Grams == nil || grams > *sig.Grams {
			sig.Grams = &grams
		}
	}

	for _, re := range []*regexp.Regexp{packOfRegex, countRegex, nPackRegex} {
		for _, m := range re.FindAllStringSubmatch(title, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil || n <= 0 {
				continue
			}
			if n > sig.Count {
				sig.Count = n
			}
		}
	}

	return sig
}

// SizesCompatible reports whether two size signatures plausibly describe
// the same product size. When either side failed to parse, it returns
// true: absence of a size signal must defer to the other match signals,
// not veto them. Otherwise the total masses must be within threshold of
// each other (ratio of smaller to larger).
func SizesCompatible(a, b domain.SizeSignature, threshold float64) bool {
	if a.Grams == nil || b.Grams == nil {
		return true
	}
	massA := a.TotalMass()
	massB := b.TotalMass()
	if massA <= 0 || massB <= 0 {
		return true
	}
	ratio := massA / massB
	if massB < massA {
		ratio = massB / massA
	}
	return ratio >= threshold
}
