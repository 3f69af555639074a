package usecase

import (
	"regexp"
	"strings"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRunRegex = regexp.MustCompile(`[^a-z0-9]+`)
	alphanumericOnlyRegex   = regexp.MustCompile(`[^a-z0-9]`)
)

// titleStopwords are connective words and generic unit/packaging words
// dropped before similarity comparison. They carry no identity signal
// and only dilute the ratio.
var titleStopwords = map[string]bool{
	// Connectives
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "by": true, "from": true, "per": true,
	// Unit words
	"oz": true, "fl": true, "lb": true, "lbs": true, "ml": true,
	"g": true, "kg": true, "gram": true, "grams": true,
	"l": true, "liter": true, "liters": true,
	"ounce": true, "ounces": true, "pound": true, "pounds": true,
	// Packaging words
	"pack": true, "packs": true, "pk": true, "count": true, "ct": true,
	"each": true, "ea": true, "piece": true, "pieces": true,
	"size": true, "value": true,
}

// NormalizeTitle canonicalizes a free-text title for similarity
// comparison: lower-case, every non-alphanumeric run collapsed to a
// single space, stopwords dropped. Deterministic and idempotent.
func NormalizeTitle(text string) string {
	lower := strings.ToLower(text)
	spaced := nonAlphanumericRunRegex.ReplaceAllString(lower, " ")
	words := strings.Fields(spaced)

	kept := words[:0]
	for _, w := range words {
		if !titleStopwords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// normalizeBrand reduces a brand to its alphanumeric lower-case core,
// so "Bob's Red Mill" and "bobs red mill" compare equal.
func normalizeBrand(brand string) string {
	return alphanumericOnlyRegex.ReplaceAllString(strings.ToLower(brand), "")
}

// BrandMatches reports whether the primary listing's brand appears in a
// candidate title, comparing alphanumeric-only lower-case forms so
// spacing and punctuation differences don't block the gate.
func BrandMatches(brand, candidateTitle string) bool {
	key := normalizeBrand(brand)
	if key == "" {
		return true
	}
	return strings.Contains(normalizeBrand(candidateTitle), key)
}

// SimilarityRatio computes a normalized sequence-similarity ratio in the
// range 0-100 between two already-normalized strings: 100 minus the edit
// distance as a fraction of the longer string.
func SimilarityRatio(a, b string) float64 {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	la := len([]rune(a))
	lb := len([]rune(b))
	longer := la
	if lb > longer {
		longer = lb
	}
	dist := levenshteinDistance(a, b)
	return (1 - float64(dist)/float64(longer)) * 100
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	// Use two rows instead of the full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
