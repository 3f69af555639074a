package domain

import "github.com/shopspring/decimal"

// Basis records which price the savings comparison used.
type Basis string

const (
	// BasisProduct compares whole-listing prices.
	BasisProduct Basis = "product"

	// BasisUnit compares per-gram unit prices; used when both sides'
	// sizes parsed and are compatible.
	BasisUnit Basis = "unit"
)

// MatchCandidate is the scored outcome for one candidate pair. It is
// ephemeral, produced per scoring attempt.
type MatchCandidate struct {
	Candidate      Candidate `json:"candidate"`
	TextSimilarity float64   `json:"textSimilarity"` // 0-100
	AdjustedScore  float64   `json:"adjustedScore"`  // similarity after sponsored/short-title adjustment
	BrandOK        bool      `json:"brandOk"`
	SizeOK         bool      `json:"sizeOk"`
	Accepted       bool      `json:"accepted"`
}

// Deal is an accepted cross-retailer price gap: the primary listing is
// cheaper than its counterpart by at least the caller's thresholds.
// SavingsAbs is always in whole-listing dollars, even on unit basis;
// SavingsPct is the fraction saved on the comparison basis.
type Deal struct {
	Primary     Listing         `json:"primary"`
	Counterpart Listing         `json:"counterpart"`
	SavingsAbs  decimal.Decimal `json:"savingsAbs"`
	SavingsPct  float64         `json:"savingsPct"`
	Basis       Basis           `json:"basis"`
	MatchScore  *float64        `json:"matchScore,omitempty"`
}
