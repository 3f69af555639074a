package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies which retailer a listing was observed on.
type Source string

const (
	// SourcePrimary is the retailer whose listings we want to find deals for.
	SourcePrimary Source = "primary"

	// SourceCounterpart is the retailer we compare prices against.
	SourceCounterpart Source = "counterpart"
)

// Listing is a product observation from one retailer. It is created or
// refreshed on every ingestion pass; later observations of the same
// (Source, ExternalID) supersede earlier ones.
type Listing struct {
	Source     Source           `json:"source"`
	ExternalID string           `json:"externalId"`
	Title      string           `json:"title"`
	Brand      string           `json:"brand,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	Link       string           `json:"link,omitempty"`
	Category   string           `json:"category,omitempty"`
	Identifier string           `json:"identifier,omitempty"` // canonical 12-digit UPC-A
	Sponsored  bool             `json:"sponsored,omitempty"`
	ObservedAt time.Time        `json:"observedAt"`
	EnrichedAt time.Time        `json:"enrichedAt,omitempty"` // last identifier-enrichment attempt
}

// HasPrice reports whether the listing carries a parseable positive price.
func (l *Listing) HasPrice() bool {
	return l.Price != nil && l.Price.IsPositive()
}

// SizeSignature is the size/pack signal derived from a listing title.
// A nil Grams means the size could not be parsed; callers must not treat
// that as zero mass.
type SizeSignature struct {
	Grams *float64
	Count int
}

// TotalMass returns grams times pack count, or 0 when grams is unknown.
func (s SizeSignature) TotalMass() float64 {
	if s.Grams == nil {
		return 0
	}
	count := s.Count
	if count < 1 {
		count = 1
	}
	return *s.Grams * float64(count)
}

// Candidate is a provider search result after boundary adaptation,
// not yet accepted as a match.
type Candidate struct {
	ExternalID string           `json:"externalId"`
	Title      string           `json:"title"`
	Brand      string           `json:"brand,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	Link       string           `json:"link,omitempty"`
	Identifier string           `json:"identifier,omitempty"`
	Sponsored  bool             `json:"sponsored,omitempty"`
}

// ProductDetail is the subset of a provider product-detail payload the
// engine cares about: barcode identifiers and category.
type ProductDetail struct {
	Identifier string `json:"identifier,omitempty"` // raw UPC/GTIN/EAN as reported
	Category   string `json:"category,omitempty"`
}
