package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// KeyType distinguishes how a cached counterpart lookup was keyed.
type KeyType string

const (
	// KeyIdentifier keys a lookup by canonical UPC-A.
	KeyIdentifier KeyType = "identifier"

	// KeyInternalID keys a lookup by the primary listing's external id,
	// used when no identifier is known and matching fell back to title.
	KeyInternalID KeyType = "internal_id"
)

// CounterpartSummary is the matched counterpart stored in a cache hit.
type CounterpartSummary struct {
	ExternalID string           `json:"externalId"`
	Title      string           `json:"title"`
	Brand      string           `json:"brand,omitempty"`
	Link       string           `json:"link,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
}

// CacheEntry is a memoized external-lookup outcome. Exactly one entry
// exists per (KeyType, KeyValue); a new lookup overwrites the old entry.
// Misses are recorded too, so a failed lookup is not repeated before the
// caller's staleness window elapses. The cache never expires entries on
// its own; staleness is enforced by the caller.
type CacheEntry struct {
	KeyType    KeyType             `json:"keyType"`
	KeyValue   string              `json:"keyValue"`
	Payload    *CounterpartSummary `json:"payload,omitempty"`
	IsMiss     bool                `json:"isMiss"`
	CheckedAt  time.Time           `json:"checkedAt"`
	MatchScore *float64            `json:"matchScore,omitempty"` // set only for fuzzy-matched payloads
}
