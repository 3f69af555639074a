package domain

import (
	"context"
	"time"
)

// ListingRepository persists listings keyed by (Source, ExternalID).
type ListingRepository interface {
	// Upsert creates or supersedes a listing. Returns true when the
	// listing did not exist before. Fields the new observation leaves
	// empty (identifier, category, enrichment timestamp) survive from
	// the previous observation.
	Upsert(ctx context.Context, listing *Listing) (created bool, err error)

	// Get retrieves one listing.
	Get(ctx context.Context, source Source, externalID string) (*Listing, error)

	// ListBySource returns up to limit listings for a source, optionally
	// filtered by category. Empty category means no filter; limit <= 0
	// means no limit.
	ListBySource(ctx context.Context, source Source, category string, limit int) ([]Listing, error)

	// ListMissingIdentifier returns listings without a canonical
	// identifier whose last enrichment attempt is absent or older than
	// retryAfter, for the enrichment recrawler.
	ListMissingIdentifier(ctx context.Context, source Source, retryAfter time.Time, limit int) ([]Listing, error)

	// Count returns total listings and how many carry an identifier.
	Count(ctx context.Context, source Source) (total, withIdentifier int, err error)
}

// CacheRepository is the staleness-aware lookup cache keyed by
// (KeyType, KeyValue). Writes are idempotent upserts, last-write-wins.
type CacheRepository interface {
	// Get returns the entry regardless of age, or ErrCacheMiss.
	Get(ctx context.Context, keyType KeyType, keyValue string) (*CacheEntry, error)

	// GetFresh returns the entry only when checked within maxAge;
	// a stale entry yields ErrCacheMiss so the caller refreshes it.
	GetFresh(ctx context.Context, keyType KeyType, keyValue string, maxAge time.Duration) (*CacheEntry, error)

	// Put upserts the entry and stamps CheckedAt with the current time.
	Put(ctx context.Context, entry *CacheEntry) error

	// Count returns total entries and how many are recorded misses.
	Count(ctx context.Context) (total, misses int, err error)
}

// SearchProvider is the external product-search collaborator, already
// adapted to typed candidate records.
type SearchProvider interface {
	// Search runs a retailer search and returns adapted candidates.
	Search(ctx context.Context, source Source, query string) ([]Candidate, error)

	// ProductDetail fetches barcode identifiers and category for one
	// listing, used for identifier enrichment.
	ProductDetail(ctx context.Context, source Source, externalID string) (*ProductDetail, error)
}
