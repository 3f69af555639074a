// Package store provides the durable-store implementations for listings
// and lookup-cache entries: an in-memory store for tests and single-node
// runs, and a Redis store for anything that must survive a restart.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/dealradar/backend/internal/domain"
)

func listingKey(source domain.Source, externalID string) string {
	return string(source) + "|" + externalID
}

func entryKey(keyType domain.KeyType, keyValue string) string {
	return string(keyType) + "|" + keyValue
}

// MemoryListings is a thread-safe in-memory ListingRepository.
type MemoryListings struct {
	mu   sync.RWMutex
	data map[string]domain.Listing
}

// NewMemoryListings creates an empty in-memory listing store.
func NewMemoryListings() *MemoryListings {
	return &MemoryListings{data: make(map[string]domain.Listing)}
}

// Upsert creates or supersedes a listing. Empty identifier, category and
// enrichment timestamp on the new observation survive from the previous
// one, mirroring a partial document update.
func (m *MemoryListings) Upsert(ctx context.Context, listing *domain.Listing) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := listingKey(listing.Source, listing.ExternalID)
	merged := *listing
	prev, exists := m.data[key]
	if exists {
		mergeListing(&merged, &prev)
	}
	m.data[key] = merged
	return !exists, nil
}

// mergeListing carries forward fields the new observation leaves empty.
func mergeListing(next, prev *domain.Listing) {
	if next.Identifier == "" {
		next.Identifier = prev.Identifier
	}
	if next.Category == "" {
		next.Category = prev.Category
	}
	if next.Brand == "" {
		next.Brand = prev.Brand
	}
	if next.EnrichedAt.IsZero() {
		next.EnrichedAt = prev.EnrichedAt
	}
	if next.ObservedAt.IsZero() {
		next.ObservedAt = prev.ObservedAt
	}
}

// Get retrieves one listing.
func (m *MemoryListings) Get(ctx context.Context, source domain.Source, externalID string) (*domain.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	listing, ok := m.data[listingKey(source, externalID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := listing
	return &copied, nil
}

// ListBySource returns up to limit listings for a source.
func (m *MemoryListings) ListBySource(ctx context.Context, source domain.Source, category string, limit int) ([]domain.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Listing
	for _, listing := range m.data {
		if listing.Source != source {
			continue
		}
		if category != "" && listing.Category != category {
			continue
		}
		out = append(out, listing)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ListMissingIdentifier returns listings without an identifier not
// enriched since retryAfter.
func (m *MemoryListings) ListMissingIdentifier(ctx context.Context, source domain.Source, retryAfter time.Time, limit int) ([]domain.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Listing
	for _, listing := range m.data {
		if listing.Source != source || listing.Identifier != "" {
			continue
		}
		if !listing.EnrichedAt.IsZero() && listing.EnrichedAt.After(retryAfter) {
			continue
		}
		out = append(out, listing)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Count returns total listings and how many carry an identifier.
func (m *MemoryListings) Count(ctx context.Context, source domain.Source) (int, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total, withID := 0, 0
	for _, listing := range m.data {
		if listing.Source != source {
			continue
		}
		total++
		if listing.Identifier != "" {
			withID++
		}
	}
	return total, withID, nil
}

// MemoryCache is a thread-safe in-memory CacheRepository. Entries never
// expire on their own; staleness is enforced by GetFresh's caller-given
// window.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]domain.CacheEntry
	now  func() time.Time
}

// NewMemoryCache creates an empty in-memory lookup cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]domain.CacheEntry),
		now:  time.Now,
	}
}

// Get returns the entry regardless of age.
func (c *MemoryCache) Get(ctx context.Context, keyType domain.KeyType, keyValue string) (*domain.CacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[entryKey(keyType, keyValue)]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	copied := entry
	return &copied, nil
}

// GetFresh returns the entry only when checked within maxAge.
func (c *MemoryCache) GetFresh(ctx context.Context, keyType domain.KeyType, keyValue string, maxAge time.Duration) (*domain.CacheEntry, error) {
	entry, err := c.Get(ctx, keyType, keyValue)
	if err != nil {
		return nil, err
	}
	if c.now().Sub(entry.CheckedAt) > maxAge {
		return nil, domain.ErrCacheMiss
	}
	return entry, nil
}

// Put upserts by (KeyType, KeyValue), last-write-wins, and stamps
// CheckedAt so the entry reflects the most recent lookup attempt.
func (c *MemoryCache) Put(ctx context.Context, entry *domain.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := *entry
	stored.CheckedAt = c.now().UTC()
	if stored.IsMiss {
		stored.Payload = nil
		stored.MatchScore = nil
	}
	c.data[entryKey(entry.KeyType, entry.KeyValue)] = stored
	entry.CheckedAt = stored.CheckedAt
	return nil
}

// Count returns total entries and recorded misses.
func (c *MemoryCache) Count(ctx context.Context) (int, int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	misses := 0
	for _, entry := range c.data {
		if entry.IsMiss {
			misses++
		}
	}
	return len(c.data), misses, nil
}

// Size returns the current number of cached entries (for tests/stats).
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
