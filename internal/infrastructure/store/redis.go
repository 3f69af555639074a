package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dealradar/backend/internal/domain"
)

// Redis key layout:
//
//	listings:<source>            hash: external id -> listing JSON
//	lookup:<key_type>:<key_value>  string: cache entry JSON
//
// Cache entries carry no Redis TTL: staleness is enforced by the
// caller's window, never by the store.

func redisListingHash(source domain.Source) string {
	return "listings:" + string(source)
}

func redisEntryKey(keyType domain.KeyType, keyValue string) string {
	return fmt.Sprintf("lookup:%s:%s", keyType, keyValue)
}

// RedisListings is a Redis-backed ListingRepository.
type RedisListings struct {
	rdb *redis.Client
}

// NewRedisListings creates a listing store over an existing client.
func NewRedisListings(rdb *redis.Client) *RedisListings {
	return &RedisListings{rdb: rdb}
}

// Upsert creates or supersedes a listing, preserving previously known
// identifier, category, brand and enrichment timestamp when the new
// observation leaves them empty.
func (r *RedisListings) Upsert(ctx context.Context, listing *domain.Listing) (bool, error) {
	hash := redisListingHash(listing.Source)
	merged := *listing

	raw, err := r.rdb.HGet(ctx, hash, listing.ExternalID).Result()
	exists := err == nil
	if err != nil && err != redis.Nil {
		return false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if exists {
		var prev domain.Listing
		if err := json.Unmarshal([]byte(raw), &prev); err == nil {
			mergeListing(&merged, &prev)
		}
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return false, err
	}
	if err := r.rdb.HSet(ctx, hash, listing.ExternalID, data).Err(); err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return !exists, nil
}

// Get retrieves one listing.
func (r *RedisListings) Get(ctx context.Context, source domain.Source, externalID string) (*domain.Listing, error) {
	raw, err := r.rdb.HGet(ctx, redisListingHash(source), externalID).Result()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	var listing domain.Listing
	if err := json.Unmarshal([]byte(raw), &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// ListBySource returns up to limit listings for a source.
func (r *RedisListings) ListBySource(ctx context.Context, source domain.Source, category string, limit int) ([]domain.Listing, error) {
	all, err := r.rdb.HGetAll(ctx, redisListingHash(source)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	var out []domain.Listing
	for _, raw := range all {
		var listing domain.Listing
		if err := json.Unmarshal([]byte(raw), &listing); err != nil {
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
func (r *RedisListings) ListMissingIdentifier(ctx context.Context, source domain.Source, retryAfter time.Time, limit int) ([]domain.Listing, error) {
	all, err := r.rdb.HGetAll(ctx, redisListingHash(source)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	var out []domain.Listing
	for _, raw := range all {
		var listing domain.Listing
		if err := json.Unmarshal([]byte(raw), &listing); err != nil {
			continue
		}
		if listing.Identifier != "" {
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
func (r *RedisListings) Count(ctx context.Context, source domain.Source) (int, int, error) {
	all, err := r.rdb.HGetAll(ctx, redisListingHash(source)).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	withID := 0
	for _, raw := range all {
		var listing domain.Listing
		if err := json.Unmarshal([]byte(raw), &listing); err != nil {
			continue
		}
		if listing.Identifier != "" {
			withID++
		}
	}
	return len(all), withID, nil
}

// RedisCache is a Redis-backed CacheRepository.
type RedisCache struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRedisCache creates a lookup cache over an existing client.
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb, now: time.Now}
}

// Get returns the entry regardless of age.
func (c *RedisCache) Get(ctx context.Context, keyType domain.KeyType, keyValue string) (*domain.CacheEntry, error) {
	raw, err := c.rdb.Get(ctx, redisEntryKey(keyType, keyValue)).Result()
	if err == redis.Nil {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	var entry domain.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetFresh returns the entry only when checked within maxAge.
func (c *RedisCache) GetFresh(ctx context.Context, keyType domain.KeyType, keyValue string, maxAge time.Duration) (*domain.CacheEntry, error) {
	entry, err := c.Get(ctx, keyType, keyValue)
	if err != nil {
		return nil, err
	}
	if c.now().Sub(entry.CheckedAt) > maxAge {
		return nil, domain.ErrCacheMiss
	}
	return entry, nil
}

// Put upserts by (KeyType, KeyValue), last-write-wins.
func (c *RedisCache) Put(ctx context.Context, entry *domain.CacheEntry) error {
	stored := *entry
	stored.CheckedAt = c.now().UTC()
	if stored.IsMiss {
		stored.Payload = nil
		stored.MatchScore = nil
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, redisEntryKey(entry.KeyType, entry.KeyValue), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	entry.CheckedAt = stored.CheckedAt
	return nil
}

// Count scans lookup keys and returns total entries and recorded misses.
func (c *RedisCache) Count(ctx context.Context) (int, int, error) {
	total, misses := 0, 0
	iter := c.rdb.Scan(ctx, 0, "lookup:*", 0).Iterator()
	for iter.Next(ctx) {
		total++
		raw, err := c.rdb.Get(ctx, iter.Val()).Result()
		if err != nil {
			continue
		}
		var entry domain.CacheEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		if entry.IsMiss {
			misses++
		}
	}
	if err := iter.Err(); err != nil {
		return total, misses, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return total, misses, nil
}
