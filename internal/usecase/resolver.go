package usecase

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dealradar/backend/internal/domain"
)

// ResolverConfig bounds one counterpart-refresh run.
type ResolverConfig struct {
	StalenessWindow  time.Duration // cache entries younger than this are not refetched
	MaxExternalCalls int           // provider call budget per run
	MaxItems         int           // listings considered per run
	Workers          int           // concurrent resolutions; pacing still applies per call
}

// RefreshReport accumulates per-item outcomes for one run. Per-item
// failures never abort the batch.
type RefreshReport struct {
	RunID      string `json:"runId"`
	Considered int    `json:"considered"`
	Cached     int    `json:"cached"`  // fresh cache entry, no fetch needed
	Fetched    int    `json:"fetched"` // provider fetched, match cached
	Misses     int    `json:"misses"`  // provider fetched, no acceptable candidate
	Errors     int    `json:"errors"`  // upstream unavailable, recorded as miss
	Skipped    int    `json:"skipped"` // unpriced, or left stale after budget ran out
}

// Resolver joins primary listings to counterpart candidates through the
// lookup cache and the search provider. Within one listing's resolution
// the identifier-keyed lookup is always attempted before title fallback,
// and never both.
type Resolver struct {
	listings domain.ListingRepository
	cache    domain.CacheRepository
	provider domain.SearchProvider
	scorer   *Scorer
	cfg      ResolverConfig
	debug    bool
}

// NewResolver creates a resolver, filling zero config fields with defaults.
func NewResolver(
	listings domain.ListingRepository,
	cache domain.CacheRepository,
	provider domain.SearchProvider,
	scorer *Scorer,
	cfg ResolverConfig,
) *Resolver {
	if cfg.StalenessWindow <= 0 {
		cfg.StalenessWindow = 72 * time.Hour
	}
	if cfg.MaxExternalCalls <= 0 {
		cfg.MaxExternalCalls = 25
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 200
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Resolver{
		listings: listings,
		cache:    cache,
		provider: provider,
		scorer:   scorer,
		cfg:      cfg,
	}
}

// SetDebug enables per-item resolution logging.
func (r *Resolver) SetDebug(enabled bool) {
	r.debug = enabled
}

// LookupKey returns the cache key for a primary listing: identifier when
// one is known, internal id otherwise.
func LookupKey(l *domain.Listing) (domain.KeyType, string) {
	if l.Identifier != "" {
		return domain.KeyIdentifier, l.Identifier
	}
	return domain.KeyInternalID, l.ExternalID
}

// RefreshCounterparts resolves counterpart candidates for primary
// listings whose cache entries are absent or stale, within the run's
// call and item budgets. Listings left unresolved when the budget runs
// out simply stay stale for the next run.
func (r *Resolver) RefreshCounterparts(ctx context.Context, category string) (*RefreshReport, error) {
	primaries, err := r.listings.ListBySource(ctx, domain.SourcePrimary, category, r.cfg.MaxItems)
	if err != nil {
		return nil, err
	}

	report := &RefreshReport{RunID: uuid.NewString()}
	var calls int64

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, r.cfg.Workers)
	)

	for i := range primaries {
		listing := primaries[i]
		mu.Lock()
		report.Considered++
		mu.Unlock()

		if !listing.HasPrice() {
			mu.Lock()
			report.Skipped++
			mu.Unlock()
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			outcome := r.resolveOne(ctx, &listing, &calls)
			mu.Lock()
			switch outcome {
			case outcomeCached:
				report.Cached++
			case outcomeFetched:
				report.Fetched++
			case outcomeMiss:
				report.Misses++
			case outcomeError:
				report.Errors++
			case outcomeSkipped:
				report.Skipped++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if r.debug {
		log.Printf("[ENGINE] run %s: considered=%d cached=%d fetched=%d misses=%d errors=%d skipped=%d",
			report.RunID, report.Considered, report.Cached, report.Fetched,
			report.Misses, report.Errors, report.Skipped)
	}
	return report, nil
}

type resolveOutcome int

const (
	outcomeCached resolveOutcome = iota
	outcomeFetched
	outcomeMiss
	outcomeError
	outcomeSkipped
)

func (r *Resolver) resolveOne(ctx context.Context, listing *domain.Listing, calls *int64) resolveOutcome {
	keyType, keyValue := LookupKey(listing)

	_, err := r.cache.GetFresh(ctx, keyType, keyValue, r.cfg.StalenessWindow)
	if err == nil {
		return outcomeCached
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		// Store trouble, not a stale entry; don't burn provider budget
		// on a lookup whose result we couldn't save anyway.
		if r.debug {
			log.Printf("[ENGINE] cache read %s/%s failed: %v", keyType, keyValue, err)
		}
		return outcomeError
	}

	// Budget check happens only once a fetch is actually needed, so
	// cached items never consume budget.
	if atomic.AddInt64(calls, 1) > int64(r.cfg.MaxExternalCalls) {
		return outcomeSkipped
	}

	var query string
	if keyType == domain.KeyIdentifier {
		query = keyValue
	} else {
		query = titleQuery(listing)
	}

	candidates, err := r.provider.Search(ctx, domain.SourceCounterpart, query)
	if err != nil {
		if r.debug {
			log.Printf("[ENGINE] lookup %s/%s failed: %v", keyType, keyValue, err)
		}
		// Record the failed attempt as a miss so the next run does not
		// hot-loop on the same key before the staleness window elapses.
		r.putMiss(ctx, keyType, keyValue)
		return outcomeError
	}

	var (
		payload *domain.CounterpartSummary
		score   *float64
	)
	if keyType == domain.KeyIdentifier {
		// Identifier equality is ground truth: first valid priced
		// result wins unconditionally, no text scoring.
		cand, err := FirstPriced(candidates)
		if err == nil {
			payload = summarize(cand)
		}
	} else {
		best, err := r.scorer.BestMatch(listing.Title, listing.Brand, candidates)
		if err == nil {
			payload = summarize(&best.Candidate)
			s := best.AdjustedScore
			score = &s
		}
	}

	if payload == nil {
		r.putMiss(ctx, keyType, keyValue)
		return outcomeMiss
	}

	entry := &domain.CacheEntry{
		KeyType:    keyType,
		KeyValue:   keyValue,
		Payload:    payload,
		MatchScore: score,
	}
	if err := r.cache.Put(ctx, entry); err != nil {
		if r.debug {
			log.Printf("[ENGINE] cache put %s/%s failed: %v", keyType, keyValue, err)
		}
		return outcomeError
	}
	return outcomeFetched
}

func (r *Resolver) putMiss(ctx context.Context, keyType domain.KeyType, keyValue string) {
	entry := &domain.CacheEntry{KeyType: keyType, KeyValue: keyValue, IsMiss: true}
	if err := r.cache.Put(ctx, entry); err != nil && r.debug {
		log.Printf("[ENGINE] cache put miss %s/%s failed: %v", keyType, keyValue, err)
	}
}

func summarize(cand *domain.Candidate) *domain.CounterpartSummary {
	return &domain.CounterpartSummary{
		ExternalID: cand.ExternalID,
		Title:      cand.Title,
		Brand:      cand.Brand,
		Link:       cand.Link,
		Price:      cand.Price,
	}
}

// titleQuery builds a counterpart search query from a listing's title,
// prepending the brand when the title doesn't already carry it.
func titleQuery(l *domain.Listing) string {
	query := l.Title
	if l.Brand != "" && !BrandMatches(l.Brand, l.Title) {
		query = l.Brand + " " + query
	}
	return query
}
