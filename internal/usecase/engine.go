package usecase

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dealradar/backend/internal/domain"
)

// DealConfig holds thresholds and limits for one deal computation.
type DealConfig struct {
	MinAbs          decimal.Decimal // minimum absolute savings in listing-level dollars
	MinPct          float64         // minimum fractional savings, e.g. 0.20
	MinScore        float64         // minimum cached match score for fuzzy matches
	SizeRatioMin    float64         // mass ratio required to switch to unit basis
	StalenessWindow time.Duration   // maximum counterpart cache age
	Limit           int             // truncation applied only after full ranking
}

// Engine joins primary listings to their cached counterparts, computes
// savings, applies thresholds and ranks the results.
type Engine struct {
	cache domain.CacheRepository
	debug bool
}

// NewEngine creates a deal engine over a lookup cache.
func NewEngine(cache domain.CacheRepository) *Engine {
	return &Engine{cache: cache}
}

// SetDebug enables per-listing computation logging.
func (e *Engine) SetDebug(enabled bool) {
	e.debug = enabled
}

// ComputeDeals evaluates every priced primary listing against its cached
// counterpart and returns deals where the primary is cheaper by at least
// MinAbs dollars and MinPct fraction, ranked by absolute savings then
// percentage. The whole input is scanned and ranked before any limit is
// applied, so the result is the true top-N rather than the first N found.
func (e *Engine) ComputeDeals(ctx context.Context, primaries []domain.Listing, cfg DealConfig) ([]domain.Deal, error) {
	if cfg.SizeRatioMin <= 0 {
		cfg.SizeRatioMin = DefaultSizeRatioThreshold
	}
	if cfg.StalenessWindow <= 0 {
		cfg.StalenessWindow = 72 * time.Hour
	}

	deals := make([]domain.Deal, 0, len(primaries))
	for i := range primaries {
		primary := primaries[i]
		if !primary.HasPrice() {
			continue
		}

		keyType, keyValue := LookupKey(&primary)
		entry, err := e.cache.GetFresh(ctx, keyType, keyValue, cfg.StalenessWindow)
		if err != nil || entry.IsMiss || entry.Payload == nil {
			continue
		}
		if entry.MatchScore != nil && *entry.MatchScore < cfg.MinScore {
			continue
		}
		counterpart := entry.Payload
		if counterpart.Price == nil || !counterpart.Price.IsPositive() {
			continue
		}

		deal, ok := e.computeOne(&primary, counterpart, entry.MatchScore, cfg)
		if !ok {
			continue
		}
		deals = append(deals, deal)
	}

	// Full scan first, then rank; truncating mid-scan would return
	// whatever was found first instead of the best savings.
	sort.SliceStable(deals, func(i, j int) bool {
		if c := deals[i].SavingsAbs.Cmp(deals[j].SavingsAbs); c != 0 {
			return c > 0
		}
		return deals[i].SavingsPct > deals[j].SavingsPct
	})

	if cfg.Limit > 0 && len(deals) > cfg.Limit {
		deals = deals[:cfg.Limit]
	}
	if e.debug {
		log.Printf("[DEALS] %d primaries -> %d deals", len(primaries), len(deals))
	}
	return deals, nil
}

// computeOne compares one primary listing against its cached counterpart.
func (e *Engine) computeOne(primary *domain.Listing, counterpart *domain.CounterpartSummary, score *float64, cfg DealConfig) (domain.Deal, bool) {
	primarySize := ExtractSize(primary.Title)
	counterSize := ExtractSize(counterpart.Title)

	basis := domain.BasisProduct
	primaryValue := *primary.Price
	counterValue := *counterpart.Price

	// Unit basis only when both sizes parsed and agree closely enough
	// for a per-gram comparison to be meaningful.
	if primarySize.Grams != nil && counterSize.Grams != nil &&
		SizesCompatible(primarySize, counterSize, cfg.SizeRatioMin) {
		basis = domain.BasisUnit
		primaryValue = primary.Price.DivRound(decimal.NewFromFloat(primarySize.TotalMass()), 8)
		counterValue = counterpart.Price.DivRound(decimal.NewFromFloat(counterSize.TotalMass()), 8)
	}

	if !counterValue.IsPositive() {
		return domain.Deal{}, false
	}

	diff := counterValue.Sub(primaryValue)
	pct, _ := diff.DivRound(counterValue, 8).Float64()

	// Savings are reported in whole-product dollars regardless of basis,
	// so the ranking is comparable across basis kinds.
	savingsAbs := diff
	if basis == domain.BasisUnit {
		savingsAbs = diff.Mul(decimal.NewFromFloat(counterSize.TotalMass()))
	}
	savingsAbs = savingsAbs.Round(2)

	if savingsAbs.LessThan(cfg.MinAbs) || pct < cfg.MinPct || !savingsAbs.IsPositive() {
		return domain.Deal{}, false
	}

	deal := domain.Deal{
		Primary: *primary,
		Counterpart: domain.Listing{
			Source:     domain.SourceCounterpart,
			ExternalID: counterpart.ExternalID,
			Title:      counterpart.Title,
			Brand:      counterpart.Brand,
			Link:       counterpart.Link,
			Price:      counterpart.Price,
		},
		SavingsAbs: savingsAbs,
		SavingsPct: pct,
		Basis:      basis,
		MatchScore: score,
	}
	return deal, true
}
