package usecase

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/dealradar/backend/internal/domain"
)

// IngestRequest parameterizes one ingestion pass over the primary retailer.
type IngestRequest struct {
	Query             string `json:"query" binding:"required"`
	MaxProducts       int    `json:"maxProducts"`
	EnrichIdentifiers bool   `json:"enrichIdentifiers"`
	MaxDetailCalls    int    `json:"maxDetailCalls"`
}

// IngestReport summarizes one ingestion pass.
type IngestReport struct {
	RunID         string `json:"runId"`
	Processed     int    `json:"processed"`
	Created       int    `json:"created"`
	Updated       int    `json:"updated"`
	DetailChecked int    `json:"detailChecked"`
	Enriched      int    `json:"enriched"`
	Errors        int    `json:"errors"`
}

// Ingestor pulls primary-retailer search results into the listing store
// and optionally enriches listings with barcode identifiers via
// product-detail lookups.
type Ingestor struct {
	listings domain.ListingRepository
	provider domain.SearchProvider
	debug    bool
}

// NewIngestor creates an ingestor.
func NewIngestor(listings domain.ListingRepository, provider domain.SearchProvider) *Ingestor {
	return &Ingestor{listings: listings, provider: provider}
}

// SetDebug enables per-item ingestion logging.
func (i *Ingestor) SetDebug(enabled bool) {
	i.debug = enabled
}

// Ingest searches the primary retailer and upserts each result as a
// listing; later observations supersede earlier ones by external id.
func (i *Ingestor) Ingest(ctx context.Context, req IngestRequest) (*IngestReport, error) {
	if req.Query == "" {
		return nil, domain.ErrInvalidRequest
	}
	if req.MaxProducts <= 0 {
		req.MaxProducts = 50
	}
	if req.MaxDetailCalls <= 0 {
		req.MaxDetailCalls = 15
	}

	report := &IngestReport{RunID: uuid.NewString()}

	candidates, err := i.provider.Search(ctx, domain.SourcePrimary, req.Query)
	if err != nil {
		return nil, err
	}

	var ingested []string
	for _, cand := range candidates {
		if cand.ExternalID == "" {
			continue
		}
		// Processed counts candidates attempted, so the cap bounds work
		// done even when upserts fail.
		if report.Processed >= req.MaxProducts {
			break
		}
		report.Processed++

		listing := &domain.Listing{
			Source:     domain.SourcePrimary,
			ExternalID: cand.ExternalID,
			Title:      cand.Title,
			Brand:      cand.Brand,
			Price:      cand.Price,
			Link:       cand.Link,
			Identifier: NormalizeIdentifier(cand.Identifier),
			Sponsored:  cand.Sponsored,
			ObservedAt: time.Now().UTC(),
		}
		created, err := i.listings.Upsert(ctx, listing)
		if err != nil {
			report.Errors++
			continue
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
		ingested = append(ingested, cand.ExternalID)
	}

	if req.EnrichIdentifiers && len(ingested) > 0 {
		i.enrichBatch(ctx, ingested, req.MaxDetailCalls, report)
	}

	if i.debug {
		log.Printf("[INGEST] run %s: query=%q processed=%d created=%d updated=%d enriched=%d errors=%d",
			report.RunID, req.Query, report.Processed, report.Created, report.Updated,
			report.Enriched, report.Errors)
	}
	return report, nil
}

// enrichBatch attempts identifier enrichment for just-ingested listings
// that lack one, up to the detail-call budget.
func (i *Ingestor) enrichBatch(ctx context.Context, externalIDs []string, budget int, report *IngestReport) {
	for _, id := range externalIDs {
		if report.DetailChecked >= budget {
			break
		}
		listing, err := i.listings.Get(ctx, domain.SourcePrimary, id)
		if err != nil || listing.Identifier != "" {
			continue
		}
		i.enrichOne(ctx, listing, report)
	}
}

// EnrichIdentifiers is the standalone recrawler: it revisits listings
// still missing an identifier whose last attempt is older than
// recrawlAfter, so failures are retried eventually but never hot-looped.
func (i *Ingestor) EnrichIdentifiers(ctx context.Context, recrawlAfter time.Duration, limit int) (*IngestReport, error) {
	if limit <= 0 {
		limit = 25
	}
	if recrawlAfter <= 0 {
		recrawlAfter = 168 * time.Hour
	}
	report := &IngestReport{RunID: uuid.NewString()}

	cutoff := time.Now().UTC().Add(-recrawlAfter)
	listings, err := i.listings.ListMissingIdentifier(ctx, domain.SourcePrimary, cutoff, limit)
	if err != nil {
		return nil, err
	}
	for idx := range listings {
		i.enrichOne(ctx, &listings[idx], report)
	}

	if i.debug {
		log.Printf("[INGEST] enrich run %s: checked=%d enriched=%d errors=%d",
			report.RunID, report.DetailChecked, report.Enriched, report.Errors)
	}
	return report, nil
}

// enrichOne fetches product detail for a single listing. The enrichment
// timestamp is stamped even when the lookup fails or yields nothing, so
// the same listing is not retried before the recrawl window elapses.
func (i *Ingestor) enrichOne(ctx context.Context, listing *domain.Listing, report *IngestReport) {
	report.DetailChecked++
	listing.EnrichedAt = time.Now().UTC()

	detail, err := i.provider.ProductDetail(ctx, domain.SourcePrimary, listing.ExternalID)
	if err != nil {
		report.Errors++
		if _, uerr := i.listings.Upsert(ctx, listing); uerr != nil && i.debug {
			log.Printf("[INGEST] mark enriched %s failed: %v", listing.ExternalID, uerr)
		}
		return
	}

	if id := NormalizeIdentifier(detail.Identifier); id != "" {
		listing.Identifier = id
		report.Enriched++
	}
	if detail.Category != "" && listing.Category == "" {
		listing.Category = detail.Category
	}
	if _, err := i.listings.Upsert(ctx, listing); err != nil {
		report.Errors++
	}
}
