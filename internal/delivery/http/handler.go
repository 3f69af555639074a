package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dealradar/backend/config"
	"github.com/dealradar/backend/internal/domain"
	"github.com/dealradar/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	ingestor *usecase.Ingestor
	resolver *usecase.Resolver
	engine   *usecase.Engine
	listings domain.ListingRepository
	cache    domain.CacheRepository
	cfg      *config.Config
}

// NewHandler creates a new HTTP handler
func NewHandler(
	ingestor *usecase.Ingestor,
	resolver *usecase.Resolver,
	engine *usecase.Engine,
	listings domain.ListingRepository,
	cache domain.CacheRepository,
	cfg *config.Config,
) *Handler {
	return &Handler{
		ingestor: ingestor,
		resolver: resolver,
		engine:   engine,
		listings: listings,
		cache:    cache,
		cfg:      cfg,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "dealradar-backend",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// IngestListings runs an ingestion pass for a search query
func (h *Handler) IngestListings(c *gin.Context) {
	var req usecase.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	report, err := h.ingestor.Ingest(c.Request.Context(), req)
	if err != nil {
		status := upstreamStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

type enrichRequest struct {
	Limit        int `json:"limit"`
	RecrawlHours int `json:"recrawlHours"`
}

// EnrichIdentifiers recrawls listings still missing a barcode identifier
func (h *Handler) EnrichIdentifiers(c *gin.Context) {
	var req enrichRequest
	// Body is optional; defaults apply.
	_ = c.ShouldBindJSON(&req)

	report, err := h.ingestor.EnrichIdentifiers(
		c.Request.Context(),
		time.Duration(req.RecrawlHours)*time.Hour,
		req.Limit,
	)
	if err != nil {
		c.JSON(upstreamStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

type refreshRequest struct {
	Category string `json:"category"`
}

// RefreshCounterparts resolves counterpart matches for stale listings
func (h *Handler) RefreshCounterparts(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)

	report, err := h.resolver.RefreshCounterparts(c.Request.Context(), req.Category)
	if err != nil {
		c.JSON(upstreamStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetDeals computes ranked deals from the current listings and cache
func (h *Handler) GetDeals(c *gin.Context) {
	eng := h.cfg.Engine
	dealCfg := usecase.DealConfig{
		MinAbs:          decimal.NewFromFloat(queryFloat(c, "minAbs", eng.MinAbsSavings)),
		MinPct:          queryFloat(c, "minPct", eng.MinPctSavings),
		MinScore:        queryFloat(c, "minScore", eng.MinMatchScore),
		SizeRatioMin:    eng.SizeRatioMin,
		StalenessWindow: eng.StalenessWindow,
		Limit:           queryInt(c, "limit", 50),
	}

	primaries, err := h.listings.ListBySource(
		c.Request.Context(), domain.SourcePrimary, c.Query("category"), 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	deals, err := h.engine.ComputeDeals(c.Request.Context(), primaries, dealCfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(deals), "deals": deals})
}

// GetStats reports listing and cache counts
func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	total, withID, err := h.listings.Count(ctx, domain.SourcePrimary)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	entries, misses, err := h.cache.Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"listings": gin.H{
			"total":          total,
			"withIdentifier": withID,
		},
		"lookupCache": gin.H{
			"total":  entries,
			"misses": misses,
		},
	})
}

func queryFloat(c *gin.Context, name string, fallback float64) float64 {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// upstreamStatus maps engine errors to HTTP statuses. Provider outages
// map to 502 so the caller can tell "our bug" from "their outage".
func upstreamStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstreamUnavailable), errors.Is(err, domain.ErrRateLimited):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
