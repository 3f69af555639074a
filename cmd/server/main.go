package main

import (
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/dealradar/backend/config"
	httpDelivery "github.com/dealradar/backend/internal/delivery/http"
	"github.com/dealradar/backend/internal/domain"
	"github.com/dealradar/backend/internal/infrastructure/serp"
	"github.com/dealradar/backend/internal/infrastructure/store"
	"github.com/dealradar/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting DealRadar Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Store Type: %s", cfg.Store.Type)

	// Initialize infrastructure dependencies
	var (
		listings domain.ListingRepository
		cache    domain.CacheRepository
	)
	switch cfg.Store.Type {
	case "redis":
		opts, err := redis.ParseURL(cfg.Store.RedisURL)
		if err != nil {
			log.Fatalf("Invalid Redis URL: %v", err)
		}
		rdb := redis.NewClient(opts)
		listings = store.NewRedisListings(rdb)
		cache = store.NewRedisCache(rdb)
	default:
		listings = store.NewMemoryListings()
		cache = store.NewMemoryCache()
	}

	provider := serp.NewClient(cfg.Provider.APIKey, cfg.Provider.BaseURL, cfg.Provider.PaceDelay)
	log.Printf("Provider configured: %s (pacing: %s)", cfg.Provider.BaseURL, cfg.Provider.PaceDelay)

	// Initialize usecase layer
	scorer := usecase.NewScorer(usecase.ScorePolicy{
		MinSimilarity: cfg.Engine.MinSimilarity,
		RequireBrand:  cfg.Engine.RequireBrand,
		SizeRatioMin:  cfg.Engine.SizeRatioMin,
	})

	resolver := usecase.NewResolver(listings, cache, provider, scorer, usecase.ResolverConfig{
		StalenessWindow:  cfg.Engine.StalenessWindow,
		MaxExternalCalls: cfg.Engine.MaxExternalCalls,
		MaxItems:         cfg.Engine.MaxItems,
		Workers:          cfg.Engine.Workers,
	})

	ingestor := usecase.NewIngestor(listings, provider)
	engine := usecase.NewEngine(cache)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" || cfg.Engine.EnableDebugLogs {
		provider.SetDebug(true)
		scorer.SetDebug(true)
		resolver.SetDebug(true)
		ingestor.SetDebug(true)
		engine.SetDebug(true)
		log.Printf("Debug logging enabled")
	}

	log.Printf("Engine: min_similarity=%.0f require_brand=%v staleness=%s budget=%d calls/%d items",
		cfg.Engine.MinSimilarity, cfg.Engine.RequireBrand, cfg.Engine.StalenessWindow,
		cfg.Engine.MaxExternalCalls, cfg.Engine.MaxItems)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(ingestor, resolver, engine, listings, cache, cfg)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
