package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("DEALRADAR_SERVER_PORT")
		os.Unsetenv("DEALRADAR_SERVER_ENVIRONMENT")
		os.Unsetenv("DEALRADAR_PROVIDER_API_KEY")
		os.Unsetenv("DEALRADAR_PROVIDER_BASE_URL")
		os.Unsetenv("DEALRADAR_PROVIDER_PACE_DELAY")
		os.Unsetenv("DEALRADAR_STORE_TYPE")
		os.Unsetenv("DEALRADAR_STORE_REDIS_URL")
		os.Unsetenv("DEALRADAR_ENGINE_STALENESS_WINDOW")
		os.Unsetenv("DEALRADAR_ENGINE_MIN_ABS_SAVINGS")
		os.Unsetenv("DEALRADAR_ENGINE_MIN_PCT_SAVINGS")
		os.Unsetenv("DEALRADAR_ENGINE_MAX_EXTERNAL_CALLS")
		os.Unsetenv("DEALRADAR_ENGINE_WORKERS")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		// Set required API key
		os.Setenv("DEALRADAR_PROVIDER_API_KEY", "test-key")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Provider.BaseURL != "https://serpapi.com" {
			t.Errorf("Provider.BaseURL = %s, want https://serpapi.com", cfg.Provider.BaseURL)
		}
		if cfg.Provider.PaceDelay != 500*time.Millisecond {
			t.Errorf("Provider.PaceDelay = %v, want 500ms", cfg.Provider.PaceDelay)
		}
		if cfg.Store.Type != "memory" {
			t.Errorf("Store.Type = %s, want memory", cfg.Store.Type)
		}
		if cfg.Engine.StalenessWindow != 72*time.Hour {
			t.Errorf("Engine.StalenessWindow = %v, want 72h", cfg.Engine.StalenessWindow)
		}
		if cfg.Engine.MinSimilarity != 62.0 {
			t.Errorf("Engine.MinSimilarity = %v, want 62", cfg.Engine.MinSimilarity)
		}
		if cfg.Engine.MinAbsSavings != 5.0 {
			t.Errorf("Engine.MinAbsSavings = %v, want 5", cfg.Engine.MinAbsSavings)
		}
		if cfg.Engine.MinPctSavings != 0.20 {
			t.Errorf("Engine.MinPctSavings = %v, want 0.20", cfg.Engine.MinPctSavings)
		}
		if cfg.Engine.MaxExternalCalls != 25 {
			t.Errorf("Engine.MaxExternalCalls = %d, want 25", cfg.Engine.MaxExternalCalls)
		}
		if cfg.Engine.Workers != 4 {
			t.Errorf("Engine.Workers = %d, want 4", cfg.Engine.Workers)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("DEALRADAR_SERVER_PORT", "9090")
		os.Setenv("DEALRADAR_SERVER_ENVIRONMENT", "production")
		os.Setenv("DEALRADAR_PROVIDER_API_KEY", "custom-api-key")
		os.Setenv("DEALRADAR_PROVIDER_BASE_URL", "https://custom.api.com")
		os.Setenv("DEALRADAR_PROVIDER_PACE_DELAY", "250ms")
		os.Setenv("DEALRADAR_STORE_TYPE", "redis")
		os.Setenv("DEALRADAR_STORE_REDIS_URL", "redis://localhost:6379")
		os.Setenv("DEALRADAR_ENGINE_STALENESS_WINDOW", "24h")
		os.Setenv("DEALRADAR_ENGINE_MIN_ABS_SAVINGS", "10")
		os.Setenv("DEALRADAR_ENGINE_MIN_PCT_SAVINGS", "0.3")
		os.Setenv("DEALRADAR_ENGINE_MAX_EXTERNAL_CALLS", "50")
		os.Setenv("DEALRADAR_ENGINE_WORKERS", "8")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Provider.APIKey != "custom-api-key" {
			t.Errorf("Provider.APIKey = %s, want custom-api-key", cfg.Provider.APIKey)
		}
		if cfg.Provider.BaseURL != "https://custom.api.com" {
			t.Errorf("Provider.BaseURL = %s, want https://custom.api.com", cfg.Provider.BaseURL)
		}
		if cfg.Provider.PaceDelay != 250*time.Millisecond {
			t.Errorf("Provider.PaceDelay = %v, want 250ms", cfg.Provider.PaceDelay)
		}
		if cfg.Store.Type != "redis" {
			t.Errorf("Store.Type = %s, want redis", cfg.Store.Type)
		}
		if cfg.Store.RedisURL != "redis://localhost:6379" {
			t.Errorf("Store.RedisURL = %s, want redis://localhost:6379", cfg.Store.RedisURL)
		}
		if cfg.Engine.StalenessWindow != 24*time.Hour {
			t.Errorf("Engine.StalenessWindow = %v, want 24h", cfg.Engine.StalenessWindow)
		}
		if cfg.Engine.MinAbsSavings != 10.0 {
			t.Errorf("Engine.MinAbsSavings = %v, want 10", cfg.Engine.MinAbsSavings)
		}
		if cfg.Engine.MinPctSavings != 0.3 {
			t.Errorf("Engine.MinPctSavings = %v, want 0.3", cfg.Engine.MinPctSavings)
		}
		if cfg.Engine.MaxExternalCalls != 50 {
			t.Errorf("Engine.MaxExternalCalls = %d, want 50", cfg.Engine.MaxExternalCalls)
		}
		if cfg.Engine.Workers != 8 {
			t.Errorf("Engine.Workers = %d, want 8", cfg.Engine.Workers)
		}
	})

	t.Run("fails validation when API key is missing", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing API key")
		}
	})

	t.Run("fails validation for invalid store type", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("DEALRADAR_PROVIDER_API_KEY", "test-key")
		os.Setenv("DEALRADAR_STORE_TYPE", "invalid")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid store type")
		}
	})

	t.Run("fails validation when redis URL missing for redis store", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("DEALRADAR_PROVIDER_API_KEY", "test-key")
		os.Setenv("DEALRADAR_STORE_TYPE", "redis")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing Redis URL")
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Provider: ProviderConfig{APIKey: "test-key", BaseURL: "https://serpapi.com"},
			Store:    StoreConfig{Type: "memory"},
			Engine:   EngineConfig{MinPctSavings: 0.2, SizeRatioMin: 0.85},
		}
	}

	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(valid()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails when API key is empty", func(t *testing.T) {
		cfg := valid()
		cfg.Provider.APIKey = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty API key")
		}
	})

	t.Run("fails for invalid store type", func(t *testing.T) {
		cfg := valid()
		cfg.Store.Type = "invalid-type"
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for invalid store type")
		}
	})

	t.Run("validates redis store type with URL", func(t *testing.T) {
		cfg := valid()
		cfg.Store.Type = "redis"
		cfg.Store.RedisURL = "redis://localhost:6379"
		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil for valid redis config", err)
		}
	})

	t.Run("fails for redis store without URL", func(t *testing.T) {
		cfg := valid()
		cfg.Store.Type = "redis"
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for redis without URL")
		}
	})

	t.Run("fails for percentage threshold out of range", func(t *testing.T) {
		cfg := valid()
		cfg.Engine.MinPctSavings = 1.5
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for min_pct_savings >= 1")
		}
	})

	t.Run("fails for size ratio out of range", func(t *testing.T) {
		cfg := valid()
		cfg.Engine.SizeRatioMin = 0
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for size_ratio_min <= 0")
		}
	})
}
