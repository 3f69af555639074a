package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Provider ProviderConfig
	Store    StoreConfig
	Engine   EngineConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProviderConfig holds search-provider configuration
type ProviderConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	PaceDelay time.Duration `mapstructure:"pace_delay"` // delay between independent calls
}

// StoreConfig selects the durable store backing listings and the lookup cache
type StoreConfig struct {
	Type     string `mapstructure:"type"` // "memory" or "redis"
	RedisURL string `mapstructure:"redis_url"`
}

// EngineConfig holds matching and deal thresholds plus run budgets
type EngineConfig struct {
	StalenessWindow  time.Duration `mapstructure:"staleness_window"`
	MinSimilarity    float64       `mapstructure:"min_similarity"`
	RequireBrand     bool          `mapstructure:"require_brand"`
	MinAbsSavings    float64       `mapstructure:"min_abs_savings"`
	MinPctSavings    float64       `mapstructure:"min_pct_savings"`
	MinMatchScore    float64       `mapstructure:"min_match_score"`
	SizeRatioMin     float64       `mapstructure:"size_ratio_min"`
	MaxExternalCalls int           `mapstructure:"max_external_calls"`
	MaxItems         int           `mapstructure:"max_items"`
	Workers          int           `mapstructure:"workers"`
	EnableDebugLogs  bool          `mapstructure:"enable_debug_logs"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/dealradar/")

	v.SetEnvPrefix("DEALRADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Provider defaults
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.base_url", "https://serpapi.com")
	v.SetDefault("provider.pace_delay", "500ms")

	// Store defaults
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.redis_url", "")

	// Engine defaults
	v.SetDefault("engine.staleness_window", "72h")
	v.SetDefault("engine.min_similarity", 62.0)
	v.SetDefault("engine.require_brand", false)
	v.SetDefault("engine.min_abs_savings", 5.0)
	v.SetDefault("engine.min_pct_savings", 0.20)
	v.SetDefault("engine.min_match_score", 0.0)
	v.SetDefault("engine.size_ratio_min", 0.85)
	v.SetDefault("engine.max_external_calls", 25)
	v.SetDefault("engine.max_items", 200)
	v.SetDefault("engine.workers", 4)
	v.SetDefault("engine.enable_debug_logs", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Provider.APIKey == "" {
		return fmt.Errorf("provider API key is required (set DEALRADAR_PROVIDER_API_KEY)")
	}

	if config.Store.Type != "memory" && config.Store.Type != "redis" {
		return fmt.Errorf("store type must be 'memory' or 'redis', got: %s", config.Store.Type)
	}

	if config.Store.Type == "redis" && config.Store.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when store type is 'redis'")
	}

	if config.Engine.MinPctSavings < 0 || config.Engine.MinPctSavings >= 1 {
		return fmt.Errorf("min_pct_savings must be in [0, 1), got: %v", config.Engine.MinPctSavings)
	}

	if config.Engine.SizeRatioMin <= 0 || config.Engine.SizeRatioMin > 1 {
		return fmt.Errorf("size_ratio_min must be in (0, 1], got: %v", config.Engine.SizeRatioMin)
	}

	return nil
}
