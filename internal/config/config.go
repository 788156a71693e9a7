package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/PrathmeshSose/ai-travel-agent/internal/geo"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the travel agent service
// Environment variables are parsed from the TRAVEL_AGENT_ prefix
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP Configuration
	HTTPPort                  int      `envconfig:"HTTP_PORT" default:"8080"`
	CORSAllowedOrigins        []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	RateLimitPerMinute        int      `envconfig:"RATE_LIMIT_PER_MINUTE" default:"5"`
	RateLimitBurst            int      `envconfig:"RATE_LIMIT_BURST" default:"1"`
	// Session creation limit per client; 0 disables it
	SessionRateLimitPerMinute int      `envconfig:"SESSION_RATE_LIMIT_PER_MINUTE" default:"10"`
	SessionRateLimitBurst     int      `envconfig:"SESSION_RATE_LIMIT_BURST" default:"5"`
	// Proxies (CIDR or address) whose X-Forwarded-For is believed
	TrustedProxies            []string `envconfig:"TRUSTED_PROXIES"`

	// Session store: memory, sqlite or postgres
	StoreDriver string `envconfig:"STORE_DRIVER" default:"memory"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"data/travel-agent.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Memoization cache: memory or redis
	CacheDriver   string `envconfig:"CACHE_DRIVER" default:"memory"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Completion provider (OpenAI-compatible chat completions)
	CompletionAPIKey         string  `envconfig:"GROQ_API_KEY" default:""`
	CompletionBaseURL        string  `envconfig:"COMPLETION_BASE_URL" default:"https://api.groq.com/openai/v1"`
	CompletionModel          string  `envconfig:"COMPLETION_MODEL" default:"llama-3.1-8b-instant"`
	CompletionTemperature    float64 `envconfig:"COMPLETION_TEMPERATURE" default:"0.7"`
	CompletionMaxTokens      int     `envconfig:"COMPLETION_MAX_TOKENS" default:"2000"`
	CompletionTimeoutSeconds int     `envconfig:"COMPLETION_TIMEOUT_SECONDS" default:"30"`

	// Search provider (SerpAPI)
	SearchAPIKey          string `envconfig:"SERP_API_KEY" default:""`
	SearchBaseURL         string `envconfig:"SEARCH_BASE_URL" default:"https://serpapi.com"`
	SearchEngine          string `envconfig:"SEARCH_ENGINE" default:"google"`
	SearchResultLimit     int    `envconfig:"SEARCH_RESULT_LIMIT" default:"6"`
	SearchTimeoutSeconds  int    `envconfig:"SEARCH_TIMEOUT_SECONDS" default:"10"`
	SearchCacheTTLSeconds int    `envconfig:"SEARCH_CACHE_TTL_SECONDS" default:"3600"`

	// Location lookup (ipapi.co)
	GeoBaseURL         string `envconfig:"GEO_BASE_URL" default:"https://ipapi.co"`
	GeoTimeoutSeconds  int    `envconfig:"GEO_TIMEOUT_SECONDS" default:"5"`
	GeoCacheTTLSeconds int    `envconfig:"GEO_CACHE_TTL_SECONDS" default:"86400"`

	CalendarProductID string `envconfig:"CALENDAR_PRODUCT_ID" default:"-//AI Travel Agent//github.com//"`

	// MCP server (stdio or streamable HTTP)
	MCPServerName  string `envconfig:"MCP_SERVER_NAME" default:"travel-agent-mcp"`
	MCPHTTPPort    int    `envconfig:"MCP_HTTP_PORT" default:"8081"`
	MCPIdleSeconds int    `envconfig:"MCP_IDLE_SECONDS" default:"120"`

	// Health
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
}

// ResolveDefaults validates the driver selections and numeric limits.
func (c *Config) ResolveDefaults() error {
	switch c.StoreDriver {
	case "", "memory":
		c.StoreDriver = "memory"
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH required for sqlite store")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN required for postgres store")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.StoreDriver)
	}

	switch c.CacheDriver {
	case "", "memory":
		c.CacheDriver = "memory"
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR required for redis cache")
		}
	default:
		return fmt.Errorf("unsupported CACHE_DRIVER: %s", c.CacheDriver)
	}

	if c.SearchResultLimit <= 0 {
		return fmt.Errorf("SEARCH_RESULT_LIMIT must be positive, got %d", c.SearchResultLimit)
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", c.RateLimitPerMinute)
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = 1
	}
	if c.SessionRateLimitPerMinute < 0 {
		return fmt.Errorf("SESSION_RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.SessionRateLimitPerMinute)
	}
	if c.SessionRateLimitBurst <= 0 {
		c.SessionRateLimitBurst = 1
	}
	if _, err := geo.ParseTrustedProxies(c.TrustedProxies); err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	return nil
}

// New creates a new Config by parsing environment variables
// Example: TRAVEL_AGENT_HTTP_PORT, TRAVEL_AGENT_STORE_DRIVER.
// Provider keys also fall back to the bare GROQ_API_KEY and SERP_API_KEY.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("TRAVEL_AGENT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("store_driver", cfg.StoreDriver).
		Str("cache_driver", cfg.CacheDriver).
		Str("completion_model", cfg.CompletionModel).
		Bool("completion_key_present", cfg.CompletionAPIKey != "").
		Bool("search_key_present", cfg.SearchAPIKey != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:               EnvTesting,
		LogLevel:                  "debug",
		HTTPPort:                  8080,
		CORSAllowedOrigins:        []string{"*"},
		RateLimitPerMinute:        60,
		RateLimitBurst:            10,
		SessionRateLimitPerMinute: 600,
		SessionRateLimitBurst:     100,
		StoreDriver:               "memory",
		CacheDriver:               "memory",
		CompletionBaseURL:         "http://localhost:0",
		CompletionModel:           "llama-3.1-8b-instant",
		CompletionTemperature:     0.7,
		CompletionMaxTokens:       2000,
		CompletionTimeoutSeconds:  5,
		SearchBaseURL:             "http://localhost:0",
		SearchEngine:              "google",
		SearchResultLimit:         6,
		SearchTimeoutSeconds:      5,
		SearchCacheTTLSeconds:     3600,
		GeoBaseURL:                "http://localhost:0",
		GeoTimeoutSeconds:         5,
		GeoCacheTTLSeconds:        86400,
		CalendarProductID:         "-//AI Travel Agent//github.com//",
		MCPServerName:             "travel-agent-mcp",
		MCPHTTPPort:               8081,
		MCPIdleSeconds:            120,
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.SearchTimeoutSeconds) * time.Second
}

func (c *Config) CompletionTimeout() time.Duration {
	return time.Duration(c.CompletionTimeoutSeconds) * time.Second
}

func (c *Config) GeoTimeout() time.Duration {
	return time.Duration(c.GeoTimeoutSeconds) * time.Second
}

func (c *Config) SearchCacheTTL() time.Duration {
	return time.Duration(c.SearchCacheTTLSeconds) * time.Second
}

func (c *Config) GeoCacheTTL() time.Duration {
	return time.Duration(c.GeoCacheTTLSeconds) * time.Second
}
