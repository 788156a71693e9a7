// Package factory builds configured components for the binaries.
package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/PrathmeshSose/ai-travel-agent/internal/cache"
	"github.com/PrathmeshSose/ai-travel-agent/internal/calendar"
	"github.com/PrathmeshSose/ai-travel-agent/internal/config"
	"github.com/PrathmeshSose/ai-travel-agent/internal/geo"
	"github.com/PrathmeshSose/ai-travel-agent/internal/research"
	"github.com/PrathmeshSose/ai-travel-agent/internal/store"
	"github.com/PrathmeshSose/ai-travel-agent/internal/store/memory"
	"github.com/PrathmeshSose/ai-travel-agent/internal/store/postgres"
	"github.com/PrathmeshSose/ai-travel-agent/internal/store/sqlite"
	"github.com/PrathmeshSose/ai-travel-agent/internal/synth"
)

// NewStore opens the session store selected by StoreDriver.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case "", "memory":
		log.Info().Msg("Using in-memory session store")
		return memory.New(), nil
	case "sqlite":
		log.Info().Str("path", cfg.SQLitePath).Msg("Using SQLite session store")
		return sqlite.New(cfg.SQLitePath)
	case "postgres":
		log.Info().Msg("Using Postgres session store")
		return postgres.New(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
}

// NewCache returns the memoization cache selected by CacheDriver.
func NewCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (cache.Cache, error) {
	switch cfg.CacheDriver {
	case "", "memory":
		return cache.NewMemory(), nil
	case "redis":
		log.Info().Str("addr", cfg.RedisAddr).Int("db", cfg.RedisDB).Msg("Using Redis cache")
		return cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", cfg.CacheDriver)
	}
}

func NewResearcher(cfg *config.Config, c cache.Cache, log zerolog.Logger) *research.Collector {
	return research.New(research.Options{
		BaseURL:  cfg.SearchBaseURL,
		Engine:   cfg.SearchEngine,
		Limit:    cfg.SearchResultLimit,
		Timeout:  cfg.SearchTimeout(),
		Cache:    c,
		CacheTTL: cfg.SearchCacheTTL(),
		Logger:   log.With().Str("component", "research").Logger(),
	})
}

func NewSynthesizer(cfg *config.Config, log zerolog.Logger) *synth.Synthesizer {
	return synth.New(synth.Options{
		BaseURL:     cfg.CompletionBaseURL,
		Model:       cfg.CompletionModel,
		Temperature: cfg.CompletionTemperature,
		MaxTokens:   cfg.CompletionMaxTokens,
		Timeout:     cfg.CompletionTimeout(),
		Logger:      log.With().Str("component", "synth").Logger(),
	})
}

func NewLocator(cfg *config.Config, c cache.Cache, log zerolog.Logger) *geo.Locator {
	return geo.New(geo.Options{
		BaseURL:  cfg.GeoBaseURL,
		Timeout:  cfg.GeoTimeout(),
		Cache:    c,
		CacheTTL: cfg.GeoCacheTTL(),
		Logger:   log.With().Str("component", "geo").Logger(),
	})
}

func NewExporter(cfg *config.Config, log zerolog.Logger) *calendar.Exporter {
	return calendar.NewExporter(cfg.CalendarProductID,
		calendar.WithLogger(log.With().Str("component", "calendar").Logger()))
}
