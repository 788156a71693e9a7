// Package planservice runs the travel planning HTTP service.
package planservice

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/PrathmeshSose/ai-travel-agent/internal/api"
	"github.com/PrathmeshSose/ai-travel-agent/internal/cache"
	"github.com/PrathmeshSose/ai-travel-agent/internal/config"
	"github.com/PrathmeshSose/ai-travel-agent/internal/factory"
	"github.com/PrathmeshSose/ai-travel-agent/internal/geo"
	"github.com/PrathmeshSose/ai-travel-agent/internal/health"
	"github.com/PrathmeshSose/ai-travel-agent/internal/logger"
	"github.com/PrathmeshSose/ai-travel-agent/internal/services"
	"github.com/PrathmeshSose/ai-travel-agent/internal/store"
)

// Run starts the HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("travel-agent")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	log = logger.WithLevel(log, cfg.LogLevel)

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("store_driver", cfg.StoreDriver).
		Str("cache_driver", cfg.CacheDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Travel agent starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	st, c, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("store close")
		}
		if cl, ok := c.(io.Closer); ok {
			if err := cl.Close(); err != nil {
				log.Warn().Err(err).Msg("cache close")
			}
		}
	}()

	svcHealth := startHealthCheckers(ctx, cfg, log, st, c)
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	handler, err := buildHandler(cfg, log, st, c, svcHealth)
	if err != nil {
		log.Error().Err(err).Msg("failed to build HTTP handler")
		return err
	}
	server := newHTTPServer(ctx, cfg, handler)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies opens the store and cache, failing fast when either is unavailable.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, cache.Cache, error) {
	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return nil, nil, err
	}
	c, err := factory.NewCache(ctx, cfg, log)
	if err != nil {
		_ = st.Close()
		log.Error().Stack().Err(err).Msg("Cache unavailable")
		return nil, nil, err
	}
	return st, c, nil
}

// buildHandler wires services into the HTTP router.
func buildHandler(cfg *config.Config, log zerolog.Logger, st store.Store, c cache.Cache, h api.HealthReporter) (http.Handler, error) {
	ips, err := geo.NewClientIPResolver(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}
	sessions := services.NewSessionService(st, services.Credentials{
		CompletionKey: cfg.CompletionAPIKey,
		SearchKey:     cfg.SearchAPIKey,
	})
	planner := services.NewPlannerService(st,
		factory.NewResearcher(cfg, c, log),
		factory.NewSynthesizer(cfg, log),
		factory.NewExporter(cfg, log),
		log.With().Str("component", "planner").Logger())

	return api.NewRouter(api.Deps{
		Sessions:         sessions,
		Planner:          planner,
		Locator:          factory.NewLocator(cfg, c, log),
		Health:           h,
		Log:              log,
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		PlanPerMinute:    cfg.RateLimitPerMinute,
		PlanBurst:        cfg.RateLimitBurst,
		SessionPerMinute: cfg.SessionRateLimitPerMinute,
		SessionBurst:     cfg.SessionRateLimitBurst,
		ClientIP:         ips.ClientIP,
	}), nil
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, c cache.Cache) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)
	checkers := []health.HealthChecker{storeChecker}

	if p, ok := c.(health.HealthPinger); ok {
		cacheChecker := health.NewPingChecker("cache", p, log, probeTimeout)
		go cacheChecker.Start(ctx, interval)
		checkers = append(checkers, cacheChecker)
	}

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// generation waits on search and completion in sequence
		WriteTimeout: cfg.SearchTimeout() + cfg.CompletionTimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy polls service health with exponential backoff until it is
// healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth api.HealthReporter) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 100 * time.Millisecond
	exp.MaxInterval = 2 * time.Second
	exp.MaxElapsedTime = time.Duration(timeoutSeconds) * time.Second
	exp.Reset()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		wait := exp.NextBackOff()
		if wait == backoff.Stop {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds (down: %v)",
				timeoutSeconds, svcHealth.Unhealthy())
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
