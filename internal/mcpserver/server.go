// Package mcpserver exposes trip planning and calendar export to MCP hosts.
package mcpserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/PrathmeshSose/ai-travel-agent/internal/config"
	"github.com/PrathmeshSose/ai-travel-agent/internal/factory"
	"github.com/PrathmeshSose/ai-travel-agent/internal/logger"
	"github.com/PrathmeshSose/ai-travel-agent/internal/mcpserver/handlers"
	"github.com/PrathmeshSose/ai-travel-agent/internal/services"
)

const serverVersion = "0.1.0"

type toolRegisterer interface {
	RegisterTools(s *server.MCPServer) error
}

// NewServer builds an MCP server with the planner tools registered.
func NewServer(ctx context.Context, cfg *config.Config) (*server.MCPServer, func(), error) {
	c, err := factory.NewCache(ctx, cfg, log.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("cache: %w", err)
	}
	cleanup := func() {
		if cl, ok := c.(io.Closer); ok {
			if err := cl.Close(); err != nil {
				log.Warn().Err(err).Msg("cache close")
			}
		}
	}

	s := server.NewMCPServer(cfg.MCPServerName, serverVersion, server.WithToolCapabilities(true))

	planner := handlers.NewPlannerHandler(
		factory.NewResearcher(cfg, c, log.Logger),
		factory.NewSynthesizer(cfg, log.Logger),
		factory.NewExporter(cfg, log.Logger),
		services.Credentials{CompletionKey: cfg.CompletionAPIKey, SearchKey: cfg.SearchAPIKey},
	)
	for name, h := range map[string]toolRegisterer{"planner": planner} {
		if err := h.RegisterTools(s); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("register %s tools: %w", name, err)
		}
	}
	return s, cleanup, nil
}

// Run serves over stdio when launched by a host process and over streamable
// HTTP otherwise. It blocks until the transport ends or a signal arrives.
func Run() error {
	// stdout carries the stdio transport, so logs go to stderr.
	log.Logger = logger.New("travel-agent-mcp").Output(os.Stderr)

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	log.Logger = logger.WithLevel(log.Logger, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, cleanup, err := NewServer(ctx, cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Failed to build MCP server")
		return err
	}
	defer cleanup()

	if shouldUseStdio() {
		log.Info().Msg("Starting MCP server (stdio transport)")
		return server.ServeStdio(s)
	}
	return serveHTTP(ctx, cfg, s)
}

func serveHTTP(ctx context.Context, cfg *config.Config, s *server.MCPServer) error {
	streamSrv := server.NewStreamableHTTPServer(s,
		server.WithEndpointPath("/mcp"),
		server.WithHeartbeatInterval(30*time.Second),
	)
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.MCPHTTPPort),
		Handler:     streamSrv,
		ReadTimeout: 5 * time.Second,
		// No write deadline: responses may stream.
		IdleTimeout: time.Duration(cfg.MCPIdleSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting MCP server (streamable HTTP)")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			log.Error().Stack().Err(err).Msg("MCP HTTP server failed")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during HTTP server shutdown")
	}
	if err := streamSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during MCP server shutdown")
	}
	log.Info().Msg("MCP server shutdown complete")
	return nil
}

// shouldUseStdio honours MCP_STDIO / MCP_HTTP, then falls back to checking
// whether stdin is a pipe.
func shouldUseStdio() bool {
	if os.Getenv("MCP_STDIO") == "true" {
		return true
	}
	if os.Getenv("MCP_HTTP") == "true" {
		return false
	}
	if fi, err := os.Stdin.Stat(); err == nil {
		return fi.Mode()&os.ModeCharDevice == 0
	}
	return false
}
