package mcpserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrathmeshSose/ai-travel-agent/internal/config"
)

func TestNewServer(t *testing.T) {
	s, cleanup, err := NewServer(context.Background(), config.NewForTesting())
	require.NoError(t, err)
	require.NotNil(t, s)
	cleanup()
}

func TestNewServer_BadCacheDriver(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.CacheDriver = "memcached"
	_, _, err := NewServer(context.Background(), cfg)
	assert.Error(t, err)
}

func TestShouldUseStdio_EnvOverrides(t *testing.T) {
	t.Setenv("MCP_STDIO", "true")
	assert.True(t, shouldUseStdio())

	t.Setenv("MCP_STDIO", "")
	t.Setenv("MCP_HTTP", "true")
	assert.False(t, shouldUseStdio())
}
