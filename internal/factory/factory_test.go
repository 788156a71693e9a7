package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrathmeshSose/ai-travel-agent/internal/cache"
	"github.com/PrathmeshSose/ai-travel-agent/internal/config"
)

func TestNewStore_Drivers(t *testing.T) {
	ctx := context.Background()
	cfg := config.NewForTesting()

	s, err := NewStore(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	cfg.StoreDriver = "sqlite"
	cfg.SQLitePath = filepath.Join(t.TempDir(), "t.db")
	s, err = NewStore(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	cfg.StoreDriver = "mongo"
	_, err = NewStore(ctx, cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewCache_Memory(t *testing.T) {
	c, err := NewCache(context.Background(), config.NewForTesting(), zerolog.Nop())
	require.NoError(t, err)
	_, ok := c.(*cache.Memory)
	assert.True(t, ok)
}

func TestNewCache_RedisUnreachable(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.CacheDriver = "redis"
	cfg.RedisAddr = "127.0.0.1:1"
	_, err := NewCache(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}
