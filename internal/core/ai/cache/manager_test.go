package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recommender/internal/core/ai/cache"
	"movie-recommender/internal/infrastructure/config"
	"movie-recommender/internal/pkg/common"
)

func managerConfig() *config.CacheConfig {
	return &config.CacheConfig{
		Enabled:         true,
		Backend:         "memory",
		MaxSize:         2,
		TTL:             50 * time.Millisecond,
		CleanupInterval: time.Hour,
	}
}

func TestManagerSetGetRoundTrip(t *testing.T) {
	m := cache.NewManager(managerConfig())
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "prompt-a", "value-a"))
	value, err := m.Get(ctx, "prompt-a")
	require.NoError(t, err)
	assert.Equal(t, "value-a", value)
}

func TestManagerMiss(t *testing.T) {
	m := cache.NewManager(managerConfig())
	defer m.Close()

	_, err := m.Get(context.Background(), "never-set")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestManagerTTLExpiry(t *testing.T) {
	m := cache.NewManager(managerConfig())
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "prompt-a", "value-a"))
	time.Sleep(60 * time.Millisecond)

	_, err := m.Get(ctx, "prompt-a")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestManagerLRUEviction(t *testing.T) {
	m := cache.NewManager(managerConfig())
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "prompt-a", "value-a"))
	require.NoError(t, m.Set(ctx, "prompt-b", "value-b"))

	// 提高 a 的訪問計數，b 成為淘汰對象
	_, err := m.Get(ctx, "prompt-a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "prompt-c", "value-c"))

	_, err = m.Get(ctx, "prompt-a")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "prompt-b")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestNewStoreDisabled(t *testing.T) {
	store, err := cache.NewStore(&config.Config{
		Cache: config.CacheConfig{Enabled: false},
	})
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestNewStoreMemoryBackend(t *testing.T) {
	store, err := cache.NewStore(&config.Config{
		Cache: config.CacheConfig{
			Enabled:         true,
			Backend:         "memory",
			MaxSize:         10,
			TTL:             time.Minute,
			CleanupInterval: time.Hour,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "p", "v"))
	value, err := store.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
}
