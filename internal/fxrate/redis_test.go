package fxrate

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) (*RedisCache, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("failed to get port: %v", err)
	}

	cache := NewRedisCache(fmt.Sprintf("%s:%s", host, port.Port()))
	if err := cache.Ping(ctx); err != nil {
		t.Fatalf("failed to ping redis: %v", err)
	}

	cleanup := func() {
		cache.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return cache, cleanup
}

func TestRedisCache_SetGet(t *testing.T) {
	cache, cleanup := setupRedis(t)
	defer cleanup()
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, cacheKey, 5.4321, time.Minute))
	v, ok, err := cache.Get(ctx, cacheKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 5.4321, v, 1e-9)
}
