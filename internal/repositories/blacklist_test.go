package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestMemoryBlacklist(t *testing.T) {
	ctx := context.Background()
	bl := NewMemoryBlacklist()

	ok, err := bl.IsBlacklisted(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, bl.Blacklist(ctx, "abc", time.Minute))
	ok, _ = bl.IsBlacklisted(ctx, "abc")
	assert.True(t, ok)

	require.NoError(t, bl.Blacklist(ctx, "expired", 0))
	ok, _ = bl.IsBlacklisted(ctx, "expired")
	assert.False(t, ok, "already expired tokens are not stored")

	require.NoError(t, bl.Blacklist(ctx, "short", 20*time.Millisecond))
	assert.Eventually(t, func() bool {
		ok, _ := bl.IsBlacklisted(ctx, "short")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestRedisRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	addr, err := ctr.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	repo := NewRedisRepository(rdb)
	require.NoError(t, repo.Ping(ctx))

	ok, err := repo.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Blacklist(ctx, "jti-1", time.Minute))
	ok, err = repo.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ttl, err := rdb.TTL(ctx, blacklistPrefix+"jti-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)
}
