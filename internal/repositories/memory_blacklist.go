package repositories

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryBlacklist is the single-process fallback used when no redis address
// is configured. Entries vanish on restart.
type MemoryBlacklist struct {
	c *cache.Cache
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{c: cache.New(time.Hour, 10*time.Minute)}
}

func (m *MemoryBlacklist) Blacklist(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.c.Set(blacklistPrefix+jti, struct{}{}, ttl)
	return nil
}

func (m *MemoryBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, found := m.c.Get(blacklistPrefix + jti)
	return found, nil
}
