package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/unify-bot/unify-dashboard/internal/discord"
)

type memoryEntry struct {
	guilds  []discord.UserGuild
	expires time.Time
}

// MemoryCache implements an in-process guild cache
type MemoryCache struct {
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttlOrDefault(ttl),
		now:     time.Now,
	}
	slog.Info("Initialized in-memory guild cache", "ttl", c.ttl)
	return c
}

func (c *MemoryCache) Get(_ context.Context, userID string) ([]discord.UserGuild, error) {
	c.mu.RLock()
	e, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrMiss
	}
	if !c.now().Before(e.expires) {
		c.mu.Lock()
		// Re-check: Set may have refreshed the entry meanwhile
		if cur, ok := c.entries[userID]; ok && !c.now().Before(cur.expires) {
			delete(c.entries, userID)
		}
		c.mu.Unlock()
		return nil, ErrMiss
	}

	out := make([]discord.UserGuild, len(e.guilds))
	copy(out, e.guilds)
	return out, nil
}

func (c *MemoryCache) Set(_ context.Context, userID string, guilds []discord.UserGuild) error {
	stored := make([]discord.UserGuild, len(guilds))
	copy(stored, guilds)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = memoryEntry{guilds: stored, expires: c.now().Add(c.ttl)}
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	return nil
}

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
	return nil
}
