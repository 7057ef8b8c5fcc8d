// Package cache holds each user's Discord guild list for a bounded time so
// dashboard pages do not call Discord on every request.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unify-bot/unify-dashboard/internal/config"
	"github.com/unify-bot/unify-dashboard/internal/discord"
)

// ErrMiss is returned when no unexpired entry exists for the user
var ErrMiss = errors.New("cache miss")

// GuildCache stores guild lists keyed by Discord user ID
type GuildCache interface {
	// Get returns the cached guilds or ErrMiss
	Get(ctx context.Context, userID string) ([]discord.UserGuild, error)

	// Set stores guilds for the configured TTL
	Set(ctx context.Context, userID string, guilds []discord.UserGuild) error

	// Delete drops the user's entry
	Delete(ctx context.Context, userID string) error

	// Close releases resources
	Close() error
}

// New builds the cache selected by cfg.Type
func New(cfg config.CacheConfig) (GuildCache, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryCache(cfg.TTL()), nil
	case "valkey":
		return NewValkeyCache(cfg.ValkeyAddr, cfg.TTL())
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 5 * time.Minute
	}
	return ttl
}
