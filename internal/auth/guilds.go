package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/unify-bot/unify-dashboard/internal/cache"
	"github.com/unify-bot/unify-dashboard/internal/discord"
)

// Guilds returns each user's guild list, from the cache when possible
type Guilds struct {
	api   UserAPI
	cache cache.GuildCache
}

// NewGuilds creates a guild lister over the given cache
func NewGuilds(api UserAPI, c cache.GuildCache) *Guilds {
	return &Guilds{api: api, cache: c}
}

// List returns the user's guilds, fetching them from Discord on a cache miss.
// A rejected OAuth token yields ErrSessionExpired.
func (g *Guilds) List(ctx context.Context, user *User) ([]discord.UserGuild, error) {
	guilds, err := g.cache.Get(ctx, user.ID)
	if err == nil {
		return guilds, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		slog.Warn("Guild cache read failed", "user_id", user.ID, "error", err)
	}
	return g.Refresh(ctx, user)
}

// Refresh fetches the user's guilds from Discord and replaces the cached list
func (g *Guilds) Refresh(ctx context.Context, user *User) ([]discord.UserGuild, error) {
	if user.AccessToken == "" {
		return nil, ErrSessionExpired
	}

	guilds, err := g.api.UserGuilds(ctx, user.AccessToken)
	if err != nil {
		if status, _, ok := discord.ResponseError(err); ok && status == http.StatusUnauthorized {
			return nil, ErrSessionExpired
		}
		return nil, err
	}

	if err := g.cache.Set(ctx, user.ID, guilds); err != nil {
		slog.Warn("Guild cache write failed", "user_id", user.ID, "error", err)
	}
	return guilds, nil
}

// Find returns the user's entry for guildID, or nil when the user is not a member
func (g *Guilds) Find(ctx context.Context, user *User, guildID string) (*discord.UserGuild, error) {
	guilds, err := g.List(ctx, user)
	if err != nil {
		return nil, err
	}
	for i := range guilds {
		if guilds[i].ID == guildID {
			return &guilds[i], nil
		}
	}
	return nil, nil
}

// Forget drops the user's cached guilds
func (g *Guilds) Forget(ctx context.Context, userID string) {
	if err := g.cache.Delete(ctx, userID); err != nil {
		slog.Warn("Guild cache delete failed", "user_id", userID, "error", err)
	}
}
