package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/unify-bot/unify-dashboard/internal/auth"
	"github.com/unify-bot/unify-dashboard/internal/discord"
)

// GuildContextKey is the key used to store the caller's guild entry
const GuildContextKey = "guild"

// GuildFinder looks up the caller's entry for a guild
type GuildFinder interface {
	Find(ctx context.Context, user *auth.User, guildID string) (*discord.UserGuild, error)
}

// DenyFunc writes the response for a rejected request. status is 401 for an
// expired Discord session, 404 for an unknown guild, 403 for missing
// permissions and 500 when the guild list could not be loaded.
type DenyFunc func(c *gin.Context, status int)

// RequireGuildManager lets the request through only when the caller is in
// the guild named by param with ADMINISTRATOR or MANAGE_GUILD.
func RequireGuildManager(finder GuildFinder, param string, deny DenyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.GetUserFromContext(c)
		if err != nil {
			deny(c, http.StatusUnauthorized)
			c.Abort()
			return
		}

		guildID := c.Param(param)
		guild, err := finder.Find(c.Request.Context(), user, guildID)
		switch {
		case errors.Is(err, auth.ErrSessionExpired):
			deny(c, http.StatusUnauthorized)
			c.Abort()
			return
		case err != nil:
			slog.Error("Failed to load user guilds", "user_id", user.ID, "error", err)
			deny(c, http.StatusInternalServerError)
			c.Abort()
			return
		case guild == nil:
			deny(c, http.StatusNotFound)
			c.Abort()
			return
		case !guild.CanManage():
			slog.Warn("Guild access denied", "user_id", user.ID, "guild_id", guildID)
			deny(c, http.StatusForbidden)
			c.Abort()
			return
		}

		c.Set(GuildContextKey, guild)
		c.Next()
	}
}

// GetGuild returns the guild stored by RequireGuildManager
func GetGuild(c *gin.Context) (*discord.UserGuild, bool) {
	v, ok := c.Get(GuildContextKey)
	if !ok {
		return nil, false
	}
	g, ok := v.(*discord.UserGuild)
	return g, ok
}
