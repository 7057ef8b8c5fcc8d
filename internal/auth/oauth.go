package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/unify-bot/unify-dashboard/internal/config"
	"github.com/unify-bot/unify-dashboard/internal/discord"
	"golang.org/x/oauth2"
)

// Scopes requested from Discord
var Scopes = []string{"identify", "guilds", "guilds.members.read"}

// Endpoint is Discord's OAuth2 endpoint
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://discord.com/oauth2/authorize",
	TokenURL:  "https://discord.com/api/oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// UserAPI is the part of the Discord client used with a user's token
type UserAPI interface {
	CurrentUser(ctx context.Context, accessToken string) (*discordgo.User, error)
	UserGuilds(ctx context.Context, accessToken string) ([]discord.UserGuild, error)
}

// DiscordOAuth runs the authorization code flow against Discord
type DiscordOAuth struct {
	config *oauth2.Config
	api    UserAPI
	guilds *Guilds
}

// NewDiscordOAuth creates the Discord login flow
func NewDiscordOAuth(cfg config.DiscordConfig, api UserAPI, guilds *Guilds) *DiscordOAuth {
	return &DiscordOAuth{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     Endpoint,
			Scopes:       Scopes,
		},
		api:    api,
		guilds: guilds,
	}
}

// GetAuthURL returns the URL to redirect users to for authentication
func (a *DiscordOAuth) GetAuthURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// HandleCallback exchanges the code, loads the user and primes the guild cache
func (a *DiscordOAuth) HandleCallback(ctx context.Context, code string) (*User, error) {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	du, err := a.api.CurrentUser(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:            du.ID,
		Username:      du.Username,
		Avatar:        du.Avatar,
		Discriminator: du.Discriminator,
		AccessToken:   token.AccessToken,
	}

	// A failed prefetch is retried on first use
	if _, err := a.guilds.Refresh(ctx, user); err != nil {
		slog.Warn("Failed to prefetch user guilds", "user_id", user.ID, "error", err)
	}

	slog.Info("User logged in via Discord", "user_id", user.ID, "username", user.Username)
	return user, nil
}
