// Package dashboard assembles the list of servers a user can configure.
package dashboard

import (
	"context"
	"fmt"
	"net/url"

	"github.com/unify-bot/unify-dashboard/internal/discord"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the parallel presence checks per request
const DefaultConcurrency = 4

// PresenceChecker reports whether the bot is in a guild
type PresenceChecker interface {
	IsBotMember(ctx context.Context, guildID string) bool
}

// IconSource resolves a guild icon URL
type IconSource interface {
	IconURL(ctx context.Context, guildID, icon string) string
}

// Server is one entry of the dashboard server list
type Server struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	IconURL    string `json:"iconUrl"`
	BotInGuild bool   `json:"botInGuild"`
	HasAdmin   bool   `json:"hasAdmin"`
}

// Assembler builds server lists with a bounded fan-out of presence checks
type Assembler struct {
	presence    PresenceChecker
	icons       IconSource
	concurrency int
}

// NewAssembler creates an Assembler. concurrency <= 0 uses DefaultConcurrency.
func NewAssembler(presence PresenceChecker, icons IconSource, concurrency int) *Assembler {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Assembler{presence: presence, icons: icons, concurrency: concurrency}
}

// Servers keeps the guilds the user may manage and annotates each with bot
// presence and icon, preserving the input order. A failed check marks only
// its own guild as bot-absent.
func (a *Assembler) Servers(ctx context.Context, guilds []discord.UserGuild) ([]Server, error) {
	managed := discord.ManagedGuilds(guilds)
	out := make([]Server, len(managed))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, guild := range managed {
		g.Go(func() error {
			s := Server{
				ID:       guild.ID,
				Name:     guild.Name,
				Icon:     guild.Icon,
				HasAdmin: true,
			}
			s.BotInGuild = a.presence.IsBotMember(gctx, guild.ID)
			if a.icons != nil {
				s.IconURL = a.icons.IconURL(gctx, guild.ID, guild.Icon)
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("assemble servers: %w", err)
	}
	return out, nil
}

// InviteURL is the link that adds the bot to a server
func InviteURL(clientID string) string {
	q := url.Values{}
	q.Set("client_id", clientID)
	q.Set("permissions", "8")
	return "https://discord.com/oauth2/authorize?" + q.Encode() + "&scope=bot%20applications.commands"
}
