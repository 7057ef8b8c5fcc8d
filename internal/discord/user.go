package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// userSession is the subset of discordgo.Session used with a user's OAuth token
type userSession interface {
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
	RequestWithBucketID(method, urlStr string, data interface{}, bucketID string, options ...discordgo.RequestOption) ([]byte, error)
}

// UserGuild is a guild the logged-in user belongs to. Permissions is kept as
// the decimal string Discord sends so no bits are lost.
type UserGuild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Owner       bool   `json:"owner"`
	Permissions string `json:"permissions"`
}

// CanManage reports whether the user may configure this guild. Discord
// reports every bit for owners, so ownership needs no separate check.
func (g UserGuild) CanManage() bool {
	return CanManageGuild(g.Permissions)
}

func (c *Client) bearer(token string) (userSession, error) {
	if c.userSession == nil {
		return nil, fmt.Errorf("discord: user sessions not configured")
	}
	return c.userSession(token)
}

// CurrentUser returns the user an OAuth access token belongs to
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*discordgo.User, error) {
	s, err := c.bearer(accessToken)
	if err != nil {
		return nil, err
	}
	var u *discordgo.User
	err = c.call(ctx, "oauth_user", func(opt discordgo.RequestOption) error {
		var err error
		u, err = s.User("@me", opt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch current user: %w", err)
	}
	return u, nil
}

// UserGuilds lists the guilds of the user an OAuth access token belongs to
func (c *Client) UserGuilds(ctx context.Context, accessToken string) ([]UserGuild, error) {
	s, err := c.bearer(accessToken)
	if err != nil {
		return nil, err
	}

	var body []byte
	err = c.call(ctx, "oauth_guilds", func(opt discordgo.RequestOption) error {
		var err error
		body, err = s.RequestWithBucketID(http.MethodGet,
			discordgo.EndpointUserGuilds("@me"), nil, discordgo.EndpointUserGuilds(""), opt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch user guilds: %w", err)
	}

	var guilds []UserGuild
	if err := json.Unmarshal(body, &guilds); err != nil {
		return nil, fmt.Errorf("decode user guilds: %w", err)
	}
	return guilds, nil
}

// ManagedGuilds keeps the guilds the user may configure, in order
func ManagedGuilds(guilds []UserGuild) []UserGuild {
	out := make([]UserGuild, 0, len(guilds))
	for _, g := range guilds {
		if g.CanManage() {
			out = append(out, g)
		}
	}
	return out
}
