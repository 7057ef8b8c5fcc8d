// Package discord wraps the Discord REST calls the dashboard makes, with the
// bot credential and with a user's OAuth token.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/unify-bot/unify-dashboard/internal/metrics"
)

// session abstracts the discordgo.Session methods used with the bot token.
// *discordgo.Session satisfies this interface.
type session interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	GuildWithCounts(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
}

// Guild is the guild metadata used to render welcome messages
type Guild struct {
	ID          string
	Name        string
	Icon        string
	MemberCount int
}

// Channel is a text channel a welcome message can be sent to
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Client calls Discord with the bot credential
type Client struct {
	bot         session
	botUserID   string
	timeout     time.Duration
	metrics     *metrics.Metrics
	userSession func(token string) (userSession, error)
}

// Options configures a Client
type Options struct {
	BotToken  string
	BotUserID string // the application's client ID doubles as the bot user ID
	Timeout   time.Duration
	Metrics   *metrics.Metrics
}

// New creates a Client backed by a discordgo REST session. Retries are
// disabled; every failure is reported to the caller.
func New(opts Options) (*Client, error) {
	if opts.BotToken == "" {
		return nil, errors.New("discord: bot token is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	s, err := newRESTSession("Bot "+opts.BotToken, timeout)
	if err != nil {
		return nil, err
	}

	c := newClient(s, opts.BotUserID, timeout, opts.Metrics)
	c.userSession = func(token string) (userSession, error) {
		return newRESTSession("Bearer "+token, timeout)
	}
	return c, nil
}

func newClient(s session, botUserID string, timeout time.Duration, m *metrics.Metrics) *Client {
	return &Client{
		bot:       s,
		botUserID: botUserID,
		timeout:   timeout,
		metrics:   m,
	}
}

func newRESTSession(auth string, timeout time.Duration) (*discordgo.Session, error) {
	s, err := discordgo.New(auth)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	s.Client = &http.Client{Timeout: timeout}
	s.MaxRestRetries = 0
	s.ShouldRetryOnRateLimit = false
	return s, nil
}

// call runs fn with a bounded context and records its latency
func (c *Client) call(ctx context.Context, op string, fn func(opt discordgo.RequestOption) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := fn(discordgo.WithContext(ctx))
	c.metrics.ObserveDiscord(op, time.Since(start).Seconds())
	return err
}

// MemberStatus returns the HTTP status Discord answers for the bot's member
// record in guildID. Transport failures return status 0 and the error.
func (c *Client) MemberStatus(ctx context.Context, guildID string) (int, error) {
	err := c.call(ctx, "guild_member", func(opt discordgo.RequestOption) error {
		_, err := c.bot.GuildMember(guildID, c.botUserID, opt)
		return err
	})
	if err == nil {
		return http.StatusOK, nil
	}
	if status, _, ok := ResponseError(err); ok {
		return status, nil
	}
	return 0, err
}

// IsBotMember reports whether the bot belongs to guildID. Anything other than
// a 200 answer counts as not a member; the reason is only logged.
func (c *Client) IsBotMember(ctx context.Context, guildID string) bool {
	status, err := c.MemberStatus(ctx, guildID)
	switch {
	case err != nil:
		slog.Error("Bot presence check failed", "guild_id", guildID, "error", err)
		c.metrics.PresenceCheck(metrics.PresenceError)
		return false
	case status == http.StatusOK:
		c.metrics.PresenceCheck(metrics.PresenceMember)
		return true
	case status == http.StatusNotFound:
		slog.Debug("Bot is not a member of guild", "guild_id", guildID)
		c.metrics.PresenceCheck(metrics.PresenceAbsent)
	case status == http.StatusUnauthorized:
		slog.Warn("Bot token rejected during presence check", "guild_id", guildID)
		c.metrics.PresenceCheck(metrics.PresenceUnauthorized)
	case status == http.StatusForbidden:
		slog.Warn("Bot lacks access to guild during presence check", "guild_id", guildID)
		c.metrics.PresenceCheck(metrics.PresenceForbidden)
	default:
		slog.Warn("Unexpected status from presence check", "guild_id", guildID, "status", status)
		c.metrics.PresenceCheck(metrics.PresenceError)
	}
	return false
}

// GuildInfo fetches the guild with its approximate member count
func (c *Client) GuildInfo(ctx context.Context, guildID string) (*Guild, error) {
	var g *discordgo.Guild
	err := c.call(ctx, "guild", func(opt discordgo.RequestOption) error {
		var err error
		g, err = c.bot.GuildWithCounts(guildID, opt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch guild %s: %w", guildID, err)
	}

	count := g.ApproximateMemberCount
	if count == 0 {
		count = g.MemberCount
	}
	return &Guild{ID: g.ID, Name: g.Name, Icon: g.Icon, MemberCount: count}, nil
}

// TextChannels lists the guild's text channels in Discord's order
func (c *Client) TextChannels(ctx context.Context, guildID string) ([]Channel, error) {
	var channels []*discordgo.Channel
	err := c.call(ctx, "guild_channels", func(opt discordgo.RequestOption) error {
		var err error
		channels, err = c.bot.GuildChannels(guildID, opt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch channels of %s: %w", guildID, err)
	}

	out := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		out = append(out, Channel{ID: ch.ID, Name: ch.Name, Type: "text"})
	}
	return out, nil
}

// SendMessage posts msg to channelID. Non-2xx answers come back as a
// *discordgo.RESTError; see ResponseError.
func (c *Client) SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	var sent *discordgo.Message
	err := c.call(ctx, "channel_message", func(opt discordgo.RequestOption) error {
		var err error
		sent, err = c.bot.ChannelMessageSendComplex(channelID, msg, opt)
		return err
	})
	return sent, err
}

// BotUser returns the account the bot token belongs to
func (c *Client) BotUser(ctx context.Context) (*discordgo.User, error) {
	var u *discordgo.User
	err := c.call(ctx, "current_user", func(opt discordgo.RequestOption) error {
		var err error
		u, err = c.bot.User("@me", opt)
		return err
	})
	return u, err
}

// ResponseError extracts the HTTP status and body from a Discord REST error
func ResponseError(err error) (status int, body string, ok bool) {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return 0, "", false
	}
	return restErr.Response.StatusCode, string(restErr.ResponseBody), true
}
