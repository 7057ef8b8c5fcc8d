package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/unify-bot/unify-dashboard/internal/audit"
	"github.com/unify-bot/unify-dashboard/internal/discord"
	"github.com/unify-bot/unify-dashboard/internal/metrics"
	"github.com/unify-bot/unify-dashboard/internal/models"
	"github.com/unify-bot/unify-dashboard/internal/store"
	"github.com/unify-bot/unify-dashboard/internal/welcome"
)

// Fallback texts for test sends
const (
	testEmbedTitle       = "¡Bienvenido al servidor!"
	testEmbedDescription = "¡Hola {user.mention}! {welcome.message} {welcome.rules}"
	testPlainMessage     = "¡Hola {user.mention}! ¡Bienvenido a {server.name}!"
)

// DiscordAPI is the subset of the Discord client the service calls
type DiscordAPI interface {
	GuildInfo(ctx context.Context, guildID string) (*discord.Guild, error)
	TextChannels(ctx context.Context, guildID string) ([]discord.Channel, error)
	SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error)
}

// WelcomeService contains the business logic for welcome configuration.
type WelcomeService struct {
	store   store.Store
	discord DiscordAPI
	metrics *metrics.Metrics
	now     func() time.Time
}

// New creates a new WelcomeService.
func New(st store.Store, d DiscordAPI, m *metrics.Metrics) *WelcomeService {
	return &WelcomeService{store: st, discord: d, metrics: m, now: time.Now}
}

// GetOrCreate returns the guild's configuration, creating the defaults on
// first access.
func (s *WelcomeService) GetOrCreate(ctx context.Context, guildID, guildName string) (*models.ServerConfig, error) {
	cfg, err := s.store.GetOrCreate(ctx, guildID, guildName)
	if err != nil {
		s.storeFailed(err)
		return nil, err
	}
	return cfg, nil
}

// UpdateWelcome merges the partial update over the stored block, saves the
// result and writes an audit log entry. guildName is recorded when the
// document is created by this call.
func (s *WelcomeService) UpdateWelcome(ctx context.Context, actorID, guildID, guildName string, update welcome.Partial) (*models.ServerConfig, error) {
	if channelID, ok := update.ChannelID.Get(); ok && channelID != "" {
		if err := s.checkChannel(ctx, guildID, channelID); err != nil {
			return nil, err
		}
	}

	var existing *welcome.Config
	current, err := s.store.Get(ctx, guildID)
	switch {
	case err == nil:
		existing = &current.Welcome
	case errors.Is(err, store.ErrNotFound):
	default:
		s.storeFailed(err)
		return nil, err
	}

	merged := welcome.Merge(existing, update)
	saved, err := s.store.UpsertWelcome(ctx, guildID, guildName, merged)
	if err != nil {
		s.storeFailed(err)
		return nil, err
	}

	if err := audit.LogAction(ctx, s.store, actorID, audit.ActionUpdateWelcome, audit.GuildResource(guildID), map[string]interface{}{
		"enabled":    merged.Enabled,
		"channel_id": merged.ChannelID,
		"embed":      merged.Embed.Enabled,
	}); err != nil {
		slog.Warn("Failed to write audit log", "guild_id", guildID, "error", err)
	}
	return saved, nil
}

// Channels lists the guild's text channels
func (s *WelcomeService) Channels(ctx context.Context, guildID string) ([]discord.Channel, error) {
	return s.discord.TextChannels(ctx, guildID)
}

// SendTest renders the requested message for req.User and posts it to the
// welcome channel. Input problems are reported before Discord is called.
func (s *WelcomeService) SendTest(ctx context.Context, actorID string, req TestRequest) error {
	stored, err := s.store.Get(ctx, req.GuildID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.storeFailed(err)
		return err
	}

	channelID := req.ChannelID
	guildName := ""
	if stored != nil {
		guildName = stored.GuildName
		if channelID == "" {
			channelID = stored.Welcome.ChannelID
		}
	}
	if channelID == "" {
		s.metrics.Dispatch(metrics.DispatchRejected)
		return &ValidationError{Message: "No hay un canal de bienvenida configurado. Por favor, configura un canal de bienvenida primero."}
	}

	useEmbed := req.IsEmbed && req.Embed != nil
	if req.Message == "" && (!useEmbed || (req.Embed.Title == "" && req.Embed.Description == "")) {
		s.metrics.Dispatch(metrics.DispatchRejected)
		return &ValidationError{Message: "El mensaje de bienvenida no puede estar vacío. Por favor, proporciona un mensaje o configura un embed."}
	}

	if err := s.checkChannel(ctx, req.GuildID, channelID); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			s.metrics.Dispatch(metrics.DispatchRejected)
		}
		return err
	}

	guild, err := s.discord.GuildInfo(ctx, req.GuildID)
	if err != nil {
		status, _, _ := discord.ResponseError(err)
		return &GuildLookupError{GuildID: req.GuildID, Status: status, Err: err}
	}
	if guild.Name != "" {
		guildName = guild.Name
	}

	now := s.now()
	vars := welcome.NewVariables(req.User, welcome.Guild{
		ID:          req.GuildID,
		Name:        guildName,
		MemberCount: guild.MemberCount,
	}, now)

	var msg *discordgo.MessageSend
	if useEmbed {
		msg = s.buildEmbed(req, vars, now)
	} else {
		msg = &discordgo.MessageSend{Content: welcome.Resolve(orDefault(req.Message, testPlainMessage), vars)}
	}
	msg.AllowedMentions = &discordgo.MessageAllowedMentions{Users: []string{req.User.ID}}

	if _, err := s.discord.SendMessage(ctx, channelID, msg); err != nil {
		s.metrics.Dispatch(metrics.DispatchFailed)
		if status, body, ok := discord.ResponseError(err); ok {
			slog.Warn("Discord rejected test welcome", "guild_id", req.GuildID, "channel_id", channelID, "status", status)
			return &DispatchError{Status: status, Body: body}
		}
		return fmt.Errorf("send test welcome: %w", err)
	}
	s.metrics.Dispatch(metrics.DispatchSent)

	if err := audit.LogAction(ctx, s.store, actorID, audit.ActionSendTestWelcome, audit.GuildResource(req.GuildID), map[string]interface{}{
		"channel_id": channelID,
		"embed":      useEmbed,
	}); err != nil {
		slog.Warn("Failed to write audit log", "guild_id", req.GuildID, "error", err)
	}
	return nil
}

// checkChannel rejects channel IDs that are not text channels of guildID
func (s *WelcomeService) checkChannel(ctx context.Context, guildID, channelID string) error {
	channels, err := s.discord.TextChannels(ctx, guildID)
	if err != nil {
		status, _, _ := discord.ResponseError(err)
		return &GuildLookupError{GuildID: guildID, Status: status, Err: err}
	}
	for _, ch := range channels {
		if ch.ID == channelID {
			return nil
		}
	}
	slog.Warn("Rejected channel outside guild", "guild_id", guildID, "channel_id", channelID)
	return &ValidationError{Message: "El canal no pertenece a este servidor"}
}

func (s *WelcomeService) buildEmbed(req TestRequest, vars welcome.Variables, now time.Time) *discordgo.MessageSend {
	e := req.Embed

	color, err := welcome.EmbedColor(e.Color)
	if err != nil {
		slog.Warn("Invalid embed color, using default", "guild_id", req.GuildID, "error", err)
	}

	avatar := req.User.AvatarURL()
	embed := &discordgo.MessageEmbed{
		Title:       orDefault(welcome.Resolve(e.Title, vars), testEmbedTitle),
		Description: welcome.Resolve(orDefault(e.Description, testEmbedDescription), vars),
		Color:       color,
		Timestamp:   now.UTC().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text:    "ID de usuario: " + req.User.ID,
			IconURL: avatar,
		},
	}
	if e.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: welcome.Resolve(e.Thumbnail, vars)}
	}
	if e.Image != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: welcome.Resolve(e.Image, vars)}
	}
	return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}
}

func (s *WelcomeService) storeFailed(err error) {
	var se *store.StorageError
	if errors.As(err, &se) {
		s.metrics.StoreError(se.Op)
	}
}

// LookupStatus maps a GuildLookupError to the HTTP status shown to the user
func LookupStatus(e *GuildLookupError) int {
	switch e.Status {
	case http.StatusNotFound, http.StatusForbidden:
		return e.Status
	default:
		return http.StatusInternalServerError
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
