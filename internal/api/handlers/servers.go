package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/unify-bot/unify-dashboard/internal/api/middleware"
	"github.com/unify-bot/unify-dashboard/internal/auth"
	"github.com/unify-bot/unify-dashboard/internal/dashboard"
	"github.com/unify-bot/unify-dashboard/internal/discord"
	"github.com/unify-bot/unify-dashboard/internal/models"
	"github.com/unify-bot/unify-dashboard/internal/service"
	"github.com/unify-bot/unify-dashboard/internal/welcome"
)

// WelcomeService is the business logic behind the server routes
type WelcomeService interface {
	GetOrCreate(ctx context.Context, guildID, guildName string) (*models.ServerConfig, error)
	UpdateWelcome(ctx context.Context, actorID, guildID, guildName string, update welcome.Partial) (*models.ServerConfig, error)
	Channels(ctx context.Context, guildID string) ([]discord.Channel, error)
	SendTest(ctx context.Context, actorID string, req service.TestRequest) error
}

// ServerLister annotates a user's guilds for the dashboard
type ServerLister interface {
	Servers(ctx context.Context, guilds []discord.UserGuild) ([]dashboard.Server, error)
}

// GuildSource provides the logged-in user's guild list
type GuildSource interface {
	List(ctx context.Context, user *auth.User) ([]discord.UserGuild, error)
	Refresh(ctx context.Context, user *auth.User) ([]discord.UserGuild, error)
	Forget(ctx context.Context, userID string)
}

// ServerHandler serves the per-server JSON API
type ServerHandler struct {
	svc     WelcomeService
	servers ServerLister
	guilds  GuildSource
}

// NewServerHandler creates a new server handler
func NewServerHandler(svc WelcomeService, servers ServerLister, guilds GuildSource) *ServerHandler {
	return &ServerHandler{svc: svc, servers: servers, guilds: guilds}
}

type configResponse struct {
	Success bool                 `json:"success"`
	Config  *models.ServerConfig `json:"config"`
	Message string               `json:"message,omitempty"`
}

type serversResponse struct {
	Success bool               `json:"success"`
	Servers []dashboard.Server `json:"servers"`
}

type channelsResponse struct {
	Success  bool              `json:"success"`
	Channels []discord.Channel `json:"channels"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// urlField is the {url} object the dashboard sends for embed images
type urlField struct {
	URL string `json:"url"`
}

// TestWelcomeRequest is the body of a test send
type TestWelcomeRequest struct {
	Message   string `json:"message"`
	IsEmbed   bool   `json:"isEmbed"`
	ChannelID string `json:"channelId"`
	Embed     *struct {
		Title       string        `json:"title"`
		Description string        `json:"description"`
		Color       welcome.Color `json:"color"`
		Thumbnail   *urlField     `json:"thumbnail"`
		Image       *urlField     `json:"image"`
	} `json:"embed"`
}

func (r TestWelcomeRequest) toService(guildID string, user *auth.User) service.TestRequest {
	req := service.TestRequest{
		GuildID:   guildID,
		ChannelID: r.ChannelID,
		Message:   r.Message,
		IsEmbed:   r.IsEmbed,
		User:      user.Member(),
	}
	if r.Embed != nil {
		e := &service.TestEmbed{
			Title:       r.Embed.Title,
			Description: r.Embed.Description,
			Color:       r.Embed.Color,
		}
		if r.Embed.Thumbnail != nil {
			e.Thumbnail = r.Embed.Thumbnail.URL
		}
		if r.Embed.Image != nil {
			e.Image = r.Embed.Image.URL
		}
		req.Embed = e
	}
	return req
}

// ListServers godoc
// @Summary List administered servers
// @Description Returns the servers the user can manage, with bot presence and icon
// @Tags servers
// @Produce json
// @Success 200 {object} serversResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/servers [get]
func (h *ServerHandler) ListServers(c *gin.Context) {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		DenyAPI(c, http.StatusUnauthorized)
		return
	}

	guilds, err := h.guilds.List(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, auth.ErrSessionExpired) {
			DenyAPI(c, http.StatusUnauthorized)
			return
		}
		handleServiceError(c, err, "Error al obtener la lista de servidores")
		return
	}

	servers, err := h.servers.Servers(c.Request.Context(), guilds)
	if err != nil {
		handleServiceError(c, err, "Error al obtener la lista de servidores")
		return
	}
	c.JSON(http.StatusOK, serversResponse{Success: true, Servers: servers})
}

// GetConfig godoc
// @Summary Get server configuration
// @Description Returns the server's configuration, creating the defaults on first access
// @Tags servers
// @Produce json
// @Param serverId path string true "Guild ID"
// @Success 200 {object} configResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/servers/{serverId}/config [get]
func (h *ServerHandler) GetConfig(c *gin.Context) {
	guild, ok := middleware.GetGuild(c)
	if !ok {
		DenyAPI(c, http.StatusNotFound)
		return
	}

	cfg, err := h.svc.GetOrCreate(c.Request.Context(), guild.ID, guild.Name)
	if err != nil {
		handleServiceError(c, err, "Error al cargar la configuración")
		return
	}
	c.JSON(http.StatusOK, configResponse{Success: true, Config: cfg})
}

// UpdateWelcome godoc
// @Summary Update welcome configuration
// @Description Merges the submitted fields over the stored welcome block
// @Tags servers
// @Accept json
// @Produce json
// @Param serverId path string true "Guild ID"
// @Param welcome body welcome.Partial true "Welcome fields"
// @Success 200 {object} configResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/servers/{serverId}/welcome [post]
func (h *ServerHandler) UpdateWelcome(c *gin.Context) {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		DenyAPI(c, http.StatusUnauthorized)
		return
	}
	guild, ok := middleware.GetGuild(c)
	if !ok {
		DenyAPI(c, http.StatusNotFound)
		return
	}

	var update welcome.Partial
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Datos de configuración inválidos", Details: err.Error()})
		return
	}

	cfg, err := h.svc.UpdateWelcome(c.Request.Context(), user.ID, guild.ID, guild.Name, update)
	if err != nil {
		handleServiceError(c, err, "Error al guardar la configuración")
		return
	}

	slog.Info("Welcome configuration updated", "guild_id", guild.ID, "user_id", user.ID)
	c.JSON(http.StatusOK, configResponse{
		Success: true,
		Config:  cfg,
		Message: "Configuración de bienvenida actualizada correctamente",
	})
}

// ListChannels godoc
// @Summary List text channels
// @Description Returns the guild's text channels
// @Tags servers
// @Produce json
// @Param serverId path string true "Guild ID"
// @Success 200 {object} channelsResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/servers/{serverId}/channels [get]
func (h *ServerHandler) ListChannels(c *gin.Context) {
	guildID := c.Param("serverId")
	channels, err := h.svc.Channels(c.Request.Context(), guildID)
	if err != nil {
		slog.Error("Failed to list channels", "guild_id", guildID, "error", err)
		fail(c, http.StatusInternalServerError, "No se pudieron cargar los canales del servidor")
		return
	}
	c.JSON(http.StatusOK, channelsResponse{Success: true, Channels: channels})
}

// SendTestWelcome godoc
// @Summary Send a test welcome message
// @Description Renders the message for the current user and posts it to the welcome channel
// @Tags servers
// @Accept json
// @Produce json
// @Param serverId path string true "Guild ID"
// @Param request body TestWelcomeRequest true "Test message"
// @Success 200 {object} messageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/servers/{serverId}/test-welcome [post]
func (h *ServerHandler) SendTestWelcome(c *gin.Context) {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		DenyAPI(c, http.StatusUnauthorized)
		return
	}

	var req TestWelcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Solicitud inválida", Details: err.Error()})
		return
	}

	if err := h.svc.SendTest(c.Request.Context(), user.ID, req.toService(c.Param("serverId"), user)); err != nil {
		handleServiceError(c, err, "Error interno del servidor")
		return
	}
	c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Mensaje de prueba enviado correctamente"})
}

// RefreshGuilds godoc
// @Summary Refresh the user's server list
// @Description Refetches the user's guilds from Discord
// @Tags servers
// @Produce json
// @Success 200 {object} messageResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /dashboard/refresh [post]
func (h *ServerHandler) RefreshGuilds(c *gin.Context) {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		DenyAPI(c, http.StatusUnauthorized)
		return
	}

	if _, err := h.guilds.Refresh(c.Request.Context(), user); err != nil {
		if errors.Is(err, auth.ErrSessionExpired) {
			DenyAPI(c, http.StatusUnauthorized)
			return
		}
		slog.Error("Failed to refresh user guilds", "user_id", user.ID, "error", err)
		fail(c, http.StatusInternalServerError, "Error al actualizar la lista de servidores")
		return
	}
	c.JSON(http.StatusOK, messageResponse{Success: true})
}
