package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/unify-bot/unify-dashboard/internal/api/middleware"
	"github.com/unify-bot/unify-dashboard/internal/auth"
	"github.com/unify-bot/unify-dashboard/internal/dashboard"
)

// PageHandler renders the server-side HTML pages
type PageHandler struct {
	svc       WelcomeService
	servers   ServerLister
	guilds    GuildSource
	sessions  *auth.Sessions
	botInvite string
}

// NewPageHandler creates a new page handler
func NewPageHandler(svc WelcomeService, servers ServerLister, guilds GuildSource, sessions *auth.Sessions, clientID string) *PageHandler {
	return &PageHandler{
		svc:       svc,
		servers:   servers,
		guilds:    guilds,
		sessions:  sessions,
		botInvite: dashboard.InviteURL(clientID),
	}
}

func currentUser(c *gin.Context) *auth.User {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return nil
	}
	return user
}

func renderError(c *gin.Context, status int, title, message string) {
	c.HTML(status, "error.html", gin.H{
		"title":   title,
		"message": message,
		"user":    currentUser(c),
	})
}

// Index renders the landing page
func (h *PageHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"title":     "Inicio",
		"user":      currentUser(c),
		"dashboard": false,
		"botInvite": h.botInvite,
	})
}

// Dashboard renders the list of servers the user administers
func (h *PageHandler) Dashboard(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	guilds, err := h.guilds.List(c.Request.Context(), user)
	if errors.Is(err, auth.ErrSessionExpired) {
		h.expired(c)
		return
	}
	if err != nil {
		slog.Error("Failed to load user guilds", "user_id", user.ID, "error", err)
		renderError(c, http.StatusInternalServerError, "Error del servidor",
			"Ocurrió un error al cargar el dashboard. Por favor, inténtalo de nuevo más tarde.")
		return
	}

	servers, err := h.servers.Servers(c.Request.Context(), guilds)
	if err != nil {
		slog.Error("Failed to assemble server list", "user_id", user.ID, "error", err)
		renderError(c, http.StatusInternalServerError, "Error del servidor",
			"Ocurrió un error al cargar el dashboard. Por favor, inténtalo de nuevo más tarde.")
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"title":     "Dashboard - Mis Servidores",
		"user":      user,
		"guilds":    servers,
		"dashboard": true,
		"botInvite": h.botInvite,
	})
}

// ServerConfig renders the configuration page of one server
func (h *PageHandler) ServerConfig(c *gin.Context) {
	guild, ok := middleware.GetGuild(c)
	if !ok {
		h.Deny(c, http.StatusNotFound)
		return
	}

	cfg, err := h.svc.GetOrCreate(c.Request.Context(), guild.ID, guild.Name)
	if err != nil {
		slog.Error("Failed to load server configuration", "guild_id", guild.ID, "error", err)
		renderError(c, http.StatusInternalServerError, "Error del servidor",
			"Ocurrió un error al cargar la configuración. Por favor, inténtalo de nuevo más tarde.")
		return
	}

	iconURL := ""
	if guild.Icon != "" {
		iconURL = "https://cdn.discordapp.com/icons/" + guild.ID + "/" + guild.Icon + ".png"
	}

	c.HTML(http.StatusOK, "server_config.html", gin.H{
		"title":     "Configuración - " + guild.Name,
		"dashboard": true,
		"guild": gin.H{
			"id":          guild.ID,
			"name":        guild.Name,
			"icon":        iconURL,
			"permissions": guild.Permissions,
		},
		"config": cfg,
		"user":   currentUser(c),
	})
}

// Deny renders the page shown when guild access is rejected
func (h *PageHandler) Deny(c *gin.Context, status int) {
	switch status {
	case http.StatusUnauthorized:
		h.expired(c)
	case http.StatusNotFound:
		renderError(c, status, "Servidor no encontrado",
			"No se encontró el servidor especificado o no tienes permisos para acceder a él.")
	case http.StatusForbidden:
		renderError(c, status, "Permisos insuficientes",
			"No tienes permisos de administrador en este servidor.")
	default:
		renderError(c, http.StatusInternalServerError, "Error del servidor",
			"Ocurrió un error al cargar la configuración. Por favor, inténtalo de nuevo más tarde.")
	}
}

// expired ends a session whose Discord token no longer works
func (h *PageHandler) expired(c *gin.Context) {
	if user := currentUser(c); user != nil {
		h.guilds.Forget(c.Request.Context(), user.ID)
	}
	h.sessions.ClearCookie(c)
	c.Redirect(http.StatusFound, "/")
}

// Terms renders the terms of service
func (h *PageHandler) Terms(c *gin.Context) {
	c.HTML(http.StatusOK, "terminos.html", gin.H{"title": "Términos de servicio", "user": currentUser(c)})
}

// Privacy renders the privacy policy
func (h *PageHandler) Privacy(c *gin.Context) {
	c.HTML(http.StatusOK, "privacidad.html", gin.H{"title": "Política de privacidad", "user": currentUser(c)})
}

// NotFound renders the 404 page for unknown routes
func (h *PageHandler) NotFound(c *gin.Context) {
	renderError(c, http.StatusNotFound, "404 - No Encontrado",
		"La página solicitada ("+c.Request.URL.Path+") no existe.")
}

// Favicon redirects to the site logo
func (h *PageHandler) Favicon(c *gin.Context) {
	c.Redirect(http.StatusFound, "/images/logo.svg")
}
