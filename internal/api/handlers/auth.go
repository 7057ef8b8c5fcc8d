package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/unify-bot/unify-dashboard/internal/audit"
	"github.com/unify-bot/unify-dashboard/internal/auth"
)

const stateCookie = "oauth_state"

// OAuthFlow is the Discord login flow
type OAuthFlow interface {
	GetAuthURL(state string) string
	HandleCallback(ctx context.Context, code string) (*auth.User, error)
}

// AuthHandler serves login, callback and logout
type AuthHandler struct {
	oauth    OAuthFlow
	sessions *auth.Sessions
	guilds   GuildSource
	audit    audit.Recorder
	secure   bool
}

// NewAuthHandler creates a new auth handler. rec may be nil.
func NewAuthHandler(oauth OAuthFlow, sessions *auth.Sessions, guilds GuildSource, rec audit.Recorder, secure bool) *AuthHandler {
	return &AuthHandler{oauth: oauth, sessions: sessions, guilds: guilds, audit: rec, secure: secure}
}

// Login godoc
// @Summary Start Discord login
// @Description Redirects the user to Discord for authorization
// @Tags auth
// @Success 307 {string} string "Redirect to Discord"
// @Router /auth/discord [get]
func (h *AuthHandler) Login(c *gin.Context) {
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, 600, "/", "", h.secure, true)
	c.Redirect(http.StatusTemporaryRedirect, h.oauth.GetAuthURL(state))
}

// Callback godoc
// @Summary Handle Discord callback
// @Description Exchanges the authorization code and starts a dashboard session
// @Tags auth
// @Param code query string true "Authorization code"
// @Param state query string true "State parameter"
// @Success 302 {string} string "Redirect to /dashboard"
// @Router /auth/discord/callback [get]
func (h *AuthHandler) Callback(c *gin.Context) {
	state := c.Query("state")
	storedState, err := c.Cookie(stateCookie)
	if err != nil || state == "" || state != storedState {
		slog.Warn("Invalid OAuth state", "state", state)
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", h.secure, true)

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, "/")
		return
	}

	user, err := h.oauth.HandleCallback(c.Request.Context(), code)
	if err != nil {
		slog.Error("Discord callback failed", "error", err)
		h.record(c, "", audit.ActionLoginFailed)
		c.Redirect(http.StatusFound, "/")
		return
	}

	if err := h.sessions.SetCookie(c, user); err != nil {
		slog.Error("Failed to issue session", "user_id", user.ID, "error", err)
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.record(c, user.ID, audit.ActionLogin)
	c.Redirect(http.StatusFound, "/dashboard")
}

// Logout godoc
// @Summary Log out
// @Description Clears the session cookie and the cached server list
// @Tags auth
// @Success 302 {string} string "Redirect to /"
// @Router /logout [get]
func (h *AuthHandler) Logout(c *gin.Context) {
	if user, err := h.sessions.FromRequest(c); err == nil {
		h.guilds.Forget(c.Request.Context(), user.ID)
	}
	h.sessions.ClearCookie(c)
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) record(c *gin.Context, userID, action string) {
	if h.audit == nil {
		return
	}
	details := map[string]interface{}{"ip": c.ClientIP()}
	if err := audit.LogAction(c.Request.Context(), h.audit, userID, action, "auth", details); err != nil {
		slog.Warn("Failed to write audit log", "action", action, "error", err)
	}
}
