package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/unify-bot/unify-dashboard/internal/discord"
)

// BotAPI is the bot-credential part of the Discord client used by the debug routes
type BotAPI interface {
	BotUser(ctx context.Context) (*discordgo.User, error)
	MemberStatus(ctx context.Context, guildID string) (int, error)
}

// DebugHandler serves the bot self-check routes
type DebugHandler struct {
	bot      BotAPI
	clientID string
}

// NewDebugHandler creates a new debug handler
func NewDebugHandler(bot BotAPI, clientID string) *DebugHandler {
	return &DebugHandler{bot: bot, clientID: clientID}
}

// BotToken godoc
// @Summary Check the bot token
// @Description Calls users/@me with the bot token
// @Tags debug
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/debug/bot-token [get]
func (h *DebugHandler) BotToken(c *gin.Context) {
	info := gin.H{
		"clientId":  h.clientID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	u, err := h.bot.BotUser(c.Request.Context())
	if err != nil {
		status, _, ok := discord.ResponseError(err)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor", "message": err.Error()})
			return
		}
		info["status"] = status
		info["valid"] = false
		info["message"] = "Token inválido o error inesperado"
		c.JSON(http.StatusOK, info)
		return
	}

	info["status"] = http.StatusOK
	info["valid"] = true
	info["message"] = "Token del bot es válido"
	info["botInfo"] = gin.H{
		"id":            u.ID,
		"username":      u.Username,
		"discriminator": u.Discriminator,
		"verified":      u.Verified,
		"mfa_enabled":   u.MFAEnabled,
	}
	c.JSON(http.StatusOK, info)
}

// SimpleBotCheck godoc
// @Summary Raw bot membership check
// @Description Returns the status Discord answers for the bot's member record
// @Tags debug
// @Produce json
// @Param guildId path string true "Guild ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/debug/simple-bot-check/{guildId} [get]
func (h *DebugHandler) SimpleBotCheck(c *gin.Context) {
	guildID := c.Param("guildId")
	status, err := h.bot.MemberStatus(c.Request.Context(), guildID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"guildId":    guildID,
		"botUserId":  h.clientID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"status":     status,
		"botInGuild": status == http.StatusOK,
	})
}
