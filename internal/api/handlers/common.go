package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/unify-bot/unify-dashboard/internal/service"
	"github.com/unify-bot/unify-dashboard/internal/store"
)

// ErrorResponse is the JSON body of every failed API call
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// DispatchErrorResponse echoes Discord's answer to a rejected test message
type DispatchErrorResponse struct {
	Success      bool            `json:"success"`
	Error        string          `json:"error"`
	DiscordError json.RawMessage `json:"discordError"`
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorResponse{Error: msg})
}

// handleServiceError maps service-layer errors to HTTP responses.
// fallback is the message used for storage and unexpected failures.
func handleServiceError(c *gin.Context, err error, fallback string) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		fail(c, http.StatusBadRequest, validationErr.Message)
		return
	}

	var dispatchErr *service.DispatchError
	if errors.As(err, &dispatchErr) {
		c.JSON(dispatchErr.Status, DispatchErrorResponse{
			Error:        "Error al enviar el mensaje de prueba",
			DiscordError: discordBody(dispatchErr.Body),
		})
		return
	}

	var lookupErr *service.GuildLookupError
	if errors.As(err, &lookupErr) {
		status := service.LookupStatus(lookupErr)
		switch status {
		case http.StatusNotFound:
			fail(c, status, "No se encontró el servidor. Asegúrate de que el bot esté en el servidor.")
		case http.StatusForbidden:
			fail(c, status, "El bot no tiene permisos para ver este servidor.")
		default:
			slog.Error("Guild lookup failed", "guild_id", lookupErr.GuildID, "error", err)
			c.JSON(status, ErrorResponse{Error: "Error al obtener información del servidor", Details: err.Error()})
		}
		return
	}

	if errors.Is(err, service.ErrNotFound) || errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "Servidor no encontrado")
		return
	}

	var storageErr *store.StorageError
	if errors.As(err, &storageErr) {
		slog.Error("Storage failure", "op", storageErr.Op, "error", storageErr.Err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback, Details: storageErr.Err.Error()})
		return
	}

	slog.Error("Unexpected error", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback, Details: err.Error()})
}

// discordBody returns Discord's error body as JSON, quoting it when it is not JSON already
func discordBody(body string) json.RawMessage {
	if json.Valid([]byte(body)) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(body)
	return quoted
}

// DenyAPI answers a rejected guild access on the JSON API
func DenyAPI(c *gin.Context, status int) {
	switch status {
	case http.StatusUnauthorized:
		fail(c, status, "No autorizado")
	case http.StatusNotFound:
		fail(c, status, "Servidor no encontrado")
	case http.StatusForbidden:
		fail(c, status, "No tienes permisos")
	default:
		fail(c, status, "Error interno del servidor")
	}
}
