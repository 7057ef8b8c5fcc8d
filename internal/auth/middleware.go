package auth

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequirePage redirects visitors without a valid session to the landing page
func (s *Sessions) RequirePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.FromRequest(c)
		if err != nil {
			if err != ErrUnauthorized {
				slog.Debug("Rejected session cookie", "error", err)
				s.ClearCookie(c)
			}
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Set(UserContextKey, user)
		c.Next()
	}
}

// RequireAPI answers 401 to requests without a valid session
func (s *Sessions) RequireAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.FromRequest(c)
		if err != nil {
			if err != ErrUnauthorized {
				slog.Debug("Rejected session cookie", "error", err)
			}
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "No autorizado"})
			c.Abort()
			return
		}
		c.Set(UserContextKey, user)
		c.Next()
	}
}

// Optional loads the user when a valid session exists and never rejects
func (s *Sessions) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := s.FromRequest(c); err == nil {
			c.Set(UserContextKey, user)
		}
		c.Next()
	}
}
