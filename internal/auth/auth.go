// Package auth implements Discord login for the dashboard: the OAuth2 code
// flow, the signed session cookie and the per-user guild list.
package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/unify-bot/unify-dashboard/internal/welcome"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidState   = errors.New("invalid oauth state")
	ErrSessionExpired = errors.New("discord session expired")
)

// UserContextKey is the key used to store the user in the Gin context
const UserContextKey = "user"

// User is the logged-in Discord user carried by the session cookie
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Avatar        string `json:"avatar"`
	Discriminator string `json:"discriminator"`

	// AccessToken is the user's OAuth token, only ever stored sealed
	AccessToken string `json:"-"`
}

// Member returns the user as the new member of a rendered welcome message
func (u *User) Member() welcome.Member {
	return welcome.Member{
		ID:            u.ID,
		Username:      u.Username,
		Discriminator: u.Discriminator,
		Avatar:        u.Avatar,
	}
}

// AvatarURL returns the user's avatar on Discord's CDN
func (u *User) AvatarURL() string {
	return u.Member().AvatarURL()
}

// GetUserFromContext extracts the authenticated user from the Gin context
func GetUserFromContext(c *gin.Context) (*User, error) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return nil, ErrUnauthorized
	}

	user, ok := value.(*User)
	if !ok {
		return nil, errors.New("invalid user in context")
	}

	return user, nil
}
