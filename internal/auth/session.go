package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/unify-bot/unify-dashboard/internal/config"
	"github.com/unify-bot/unify-dashboard/internal/crypto"
)

const issuer = "unify-dashboard"

// Claims represents the session JWT claims. Subject is the Discord user ID.
type Claims struct {
	Username      string `json:"username"`
	Avatar        string `json:"avatar,omitempty"`
	Discriminator string `json:"discriminator,omitempty"`
	Token         string `json:"tok"` // sealed OAuth access token
	jwt.RegisteredClaims
}

// Sessions issues and reads the dashboard session cookie
type Sessions struct {
	secret     []byte
	sealer     *crypto.Sealer
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

// NewSessions creates a session manager from the session settings
func NewSessions(cfg config.SessionConfig) (*Sessions, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	sealer, err := crypto.NewSealer(cfg.Secret)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(cfg.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	name := cfg.CookieName
	if name == "" {
		name = "unify_session"
	}

	return &Sessions{
		secret:     []byte(cfg.Secret),
		sealer:     sealer,
		cookieName: name,
		ttl:        ttl,
		secure:     cfg.Secure,
		now:        time.Now,
	}, nil
}

// Issue signs a session token for user
func (s *Sessions) Issue(user *User) (string, error) {
	sealed, err := s.sealer.Seal(user.AccessToken)
	if err != nil {
		return "", fmt.Errorf("seal access token: %w", err)
	}

	now := s.now()
	claims := Claims{
		Username:      user.Username,
		Avatar:        user.Avatar,
		Discriminator: user.Discriminator,
		Token:         sealed,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates a session token and returns its user
func (s *Sessions) Parse(tokenString string) (*User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrUnauthorized
	}

	accessToken, err := s.sealer.Open(claims.Token)
	if err != nil {
		return nil, fmt.Errorf("open access token: %w", err)
	}

	return &User{
		ID:            claims.Subject,
		Username:      claims.Username,
		Avatar:        claims.Avatar,
		Discriminator: claims.Discriminator,
		AccessToken:   accessToken,
	}, nil
}

// SetCookie issues a session for user and stores it in the response
func (s *Sessions) SetCookie(c *gin.Context, user *User) error {
	token, err := s.Issue(user)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, token, int(s.ttl.Seconds()), "/", "", s.secure, true)
	return nil
}

// ClearCookie removes the session cookie
func (s *Sessions) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, "", -1, "/", "", s.secure, true)
}

// FromRequest reads the session cookie, if any
func (s *Sessions) FromRequest(c *gin.Context) (*User, error) {
	raw, err := c.Cookie(s.cookieName)
	if err != nil || raw == "" {
		return nil, ErrUnauthorized
	}
	return s.Parse(raw)
}
