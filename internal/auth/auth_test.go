package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/unify-bot/unify-dashboard/internal/cache"
	"github.com/unify-bot/unify-dashboard/internal/config"
	"github.com/unify-bot/unify-dashboard/internal/discord"
)

func newTestSessions(t *testing.T) *Sessions {
	t.Helper()
	s, err := NewSessions(config.SessionConfig{Secret: "test-secret", CookieName: "sess", TTLHours: 1})
	if err != nil {
		t.Fatalf("NewSessions: %v", err)
	}
	return s
}

var alice = &User{ID: "42", Username: "alice", Avatar: "abc", Discriminator: "0001", AccessToken: "oauth-token"}

// fakeUserAPI serves a fixed user and guild list and counts guild fetches
type fakeUserAPI struct {
	guilds     []discord.UserGuild
	err        error
	guildCalls int
}

func (f *fakeUserAPI) CurrentUser(_ context.Context, token string) (*discordgo.User, error) {
	if token == "" {
		return nil, errors.New("no token")
	}
	return &discordgo.User{ID: "42", Username: "alice", Avatar: "abc", Discriminator: "0001"}, nil
}

func (f *fakeUserAPI) UserGuilds(_ context.Context, _ string) ([]discord.UserGuild, error) {
	f.guildCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.guilds, nil
}

func TestSessions_RoundTrip(t *testing.T) {
	s := newTestSessions(t)

	token, err := s.Issue(alice)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if strings.Contains(token, "oauth-token") {
		t.Fatal("access token must not appear in the session token")
	}

	got, err := s.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if *got != *alice {
		t.Errorf("round trip mismatch: got %+v want %+v", got, alice)
	}
}

func TestSessions_RejectsTamperedAndExpired(t *testing.T) {
	s := newTestSessions(t)
	token, err := s.Issue(alice)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other, err := NewSessions(config.SessionConfig{Secret: "other-secret"})
	if err != nil {
		t.Fatalf("NewSessions: %v", err)
	}
	if _, err := other.Parse(token); err == nil {
		t.Error("token signed with another secret should be rejected")
	}

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := s.Parse(token); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expected expired token error, got %v", err)
	}
}

func TestSessions_RejectsForeignIssuer(t *testing.T) {
	s := newTestSessions(t)
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "42",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Parse(token); err == nil {
		t.Error("expected issuer mismatch to be rejected")
	}
}

func TestNewSessions_RequiresSecret(t *testing.T) {
	if _, err := NewSessions(config.SessionConfig{}); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newTestSessions(t)

	router := gin.New()
	ok := func(c *gin.Context) {
		user, err := GetUserFromContext(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, user.ID)
	}
	router.GET("/page", s.RequirePage(), ok)
	router.GET("/api", s.RequireAPI(), ok)

	tests := []struct {
		name       string
		path       string
		cookie     string
		wantStatus int
	}{
		{"page without session", "/page", "", http.StatusFound},
		{"api without session", "/api", "", http.StatusUnauthorized},
		{"page with garbage", "/page", "not-a-jwt", http.StatusFound},
		{"api with session", "/api", "valid", http.StatusOK},
		{"page with session", "/page", "valid", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				value := tt.cookie
				if value == "valid" {
					var err error
					value, err = s.Issue(alice)
					if err != nil {
						t.Fatal(err)
					}
				}
				req.AddCookie(&http.Cookie{Name: "sess", Value: value})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if w.Code == http.StatusFound && w.Header().Get("Location") != "/" {
				t.Errorf("expected redirect to /, got %q", w.Header().Get("Location"))
			}
			if w.Code == http.StatusOK && w.Body.String() != "42" {
				t.Errorf("unexpected user %q", w.Body.String())
			}
		})
	}
}

func TestGuilds_CachesAndRefetches(t *testing.T) {
	api := &fakeUserAPI{guilds: []discord.UserGuild{{ID: "1", Name: "One", Permissions: "8"}}}
	g := NewGuilds(api, cache.NewMemoryCache(time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := g.List(ctx, alice); err != nil {
			t.Fatalf("List: %v", err)
		}
	}
	if api.guildCalls != 1 {
		t.Errorf("expected 1 Discord call, got %d", api.guildCalls)
	}

	g.Forget(ctx, alice.ID)
	found, err := g.Find(ctx, alice, "1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found == nil || found.Name != "One" {
		t.Errorf("unexpected guild %+v", found)
	}
	if api.guildCalls != 2 {
		t.Errorf("expected refetch after Forget, got %d calls", api.guildCalls)
	}

	missing, err := g.Find(ctx, alice, "2")
	if err != nil || missing != nil {
		t.Errorf("expected nil for unknown guild, got %+v, %v", missing, err)
	}
}

func TestGuilds_ExpiredToken(t *testing.T) {
	api := &fakeUserAPI{err: &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusUnauthorized}}}
	g := NewGuilds(api, cache.NewMemoryCache(time.Minute))

	if _, err := g.List(context.Background(), alice); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
	if _, err := g.Refresh(context.Background(), &User{ID: "1"}); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired without a token, got %v", err)
	}
}

func TestDiscordOAuth_HandleCallback(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "the-code" {
			http.Error(w, "bad code", http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("client_id") != "client" {
			http.Error(w, "client id must be sent in the body", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"oauth-token","token_type":"Bearer","expires_in":604800}`))
	}))
	defer tokenServer.Close()

	api := &fakeUserAPI{guilds: []discord.UserGuild{{ID: "1"}}}
	c := cache.NewMemoryCache(time.Minute)
	a := NewDiscordOAuth(config.DiscordConfig{ClientID: "client", ClientSecret: "secret", CallbackURL: "http://localhost/cb"}, api, NewGuilds(api, c))
	a.config.Endpoint.TokenURL = tokenServer.URL

	user, err := a.HandleCallback(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if user.ID != "42" || user.AccessToken != "oauth-token" {
		t.Errorf("unexpected user %+v", user)
	}
	if _, err := c.Get(context.Background(), "42"); err != nil {
		t.Errorf("guilds should be cached after login: %v", err)
	}

	if _, err := a.HandleCallback(context.Background(), "wrong"); err == nil {
		t.Error("expected exchange failure for a bad code")
	}
}

func TestGetAuthURL(t *testing.T) {
	a := NewDiscordOAuth(config.DiscordConfig{ClientID: "client", CallbackURL: "http://localhost/cb"}, nil, nil)
	u := a.GetAuthURL("xyz")
	for _, want := range []string{"https://discord.com/oauth2/authorize?", "client_id=client", "state=xyz", "scope=identify+guilds+guilds.members.read"} {
		if !strings.Contains(u, want) {
			t.Errorf("auth URL %q missing %q", u, want)
		}
	}
}
