package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/unify-bot/unify-dashboard/internal/auth"
	"github.com/unify-bot/unify-dashboard/internal/config"
	"github.com/unify-bot/unify-dashboard/internal/dashboard"
	"github.com/unify-bot/unify-dashboard/internal/discord"
	"github.com/unify-bot/unify-dashboard/internal/models"
	"github.com/unify-bot/unify-dashboard/internal/service"
	"github.com/unify-bot/unify-dashboard/internal/welcome"
)

type stubService struct{ sends int }

func (s *stubService) GetOrCreate(_ context.Context, guildID, guildName string) (*models.ServerConfig, error) {
	return &models.ServerConfig{GuildID: guildID, GuildName: guildName, Welcome: welcome.Defaults()}, nil
}

func (s *stubService) UpdateWelcome(_ context.Context, _, guildID, guildName string, update welcome.Partial) (*models.ServerConfig, error) {
	return &models.ServerConfig{GuildID: guildID, GuildName: guildName, Welcome: welcome.Merge(nil, update)}, nil
}

func (s *stubService) Channels(context.Context, string) ([]discord.Channel, error) {
	return []discord.Channel{{ID: "c1", Name: "general"}}, nil
}

func (s *stubService) SendTest(context.Context, string, service.TestRequest) error {
	s.sends++
	return nil
}

type stubLister struct{}

func (stubLister) Servers(_ context.Context, guilds []discord.UserGuild) ([]dashboard.Server, error) {
	var out []dashboard.Server
	for _, g := range guilds {
		out = append(out, dashboard.Server{ID: g.ID, Name: g.Name, HasAdmin: g.CanManage()})
	}
	return out, nil
}

type stubGuilds struct{ guilds []discord.UserGuild }

func (g stubGuilds) List(context.Context, *auth.User) ([]discord.UserGuild, error) {
	return g.guilds, nil
}

func (g stubGuilds) Refresh(context.Context, *auth.User) ([]discord.UserGuild, error) {
	return g.guilds, nil
}

func (g stubGuilds) Forget(context.Context, string) {}

func (g stubGuilds) Find(_ context.Context, _ *auth.User, guildID string) (*discord.UserGuild, error) {
	for i := range g.guilds {
		if g.guilds[i].ID == guildID {
			return &g.guilds[i], nil
		}
	}
	return nil, nil
}

type stubOAuth struct{}

func (stubOAuth) GetAuthURL(state string) string { return "https://discord.test/authorize?state=" + state }

func (stubOAuth) HandleCallback(context.Context, string) (*auth.User, error) {
	return &auth.User{ID: "42"}, nil
}

type stubBot struct{}

func (stubBot) BotUser(context.Context) (*discordgo.User, error) {
	return &discordgo.User{ID: "bot", Username: "Unify"}, nil
}

func (stubBot) MemberStatus(context.Context, string) (int, error) { return http.StatusOK, nil }

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type testEnv struct {
	router   *gin.Engine
	sessions *auth.Sessions
	svc      *stubService
}

func newTestEnv(t *testing.T, debug bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Mode:           "development",
			AllowedOrigins: []string{"http://localhost:3002"},
			DebugRoutes:    debug,
			TestSendBurst:  1,
		},
		Discord: config.DiscordConfig{ClientID: "cid"},
	}
	sessions, err := auth.NewSessions(config.SessionConfig{Secret: "router-test", CookieName: "sess"})
	if err != nil {
		t.Fatalf("NewSessions: %v", err)
	}
	svc := &stubService{}
	router, err := NewRouter(cfg, Deps{
		Service:  svc,
		Servers:  stubLister{},
		Guilds:   stubGuilds{guilds: []discord.UserGuild{
			{ID: "admin", Name: "Acme", Permissions: "8"},
			{ID: "member", Name: "Other", Permissions: "1024"},
		}},
		Sessions: sessions,
		OAuth:    stubOAuth{},
		Bot:      stubBot{},
		Store:    stubPinger{},
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return &testEnv{router: router, sessions: sessions, svc: svc}
}

// request performs a request, logged in when loggedIn is set
func (e *testEnv) request(t *testing.T, method, path, body string, loggedIn bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if loggedIn {
		token, err := e.sessions.Issue(&auth.User{ID: "42", Username: "alice", AccessToken: "tok"})
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: "sess", Value: token})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestRoutes(t *testing.T) {
	env := newTestEnv(t, false)

	tests := []struct {
		name       string
		method     string
		path       string
		loggedIn   bool
		wantStatus int
	}{
		{"landing page", http.MethodGet, "/", false, http.StatusOK},
		{"terms", http.MethodGet, "/terminos", false, http.StatusOK},
		{"privacy", http.MethodGet, "/privacidad", false, http.StatusOK},
		{"health", http.MethodGet, "/api/health", false, http.StatusOK},
		{"version", http.MethodGet, "/api/version", false, http.StatusOK},
		{"stylesheet", http.MethodGet, "/css/style.css", false, http.StatusOK},
		{"script", http.MethodGet, "/js/main.js", false, http.StatusOK},
		{"favicon", http.MethodGet, "/favicon.ico", false, http.StatusFound},
		{"login", http.MethodGet, "/auth/discord", false, http.StatusTemporaryRedirect},
		{"dashboard anonymous", http.MethodGet, "/dashboard", false, http.StatusFound},
		{"dashboard", http.MethodGet, "/dashboard", true, http.StatusOK},
		{"server page", http.MethodGet, "/dashboard/admin", true, http.StatusOK},
		{"server page without permission", http.MethodGet, "/dashboard/member", true, http.StatusForbidden},
		{"server page unknown guild", http.MethodGet, "/dashboard/nope", true, http.StatusNotFound},
		{"api anonymous", http.MethodGet, "/api/servers", false, http.StatusUnauthorized},
		{"api servers", http.MethodGet, "/api/servers", true, http.StatusOK},
		{"api config", http.MethodGet, "/api/servers/admin/config", true, http.StatusOK},
		{"api config forbidden", http.MethodGet, "/api/servers/member/config", true, http.StatusForbidden},
		{"api channels", http.MethodGet, "/api/servers/admin/channels", true, http.StatusOK},
		{"refresh anonymous", http.MethodPost, "/dashboard/refresh", false, http.StatusUnauthorized},
		{"refresh alias", http.MethodPost, "/auth/refresh-guilds", true, http.StatusOK},
		{"debug disabled", http.MethodGet, "/api/debug/bot-token", false, http.StatusNotFound},
		{"unknown page", http.MethodGet, "/nope", false, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.request(t, tt.method, tt.path, "", tt.loggedIn)
			if w.Code != tt.wantStatus {
				t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.wantStatus, w.Code)
			}
		})
	}
}

func TestRoutes_DashboardRedirectsHome(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.request(t, http.MethodGet, "/dashboard/admin", "", false)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Errorf("expected redirect to /, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestRoutes_DebugEnabled(t *testing.T) {
	env := newTestEnv(t, true)

	w := env.request(t, http.MethodGet, "/api/debug/bot-token", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"valid":true`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestRoutes_TestWelcomeRateLimited(t *testing.T) {
	env := newTestEnv(t, false)

	first := env.request(t, http.MethodPost, "/api/servers/admin/test-welcome", `{"message":"hola"}`, true)
	if first.Code != http.StatusOK {
		t.Fatalf("first send: expected 200, got %d: %s", first.Code, first.Body.String())
	}
	second := env.request(t, http.MethodPost, "/api/servers/admin/test-welcome", `{"message":"hola"}`, true)
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second send: expected 429, got %d", second.Code)
	}
	if env.svc.sends != 1 {
		t.Errorf("expected 1 send to reach the service, got %d", env.svc.sends)
	}
}

func TestRoutes_TestWelcomeNeedsPermission(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.request(t, http.MethodPost, "/api/servers/member/test-welcome", `{"message":"hola"}`, true)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	if env.svc.sends != 0 {
		t.Error("forbidden request reached the service")
	}
}

func TestRoutes_CORS(t *testing.T) {
	env := newTestEnv(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign origin: expected 403, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3002")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3002" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}
}
