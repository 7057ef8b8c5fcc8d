package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/unify-bot/unify-dashboard/internal/api/handlers"
	"github.com/unify-bot/unify-dashboard/internal/api/middleware"
	"github.com/unify-bot/unify-dashboard/internal/audit"
	"github.com/unify-bot/unify-dashboard/internal/auth"
	"github.com/unify-bot/unify-dashboard/internal/config"
	"github.com/unify-bot/unify-dashboard/internal/discord"
	"github.com/unify-bot/unify-dashboard/internal/metrics"
	"github.com/unify-bot/unify-dashboard/internal/web"
)

// Guilds is the per-user guild list used by handlers and access checks
type Guilds interface {
	handlers.GuildSource
	Find(ctx context.Context, user *auth.User, guildID string) (*discord.UserGuild, error)
}

// Deps are the components the router dispatches to
type Deps struct {
	Service  handlers.WelcomeService
	Servers  handlers.ServerLister
	Guilds   Guilds
	Sessions *auth.Sessions
	OAuth    handlers.OAuthFlow
	Bot      handlers.BotAPI
	Store    handlers.Pinger
	Audit    audit.Recorder
	Metrics  *metrics.Metrics
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, d Deps) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logging(d.Metrics))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.SecurityHeaders())

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	if err := mountStatic(router, !cfg.IsProduction()); err != nil {
		return nil, err
	}

	pageHandler := handlers.NewPageHandler(d.Service, d.Servers, d.Guilds, d.Sessions, cfg.Discord.ClientID)
	serverHandler := handlers.NewServerHandler(d.Service, d.Servers, d.Guilds)
	authHandler := handlers.NewAuthHandler(d.OAuth, d.Sessions, d.Guilds, d.Audit, cfg.Session.Secure)
	healthHandler := handlers.NewHealthHandler(d.Store)

	// Public pages
	router.GET("/favicon.ico", pageHandler.Favicon)
	router.GET("/", d.Sessions.Optional(), pageHandler.Index)
	router.GET("/terminos", d.Sessions.Optional(), pageHandler.Terms)
	router.GET("/privacidad", d.Sessions.Optional(), pageHandler.Privacy)

	// Discord login
	router.GET("/auth/discord", authHandler.Login)
	router.GET("/auth/discord/callback", authHandler.Callback)
	router.GET("/logout", authHandler.Logout)

	// Pages that need a session
	pages := router.Group("/dashboard")
	pages.Use(d.Sessions.RequirePage())
	{
		pages.GET("", pageHandler.Dashboard)
		pages.GET("/:serverId",
			middleware.RequireGuildManager(d.Guilds, "serverId", pageHandler.Deny),
			pageHandler.ServerConfig)
	}
	router.POST("/dashboard/refresh", d.Sessions.RequireAPI(), serverHandler.RefreshGuilds)
	router.POST("/auth/refresh-guilds", d.Sessions.RequireAPI(), serverHandler.RefreshGuilds)

	// Public API
	router.GET("/api/health", healthHandler.HealthCheck)
	router.GET("/api/version", handlers.GetVersion)

	// JSON API
	apiGroup := router.Group("/api")
	apiGroup.Use(d.Sessions.RequireAPI())
	{
		apiGroup.GET("/servers", serverHandler.ListServers)

		guild := apiGroup.Group("/servers/:serverId")
		guild.Use(middleware.RequireGuildManager(d.Guilds, "serverId", handlers.DenyAPI))
		{
			guild.GET("/config", serverHandler.GetConfig)
			guild.POST("/welcome", serverHandler.UpdateWelcome)
			guild.GET("/channels", serverHandler.ListChannels)
			guild.POST("/test-welcome",
				middleware.RateLimitGuild(middleware.NewGuildRateLimiter(cfg.Server.TestSendBurst), "serverId"),
				serverHandler.SendTestWelcome)
		}
	}

	if cfg.Server.DebugRoutes {
		debugHandler := handlers.NewDebugHandler(d.Bot, cfg.Discord.ClientID)
		debug := router.Group("/api/debug")
		{
			debug.GET("/bot-token", debugHandler.BotToken)
			debug.GET("/simple-bot-check/:guildId", debugHandler.SimpleBotCheck)
		}
		slog.Warn("Debug routes enabled")
	}

	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	// Swagger documentation
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.NoRoute(d.Sessions.Optional(), pageHandler.NotFound)

	slog.Info("API router initialized", "mode", cfg.Server.Mode)
	return router, nil
}

// mountStatic serves the embedded assets under /css, /js and /images
func mountStatic(router *gin.Engine, noCache bool) error {
	staticFS, err := web.GetFileSystem()
	if err != nil {
		return fmt.Errorf("failed to load static files: %w", err)
	}
	fileServer := http.FileServer(staticFS)
	serve := func(c *gin.Context) {
		fileServer.ServeHTTP(c.Writer, c.Request)
	}

	assets := router.Group("/")
	if noCache {
		assets.Use(middleware.NoCache())
	}
	for _, dir := range []string{"/css/*filepath", "/js/*filepath", "/images/*filepath"} {
		assets.GET(dir, serve)
		assets.HEAD(dir, serve)
	}
	return nil
}
