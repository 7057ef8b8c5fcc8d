// Package server provides the main server initialization and run logic.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unify-bot/unify-dashboard/internal/api"
	"github.com/unify-bot/unify-dashboard/internal/api/handlers"
	"github.com/unify-bot/unify-dashboard/internal/auth"
	"github.com/unify-bot/unify-dashboard/internal/cache"
	"github.com/unify-bot/unify-dashboard/internal/config"
	"github.com/unify-bot/unify-dashboard/internal/dashboard"
	"github.com/unify-bot/unify-dashboard/internal/discord"
	"github.com/unify-bot/unify-dashboard/internal/keepalive"
	"github.com/unify-bot/unify-dashboard/internal/logger"
	"github.com/unify-bot/unify-dashboard/internal/metrics"
	"github.com/unify-bot/unify-dashboard/internal/service"
	"github.com/unify-bot/unify-dashboard/internal/store"
)

// Config holds the server configuration options.
type Config struct {
	Port    int    // Port to run the server on (0 = use config default)
	Version string // Version string to report
}

// Run starts the server with the given configuration and blocks until the context is canceled.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Version != "" {
		handlers.Version = cfg.Version
	}

	appCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override port from CLI flag if provided
	if cfg.Port != 0 {
		appCfg.Server.Port = cfg.Port
	}

	logger.Init(appCfg.Log.Format, appCfg.Log.Level)
	slog.Info("Starting Unify dashboard", "version", cfg.Version, "mode", appCfg.Server.Mode)

	if err := appCfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	st, err := store.New(ctx, appCfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()
	slog.Info("Store initialized", "driver", appCfg.Database.Driver)

	m := metrics.New()

	guildCache, err := cache.New(appCfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer guildCache.Close()
	slog.Info("Guild cache initialized", "type", appCfg.Cache.Type, "ttl", appCfg.Cache.TTL())

	dc, err := discord.New(discord.Options{
		BotToken:  appCfg.Discord.BotToken,
		BotUserID: appCfg.Discord.ClientID,
		Timeout:   appCfg.Discord.Timeout(),
		Metrics:   m,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Discord client: %w", err)
	}

	sessions, err := auth.NewSessions(appCfg.Session)
	if err != nil {
		return fmt.Errorf("failed to initialize sessions: %w", err)
	}
	guilds := auth.NewGuilds(dc, guildCache)

	router, err := api.NewRouter(appCfg, api.Deps{
		Service:  service.New(st, dc, m),
		Servers:  dashboard.NewAssembler(dc, discord.NewIconResolver(appCfg.Discord.Timeout()), appCfg.Discord.PresenceConcurrency),
		Guilds:   guilds,
		Sessions: sessions,
		OAuth:    auth.NewDiscordOAuth(appCfg.Discord, dc, guilds),
		Bot:      dc,
		Store:    st,
		Audit:    st,
		Metrics:  m,
	})
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	if appCfg.KeepAlive.Enabled {
		pinger, err := keepalive.New(appCfg.KeepAlive)
		if err != nil {
			return fmt.Errorf("failed to initialize keep-alive: %w", err)
		}
		go func() {
			if err := pinger.Run(ctx); err != nil {
				slog.Error("Keep-alive failed", "error", err)
			}
		}()
	}

	addr := fmt.Sprintf(":%d", appCfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	}
	slog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Unify dashboard exited")
	return nil
}

// RunWithSignalHandling starts the server and handles OS signals for graceful shutdown.
func RunWithSignalHandling(cfg Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, cfg)
	}()

	select {
	case sig := <-quit:
		slog.Info("Received signal", "signal", sig)
		cancel()
		return <-errCh
	case err := <-errCh:
		return err
	}
}
