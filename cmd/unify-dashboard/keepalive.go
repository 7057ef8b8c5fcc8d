package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/unify-bot/unify-dashboard/internal/config"
	"github.com/unify-bot/unify-dashboard/internal/keepalive"
	"github.com/unify-bot/unify-dashboard/internal/logger"
)

var (
	keepaliveURL      string
	keepaliveInterval int
)

var keepaliveCmd = &cobra.Command{
	Use:   "keepalive",
	Short: "Ping the dashboard URL on a schedule",
	Long: `Request APP_URL periodically so hosts that idle inactive services keep
the dashboard awake. Runs until interrupted.`,
	Args: cobra.NoArgs,
	Run:  runKeepalive,
}

func init() {
	keepaliveCmd.Flags().StringVar(&keepaliveURL, "url", "", "URL to ping (overrides APP_URL)")
	keepaliveCmd.Flags().IntVar(&keepaliveInterval, "interval", 0, "Minutes between pings (overrides config)")
}

func runKeepalive(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.Format, cfg.Log.Level)

	if keepaliveURL != "" {
		cfg.KeepAlive.URL = keepaliveURL
	}
	if keepaliveInterval > 0 {
		cfg.KeepAlive.IntervalMinutes = keepaliveInterval
	}

	pinger, err := keepalive.New(cfg.KeepAlive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := pinger.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
