package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/unify-bot/unify-dashboard/internal/config"
	"github.com/unify-bot/unify-dashboard/internal/logger"
	"github.com/unify-bot/unify-dashboard/internal/store"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the configuration tables or collections",
	Long: `Create the server configuration and audit storage with the unique
guild index. Safe to run more than once.`,
	Args: cobra.NoArgs,
	Run:  runInitDB,
}

func runInitDB(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.Format, cfg.Log.Level)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := store.New(ctx, cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	fmt.Printf("Database initialized (%s)\n", cfg.Database.Driver)
}
