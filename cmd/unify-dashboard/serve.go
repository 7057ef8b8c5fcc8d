package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/unify-bot/unify-dashboard/internal/server"
)

var servePort int

// @title Unify Dashboard API
// @version 1.0
// @description Welcome-message configuration API for the Unify Discord bot
// @host localhost:3002
// @BasePath /
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard web server",
	Long: `Start the dashboard: pages, Discord login and the JSON API.

Examples:
  unify-dashboard serve              # Use configured port (default 3002)
  unify-dashboard serve --port 8080  # Override port

Environment variables:
  DISCORD_CLIENT_ID        Discord application ID
  DISCORD_CLIENT_SECRET    Discord application secret
  DISCORD_BOT_TOKEN        Bot token used for guild and message calls
  DISCORD_CALLBACK_URL     OAuth2 redirect URL
  SESSION_SECRET           Session signing secret
  MONGODB_URI              Use MongoDB instead of SQL when set
  UNIFY_DATABASE_DRIVER    Database driver: sqlite, postgres, mongodb
  UNIFY_CACHE_TYPE         Guild cache: memory, valkey`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := server.Config{
		Port:    servePort,
		Version: Version,
	}

	if err := server.RunWithSignalHandling(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
