package main

import (
	"os"

	"github.com/spf13/cobra"

	_ "github.com/unify-bot/unify-dashboard/docs" // Load swagger docs
)

// Version is set via ldflags at build time
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "unify-dashboard",
	Short: "Unify - web dashboard for the Unify Discord bot",
	Long:  `Unify dashboard lets server administrators configure the bot's welcome message through Discord login.`,
	Example: `  # Create the configuration store and start the dashboard
  unify-dashboard init-db
  unify-dashboard serve --port 3002

  # Show the effective configuration with secrets hidden
  unify-dashboard config`,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initDBCmd)
	rootCmd.AddCommand(keepaliveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
