package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/unify-bot/unify-dashboard/internal/config"
	"gopkg.in/yaml.v3"
)

const redacted = "********"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults, config.yaml, .env and environment
variables are applied. Secrets are masked.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		out, err := yaml.Marshal(redact(*cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(string(out))

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "\nConfiguration problems:\n%v\n", err)
			os.Exit(1)
		}
	},
}

// redact masks credentials in a copy of cfg
func redact(cfg config.Config) config.Config {
	mask := func(s *string) {
		if *s != "" {
			*s = redacted
		}
	}
	mask(&cfg.Discord.ClientSecret)
	mask(&cfg.Discord.BotToken)
	mask(&cfg.Session.Secret)
	mask(&cfg.Database.MongoURI)
	mask(&cfg.Database.DSN)
	return cfg
}
