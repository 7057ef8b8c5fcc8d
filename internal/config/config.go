package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSessionSecret is the placeholder secret shipped in the defaults
const DefaultSessionSecret = "change-me-in-production"

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Discord   DiscordConfig   `mapstructure:"discord" yaml:"discord"`
	Session   SessionConfig   `mapstructure:"session" yaml:"session"`
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	KeepAlive KeepAliveConfig `mapstructure:"keepalive" yaml:"keepalive"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `mapstructure:"port" yaml:"port"`
	Mode           string   `mapstructure:"mode" yaml:"mode"`                       // "development" or "production"
	FrontendURL    string   `mapstructure:"frontend_url" yaml:"frontend_url"`       // extra CORS origin
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"` // additional CORS origins
	DebugRoutes    bool     `mapstructure:"debug_routes" yaml:"debug_routes"`       // expose /api/debug/*
	TestSendBurst  int      `mapstructure:"test_send_burst" yaml:"test_send_burst"` // test sends allowed per guild per minute
}

// DatabaseConfig holds configuration store settings
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" yaml:"driver"`                       // "sqlite", "postgres" or "mongodb"
	DSN             string `mapstructure:"dsn" yaml:"dsn"`                             // SQL connection string
	MongoURI        string `mapstructure:"mongo_uri" yaml:"mongo_uri"`                 // used when driver is "mongodb"
	MongoDatabase   string `mapstructure:"mongo_database" yaml:"mongo_database"`       // database name inside the cluster
	MaxIdleConns    int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`       // Postgres only
	MaxOpenConns    int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`       // Postgres only
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"` // minutes, Postgres only
}

// DiscordConfig holds the Discord application and bot credentials
type DiscordConfig struct {
	ClientID            string `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret        string `mapstructure:"client_secret" yaml:"client_secret"`
	BotToken            string `mapstructure:"bot_token" yaml:"bot_token"`
	CallbackURL         string `mapstructure:"callback_url" yaml:"callback_url"`
	TimeoutSeconds      int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`           // per outbound REST call
	PresenceConcurrency int    `mapstructure:"presence_concurrency" yaml:"presence_concurrency"` // parallel membership checks
}

// Timeout returns the per-call timeout for Discord REST requests
func (d DiscordConfig) Timeout() time.Duration {
	if d.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// SessionConfig holds the dashboard session cookie settings
type SessionConfig struct {
	Secret     string `mapstructure:"secret" yaml:"secret"`
	CookieName string `mapstructure:"cookie_name" yaml:"cookie_name"`
	TTLHours   int    `mapstructure:"ttl_hours" yaml:"ttl_hours"`
	Secure     bool   `mapstructure:"secure" yaml:"secure"` // Secure flag on cookies
}

// CacheConfig holds the guild-list cache settings
type CacheConfig struct {
	Type       string `mapstructure:"type" yaml:"type"`               // "memory" or "valkey"
	ValkeyAddr string `mapstructure:"valkey_addr" yaml:"valkey_addr"` // e.g., "localhost:6379"
	TTLSeconds int    `mapstructure:"ttl_seconds" yaml:"ttl_seconds"`
}

// TTL returns how long a user's guild list stays cached
func (c CacheConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// LogConfig holds logging configuration
type LogConfig struct {
	Format string `mapstructure:"format" yaml:"format"` // "json" or "text"
	Level  string `mapstructure:"level" yaml:"level"`   // "debug", "info", "warn", "error"
}

// KeepAliveConfig holds the self-ping settings for free hosting tiers
type KeepAliveConfig struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
	URL             string `mapstructure:"url" yaml:"url"`
	IntervalMinutes int    `mapstructure:"interval_minutes" yaml:"interval_minutes"`
}

// legacyEnv maps config keys to the environment variable names the bot
// deployment already uses. The prefixed name always wins.
var legacyEnv = map[string]string{
	"server.port":           "PORT",
	"server.frontend_url":   "FRONTEND_URL",
	"database.mongo_uri":    "MONGODB_URI",
	"discord.client_id":     "DISCORD_CLIENT_ID",
	"discord.client_secret": "DISCORD_CLIENT_SECRET",
	"discord.bot_token":     "DISCORD_BOT_TOKEN",
	"discord.callback_url":  "DISCORD_CALLBACK_URL",
	"session.secret":        "SESSION_SECRET",
	"keepalive.url":         "APP_URL",
}

// Load reads configuration from .env, file and environment variables
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("server.port", 3002)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.frontend_url", "")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3002", "http://localhost:3000"})
	v.SetDefault("server.debug_routes", false)
	v.SetDefault("server.test_send_burst", 5)
	v.SetDefault("database.driver", "")
	v.SetDefault("database.dsn", "./unify.db")
	v.SetDefault("database.mongo_uri", "")
	v.SetDefault("database.mongo_database", "unify")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60) // 60 minutes
	v.SetDefault("discord.client_id", "")
	v.SetDefault("discord.client_secret", "")
	v.SetDefault("discord.bot_token", "")
	v.SetDefault("discord.callback_url", "http://localhost:3002/auth/discord/callback")
	v.SetDefault("discord.timeout_seconds", 10)
	v.SetDefault("discord.presence_concurrency", 4)
	v.SetDefault("session.secret", DefaultSessionSecret)
	v.SetDefault("session.cookie_name", "unify_session")
	v.SetDefault("session.ttl_hours", 24)
	v.SetDefault("session.secure", false)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.valkey_addr", "localhost:6379")
	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")
	v.SetDefault("keepalive.enabled", false)
	v.SetDefault("keepalive.url", "")
	v.SetDefault("keepalive.interval_minutes", 14)

	// Read from config file if exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/unify-dashboard/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, using defaults
	}

	// Environment variables override
	v.SetEnvPrefix("UNIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := "UNIFY_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.applyDerived()
	return &cfg, nil
}

// applyDerived fills values that depend on other settings
func (c *Config) applyDerived() {
	if c.Database.Driver == "" {
		if c.Database.MongoURI != "" {
			c.Database.Driver = "mongodb"
		} else {
			c.Database.Driver = "sqlite"
		}
	}
	if c.Server.FrontendURL != "" {
		c.Server.AllowedOrigins = appendUnique(c.Server.AllowedOrigins, c.Server.FrontendURL)
	}
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// Validate checks the settings the dashboard cannot run without
func (c *Config) Validate() error {
	var errs []error
	if c.Discord.ClientID == "" {
		errs = append(errs, errors.New("discord.client_id (DISCORD_CLIENT_ID) is required"))
	}
	if c.Discord.ClientSecret == "" {
		errs = append(errs, errors.New("discord.client_secret (DISCORD_CLIENT_SECRET) is required"))
	}
	if c.Discord.BotToken == "" {
		errs = append(errs, errors.New("discord.bot_token (DISCORD_BOT_TOKEN) is required"))
	}
	if c.Session.Secret == "" {
		errs = append(errs, errors.New("session.secret (SESSION_SECRET) is required"))
	} else if c.IsProduction() && c.Session.Secret == DefaultSessionSecret {
		errs = append(errs, errors.New("session.secret must be changed in production"))
	}

	switch c.Database.Driver {
	case "sqlite", "postgres", "postgresql":
	case "mongodb", "mongo":
		if c.Database.MongoURI == "" {
			errs = append(errs, errors.New("database.mongo_uri (MONGODB_URI) is required for the mongodb driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver: %s", c.Database.Driver))
	}

	switch c.Cache.Type {
	case "memory", "valkey":
	default:
		errs = append(errs, fmt.Errorf("unsupported cache type: %s", c.Cache.Type))
	}

	return errors.Join(errs...)
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
