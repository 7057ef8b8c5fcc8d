package store

import (
	"context"
	"fmt"

	"github.com/unify-bot/unify-dashboard/internal/config"
	"github.com/unify-bot/unify-dashboard/internal/db"
)

// New opens the store selected by cfg.Driver. SQL drivers are migrated on open.
func New(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case "mongodb", "mongo":
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case "sqlite", "postgres", "postgresql":
		database, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(database); err != nil {
			return nil, err
		}
		return NewGormStore(database), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}
