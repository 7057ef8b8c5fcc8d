// Package store persists per-guild configuration documents. Two backends
// implement Store: a gorm one (SQLite or PostgreSQL) and a MongoDB one.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/unify-bot/unify-dashboard/internal/models"
	"github.com/unify-bot/unify-dashboard/internal/welcome"
)

// ErrNotFound indicates no configuration exists for the guild.
var ErrNotFound = errors.New("server config not found")

// StorageError wraps a fault from the underlying database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// Store is the configuration store used by the dashboard
type Store interface {
	// GetOrCreate returns the guild's configuration, creating it with the
	// default welcome block if absent. A changed guildName is persisted.
	GetOrCreate(ctx context.Context, guildID, guildName string) (*models.ServerConfig, error)

	// UpsertWelcome replaces the welcome block, creating the document if needed.
	// A non-empty guildName is persisted; an empty one leaves the stored name.
	UpsertWelcome(ctx context.Context, guildID, guildName string, cfg welcome.Config) (*models.ServerConfig, error)

	// Get returns the stored configuration or ErrNotFound.
	Get(ctx context.Context, guildID string) (*models.ServerConfig, error)

	RecordAudit(ctx context.Context, entry *models.AuditLog) error
	Ping(ctx context.Context) error
	Close() error
}
