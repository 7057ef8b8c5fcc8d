package store

import (
	"context"
	"errors"

	"github.com/unify-bot/unify-dashboard/internal/models"
	"github.com/unify-bot/unify-dashboard/internal/welcome"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps configurations in a SQL table with a unique guild_id index
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an opened and migrated database
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var guildConflict = []clause.Column{{Name: "guild_id"}}

func (s *GormStore) GetOrCreate(ctx context.Context, guildID, guildName string) (*models.ServerConfig, error) {
	db := s.db.WithContext(ctx)

	// The unique index makes a concurrent insert for the same guild a no-op.
	fresh := models.ServerConfig{
		GuildID:   guildID,
		GuildName: guildName,
		Welcome:   welcome.Defaults(),
	}
	if err := db.Clauses(clause.OnConflict{Columns: guildConflict, DoNothing: true}).Create(&fresh).Error; err != nil {
		return nil, storageErr("get-or-create", err)
	}

	var row models.ServerConfig
	if err := db.Where("guild_id = ?", guildID).First(&row).Error; err != nil {
		return nil, storageErr("get-or-create", err)
	}

	if row.GuildName != guildName {
		if err := db.Model(&row).Update("guild_name", guildName).Error; err != nil {
			return nil, storageErr("rename", err)
		}
		row.GuildName = guildName
	}
	return &row, nil
}

func (s *GormStore) UpsertWelcome(ctx context.Context, guildID, guildName string, cfg welcome.Config) (*models.ServerConfig, error) {
	db := s.db.WithContext(ctx)

	columns := []string{"welcome", "updated_at"}
	if guildName != "" {
		columns = append(columns, "guild_name")
	}
	row := models.ServerConfig{GuildID: guildID, GuildName: guildName, Welcome: cfg}
	err := db.Clauses(clause.OnConflict{
		Columns:   guildConflict,
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&row).Error
	if err != nil {
		return nil, storageErr("upsert-welcome", err)
	}

	var out models.ServerConfig
	if err := db.Where("guild_id = ?", guildID).First(&out).Error; err != nil {
		return nil, storageErr("upsert-welcome", err)
	}
	return &out, nil
}

func (s *GormStore) Get(ctx context.Context, guildID string) (*models.ServerConfig, error) {
	var row models.ServerConfig
	err := s.db.WithContext(ctx).Where("guild_id = ?", guildID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get", err)
	}
	return &row, nil
}

func (s *GormStore) RecordAudit(ctx context.Context, entry *models.AuditLog) error {
	return storageErr("audit", s.db.WithContext(ctx).Create(entry).Error)
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return storageErr("ping", err)
	}
	return storageErr("ping", sqlDB.PingContext(ctx))
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
