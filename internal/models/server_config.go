package models

import (
	"time"

	"github.com/unify-bot/unify-dashboard/internal/welcome"
)

// ServerConfig is the persisted configuration of one Discord guild
type ServerConfig struct {
	ID        uint           `gorm:"primarykey" json:"-"`
	GuildID   string         `gorm:"uniqueIndex;not null" json:"guildId"`
	GuildName string         `gorm:"not null;default:''" json:"guildName"`
	Welcome   welcome.Config `gorm:"serializer:json;type:text" json:"welcome"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// TableName keeps the collection name used by the document store
func (ServerConfig) TableName() string {
	return "server_configs"
}
