package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog records a configuration change made from the dashboard
type AuditLog struct {
	ID          uuid.UUID `gorm:"type:text;primarykey" json:"id"`
	UserID      string    `gorm:"index;not null" json:"userId"`   // Discord user snowflake
	Action      string    `gorm:"not null" json:"action"`         // e.g., "update_welcome", "send_test_welcome"
	Resource    string    `gorm:"not null;index" json:"resource"` // e.g., "guild:1234"
	DetailsJSON string    `gorm:"type:text" json:"detailsJson"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
}

// BeforeCreate hook to generate UUID.
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
