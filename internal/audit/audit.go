package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/unify-bot/unify-dashboard/internal/models"
)

// Recorder persists audit entries
type Recorder interface {
	RecordAudit(ctx context.Context, entry *models.AuditLog) error
}

// LogAction records an audit log entry
func LogAction(ctx context.Context, rec Recorder, userID, action, resource string, details interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	log := models.AuditLog{
		UserID:      userID,
		Action:      action,
		Resource:    resource,
		DetailsJSON: string(detailsJSON),
		Timestamp:   time.Now().UTC(),
	}

	return rec.RecordAudit(ctx, &log)
}

// GuildResource formats the resource name of a guild
func GuildResource(guildID string) string {
	return "guild:" + guildID
}

// Audit actions constants
const (
	ActionLogin           = "login"
	ActionLoginFailed     = "login_failed"
	ActionUpdateWelcome   = "update_welcome"
	ActionSendTestWelcome = "send_test_welcome"
)
