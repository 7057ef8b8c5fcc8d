package audit

import (
	"context"
	"testing"

	"github.com/unify-bot/unify-dashboard/internal/models"
)

type recorder struct {
	entries []*models.AuditLog
}

func (r *recorder) RecordAudit(_ context.Context, e *models.AuditLog) error {
	r.entries = append(r.entries, e)
	return nil
}

func TestLogAction(t *testing.T) {
	rec := &recorder{}
	err := LogAction(context.Background(), rec, "42", ActionUpdateWelcome, GuildResource("7"), map[string]interface{}{"enabled": true})
	if err != nil {
		t.Fatalf("LogAction: %v", err)
	}
	if len(rec.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(rec.entries))
	}
	e := rec.entries[0]
	if e.Resource != "guild:7" || e.UserID != "42" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.DetailsJSON != `{"enabled":true}` {
		t.Errorf("unexpected details %q", e.DetailsJSON)
	}
	if e.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestLogAction_UnencodableDetails(t *testing.T) {
	rec := &recorder{}
	if err := LogAction(context.Background(), rec, "1", ActionLogin, "user:1", func() {}); err != nil {
		t.Fatalf("LogAction: %v", err)
	}
	if rec.entries[0].DetailsJSON != "{}" {
		t.Errorf("expected empty object, got %q", rec.entries[0].DetailsJSON)
	}
}
