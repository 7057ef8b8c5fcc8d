package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/go-cmp/cmp"
	"github.com/unify-bot/unify-dashboard/internal/db"
	"github.com/unify-bot/unify-dashboard/internal/models"
	"github.com/unify-bot/unify-dashboard/internal/welcome"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var colorComparer = cmp.Comparer(func(a, b welcome.Color) bool { return a.String() == b.String() })

func testGormStore(t *testing.T) (*GormStore, *gorm.DB) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Single writer, as in production SQLite
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	s := NewGormStore(database)
	t.Cleanup(func() { s.Close() })
	return s, database
}

func TestGormGetOrCreate_CreatesDefaults(t *testing.T) {
	s, _ := testGormStore(t)
	ctx := context.Background()

	cfg, err := s.GetOrCreate(ctx, "123", "Acme")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if cfg.GuildID != "123" || cfg.GuildName != "Acme" {
		t.Errorf("unexpected identity: %+v", cfg)
	}
	if cfg.Welcome.Enabled {
		t.Error("welcome should start disabled")
	}
	if cfg.Welcome.Message != "¡Bienvenido {user} al servidor!" {
		t.Errorf("unexpected default message %q", cfg.Welcome.Message)
	}
	if diff := cmp.Diff(welcome.Defaults(), cfg.Welcome, colorComparer); diff != "" {
		t.Errorf("welcome mismatch (-want +got):\n%s", diff)
	}
}

func TestGormGetOrCreate_RenameLeavesWelcome(t *testing.T) {
	s, database := testGormStore(t)
	ctx := context.Background()

	if _, err := s.GetOrCreate(ctx, "123", "Acme"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	custom := welcome.Defaults()
	custom.Enabled = true
	custom.ChannelID = "999"
	if _, err := s.UpsertWelcome(ctx, "123", "", custom); err != nil {
		t.Fatalf("UpsertWelcome: %v", err)
	}

	cfg, err := s.GetOrCreate(ctx, "123", "Acme Renamed")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if cfg.GuildName != "Acme Renamed" {
		t.Errorf("expected renamed guild, got %q", cfg.GuildName)
	}
	if diff := cmp.Diff(custom, cfg.Welcome, colorComparer); diff != "" {
		t.Errorf("welcome changed by rename (-want +got):\n%s", diff)
	}

	var count int64
	database.Model(&models.ServerConfig{}).Where("guild_id = ?", "123").Count(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	stored, err := s.Get(ctx, "123")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.GuildName != "Acme Renamed" {
		t.Errorf("rename not persisted, got %q", stored.GuildName)
	}
}

func TestGormGetOrCreate_ConcurrentSingleRow(t *testing.T) {
	s, database := testGormStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.GetOrCreate(ctx, "555", "Race"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("GetOrCreate: %v", err)
	}

	var count int64
	database.Model(&models.ServerConfig{}).Where("guild_id = ?", "555").Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 row, got %d", count)
	}
}

func TestGormUpsertWelcome_CreatesParent(t *testing.T) {
	s, _ := testGormStore(t)
	ctx := context.Background()

	cfg := welcome.Defaults()
	cfg.Message = "hola {user}"
	cfg.Embed.Color = welcome.IntColor(0xff0000)

	out, err := s.UpsertWelcome(ctx, "777", "Acme", cfg)
	if err != nil {
		t.Fatalf("UpsertWelcome: %v", err)
	}
	if out.GuildID != "777" || out.GuildName != "Acme" {
		t.Errorf("unexpected guild %q %q", out.GuildID, out.GuildName)
	}
	if diff := cmp.Diff(cfg, out.Welcome, colorComparer); diff != "" {
		t.Errorf("welcome mismatch (-want +got):\n%s", diff)
	}
	if n, ok := out.Welcome.Embed.Color.Int(); !ok || n != 0xff0000 {
		t.Errorf("integer color not preserved: %v", out.Welcome.Embed.Color)
	}
}

func TestGormUpsertWelcome_ReplacesBlock(t *testing.T) {
	s, _ := testGormStore(t)
	ctx := context.Background()

	if _, err := s.GetOrCreate(ctx, "1", "One"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	next := welcome.Config{Message: "only this"}
	out, err := s.UpsertWelcome(ctx, "1", "", next)
	if err != nil {
		t.Fatalf("UpsertWelcome: %v", err)
	}
	if out.GuildName != "One" {
		t.Errorf("guild name should survive upsert, got %q", out.GuildName)
	}
	if out.Welcome.Embed.Title != "" {
		t.Errorf("welcome block should be replaced wholesale, got title %q", out.Welcome.Embed.Title)
	}
}

func TestGormUpsertWelcome_RefreshesGuildName(t *testing.T) {
	s, _ := testGormStore(t)
	ctx := context.Background()

	if _, err := s.UpsertWelcome(ctx, "1", "One", welcome.Defaults()); err != nil {
		t.Fatalf("UpsertWelcome: %v", err)
	}
	out, err := s.UpsertWelcome(ctx, "1", "One Renamed", welcome.Defaults())
	if err != nil {
		t.Fatalf("UpsertWelcome: %v", err)
	}
	if out.GuildName != "One Renamed" {
		t.Errorf("expected refreshed guild name, got %q", out.GuildName)
	}
}

func TestGormGet_NotFound(t *testing.T) {
	s, _ := testGormStore(t)
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGormStorageErrorWrapsCause(t *testing.T) {
	s, _ := testGormStore(t)
	s.Close()

	_, err := s.GetOrCreate(context.Background(), "1", "x")
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if se.Err == nil {
		t.Error("expected underlying cause")
	}
}

func TestGormRecordAudit(t *testing.T) {
	s, database := testGormStore(t)

	entry := &models.AuditLog{
		UserID:    "42",
		Action:    "update_welcome",
		Resource:  "guild:1",
		Timestamp: time.Now(),
	}
	if err := s.RecordAudit(context.Background(), entry); err != nil {
		t.Fatalf("RecordAudit: %v", err)
	}

	var got models.AuditLog
	if err := database.First(&got, "id = ?", entry.ID).Error; err != nil {
		t.Fatalf("audit not stored: %v", err)
	}
	if got.Action != "update_welcome" {
		t.Errorf("unexpected action %q", got.Action)
	}
}

func TestGormPing(t *testing.T) {
	s, _ := testGormStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
