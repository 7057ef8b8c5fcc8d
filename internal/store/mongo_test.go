package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/unify-bot/unify-dashboard/internal/welcome"
	"go.mongodb.org/mongo-driver/bson"
)

// testMongoStore connects to UNIFY_TEST_MONGODB_URI using a throwaway database
func testMongoStore(t *testing.T) *MongoStore {
	t.Helper()

	uri := os.Getenv("UNIFY_TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("UNIFY_TEST_MONGODB_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbName := "unify_test_" + uuid.NewString()[:8]
	s, err := NewMongoStore(ctx, uri, dbName)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = s.client.Database(dbName).Drop(context.Background())
		_ = s.Close()
	})
	return s
}

func TestMongoGetOrCreate(t *testing.T) {
	s := testMongoStore(t)
	ctx := context.Background()

	cfg, err := s.GetOrCreate(ctx, "123", "Acme")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if diff := cmp.Diff(welcome.Defaults(), cfg.Welcome, colorComparer); diff != "" {
		t.Errorf("welcome mismatch (-want +got):\n%s", diff)
	}

	renamed, err := s.GetOrCreate(ctx, "123", "Acme Renamed")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if renamed.GuildName != "Acme Renamed" {
		t.Errorf("expected rename, got %q", renamed.GuildName)
	}

	n, err := s.configs.CountDocuments(ctx, bson.M{"guildId": "123"})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 document, got %d", n)
	}
}

func TestMongoUpsertWelcomeKeepsColorType(t *testing.T) {
	s := testMongoStore(t)
	ctx := context.Background()

	cfg := welcome.Defaults()
	cfg.Embed.Color = welcome.IntColor(39423)
	out, err := s.UpsertWelcome(ctx, "9", "Nueve", cfg)
	if err != nil {
		t.Fatalf("UpsertWelcome: %v", err)
	}
	if out.GuildName != "Nueve" {
		t.Errorf("expected guild name on insert, got %q", out.GuildName)
	}
	if n, ok := out.Welcome.Embed.Color.Int(); !ok || n != 39423 {
		t.Errorf("expected integer color, got %v", out.Welcome.Embed.Color)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestColorBSONConversion(t *testing.T) {
	tests := []struct {
		name string
		in   welcome.Color
	}{
		{"hex", welcome.HexColor("#abcdef")},
		{"int", welcome.IntColor(42)},
		{"zero", welcome.Color{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := colorFromBSON(colorToBSON(tt.in))
			if got != tt.in {
				t.Errorf("got %v, want %v", got, tt.in)
			}
		})
	}

	if got := colorFromBSON(int32(7)); got != welcome.IntColor(7) {
		t.Errorf("int32 not converted: %v", got)
	}
	if got := colorFromBSON(float64(7)); got != welcome.IntColor(7) {
		t.Errorf("double not converted: %v", got)
	}
}
