package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/unify-bot/unify-dashboard/internal/discord"
)

type fakePresence struct {
	members  map[string]bool
	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
	mu       sync.Mutex
	checked  []string
}

func (f *fakePresence) IsBotMember(ctx context.Context, guildID string) bool {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(f.delay)

	f.mu.Lock()
	f.checked = append(f.checked, guildID)
	f.mu.Unlock()
	return f.members[guildID]
}

type fakeIcons struct{}

func (fakeIcons) IconURL(_ context.Context, guildID, icon string) string {
	if icon == "" {
		return ""
	}
	return "icon://" + guildID
}

func TestServers_FiltersAndPreservesOrder(t *testing.T) {
	presence := &fakePresence{members: map[string]bool{"1": true, "4": true}}
	a := NewAssembler(presence, fakeIcons{}, 2)

	guilds := []discord.UserGuild{
		{ID: "1", Name: "Admin", Icon: "x", Permissions: "8"},
		{ID: "2", Name: "Member", Permissions: "1024"},
		{ID: "3", Name: "Manager", Permissions: "32"},
		{ID: "4", Name: "Both", Icon: "y", Permissions: "40"},
	}

	got, err := a.Servers(context.Background(), guilds)
	if err != nil {
		t.Fatalf("Servers: %v", err)
	}
	want := []Server{
		{ID: "1", Name: "Admin", Icon: "x", IconURL: "icon://1", BotInGuild: true, HasAdmin: true},
		{ID: "3", Name: "Manager", HasAdmin: true},
		{ID: "4", Name: "Both", Icon: "y", IconURL: "icon://4", BotInGuild: true, HasAdmin: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("servers mismatch (-want +got):\n%s", diff)
	}
	if len(presence.checked) != 3 {
		t.Errorf("expected 3 presence checks, got %v", presence.checked)
	}
}

func TestServers_BoundedConcurrency(t *testing.T) {
	presence := &fakePresence{delay: 20 * time.Millisecond}
	a := NewAssembler(presence, nil, 3)

	var guilds []discord.UserGuild
	for i := 0; i < 12; i++ {
		guilds = append(guilds, discord.UserGuild{ID: string(rune('a' + i)), Permissions: "8"})
	}
	if _, err := a.Servers(context.Background(), guilds); err != nil {
		t.Fatalf("Servers: %v", err)
	}
	if peak := presence.peak.Load(); peak > 3 {
		t.Errorf("expected at most 3 concurrent checks, saw %d", peak)
	}
}

func TestServers_Empty(t *testing.T) {
	a := NewAssembler(&fakePresence{}, nil, 0)
	got, err := a.Servers(context.Background(), nil)
	if err != nil {
		t.Fatalf("Servers: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no servers, got %v", got)
	}
}

func TestInviteURL(t *testing.T) {
	want := "https://discord.com/oauth2/authorize?client_id=123&permissions=8&scope=bot%20applications.commands"
	if got := InviteURL("123"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
