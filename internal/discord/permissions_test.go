package discord

import "testing"

func TestCanManageGuild(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"8", true},
		{"32", true},
		{"40", true},
		{"2147483647", true},
		{"0", false},
		{"1024", false},
		{"", false},
		{"not-a-number", false},
		{"-8", false},
		// 2^64, no low bits
		{"18446744073709551616", false},
		// 2^64 + 32, beyond 64-bit range
		{"18446744073709551648", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := CanManageGuild(tt.raw); got != tt.want {
				t.Errorf("CanManageGuild(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestUserGuildCanManage(t *testing.T) {
	if !(UserGuild{Owner: true, Permissions: "2199023255551"}).CanManage() {
		t.Error("owners receive every permission bit")
	}
	if (UserGuild{Permissions: "1024"}).CanManage() {
		t.Error("view-channel only should not manage")
	}
}
