package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "json", "info")

	log.Debug("hidden")
	log.Info("Welcome configuration updated", "guild_id", "123")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 record, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if rec["service"] != Service || rec["guild_id"] != "123" {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "text", "debug").Debug("probe")

	if !strings.Contains(buf.String(), "msg=probe") || !strings.Contains(buf.String(), "service="+Service) {
		t.Errorf("unexpected text output %q", buf.String())
	}
}
