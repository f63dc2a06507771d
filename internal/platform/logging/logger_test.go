package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw     string
		want    Level
		wantErr bool
	}{
		{raw: "", want: LevelInfo},
		{raw: "DEBUG", want: LevelDebug},
		{raw: " warning ", want: LevelWarn},
		{raw: "error", want: LevelError},
		{raw: "loud", wantErr: true},
	}

	for _, tc := range tests {
		got, err := ParseLevel(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseLevel(%q) expected error", tc.raw)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", tc.raw, got, err, tc.want)
		}
	}
}

func TestLoggerWritesKeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelInfo).Named("session").With("match_id", "m-1")

	logger.Debug("hidden")
	logger.Info("point scored", "player_id", 2, "err", errors.New("boom"), "dangling")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := sonic.UnmarshalString(lines[0], &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["msg"] != "point scored" || entry["logger"] != "session" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["match_id"] != "m-1" || entry["player_id"] != float64(2) || entry["err"] != "boom" {
		t.Fatalf("unexpected fields: %v", entry)
	}
	if _, ok := entry["dangling"]; !ok {
		t.Fatalf("expected dangling key to be kept")
	}
}

func TestNilLoggerUsesDefault(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewJSONWriter(&buf, LevelInfo))
	t.Cleanup(func() { SetDefault(nil) })

	var logger *Logger
	logger.Info("fallback")

	if !strings.Contains(buf.String(), "fallback") {
		t.Fatalf("expected default logger to receive entry, got %q", buf.String())
	}
}
