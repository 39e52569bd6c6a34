package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerTo_WritesJSONWithAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := WithClipID(WithComponent(NewLoggerTo(&buf, "info"), "diary"), "clip_1")

	logger.Debug("hidden")
	logger.Info("clip created")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not a single JSON line: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "clip created" {
		t.Errorf("msg = %v, want clip created", entry["msg"])
	}
	if entry["component"] != "diary" || entry["clip_id"] != "clip_1" {
		t.Errorf("attributes = %v, want component and clip_id", entry)
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken("short"); got != "****" {
		t.Errorf("SanitizeToken(short) = %q, want ****", got)
	}
	if got := SanitizeToken("abcdefghijklmnop"); got != "abcd...mnop" {
		t.Errorf("SanitizeToken() = %q, want abcd...mnop", got)
	}
}
