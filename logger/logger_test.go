package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"off", Disabled},
		{"", InfoLevel},
		{"bogus", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestModuleTag(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, DebugLevel).Module("environ")
	log.Info().Msg("pixel format set")

	out := buf.String()
	if !strings.Contains(out, `"mod":"environ"`) {
		t.Errorf("expected module tag in %s", out)
	}
	if !strings.Contains(out, "pixel format set") {
		t.Errorf("expected message in %s", out)
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, WarnLevel)
	log.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug entry leaked at warn level: %s", buf.String())
	}
	if log.GetLevel() != WarnLevel {
		t.Errorf("GetLevel = %v, want %v", log.GetLevel(), WarnLevel)
	}
}
