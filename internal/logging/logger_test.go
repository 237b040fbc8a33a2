package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestInitJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Debug().Str("stage", "customers").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "debug" {
		t.Errorf("Expected level 'debug', got %v", entry["level"])
	}
	if entry["stage"] != "customers" {
		t.Errorf("Expected stage 'customers', got %v", entry["stage"])
	}
}

func TestInitLevelFiltering(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantLog bool
	}{
		{name: "warn hides info", level: "warn", wantLog: false},
		{name: "info shows info", level: "info", wantLog: true},
		{name: "invalid falls back to info", level: "loud", wantLog: true},
		{name: "empty falls back to info", level: "", wantLog: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Init(Config{Level: tt.level, Output: &buf})
			t.Cleanup(func() { Init(DefaultConfig()) })

			Info().Msg("visible?")
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("Expected logged=%v, got %v (%q)", tt.wantLog, got, buf.String())
			}
		})
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	l := Component("web")
	l.Info().Msg("started")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line: %v", err)
	}
	if entry["component"] != "web" {
		t.Errorf("Expected component 'web', got %v", entry["component"])
	}
}
