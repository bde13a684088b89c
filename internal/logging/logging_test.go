package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewDefaults(t *testing.T) {
	logger, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("Debug should be disabled at the default level")
	}
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"level", Options{Level: "loud"}},
		{"format", Options{Format: "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestNewFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	logger, err := New(Options{Level: "debug", Format: "json", File: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Debug("model loaded")
	logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	line := strings.TrimSpace(string(data))
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("Log line is not JSON: %q", line)
	}
	if entry["msg"] != "model loaded" {
		t.Errorf("Unexpected message %v", entry["msg"])
	}
}
