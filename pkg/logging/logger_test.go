package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func decodeEntries(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()

	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Failed to unmarshal log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warn", WarnLevel},
		{"WARNING", WarnLevel},
		{"error", ErrorLevel},
		{" Error ", ErrorLevel},
		{"invalid", InfoLevel}, // Default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFieldConstructors(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		key   string
		value any
	}{
		{"String", String("k", "v"), "k", "v"},
		{"Int", Int("count", 42), "count", 42},
		{"Float64", Float64("ratio", 3.14), "ratio", 3.14},
		{"Duration", Duration("timeout", 5*time.Second), "timeout", "5s"},
		{"Error", Error(errors.New("test error")), "error", "test error"},
		{"Error_nil", Error(nil), "error", nil},
		{"Snapshot", Snapshot(3), "snapshot", 3},
		{"Phase", Phase("predict"), "phase", "predict"},
		{"Modularity", Modularity(0.3571), "modularity", 0.3571},
		{"Communities", Communities(5), "communities", 5},
		{"RunID", RunID("abc"), "run_id", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.field.Key != tt.key || tt.field.Value != tt.value {
				t.Errorf("%s = %+v, want {Key:%s Value:%v}", tt.name, tt.field, tt.key, tt.value)
			}
		})
	}
}

func TestJSONLogger_BasicLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	logger.Info("snapshot processed", Snapshot(1), Phase("bootstrap"))

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]

	if entry.Level != "INFO" {
		t.Errorf("Level = %v, want INFO", entry.Level)
	}
	if entry.Message != "snapshot processed" {
		t.Errorf("Message = %v, want 'snapshot processed'", entry.Message)
	}
	if entry.Fields["phase"] != "bootstrap" {
		t.Errorf("Fields[phase] = %v, want bootstrap", entry.Fields["phase"])
	}
	if entry.Fields["snapshot"] != float64(1) { // JSON unmarshals numbers as float64
		t.Errorf("Fields[snapshot] = %v, want 1", entry.Fields["snapshot"])
	}
	if entry.Time == "" {
		t.Error("Time field is empty")
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	entries := decodeEntries(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != "WARN" || entries[1].Level != "ERROR" {
		t.Errorf("levels = %s, %s; want WARN, ERROR", entries[0].Level, entries[1].Level)
	}
}

func TestJSONLogger_NoFieldsOmitted(t *testing.T) {
	var buf bytes.Buffer
	NewJSONLogger(&buf, InfoLevel).Info("plain")

	if strings.Contains(buf.String(), "fields") {
		t.Errorf("entry without fields should omit the key: %s", buf.String())
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Component("temporal"), RunID("run-1"))
	child.Info("step", Snapshot(2))

	// Parent is unaffected
	logger.Info("parent")

	entries := decodeEntries(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	if entries[0].Fields["component"] != "temporal" || entries[0].Fields["run_id"] != "run-1" {
		t.Errorf("child preset fields missing: %v", entries[0].Fields)
	}
	if entries[0].Fields["snapshot"] != float64(2) {
		t.Errorf("child call field missing: %v", entries[0].Fields)
	}
	if entries[1].Fields != nil {
		t.Errorf("parent should have no fields, got %v", entries[1].Fields)
	}
}

func TestJSONLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.SetLevel(ErrorLevel)
	if logger.GetLevel() != ErrorLevel {
		t.Errorf("After SetLevel, level = %v, want ErrorLevel", logger.GetLevel())
	}

	logger.Info("info")
	if buf.Len() != 0 {
		t.Error("Expected no output for Info at ErrorLevel")
	}

	logger.Error("error")
	if buf.Len() == 0 {
		t.Error("Expected output for Error at ErrorLevel")
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New("debug", &buf)

	if logger.GetLevel() != DebugLevel {
		t.Errorf("New(debug) level = %v", logger.GetLevel())
	}
	logger.Debug("visible")
	if buf.Len() == 0 {
		t.Error("debug entry not written")
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	timer := StartTimer(logger, "feature extraction", Stage("features"))
	elapsed := timer.End(Nodes(10))
	if elapsed < 0 {
		t.Errorf("elapsed = %v", elapsed)
	}

	timer = StartTimer(logger, "fit", Stage("fit"))
	timer.EndError(errors.New("shape mismatch"))

	entries := decodeEntries(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	if entries[0].Level != "DEBUG" || entries[0].Fields["stage"] != "features" || entries[0].Fields["nodes"] != float64(10) {
		t.Errorf("End entry = %+v", entries[0])
	}
	if _, ok := entries[0].Fields["latency"]; !ok {
		t.Error("End entry missing latency")
	}
	if entries[1].Level != "ERROR" || entries[1].Fields["error"] != "shape mismatch" {
		t.Errorf("EndError entry = %+v", entries[1])
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Info("ignored", Snapshot(1))
	if logger.With(Phase("x")) == nil {
		t.Error("With should return a logger")
	}
	if logger.GetLevel() != InfoLevel {
		t.Errorf("GetLevel() = %v", logger.GetLevel())
	}
}
