package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
)

func jsonLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := &Config{Level: level, Format: "json", Output: "discard"}
	return NewWithWriter(cfg, "test", &buf), &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("failed to decode log line %q: %v", line, err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l := New(&Config{Level: "invalid-level", Format: "json", Output: "discard"}, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestLevelFiltering(t *testing.T) {
	l, buf := jsonLogger(t, "warn")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn level, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected warn line, got %q", buf.String())
	}
}

func TestDisabledLevel(t *testing.T) {
	l, buf := jsonLogger(t, "disabled")
	l.Error("nothing")
	if buf.Len() != 0 {
		t.Fatalf("expected no output when disabled, got %q", buf.String())
	}
}

func TestWithComponentAndFields(t *testing.T) {
	l, buf := jsonLogger(t, "debug")
	l.WithComponent("launcher").Debug("process started", Fields(FieldPID, 4242, FieldMode, "detached"))

	m := decodeLine(t, buf)
	if m[FieldComponent] != "launcher" {
		t.Errorf("expected component launcher, got %v", m[FieldComponent])
	}
	if m[FieldPID] != float64(4242) {
		t.Errorf("expected pid 4242, got %v", m[FieldPID])
	}
	if m[FieldMode] != "detached" {
		t.Errorf("expected mode detached, got %v", m[FieldMode])
	}
	if l.WithComponent("x").service != "test" {
		t.Error("service should be preserved")
	}
}

func TestWithContextRequestID(t *testing.T) {
	l, buf := jsonLogger(t, "info")
	ctx := ContextWithRequestID(context.Background(), "req-789")
	l.WithContext(ctx).Info("handled")

	m := decodeLine(t, buf)
	if m[FieldRequestID] != "req-789" {
		t.Errorf("expected request id, got %v", m[FieldRequestID])
	}
}

func TestWithError(t *testing.T) {
	l, buf := jsonLogger(t, "info")
	l.WithError(fmt.Errorf("broken")).Error("failed")
	if !strings.Contains(buf.String(), "broken") {
		t.Errorf("expected error text in %q", buf.String())
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Level: "info", Format: "console", NoColor: true}
	NewWithWriter(cfg, "bg", &buf).Info("ready")
	out := buf.String()
	if !strings.Contains(out, "[BG][INF]") {
		t.Errorf("expected service and level tags, got %q", out)
	}
	if !strings.Contains(out, "ready") {
		t.Errorf("expected message, got %q", out)
	}
}

func TestInitSetsGlobal(t *testing.T) {
	Init(&Config{Level: "info", Format: "json", Output: "discard"})
	if GetGlobalLogger() == nil {
		t.Fatal("expected global logger to be set after Init")
	}
	// These should not panic
	Debug("debug msg")
	Info("info msg")
	Warn("warn msg")
	Error("error msg")
}

func TestSetGlobalLogger(t *testing.T) {
	l := Nop()
	SetGlobalLogger(l)
	if GetGlobalLogger() != l {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
}

func TestRegisterAndGet(t *testing.T) {
	l := NewDefault("custom-component")
	Register("my-component", l)

	if Get("my-component") != l {
		t.Error("expected Get to return the registered logger")
	}
	if Get("unregistered-component") == nil {
		t.Fatal("expected non-nil logger for unregistered component")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "warn" {
		t.Errorf("expected level 'warn', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected output 'stderr', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json", Output: "stderr"}, false},
		{"valid console", Config{Level: "debug", Format: "console", Output: "stdout"}, false},
		{"invalid level", Config{Level: "bad", Format: "json", Output: "stderr"}, true},
		{"invalid format", Config{Level: "info", Format: "xml", Output: "stderr"}, true},
		{"invalid output", Config{Level: "info", Format: "json", Output: "file"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFields(t *testing.T) {
	tests := []struct {
		name     string
		input    []interface{}
		expected map[string]interface{}
	}{
		{"key-value pairs", []interface{}{"op", "launch", "pid", 42}, map[string]interface{}{"op": "launch", "pid": 42}},
		{"odd number of args", []interface{}{"op", "launch", "trailing"}, map[string]interface{}{"op": "launch"}},
		{"non-string key skipped", []interface{}{123, "value", "key", "val"}, map[string]interface{}{"key": "val"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Fields(tc.input...)
			if len(result) != len(tc.expected) {
				t.Fatalf("expected %d fields, got %d", len(tc.expected), len(result))
			}
			for k, v := range tc.expected {
				if result[k] != v {
					t.Errorf("Fields[%q] = %v, expected %v", k, result[k], v)
				}
			}
		})
	}
}

func TestErrorFields(t *testing.T) {
	fields := ErrorFields("launch", fmt.Errorf("something broke"))
	if fields[FieldOperation] != "launch" {
		t.Errorf("expected operation 'launch', got %v", fields[FieldOperation])
	}
	if fields[FieldError] != "something broke" {
		t.Errorf("expected error 'something broke', got %v", fields[FieldError])
	}
}

func TestMergeWithDuration(t *testing.T) {
	result := MergeWithDuration(map[string]interface{}{"op": "wait"}, 200*time.Millisecond)
	if result[FieldDuration] != int64(200) {
		t.Errorf("expected duration 200, got %v", result[FieldDuration])
	}
	if result["op"] != "wait" {
		t.Error("expected existing fields to be preserved")
	}

	if MergeWithDuration(nil, time.Second)[FieldDuration] != int64(1000) {
		t.Error("expected duration from nil map")
	}
}
