package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testLogConfig struct {
	level, output, file string
}

func (c testLogConfig) GetLevel() string  { return c.level }
func (c testLogConfig) GetOutput() string { return c.output }
func (c testLogConfig) GetFile() string   { return c.file }

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DEBUG,
		"INFO":    INFO,
		"warning": WARN,
		"error":   ERROR,
		"fatal":   FATAL,
		"bogus":   INFO,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewFromConfigWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := NewFromConfig(testLogConfig{level: "info", output: "file", file: path})
	if err != nil {
		t.Fatalf("NewFromConfig() error: %v", err)
	}

	l.Info("contribution %d approved", 42)
	l.Debug("hidden at info level")
	l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "contribution 42 approved") {
		t.Errorf("log file missing message: %s", content)
	}
	if strings.Contains(content, "hidden at info level") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(content, `"timestamp"`) {
		t.Errorf("expected timestamp key in %s", content)
	}
}

func TestFileOutputRequiresPath(t *testing.T) {
	if _, err := NewFromConfig(testLogConfig{output: "file"}); err == nil {
		t.Error("expected error for empty log file path")
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNop()
	l.Info("nothing %s", "here")
	l.Named("webhook").Warn("still nothing")
}
