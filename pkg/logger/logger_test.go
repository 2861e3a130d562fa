package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"productimg/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"info level", &config.LoggingConfig{Level: "info"}, false},
		{"debug level", &config.LoggingConfig{Level: "debug"}, false},
		{"invalid level", &config.LoggingConfig{Level: "invalid"}, true},
		{"file output", &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "run.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
			if tt.cfg.File != "" {
				if _, err := os.Stat(tt.cfg.File); err != nil {
					t.Errorf("log file not created: %v", err)
				}
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"verbose", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func TestWriterLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "debug")
	if err != nil {
		t.Fatalf("NewWithWriter() error = %v", err)
	}

	log.WithField("category", "food").
		WithFields(map[string]interface{}{"term": "dog food", "width": 800}).
		Info("Image saved")

	out := buf.String()
	for _, want := range []string{
		`"app":"productimg"`,
		`"category":"food"`,
		`"term":"dog food"`,
		`"width":800`,
		`"message":"Image saved"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, _ := NewWithWriter(&buf, "warn")

	log.Info("hidden")
	log.Debug("hidden too")
	if buf.Len() != 0 {
		t.Errorf("expected nothing below warn, got %q", buf.String())
	}

	log.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn message missing: %q", buf.String())
	}
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent, _ := NewWithWriter(&buf, "info")
	_ = parent.WithField("child_only", true)

	parent.Info("parent")
	if strings.Contains(buf.String(), "child_only") {
		t.Errorf("child field leaked into parent: %q", buf.String())
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log, _ := NewWithWriter(&buf, "info")

	if log.WithError(nil) != log {
		t.Error("WithError(nil) should return the same logger")
	}

	log.WithError(errors.New("connection reset")).Error("Fetch failed")
	if !strings.Contains(buf.String(), `"error":"connection reset"`) {
		t.Errorf("error field missing: %q", buf.String())
	}
}

func TestFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	log, _ := NewWithWriter(&buf, "info")

	log.InfoWithFields("typed", map[string]interface{}{
		"elapsed": 1500 * time.Millisecond,
		"ok":      true,
		"ratio":   0.5,
		"terms":   []string{"a", "b"},
	})

	out := buf.String()
	for _, want := range []string{`"elapsed":1500`, `"ok":true`, `"ratio":0.5`, `"terms":["a","b"]`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}
}

func TestHelpersUseGlobalLogger(t *testing.T) {
	tl := NewTestLogger()
	SetLogger(tl)
	defer SetLogger(nil)

	LogItem("food", "dog food", "saved", "out/food/dog_food.jpg", nil)
	LogItem("toys", "cat toys", "no_image", "", errors.New("not_found error (code 404)"))
	LogRateLimit(50, 2)
	LogRunSummary(15, 1, 0, time.Minute)

	if !tl.HasMessage("info", "Image saved") {
		t.Error("expected saved item at info")
	}
	if !tl.HasError("code 404") {
		t.Error("expected skipped item to carry its error")
	}
	if !tl.HasMessage("warn", "API quota running low") {
		t.Error("expected low quota warning")
	}

	summary := tl.GetMessagesByLevel("info")
	last := summary[len(summary)-1]
	if last.Message != "Run finished" || last.Fields["saved"] != 15 {
		t.Errorf("unexpected summary message: %+v", last)
	}
}

func TestLogItemDebugStaysOffInfo(t *testing.T) {
	tl := NewTestLogger()
	SetLogger(tl)
	defer SetLogger(nil)

	LogItemDebug("food", "dog food", "saved", "out/food/dog_food.jpg", nil)
	LogItemDebug("toys", "cat toys", "no_image", "", errors.New("not_found error (code 404)"))

	if n := len(tl.GetMessagesByLevel("info")) + len(tl.GetMessagesByLevel("warn")); n != 0 {
		t.Errorf("expected no info or warn lines, got %d", n)
	}
	if !tl.HasMessage("debug", "Image saved") || !tl.HasMessage("debug", "Item skipped") {
		t.Errorf("expected both items at debug: %s", tl.String())
	}
	if !tl.HasError("code 404") {
		t.Error("expected skipped item to carry its error")
	}
}

func TestTestLoggerSharesSink(t *testing.T) {
	tl := NewTestLogger()
	child := tl.WithField("component", "fetcher").WithError(errors.New("boom"))
	child.Warn("child message")

	msgs := tl.GetMessages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Fields["component"] != "fetcher" || msgs[0].Error == nil {
		t.Errorf("child context lost: %+v", msgs[0])
	}

	tl.Clear()
	if len(tl.GetMessages()) != 0 || tl.String() != "" {
		t.Error("Clear() should drop everything")
	}
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.WithField("k", "v").WithError(errors.New("x")).Error("ignored")
	if log.GetZerolog() == nil {
		t.Error("nop logger should still expose a zerolog instance")
	}
}
