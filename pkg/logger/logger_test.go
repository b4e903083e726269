package logger

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"igloader/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"WARN", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"loud", zerolog.InfoLevel, true},
	}

	for _, test := range tests {
		level, err := parseLogLevel(test.input)
		if (err != nil) != test.wantErr {
			t.Errorf("parseLogLevel(%q): unexpected error state: %v", test.input, err)
		}
		if level != test.expected {
			t.Errorf("parseLogLevel(%q) = %v, expected %v", test.input, level, test.expected)
		}
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "nope"})
	if err == nil {
		t.Error("expected error for invalid log level")
	}
}

func TestTestLoggerCapture(t *testing.T) {
	tl := NewTestLogger()

	tl.Info("session started")
	tl.WithField("target", "post abc").Warn("retrying")
	tl.WithError(errors.New("boom")).Error("fetch failed")

	if !tl.HasMessage("INFO", "session started") {
		t.Error("expected info message to be captured")
	}
	if !tl.HasMessage("WARN", "retrying") {
		t.Error("expected warn message to be captured")
	}

	msgs := tl.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[1].Fields["target"] != "post abc" {
		t.Errorf("expected field to be carried, got %v", msgs[1].Fields)
	}
}
