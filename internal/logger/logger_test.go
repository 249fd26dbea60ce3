package logger

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestWithComponent(t *testing.T) {
	entry := WithComponent("fetcher")
	if entry == nil {
		t.Fatal("expected non-nil entry")
	}

	if val, ok := entry.Data["component"]; !ok {
		t.Error("expected component field to be set")
	} else if val != "fetcher" {
		t.Errorf("expected component 'fetcher', got '%v'", val)
	}
}

func TestLoggerInit(t *testing.T) {
	if Logger == nil {
		t.Fatal("expected Logger to be initialized")
	}

	// Diagnostics go to stderr.
	if Logger.Out != os.Stderr {
		t.Error("expected Logger output to be os.Stderr")
	}
}

func TestApplyLevel(t *testing.T) {
	origLevel := Logger.GetLevel()
	defer Logger.SetLevel(origLevel)

	t.Setenv("LOG_LEVEL", "")

	tests := []struct {
		name          string
		level         string
		ok            bool
		expectedLevel logrus.Level
	}{
		{"debug level", "debug", true, logrus.DebugLevel},
		{"warn level", "warn", true, logrus.WarnLevel},
		{"uppercase", "ERROR", true, logrus.ErrorLevel},
		{"invalid level", "loud", false, logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger.SetLevel(logrus.InfoLevel)

			if got := ApplyLevel(tt.level); got != tt.ok {
				t.Errorf("ApplyLevel(%q) = %v, want %v", tt.level, got, tt.ok)
			}
			if Logger.GetLevel() != tt.expectedLevel {
				t.Errorf("expected level %v, got %v", tt.expectedLevel, Logger.GetLevel())
			}
		})
	}
}

func TestApplyLevel_EnvOverride(t *testing.T) {
	origLevel := Logger.GetLevel()
	defer Logger.SetLevel(origLevel)

	t.Setenv("LOG_LEVEL", "debug")
	Logger.SetLevel(logrus.DebugLevel)

	if !ApplyLevel("error") {
		t.Error("expected ApplyLevel to report success when LOG_LEVEL is set")
	}
	if Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected LOG_LEVEL to win, got %v", Logger.GetLevel())
	}
}

func TestWithComponentMultiple(t *testing.T) {
	entry1 := WithComponent("component-a")
	entry2 := WithComponent("component-b")

	if entry1.Data["component"] == entry2.Data["component"] {
		t.Error("expected different component values for different entries")
	}
}
