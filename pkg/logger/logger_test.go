package logger

import "testing"

func TestInitAndLevelString(t *testing.T) {
	Init("debug")
	if got := LevelString(); got != "debug" {
		t.Fatalf("LevelString() = %q, want %q", got, "debug")
	}
	Init("WARN")
	if got := LevelString(); got != "warn" {
		t.Fatalf("LevelString() = %q, want %q", got, "warn")
	}
	Init("Error")
	if got := LevelString(); got != "error" {
		t.Fatalf("LevelString() = %q, want %q", got, "error")
	}
	Init("nonsense")
	if got := LevelString(); got != "info" {
		t.Fatalf("LevelString() = %q, want %q for unknown input", got, "info")
	}
}

func TestHelpersDoNotPanic(t *testing.T) {
	Init("debug")
	Debugf("debug %s", "msg")
	Infof("info %s", "msg")
	Warnf("warn %s", "msg")
	Errorf("error %s", "msg")
	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
	Sync()
}
