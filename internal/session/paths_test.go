package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDir(t *testing.T) {
	home, _ := os.UserHomeDir()
	got := Dir("main")
	want := filepath.Join(home, ".trik", "sessions", "main")
	if got != want {
		t.Errorf("Dir(main) = %q, want %q", got, want)
	}
}

func TestSnapshotPath(t *testing.T) {
	got := SnapshotPath("test")
	if !strings.HasSuffix(got, filepath.Join("sessions", "test", "session.db")) {
		t.Errorf("SnapshotPath(test) = %q, want suffix sessions/test/session.db", got)
	}
}

func TestLockPath(t *testing.T) {
	got := LockPath("test")
	if !strings.HasSuffix(got, filepath.Join("sessions", "test", "LOCK")) {
		t.Errorf("LockPath(test) = %q, want suffix sessions/test/LOCK", got)
	}
}

func TestLogPath(t *testing.T) {
	got := LogPath("test")
	if !strings.HasSuffix(got, filepath.Join("sessions", "test", "logs", "trik.log")) {
		t.Errorf("LogPath(test) = %q, want suffix sessions/test/logs/trik.log", got)
	}
}
