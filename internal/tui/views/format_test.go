package views

import (
	"testing"
	"time"

	"github.com/msgtrik/trik/internal/chat"
)

func TestDisplayName(t *testing.T) {
	u := &chat.ChatUser{Email: "ana@example.com", Profile: chat.Profile{Name: "Ana"}}
	if got := DisplayName(u); got != "Ana" {
		t.Errorf("DisplayName = %q, want Ana", got)
	}
	u.Profile.Name = ""
	if got := DisplayName(u); got != "ana@example.com" {
		t.Errorf("DisplayName fallback = %q", got)
	}
	if got := DisplayName(nil); got != "" {
		t.Errorf("DisplayName(nil) = %q", got)
	}
}

func TestFormatWhen(t *testing.T) {
	now := time.Now()

	noon := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, now.Location())
	if got := formatWhen(noon.Format(time.RFC3339)); got != "12:00" {
		t.Errorf("formatWhen(today) = %q", got)
	}

	yesterday := noon.AddDate(0, 0, -1).Format(time.RFC3339)
	if got := formatWhen(yesterday); got != "Yesterday" {
		t.Errorf("formatWhen(yesterday) = %q", got)
	}

	lastYear := now.AddDate(-1, 0, 0)
	if got := formatWhen(lastYear.Format(time.RFC3339)); got != lastYear.Format("02/01/2006") {
		t.Errorf("formatWhen(last year) = %q", got)
	}

	if got := formatWhen("not-a-time"); got != "" {
		t.Errorf("formatWhen(malformed) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("0123456789", 5); got != "0123…" {
		t.Errorf("truncate(long) = %q", got)
	}
}

func TestSanitizeForTerminal(t *testing.T) {
	in := "ok‍fine️"
	if got := sanitizeForTerminal(in); got != "okfine" {
		t.Errorf("sanitizeForTerminal = %q", got)
	}
}
