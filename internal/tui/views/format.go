package views

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/msgtrik/trik/internal/chat"
)

// DisplayName prefers the profile name, falling back to the email address.
func DisplayName(u *chat.ChatUser) string {
	if u == nil {
		return ""
	}
	if u.Profile.Name != "" {
		return u.Profile.Name
	}
	return u.Email
}

// formatWhen renders a message timestamp for the chat list: clock time for
// today, "Yesterday", the weekday within the last week, a date otherwise.
func formatWhen(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ""
	}
	t = t.Local()
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

	switch {
	case day.Equal(today):
		return t.Format("15:04")
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	case day.After(today.AddDate(0, 0, -7)):
		return t.Format("Monday")
	default:
		return t.Format("02/01/2006")
	}
}

// formatStamp renders a message timestamp inside a conversation, always
// including the clock time.
func formatStamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ""
	}
	t = t.Local()
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch {
	case day.Equal(today):
		return t.Format("15:04")
	case day.Equal(today.AddDate(0, 0, -1)):
		return t.Format("Yesterday at 15:04")
	case t.Year() == now.Year():
		return t.Format("02 Jan 15:04")
	default:
		return t.Format("02 Jan 2006 15:04")
	}
}

// truncate shortens s to at most n runes, appending an ellipsis when cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}

// sanitizeForTerminal strips codepoints that break cell-width accounting in
// tcell: skin tone modifiers, zero-width joiners and variation selectors.
func sanitizeForTerminal(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 0x1F3FB && r <= 0x1F3FF:
		case r == 0x200D:
		case r >= 0xFE00 && r <= 0xFE0F:
		case r >= 0xE0100 && r <= 0xE01EF:
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
