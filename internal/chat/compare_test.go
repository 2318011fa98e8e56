package chat

import "testing"

func TestCompareTimestamps(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int // sign only
	}{
		{"earlier", "2025-06-01T10:00:00Z", "2025-06-01T10:00:01Z", -1},
		{"later", "2025-06-01T10:00:01Z", "2025-06-01T10:00:00Z", 1},
		{"equal", "2025-06-01T10:00:00Z", "2025-06-01T10:00:00Z", 0},
		{"across zones", "2025-06-01T12:00:00+02:00", "2025-06-01T10:00:00Z", 0},
		{"date boundary", "2025-05-31T23:59:59Z", "2025-06-01T00:00:00Z", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareTimestamps(tt.a, tt.b)
			if sign(got) != tt.want {
				t.Errorf("CompareTimestamps(%q, %q) = %d, want sign %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSortMessagesStable(t *testing.T) {
	msgs := []Message{
		{ID: 3, Timestamp: "2025-06-01T10:02:00Z"},
		{ID: 1, Timestamp: "2025-06-01T10:00:00Z"},
		{ID: 2, Timestamp: "2025-06-01T10:00:00Z"},
	}
	sortMessages(msgs)

	wantOrder := []int{1, 2, 3}
	for i, want := range wantOrder {
		if msgs[i].ID != want {
			t.Fatalf("order = %v, want IDs %v", ids(msgs), wantOrder)
		}
	}
}

func TestSortRecentChatsMissingLastMessageSortsLast(t *testing.T) {
	chats := []ChatUser{
		{ID: 1, LastMessage: &LastMessage{Timestamp: "2025-06-01T10:00:00Z"}},
		{ID: 2},
		{ID: 3, LastMessage: &LastMessage{Timestamp: "2025-06-01T11:00:00Z"}},
	}
	sortRecentChats(chats)

	wantOrder := []int{3, 1, 2}
	for i, want := range wantOrder {
		if chats[i].ID != want {
			got := make([]int, len(chats))
			for j := range chats {
				got[j] = chats[j].ID
			}
			t.Fatalf("order = %v, want %v", got, wantOrder)
		}
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func ids(msgs []Message) []int {
	out := make([]int, len(msgs))
	for i := range msgs {
		out[i] = msgs[i].ID
	}
	return out
}
