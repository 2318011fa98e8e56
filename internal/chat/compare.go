package chat

import (
	"sort"
	"time"
)

// CompareTimestamps orders two ISO-8601 timestamps by the instants they
// denote: negative when a is earlier, zero when equal, positive when later.
// A malformed timestamp parses to the zero instant and sorts first; feeding
// one in is a caller bug, not a handled condition.
func CompareTimestamps(a, b string) int {
	return parseInstant(a).Compare(parseInstant(b))
}

func parseInstant(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// sortMessages orders messages ascending by timestamp. The sort is stable,
// so equal timestamps keep insertion order.
func sortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return CompareTimestamps(msgs[i].Timestamp, msgs[j].Timestamp) < 0
	})
}

// sortRecentChats orders chats descending by last-message timestamp.
// Entries without a last message sort last; the sort is stable.
func sortRecentChats(chats []ChatUser) {
	sort.SliceStable(chats, func(i, j int) bool {
		a, b := chats[i].LastMessage, chats[j].LastMessage
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return CompareTimestamps(a.Timestamp, b.Timestamp) > 0
	})
}
