package bus

import "time"

// Event represents a client-side domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// Well-known event kinds. Subscribers filter by namespace prefix, so
// "chat." matches every chat state change.
const (
	KindMessagesChanged  = "chat.messages_changed"
	KindRecentChanged    = "chat.recent_changed"
	KindSelectionChanged = "chat.selection_changed"
	KindStoreError       = "chat.error"

	KindTokenRefreshed = "session.token_refreshed"
	KindAuthFailed     = "session.auth_failed"
	KindStatusChanged  = "session.status_changed"
)
