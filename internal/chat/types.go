package chat

// Message is a single direct message as returned by the gateway. IDs are
// assigned server-side, never by the client.
type Message struct {
	ID         int    `json:"id"`
	SenderID   int    `json:"senderId"`
	ReceiverID int    `json:"receiverId"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
	// Read is a pointer because the gateway may omit the field; absent
	// means unread.
	Read *bool `json:"read,omitempty"`
}

// IsRead reports whether the message has been read. An absent flag counts
// as unread.
func (m *Message) IsRead() bool {
	return m.Read != nil && *m.Read
}

// Profile holds the display attributes of a user.
type Profile struct {
	Name        string `json:"name"`
	Gender      string `json:"gender,omitempty"`
	DOB         string `json:"dob,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	AvatarColor string `json:"avatarColor,omitempty"`
}

// LastMessage is the preview attached to a recent-chat entry.
type LastMessage struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// ChatUser is a conversation partner, optionally carrying the recent-chat
// summary fields.
type ChatUser struct {
	ID          int          `json:"id"`
	Email       string       `json:"email"`
	Profile     Profile      `json:"profile"`
	LastMessage *LastMessage `json:"lastMessage,omitempty"`
	UnreadCount int          `json:"unreadCount,omitempty"`
}

// Pagination describes a page of gateway results. Page numbering is 1-based
// and Pages is the total page count at Limit-sized pages.
type Pagination struct {
	Total int `json:"total"`
	Pages int `json:"pages"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// MessagePage is one page of conversation history.
type MessagePage struct {
	Messages   []Message  `json:"messages"`
	Pagination Pagination `json:"pagination"`
}
