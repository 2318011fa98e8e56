package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/msgtrik/trik/internal/chat"
)

// FetchMessages returns one page of conversation history with partnerID.
// Pages are 1-based.
func (c *Client) FetchMessages(ctx context.Context, partnerID, page int) (*chat.MessagePage, error) {
	query := url.Values{
		"partner": {strconv.Itoa(partnerID)},
		"page":    {strconv.Itoa(page)},
		"limit":   {strconv.Itoa(c.PageLimit)},
	}
	var resp chat.MessagePage
	if err := c.do(ctx, http.MethodGet, "/messages", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendMessage posts a message to receiverID and returns the server-confirmed
// message; its id, timestamp and read flag are authoritative.
func (c *Client) SendMessage(ctx context.Context, receiverID int, content string) (*chat.Message, error) {
	body := map[string]any{
		"receiverId": receiverID,
		"content":    content,
	}
	var msg chat.Message
	if err := c.do(ctx, http.MethodPost, "/messages", nil, body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkRead marks every message from partnerID to the current user as read.
// Idempotent server-side.
func (c *Client) MarkRead(ctx context.Context, partnerID int) error {
	var resp struct {
		Success bool `json:"success"`
	}
	path := fmt.Sprintf("/messages/%d/read", partnerID)
	if err := c.do(ctx, http.MethodPost, path, nil, struct{}{}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &APIError{Status: http.StatusOK, Detail: "server did not acknowledge mark-read"}
	}
	return nil
}

// recentChatEntry is the wire shape of one recent conversation.
type recentChatEntry struct {
	User        chat.ChatUser     `json:"user"`
	LastMessage *chat.LastMessage `json:"lastMessage"`
	UnreadCount int               `json:"unreadCount"`
}

// RecentChats returns the summary list of conversations, each entry carrying
// the last-message preview and unread count flattened onto the user.
func (c *Client) RecentChats(ctx context.Context) ([]chat.ChatUser, error) {
	var resp struct {
		Chats []recentChatEntry `json:"chats"`
	}
	if err := c.do(ctx, http.MethodGet, "/chats", nil, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]chat.ChatUser, 0, len(resp.Chats))
	for _, entry := range resp.Chats {
		u := entry.User
		u.LastMessage = entry.LastMessage
		u.UnreadCount = entry.UnreadCount
		out = append(out, u)
	}
	return out, nil
}
