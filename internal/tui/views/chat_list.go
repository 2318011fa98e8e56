package views

import (
	"fmt"

	"github.com/msgtrik/trik/internal/chat"
	"github.com/rivo/tview"
)

// ChatList is the recent-conversations sidebar.
type ChatList struct {
	*tview.Table
	chats []chat.ChatUser
}

// NewChatList creates the sidebar table.
func NewChatList() *ChatList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true).SetTitle(" Chats ")

	return &ChatList{Table: table}
}

// Update refreshes the sidebar. The slice is already ordered most recent
// first by the store.
func (cl *ChatList) Update(chats []chat.ChatUser) {
	row, _ := cl.GetSelection()
	selectedID := 0
	if idx := row - 1; idx >= 0 && idx < len(cl.chats) {
		selectedID = cl.chats[idx].ID
	}

	cl.chats = chats
	cl.Clear()

	cl.SetCell(0, 0, tview.NewTableCell(" Name").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	cl.SetCell(0, 1, tview.NewTableCell(" Last Message").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	cl.SetCell(0, 2, tview.NewTableCell(" When").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))

	for i := range chats {
		c := &chats[i]
		r := i + 1

		name := DisplayName(c)
		if c.UnreadCount > 0 {
			name = fmt.Sprintf("* %s (%d)", name, c.UnreadCount)
		}

		preview, when := "", ""
		if c.LastMessage != nil {
			preview = truncate(sanitizeForTerminal(c.LastMessage.Content), 40)
			when = formatWhen(c.LastMessage.Timestamp)
		}

		cl.SetCell(r, 0, tview.NewTableCell(" "+tview.Escape(name)).SetMaxWidth(24).SetExpansion(1))
		cl.SetCell(r, 1, tview.NewTableCell(" "+tview.Escape(preview)).SetMaxWidth(40).SetExpansion(2))
		cl.SetCell(r, 2, tview.NewTableCell(" "+when).SetMaxWidth(12))

		if selectedID != 0 && c.ID == selectedID {
			cl.Select(r, 0)
		}
	}
}

// SelectedPartner returns the partner on the highlighted row, or nil.
func (cl *ChatList) SelectedPartner() *chat.ChatUser {
	row, _ := cl.GetSelection()
	idx := row - 1
	if idx >= 0 && idx < len(cl.chats) {
		c := cl.chats[idx]
		return &c
	}
	return nil
}
