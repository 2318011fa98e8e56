package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/msgtrik/trik/internal/chat"
	"github.com/rivo/tview"
)

// MessageView renders one conversation, oldest message first.
type MessageView struct {
	*tview.TextView
	selfID       int
	partnerName  string
	atBottom     bool
	onTopReached func()
}

// NewMessageView creates the conversation pane.
func NewMessageView() *MessageView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" Messages ")

	mv := &MessageView{TextView: tv, atBottom: true}

	// Scrolling to the very top asks for the next older page, the
	// terminal equivalent of the history sentinel entering the viewport.
	tv.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch ev.Key() {
		case tcell.KeyUp, tcell.KeyPgUp, tcell.KeyHome:
			mv.atBottom = false
			if row, _ := mv.GetScrollOffset(); row == 0 && mv.onTopReached != nil {
				mv.onTopReached()
			}
		case tcell.KeyEnd:
			mv.atBottom = true
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'k':
				mv.atBottom = false
				if row, _ := mv.GetScrollOffset(); row == 0 && mv.onTopReached != nil {
					mv.onTopReached()
				}
			case 'G':
				mv.atBottom = true
			}
		}
		return ev
	})

	return mv
}

// SetOnTopReached sets the callback fired when the view is scrolled to the
// oldest loaded message.
func (mv *MessageView) SetOnTopReached(fn func()) {
	mv.onTopReached = fn
}

// SetSelf records the logged-in user's id so own messages render as "You".
func (mv *MessageView) SetSelf(id int) {
	mv.selfID = id
}

// SetPartner updates the pane title.
func (mv *MessageView) SetPartner(name string) {
	mv.partnerName = name
	mv.SetTitle(fmt.Sprintf(" %s ", name))
}

// Update re-renders the conversation. The slice is already in ascending
// timestamp order. The view keeps following the newest message until the
// user scrolls away from the bottom.
func (mv *MessageView) Update(msgs []chat.Message, hasMore bool) {
	mv.Clear()

	if hasMore {
		_, _ = fmt.Fprint(mv, "[::d]  -- scroll up for older messages --[-:-:-]\n\n")
	}

	for i := range msgs {
		m := &msgs[i]
		sender := mv.partnerName
		tick := ""
		if m.SenderID == mv.selfID {
			sender = "You"
			if m.IsRead() {
				tick = " [green]✓✓[-]"
			} else {
				tick = " ✓"
			}
		}

		_, _ = fmt.Fprintf(mv, "[::b]%s[-:-:-] [::d]%s[-:-:-]%s\n%s\n\n",
			tview.Escape(sender), formatStamp(m.Timestamp), tick,
			tview.Escape(sanitizeForTerminal(m.Content)))
	}

	if mv.atBottom {
		mv.ScrollToEnd()
	}
}
