package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// StatusBar shows the session, logged-in user and transient notices.
type StatusBar struct {
	*tview.TextView
	session string
	user    string
	status  string
	flash   string
}

// NewStatusBar creates the bottom status line.
func NewStatusBar() *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv}
}

// SetSession updates the session name display.
func (sb *StatusBar) SetSession(name string) {
	sb.session = name
	sb.render()
}

// SetUser updates the logged-in identity display.
func (sb *StatusBar) SetUser(email string) {
	sb.user = email
	sb.render()
}

// SetStatus updates the lifecycle state display.
func (sb *StatusBar) SetStatus(status string) {
	sb.status = status
	sb.render()
}

// SetFlash sets a temporary message.
func (sb *StatusBar) SetFlash(msg string) {
	sb.flash = msg
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	who := sb.user
	if who == "" {
		who = "not logged in"
	}

	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s | %s | %s",
		sb.session, who, sb.status, time.Now().Format("15:04"))
	if sb.flash != "" {
		line += fmt.Sprintf(" | [yellow]%s[-]", tview.Escape(sb.flash))
	}

	_, _ = fmt.Fprint(sb, line)
}
