package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Composer is the message input line. The field clears as soon as the text
// is submitted, before the server confirms the send.
type Composer struct {
	*tview.InputField
	onSend func(text string)
}

// NewComposer creates the input line.
func NewComposer() *Composer {
	input := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)

	c := &Composer{InputField: input}

	input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter || c.onSend == nil {
			return
		}
		text := c.GetText()
		c.SetText("")
		if text != "" {
			c.onSend(text)
		}
	})

	return c
}

// SetOnSend sets the submit callback.
func (c *Composer) SetOnSend(fn func(text string)) {
	c.onSend = fn
}
