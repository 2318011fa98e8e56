package views

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// StartChatView prompts for an email address to open a new conversation.
type StartChatView struct {
	*tview.Flex
	input    *tview.InputField
	onSubmit func(email string)
}

// NewStartChatView creates the prompt.
func NewStartChatView() *StartChatView {
	input := tview.NewInputField().
		SetLabel(" Email: ").
		SetFieldWidth(0)
	input.SetBorder(true).SetTitle(" Start chat ")

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(input, 3, 0, true).
		AddItem(tview.NewBox(), 0, 1, false)

	sv := &StartChatView{Flex: flex, input: input}

	input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter || sv.onSubmit == nil {
			return
		}
		email := strings.TrimSpace(input.GetText())
		if email != "" {
			sv.onSubmit(email)
		}
	})

	return sv
}

// SetOnSubmit sets the lookup callback.
func (sv *StartChatView) SetOnSubmit(fn func(email string)) {
	sv.onSubmit = fn
}

// Input returns the field for focus handling.
func (sv *StartChatView) Input() *tview.InputField {
	return sv.input
}

// Reset clears any previously typed address.
func (sv *StartChatView) Reset() {
	sv.input.SetText("")
}
