package views

import (
	"github.com/rivo/tview"
)

// AuthView is the login / register form shown while logged out.
type AuthView struct {
	*tview.Flex
	form       *tview.Form
	message    *tview.TextView
	registerOn bool
	onLogin    func(email, password string)
	onRegister func(name, email, password, gender, dob string)
}

// NewAuthView creates the form in login mode.
func NewAuthView() *AuthView {
	form := tview.NewForm()
	form.SetBorder(true).SetTitle(" Sign in ")

	message := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(message, 1, 0, false)

	av := &AuthView{Flex: flex, form: form, message: message}
	av.rebuild()
	return av
}

// SetOnLogin sets the login submit callback.
func (av *AuthView) SetOnLogin(fn func(email, password string)) {
	av.onLogin = fn
}

// SetOnRegister sets the register submit callback.
func (av *AuthView) SetOnRegister(fn func(name, email, password, gender, dob string)) {
	av.onRegister = fn
}

// ShowMessage displays a status line under the form.
func (av *AuthView) ShowMessage(msg string) {
	av.message.Clear()
	_, _ = av.message.Write([]byte("[yellow]" + tview.Escape(msg) + "[-]"))
}

// Form returns the form for focus handling.
func (av *AuthView) Form() *tview.Form {
	return av.form
}

func (av *AuthView) rebuild() {
	av.form.Clear(true)

	if av.registerOn {
		av.form.SetTitle(" Create account ")
		av.form.
			AddInputField("Name", "", 40, nil, nil).
			AddInputField("Email", "", 40, nil, nil).
			AddPasswordField("Password", "", 40, '*', nil).
			AddInputField("Gender", "", 40, nil, nil).
			AddInputField("Date of birth", "", 40, nil, nil).
			AddButton("Register", av.submitRegister).
			AddButton("Back to login", func() {
				av.registerOn = false
				av.rebuild()
			})
		return
	}

	av.form.SetTitle(" Sign in ")
	av.form.
		AddInputField("Email", "", 40, nil, nil).
		AddPasswordField("Password", "", 40, '*', nil).
		AddButton("Login", av.submitLogin).
		AddButton("Register", func() {
			av.registerOn = true
			av.rebuild()
		})
}

func (av *AuthView) field(label string) string {
	item := av.form.GetFormItemByLabel(label)
	if item == nil {
		return ""
	}
	input, ok := item.(*tview.InputField)
	if !ok {
		return ""
	}
	return input.GetText()
}

func (av *AuthView) submitLogin() {
	if av.onLogin != nil {
		av.onLogin(av.field("Email"), av.field("Password"))
	}
}

func (av *AuthView) submitRegister() {
	if av.onRegister != nil {
		av.onRegister(av.field("Name"), av.field("Email"), av.field("Password"),
			av.field("Gender"), av.field("Date of birth"))
	}
}
