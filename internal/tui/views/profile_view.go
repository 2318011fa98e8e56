package views

import (
	"github.com/msgtrik/trik/internal/chat"
	"github.com/rivo/tview"
)

// ProfileView edits the logged-in user's profile.
type ProfileView struct {
	*tview.Form
	onSave   func(profile chat.Profile, avatarPath string)
	onCancel func()
}

// NewProfileView creates the profile form.
func NewProfileView() *ProfileView {
	form := tview.NewForm()
	form.SetBorder(true).SetTitle(" Profile ")

	pv := &ProfileView{Form: form}
	return pv
}

// SetOnSave sets the save callback. avatarPath is empty when no new avatar
// file was chosen.
func (pv *ProfileView) SetOnSave(fn func(profile chat.Profile, avatarPath string)) {
	pv.onSave = fn
}

// SetOnCancel sets the cancel callback.
func (pv *ProfileView) SetOnCancel(fn func()) {
	pv.onCancel = fn
}

// Load populates the form from the current profile.
func (pv *ProfileView) Load(p chat.Profile) {
	pv.Clear(true)
	pv.
		AddInputField("Name", p.Name, 40, nil, nil).
		AddInputField("Gender", p.Gender, 40, nil, nil).
		AddInputField("Date of birth", p.DOB, 40, nil, nil).
		AddInputField("Avatar file", "", 40, nil, nil).
		AddButton("Save", func() {
			if pv.onSave == nil {
				return
			}
			updated := p
			updated.Name = pv.field("Name")
			updated.Gender = pv.field("Gender")
			updated.DOB = pv.field("Date of birth")
			pv.onSave(updated, pv.field("Avatar file"))
		}).
		AddButton("Cancel", func() {
			if pv.onCancel != nil {
				pv.onCancel()
			}
		})
}

func (pv *ProfileView) field(label string) string {
	item := pv.GetFormItemByLabel(label)
	if item == nil {
		return ""
	}
	input, ok := item.(*tview.InputField)
	if !ok {
		return ""
	}
	return input.GetText()
}
