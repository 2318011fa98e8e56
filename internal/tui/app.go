package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/msgtrik/trik/internal/bus"
	"github.com/msgtrik/trik/internal/chat"
	"github.com/msgtrik/trik/internal/gateway"
	"github.com/msgtrik/trik/internal/session"
	"github.com/msgtrik/trik/internal/status"
	chatsync "github.com/msgtrik/trik/internal/sync"
	"github.com/msgtrik/trik/internal/tui/keys"
	"github.com/msgtrik/trik/internal/tui/model"
	"github.com/msgtrik/trik/internal/tui/views"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// Deps carries everything the TUI shell needs.
type Deps struct {
	Store         *chat.Store
	Gateway       *gateway.Client
	Snapshot      *session.Snapshot
	Bus           *bus.Bus
	Machine       *status.Machine
	Poller        *chatsync.Poller
	Logger        *zap.Logger
	SessionName   string
	PostSendDelay time.Duration
}

// App is the terminal application shell.
type App struct {
	app      *tview.Application
	pages    *tview.Pages
	registry *keys.Registry
	flash    *model.Flash

	store   *chat.Store
	gw      *gateway.Client
	snap    *session.Snapshot
	bus     *bus.Bus
	machine *status.Machine
	poller  *chatsync.Poller
	pager   *chatsync.Pager
	sender  *chatsync.Sender
	logger  *zap.Logger

	statusBar *views.StatusBar
	chatList  *views.ChatList
	msgView   *views.MessageView
	composer  *views.Composer
	authView  *views.AuthView
	startV    *views.StartChatView
	profileV  *views.ProfileView

	sessionName string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(d Deps) *App {
	ctx, cancel := context.WithCancel(context.Background())

	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{
		app:         tview.NewApplication(),
		pages:       tview.NewPages(),
		registry:    &keys.Registry{},
		flash:       &model.Flash{},
		store:       d.Store,
		gw:          d.Gateway,
		snap:        d.Snapshot,
		bus:         d.Bus,
		machine:     d.Machine,
		poller:      d.Poller,
		pager:       chatsync.NewPager(d.Store, logger),
		logger:      logger,
		statusBar:   views.NewStatusBar(),
		chatList:    views.NewChatList(),
		msgView:     views.NewMessageView(),
		composer:    views.NewComposer(),
		authView:    views.NewAuthView(),
		startV:      views.NewStartChatView(),
		profileV:    views.NewProfileView(),
		sessionName: d.SessionName,
		ctx:         ctx,
		cancel:      cancel,
	}
	a.sender = chatsync.NewSender(d.Store, d.Poller, d.PostSendDelay, a.notice, logger)

	a.statusBar.SetSession(d.SessionName)
	a.statusBar.SetStatus(string(d.Machine.Current()))
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	a.registry.Add(&keys.Binding{
		Scope: "main", Key: tcell.KeyRune, Rune: 'q',
		Description: "q:quit", Visible: true,
		Handler: func() { a.app.Stop() },
	})
	a.registry.Add(&keys.Binding{
		Scope: "main", Key: tcell.KeyRune, Rune: 'n',
		Description: "n:new chat", Visible: true,
		Handler: func() {
			a.startV.Reset()
			a.pages.SwitchToPage("start")
			a.app.SetFocus(a.startV.Input())
		},
	})
	a.registry.Add(&keys.Binding{
		Scope: "main", Key: tcell.KeyRune, Rune: 'p',
		Description: "p:profile", Visible: true,
		Handler: func() { a.openProfile() },
	})
	a.registry.Add(&keys.Binding{
		Scope: "main", Key: tcell.KeyRune, Rune: 'L',
		Description: "L:logout", Visible: true,
		Handler: func() { a.logout() },
	})
	a.registry.Add(&keys.Binding{
		Scope: "main", Key: tcell.KeyTab,
		Description: "tab:switch pane", Visible: true,
		Handler: func() {
			if a.app.GetFocus() == a.chatList.Table {
				a.app.SetFocus(a.msgView)
			} else {
				a.app.SetFocus(a.chatList)
			}
		},
	})
}

func (a *App) setupCallbacks() {
	a.chatList.SetSelectedFunc(func(row, col int) {
		if partner := a.chatList.SelectedPartner(); partner != nil {
			a.openChat(partner)
		}
	})

	a.composer.SetOnSend(func(text string) {
		sel := a.store.Selected()
		if sel == nil {
			return
		}
		go func() { _ = a.sender.Send(a.ctx, sel.ID, text) }()
	})

	a.msgView.SetOnTopReached(func() {
		go a.pager.Trigger(a.ctx)
	})

	a.authView.SetOnLogin(func(email, password string) {
		a.authView.ShowMessage("Signing in...")
		go a.login(email, password)
	})

	a.authView.SetOnRegister(func(name, email, password, gender, dob string) {
		a.authView.ShowMessage("Creating account...")
		go a.register(gateway.RegisterData{
			Name: name, Email: email, Password: password, Gender: gender, DOB: dob,
		})
	})

	a.startV.SetOnSubmit(func(email string) {
		go a.startChat(email)
	})

	a.profileV.SetOnSave(func(profile chat.Profile, avatarPath string) {
		go a.saveProfile(profile, avatarPath)
	})
	a.profileV.SetOnCancel(func() {
		a.pages.SwitchToPage("main")
		a.app.SetFocus(a.chatList)
	})
}

func (a *App) setupLayout() {
	conversation := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.msgView, 0, 1, false).
		AddItem(a.composer, 1, 0, false)

	main := tview.NewFlex().
		AddItem(a.chatList, 0, 1, true).
		AddItem(conversation, 0, 2, false)

	a.pages.AddPage("auth", a.authView, true, true)
	a.pages.AddPage("main", main, true, false)
	a.pages.AddPage("start", a.startV, true, false)
	a.pages.AddPage("profile", a.profileV, true, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		currentPage, _ := a.pages.GetFrontPage()

		if event.Key() == tcell.KeyEscape {
			switch currentPage {
			case "start", "profile":
				a.pages.SwitchToPage("main")
				a.app.SetFocus(a.chatList)
				return nil
			}
		}

		// Text inputs see every key.
		focused := a.app.GetFocus()
		if _, ok := focused.(*tview.InputField); ok {
			return event
		}

		// 'i' focuses the composer when a conversation is open.
		if currentPage == "main" && event.Key() == tcell.KeyRune && event.Rune() == 'i' {
			if a.store.Selected() != nil {
				a.app.SetFocus(a.composer.InputField)
				return nil
			}
		}

		if a.registry.HandleEvent(currentPage, event) {
			return nil
		}
		return event
	})
}

// Run starts the application. A persisted session skips the login form.
func (a *App) Run() error {
	go a.busLoop()
	go a.tickLoop()

	if u, err := a.snap.Load(); err == nil && u != nil {
		_ = a.machine.Transition(status.Authenticating)
		_ = a.machine.Transition(status.Active)
		a.enterMain(u)
	}

	return a.app.Run()
}

// Stop shuts the application down.
func (a *App) Stop() {
	a.cancel()
	a.poller.Stop()
	a.app.Stop()
}

func (a *App) login(email, password string) {
	_ = a.machine.Transition(status.Authenticating)
	u, err := a.gw.Login(a.ctx, email, password)
	if err != nil {
		_ = a.machine.Transition(status.LoggedOut)
		a.app.QueueUpdateDraw(func() {
			a.authView.ShowMessage("Login failed: " + err.Error())
		})
		return
	}
	_ = a.machine.Transition(status.Active)
	a.app.QueueUpdateDraw(func() { a.enterMain(u) })
}

func (a *App) register(data gateway.RegisterData) {
	_ = a.machine.Transition(status.Authenticating)
	u, err := a.gw.Register(a.ctx, data)
	if err != nil {
		_ = a.machine.Transition(status.LoggedOut)
		a.app.QueueUpdateDraw(func() {
			a.authView.ShowMessage("Registration failed: " + err.Error())
		})
		return
	}
	_ = a.machine.Transition(status.Active)
	a.app.QueueUpdateDraw(func() { a.enterMain(u) })
}

// enterMain switches to the chat layout and starts the background polling.
// Must run on the UI goroutine.
func (a *App) enterMain(u *session.User) {
	a.msgView.SetSelf(u.ID)
	a.statusBar.SetUser(u.Email)
	a.pages.SwitchToPage("main")
	a.app.SetFocus(a.chatList)

	a.poller.StartRecent(a.ctx)
	go func() { _ = a.store.FetchRecentChats(a.ctx) }()
}

// openChat selects a partner and hands the conversation to the message
// poller, which fires immediately. Must run on the UI goroutine.
func (a *App) openChat(partner *chat.ChatUser) {
	a.store.SelectPartner(partner)
	a.msgView.SetPartner(views.DisplayName(partner))
	a.msgView.Update(nil, false)
	a.app.SetFocus(a.composer.InputField)
	a.poller.StartMessages(a.ctx, partner.ID)
}

func (a *App) startChat(email string) {
	u, err := a.gw.SearchUser(a.ctx, email)
	if err != nil {
		a.notice("User not found: " + email)
		return
	}
	a.app.QueueUpdateDraw(func() {
		a.pages.SwitchToPage("main")
		a.openChat(u)
	})
}

func (a *App) openProfile() {
	u, err := a.snap.Load()
	if err != nil || u == nil {
		return
	}
	a.profileV.Load(u.Profile)
	a.pages.SwitchToPage("profile")
	a.app.SetFocus(a.profileV)
}

func (a *App) saveProfile(profile chat.Profile, avatarPath string) {
	if avatarPath != "" {
		if _, err := a.gw.UploadAvatar(a.ctx, avatarPath); err != nil {
			a.notice("Avatar upload failed: " + err.Error())
			return
		}
	}
	if _, err := a.gw.UpdateProfile(a.ctx, profile); err != nil {
		a.notice("Profile update failed: " + err.Error())
		return
	}
	a.notice("Profile updated")
	a.app.QueueUpdateDraw(func() {
		a.pages.SwitchToPage("main")
		a.app.SetFocus(a.chatList)
	})
}

// logout drops the session and returns to the login form. Must run on the
// UI goroutine.
func (a *App) logout() {
	a.poller.Stop()
	a.store.Reset()
	if err := a.gw.Logout(); err != nil {
		a.logger.Warn("logout", zap.Error(err))
	}
	_ = a.machine.Transition(status.LoggedOut)

	a.statusBar.SetUser("")
	a.authView.ShowMessage("Signed out")
	a.pages.SwitchToPage("auth")
	a.app.SetFocus(a.authView.Form())
}

// busLoop reflects store and session events into the UI.
func (a *App) busLoop() {
	ch, unsub := a.bus.Subscribe("", 64)
	defer unsub()

	for {
		select {
		case evt := <-ch:
			a.handleEvent(evt)
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *App) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.KindMessagesChanged:
		a.app.QueueUpdateDraw(func() {
			a.msgView.Update(a.store.Messages(), a.store.HasMore())
		})
	case bus.KindRecentChanged:
		a.app.QueueUpdateDraw(func() {
			a.chatList.Update(a.store.RecentChats())
		})
	case bus.KindStoreError:
		if msg, ok := evt.Payload.(string); ok {
			a.notice(msg)
		}
	case bus.KindAuthFailed:
		a.sessionExpired()
	case bus.KindStatusChanged:
		if sc, ok := evt.Payload.(status.StatusChange); ok {
			a.app.QueueUpdateDraw(func() {
				a.statusBar.SetStatus(string(sc.To))
			})
		}
	}
}

// sessionExpired handles a refresh that could not recover the session. The
// stored tokens are dead, so the snapshot is dropped too.
func (a *App) sessionExpired() {
	a.poller.Stop()
	if a.machine.Current() == status.Active {
		_ = a.machine.Transition(status.Expired)
	}
	if err := a.gw.Logout(); err != nil {
		a.logger.Warn("clearing expired session", zap.Error(err))
	}
	a.app.QueueUpdateDraw(func() {
		a.store.Reset()
		a.statusBar.SetUser("")
		a.authView.ShowMessage("Session expired, sign in again")
		a.pages.SwitchToPage("auth")
		a.app.SetFocus(a.authView.Form())
	})
}

// tickLoop keeps the clock and flash expiry fresh.
func (a *App) tickLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.app.QueueUpdateDraw(func() {
				a.statusBar.SetFlash(a.flash.Get())
			})
		case <-a.ctx.Done():
			return
		}
	}
}

// notice surfaces a transient message in the status bar. Safe to call from
// any goroutine.
func (a *App) notice(msg string) {
	a.flash.Set(msg, 5*time.Second)
	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetFlash(a.flash.Get())
	})
}
