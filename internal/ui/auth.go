package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelf/internal/storeapi"
)

// Login form fields.
const (
	loginUsername = iota
	loginPassword
)

// Register form fields.
const (
	regFirstName = iota
	regLastName
	regEmail
	regUsername
	regPassword
)

func newLoginForm() form {
	return newForm("Sign in",
		fieldSpec{label: "Username"},
		fieldSpec{label: "Password", secret: true},
	)
}

func newRegisterForm() form {
	return newForm("Create account",
		fieldSpec{label: "First name"},
		fieldSpec{label: "Last name"},
		fieldSpec{label: "Email", placeholder: "you@example.com"},
		fieldSpec{label: "Username"},
		fieldSpec{label: "Password", secret: true},
	)
}

func newResetForm() form {
	return newForm("Reset password",
		fieldSpec{label: "Email", placeholder: "you@example.com"},
	)
}

// navigateForm handles the keys every form shares. It reports whether the
// key was consumed and whether the form should be submitted.
func (m Model) navigateForm(f *form, msg tea.KeyMsg) (handled, submit bool) {
	switch {
	case key.Matches(msg, m.keys.Tab), msg.String() == "down":
		f.next()
		return true, false
	case key.Matches(msg, m.keys.ShiftTab), msg.String() == "up":
		f.prev()
		return true, false
	case key.Matches(msg, m.keys.Confirm):
		if !f.last() {
			f.next()
			return true, false
		}
		return true, true
	}
	return false, false
}

// handleLoginKey processes keyboard input for the sign-in form.
func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.pending {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Register):
		m.register.reset()
		m.currentView = ViewRegister
		return m, nil
	case key.Matches(msg, m.keys.Forgot):
		m.reset.reset()
		m.currentView = ViewReset
		return m, nil
	}

	handled, submit := m.navigateForm(&m.login, msg)
	if !handled {
		cmd := m.login.update(msg)
		return m, cmd
	}
	if !submit || m.auth == nil {
		return m, nil
	}

	username := m.login.value(loginUsername)
	password := m.login.inputs[loginPassword].Value()
	m.login.err = ""
	m.login.notice = ""
	m.login.pending = true

	svc, ctx := m.auth, m.ctx
	return m, func() tea.Msg {
		return loginDoneMsg{username: username, err: svc.Login(ctx, username, password)}
	}
}

func (m Model) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	m.login.pending = false
	if msg.err != nil {
		m.login.err = errorText(msg.err)
		m.login.setValue(loginPassword, "")
		m.login.setFocus(loginPassword)
		return m, nil
	}

	m.prefs.LastUsername = msg.username
	m.savePrefs()
	m.login.reset()
	m.login.setValue(loginUsername, msg.username)

	next, cmd := m.switchView(ViewProducts)
	nm := next.(Model)
	flashCmd := nm.setFlash("Welcome, "+msg.username, flashSuccess)
	return nm, tea.Batch(cmd, flashCmd)
}

// handleRegisterKey processes keyboard input for the registration form.
func (m Model) handleRegisterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.register.pending {
		return m, nil
	}
	if key.Matches(msg, m.keys.Escape) {
		m.currentView = ViewLogin
		return m, nil
	}

	handled, submit := m.navigateForm(&m.register, msg)
	if !handled {
		cmd := m.register.update(msg)
		return m, cmd
	}
	if !submit || m.auth == nil {
		return m, nil
	}

	r := storeapi.Registration{
		FirstName: m.register.value(regFirstName),
		LastName:  m.register.value(regLastName),
		Email:     m.register.value(regEmail),
		Username:  m.register.value(regUsername),
		Password:  m.register.inputs[regPassword].Value(),
	}
	m.register.err = ""
	m.register.pending = true

	svc, ctx := m.auth, m.ctx
	return m, func() tea.Msg {
		id, err := svc.Register(ctx, r)
		return registerDoneMsg{username: r.Username, id: id, err: err}
	}
}

func (m Model) handleRegisterDone(msg registerDoneMsg) (tea.Model, tea.Cmd) {
	m.register.pending = false
	if msg.err != nil {
		m.register.err = errorText(msg.err)
		return m, nil
	}
	m.register.reset()
	m.login.reset()
	m.login.setValue(loginUsername, msg.username)
	m.login.setFocus(loginPassword)
	m.login.notice = "Account created. Please sign in."
	m.currentView = ViewLogin
	return m, nil
}

// handleResetKey processes keyboard input for the password reset form.
func (m Model) handleResetKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.reset.pending {
		return m, nil
	}
	if key.Matches(msg, m.keys.Escape) {
		m.currentView = ViewLogin
		return m, nil
	}

	handled, submit := m.navigateForm(&m.reset, msg)
	if !handled {
		cmd := m.reset.update(msg)
		return m, cmd
	}
	if !submit || m.auth == nil {
		return m, nil
	}

	email := m.reset.value(0)
	m.reset.err = ""
	m.reset.notice = ""
	m.reset.pending = true

	svc, ctx := m.auth, m.ctx
	return m, func() tea.Msg {
		text, err := svc.RequestPasswordReset(ctx, email)
		return resetDoneMsg{text: text, err: err}
	}
}

func (m Model) handleResetDone(msg resetDoneMsg) (tea.Model, tea.Cmd) {
	m.reset.pending = false
	if msg.err != nil {
		m.reset.err = errorText(msg.err)
		return m, nil
	}
	m.reset.notice = msg.text
	return m, nil
}

func (m Model) logoutCmd() tea.Cmd {
	if m.auth == nil {
		return nil
	}
	svc, ctx := m.auth, m.ctx
	return func() tea.Msg {
		return logoutDoneMsg{err: svc.Logout(ctx)}
	}
}

func (m Model) handleLogoutDone(msg logoutDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		cmd := m.setFlash(errorText(msg.err), flashError)
		return m, cmd
	}
	m.products.search.Cancel()
	m.products.searching = false
	m.products.searchInput.Blur()
	m.login.reset()
	m.login.setValue(loginUsername, m.prefs.LastUsername)
	if m.prefs.LastUsername != "" {
		m.login.setFocus(loginPassword)
	}
	m.currentView = ViewLogin
	cmd := m.setFlash("Signed out", flashInfo)
	return m, cmd
}

type loginDoneMsg struct {
	username string
	err      error
}

type registerDoneMsg struct {
	username string
	id       int
	err      error
}

type resetDoneMsg struct {
	text string
	err  error
}

type logoutDoneMsg struct{ err error }
