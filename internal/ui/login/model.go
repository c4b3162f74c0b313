// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package login

import (
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/raddesk/raddesk-tui/internal/session"
	"github.com/raddesk/raddesk-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// LoggedInMsg announces a successful authentication to the app layer.
type LoggedInMsg struct {
	Session *session.Session
	SignUp  bool
}

// AuthFailedMsg carries an authentication failure for toast display.
type AuthFailedMsg struct {
	Err *session.AuthError
}

// =============================================================================
// FORM MODEL
// =============================================================================

// Mode selects the credential form.
type Mode int

const (
	ModePassword Mode = iota
	ModePhone
)

// focus targets, cycled with tab.
const (
	focusIdentity = iota
	focusSecret
	focusRole
	focusCount
)

var roles = []session.Role{
	session.RoleRadiologist,
	session.RolePatient,
	session.RoleLabAdmin,
}

var roleLabels = map[session.Role]string{
	session.RoleRadiologist: "Radiologist",
	session.RolePatient:     "Patient",
	session.RoleLabAdmin:    "Lab Admin",
}

var countryCodes = []string{"+91", "+1", "+44"}

// Model is the sign-in / sign-up form.
type Model struct {
	theme *styles.Theme
	store *session.Store

	mode    Mode
	signup  bool
	focus   int
	roleIdx int
	ccIdx   int

	identity textinput.Model
	secret   textinput.Model
	phone    textinput.Model

	errMsg string
	width  int
	height int
}

// New creates the login form bound to the session store.
func New(theme *styles.Theme, store *session.Store) Model {
	identity := textinput.New()
	identity.Placeholder = "Full name"
	identity.CharLimit = 64
	identity.Focus()

	secret := textinput.New()
	secret.Placeholder = "Password"
	secret.EchoMode = textinput.EchoPassword
	secret.EchoCharacter = '•'
	secret.CharLimit = 64

	phone := textinput.New()
	phone.Placeholder = "10-digit phone number"
	phone.CharLimit = 16

	return Model{
		theme:    theme,
		store:    store,
		identity: identity,
		secret:   secret,
		phone:    phone,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize records the window size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles form input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			next := (m.focus + 1) % focusCount
			if m.mode == ModePhone && next == focusIdentity {
				next = focusSecret
			}
			m.setFocus(next)
			return m, nil
		case "shift+tab", "up":
			prev := (m.focus + focusCount - 1) % focusCount
			if m.mode == ModePhone && prev == focusIdentity {
				prev = focusRole
			}
			m.setFocus(prev)
			return m, nil
		case "left", "right":
			if m.focus == focusRole {
				delta := 1
				if msg.String() == "left" {
					delta = len(roles) - 1
				}
				m.roleIdx = (m.roleIdx + delta) % len(roles)
				return m, nil
			}
			if m.focus == focusSecret && m.mode == ModePhone {
				delta := 1
				if msg.String() == "left" {
					delta = len(countryCodes) - 1
				}
				m.ccIdx = (m.ccIdx + delta) % len(countryCodes)
				return m, nil
			}
		case "ctrl+t":
			m.toggleMode()
			return m, nil
		case "ctrl+s":
			m.signup = !m.signup
			m.errMsg = ""
			return m, nil
		case "enter":
			return m.submit()
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusIdentity:
		m.identity, cmd = m.identity.Update(msg)
	case focusSecret:
		if m.mode == ModePhone {
			m.phone, cmd = m.phone.Update(msg)
		} else {
			m.secret, cmd = m.secret.Update(msg)
		}
	}
	return m, cmd
}

func (m *Model) toggleMode() {
	if m.mode == ModePassword {
		m.mode = ModePhone
		m.setFocus(focusSecret)
	} else {
		m.mode = ModePassword
		m.setFocus(focusIdentity)
	}
	m.errMsg = ""
}

func (m *Model) setFocus(f int) {
	m.focus = f
	m.identity.Blur()
	m.secret.Blur()
	m.phone.Blur()
	switch f {
	case focusIdentity:
		m.identity.Focus()
	case focusSecret:
		if m.mode == ModePhone {
			m.phone.Focus()
		} else {
			m.secret.Focus()
		}
	}
}

// submit attempts authentication against the session store.
func (m Model) submit() (Model, tea.Cmd) {
	role := roles[m.roleIdx]

	var (
		sess *session.Session
		err  error
	)
	if m.mode == ModePhone {
		sess, err = m.store.LoginWithPhone(m.phone.Value(), countryCodes[m.ccIdx], role)
	} else {
		sess, err = m.store.Login(m.identity.Value(), m.secret.Value(), role)
	}

	if err != nil {
		var aerr *session.AuthError
		if errors.As(err, &aerr) {
			m.errMsg = aerr.Message
			return m, func() tea.Msg { return AuthFailedMsg{Err: aerr} }
		}
		m.errMsg = err.Error()
		return m, nil
	}

	m.errMsg = ""
	signup := m.signup
	return m, func() tea.Msg { return LoggedInMsg{Session: sess, SignUp: signup} }
}

// Reset clears the form for a fresh sign-in after logout.
func (m *Model) Reset() {
	m.identity.SetValue("")
	m.secret.SetValue("")
	m.phone.SetValue("")
	m.errMsg = ""
	m.signup = false
	m.setFocus(focusIdentity)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the centered form.
func (m Model) View() string {
	title := "RadDesk — Sign In"
	action := "sign in"
	if m.signup {
		title = "RadDesk — Create Account"
		action = "create account"
	}

	var rows []string
	rows = append(rows, m.theme.HeaderTitle.Render(title), "")

	if m.mode == ModePhone {
		rows = append(rows,
			m.theme.FormLabel.Render("Phone"),
			m.fieldStyle(focusSecret).Render(
				m.theme.FormSelected.Render(countryCodes[m.ccIdx])+" "+m.phone.View()),
		)
	} else {
		rows = append(rows,
			m.theme.FormLabel.Render("Name"),
			m.fieldStyle(focusIdentity).Render(m.identity.View()),
			m.theme.FormLabel.Render("Password"),
			m.fieldStyle(focusSecret).Render(m.secret.View()),
		)
	}

	rows = append(rows, "", m.theme.FormLabel.Render("Role"))
	var chips []string
	for i, r := range roles {
		label := roleLabels[r]
		if i == m.roleIdx {
			chips = append(chips, m.theme.FormSelected.Render(label))
		} else {
			chips = append(chips, m.theme.FormLabel.Render(label))
		}
	}
	roleRow := lipgloss.JoinHorizontal(lipgloss.Center, chips...)
	if m.focus == focusRole {
		roleRow = m.theme.FormFocused.Render(roleRow)
	}
	rows = append(rows, roleRow)

	if m.errMsg != "" {
		rows = append(rows, "", m.theme.FormError.Render(m.errMsg))
	}

	rows = append(rows, "",
		m.theme.ShortcutKey.Render("enter")+m.theme.ShortcutDesc.Render(" "+action+"  ")+
			m.theme.ShortcutKey.Render("ctrl+t")+m.theme.ShortcutDesc.Render(" phone/password  ")+
			m.theme.ShortcutKey.Render("ctrl+s")+m.theme.ShortcutDesc.Render(" sign up"))

	form := m.theme.Card.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
	}
	return form
}

func (m Model) fieldStyle(focus int) lipgloss.Style {
	if m.focus == focus {
		return m.theme.FormFocused
	}
	return m.theme.FormBlurred
}
