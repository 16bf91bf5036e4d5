// ABOUTME: Session gate screens for the TUI
// ABOUTME: Renders the not-configured notice and the email/password sign-in form
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) renderNotConfigured() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("TORQUE CONTACTS"))
	s.WriteString("\n\n")
	s.WriteString(errorStyle.Render("Authentication is not configured."))
	s.WriteString("\n\n")
	s.WriteString(messageStyle.Render("Set the NEXT_PUBLIC_FIREBASE_* variables in .env.local and restart."))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("q: quit"))

	return s.String()
}

func (m Model) renderSignIn() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("TORQUE CONTACTS"))
	s.WriteString("\n\n")
	s.WriteString("Sign in to view your contacts.")
	s.WriteString("\n\n")
	s.WriteString(m.email.View())
	s.WriteString("\n")
	s.WriteString(m.password.View())
	s.WriteString("\n\n")

	switch {
	case m.signingIn:
		s.WriteString(syncingStyle.Render("Signing in..."))
	case m.authErr != "":
		s.WriteString(errorStyle.Render("✗ " + m.authErr))
	}
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("tab: next field • enter: sign in • esc: quit"))

	return s.String()
}

func (m Model) handleSignInKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit

	case "tab", "shift+tab", "up", "down":
		m.focusIndex = 1 - m.focusIndex
		return m, m.focusField()

	case "enter":
		if m.focusIndex == 0 {
			m.focusIndex = 1
			return m, m.focusField()
		}
		if m.signingIn {
			return m, nil
		}
		m.signingIn = true
		m.authErr = ""
		return m, m.signInCmd(m.email.Value(), m.password.Value())
	}

	var cmd tea.Cmd
	if m.focusIndex == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) focusField() tea.Cmd {
	if m.focusIndex == 0 {
		m.password.Blur()
		return m.email.Focus()
	}
	m.email.Blur()
	return m.password.Focus()
}

func (m Model) signInCmd(email, password string) tea.Cmd {
	provider, ctx := m.provider, m.ctx
	return func() tea.Msg {
		user, err := provider.SignIn(ctx, email, password)
		return signInDoneMsg{user: user, err: err}
	}
}

func (m Model) signOutCmd() tea.Cmd {
	provider, ctx := m.provider, m.ctx
	return func() tea.Msg {
		return signOutDoneMsg{err: provider.SignOut(ctx)}
	}
}
