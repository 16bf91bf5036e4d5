// ABOUTME: Contact dashboard screen for the TUI
// ABOUTME: Stats line, sync status, search box, and the contact table
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/torque/sync"
)

func (m Model) renderDashboard() string {
	var s strings.Builder

	title := titleStyle.Render("TORQUE CONTACTS")
	if m.user != nil {
		title = lipgloss.JoinHorizontal(lipgloss.Top, title, messageStyle.Render("  "+m.user.Email))
	}
	s.WriteString(title)
	s.WriteString("\n\n")

	stats := statsStyle.Render(fmt.Sprintf("%d contacts · %d active · %d prospects",
		m.view.Stats.Total, m.view.Stats.Active, m.view.Stats.Prospects))
	if m.view.Demo {
		stats += "  " + demoStyle.Render("DEMO")
	}
	s.WriteString(stats)
	s.WriteString("\n")
	s.WriteString(m.renderStatus())
	s.WriteString("\n\n")

	s.WriteString(m.search.View())
	s.WriteString("\n\n")

	if len(m.view.Rows) == 0 {
		s.WriteString(messageStyle.Render("No contacts match the search."))
	} else {
		s.WriteString(m.table.View())
	}
	s.WriteString("\n")
	s.WriteString(m.renderHelp())

	return s.String()
}

func (m Model) renderStatus() string {
	switch m.state.Status() {
	case sync.StatusLoading:
		return syncingStyle.Render("⟳ Syncing " + m.state.BaseURL + "...")
	case sync.StatusError:
		return errorStyle.Render("✗ " + m.state.Error)
	}
	if m.state.LastSync != nil {
		return idleStyle.Render("✓ Synced " + m.state.LastSync.Format("2006-01-02 15:04"))
	}
	return messageStyle.Render("Not synced yet")
}

func (m Model) renderHelp() string {
	if m.searchFocused {
		return helpStyle.Render("type to filter • enter/esc: done")
	}
	syncHelp := "s: sync"
	if m.state.Loading {
		syncHelp = disabledStyle.Render(syncHelp)
	}
	return helpStyle.Render("/: search • ") + syncHelp + helpStyle.Render(" • o: sign out • q: quit")
}

func (m Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchFocused {
		switch msg.String() {
		case "enter", "esc":
			m.searchFocused = false
			m.search.Blur()
			m.table.Focus()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.refresh()
		return m, cmd
	}

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit

	case "/":
		m.searchFocused = true
		m.table.Blur()
		return m, m.search.Focus()

	case "s":
		// Disabled while a sync is outstanding.
		if m.state.Loading {
			return m, nil
		}
		// The session publishes the real loading state once the fetch starts.
		m.state.Loading = true
		return m, m.syncCmd()

	case "o":
		return m, m.signOutCmd()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) syncCmd() tea.Cmd {
	session, ctx := m.session, m.ctx
	baseURL, apiKey := m.directory.BaseURL, m.directory.APIKey
	return func() tea.Msg {
		_, err := session.Sync(ctx, baseURL, apiKey)
		return syncDoneMsg{err: err}
	}
}
