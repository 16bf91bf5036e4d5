// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Gates on the identity session, then shows the searchable contact dashboard
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/harperreed/torque/auth"
	"github.com/harperreed/torque/config"
	"github.com/harperreed/torque/dashboard"
	"github.com/harperreed/torque/logging"
	"github.com/harperreed/torque/sync"
)

// ViewMode is the screen picked by the session gate.
type ViewMode int

const (
	ViewNotConfigured ViewMode = iota
	ViewSignIn
	ViewDashboard
)

type Options struct {
	Provider  auth.Provider
	Session   *sync.Session
	Directory config.DirectoryConfig
	Logger    *log.Logger

	// InitialSearch pre-fills the search box.
	InitialSearch string
}

type authEventMsg auth.Event

type stateMsg sync.State

type signInDoneMsg struct {
	user *auth.User
	err  error
}

type signOutDoneMsg struct {
	err error
}

type syncDoneMsg struct {
	err error
}

// Model is the main bubbletea model
type Model struct {
	ctx       context.Context
	provider  auth.Provider
	session   *sync.Session
	directory config.DirectoryConfig
	logger    *log.Logger

	authEvents <-chan auth.Event
	states     <-chan sync.State

	configured bool
	user       *auth.User

	// Sign-in form
	email      textinput.Model
	password   textinput.Model
	focusIndex int
	signingIn  bool
	authErr    string

	// Dashboard
	search        textinput.Model
	searchFocused bool
	table         table.Model
	state         sync.State
	view          dashboard.View

	width  int
	height int
}

// NewModel subscribes to the provider and session for the lifetime of ctx.
func NewModel(ctx context.Context, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email:    "
	email.Focus()

	password := textinput.New()
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	search := textinput.New()
	search.Placeholder = "Search contacts"
	search.Prompt = "/ "
	search.SetValue(opts.InitialSearch)

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())

	m := Model{
		ctx:        ctx,
		provider:   opts.Provider,
		session:    opts.Session,
		directory:  opts.Directory,
		logger:     logger,
		authEvents: opts.Provider.Subscribe(ctx),
		states:     opts.Session.Subscribe(ctx),
		configured: opts.Provider.Configured(),
		user:       opts.Provider.CurrentUser(),
		email:      email,
		password:   password,
		search:     search,
		table:      t,
		state:      opts.Session.Snapshot(),
		width:      80,
		height:     24,
	}
	m.refresh()
	return m
}

// Run starts the full-screen program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Mode reports which screen the gate selects.
func (m Model) Mode() ViewMode {
	switch {
	case !m.configured:
		return ViewNotConfigured
	case m.user == nil:
		return ViewSignIn
	}
	return ViewDashboard
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForAuth(m.authEvents), waitForState(m.states), textinput.Blink)
}

func waitForAuth(ch <-chan auth.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return authEventMsg(ev)
	}
}

func waitForState(ch <-chan sync.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(st)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case authEventMsg:
		m.configured = msg.Configured
		m.user = msg.User
		return m, waitForAuth(m.authEvents)

	case stateMsg:
		m.state = sync.State(msg)
		m.refresh()
		return m, waitForState(m.states)

	case signInDoneMsg:
		m.signingIn = false
		if msg.err != nil {
			m.authErr = msg.err.Error()
			return m, nil
		}
		m.authErr = ""
		m.user = msg.user
		m.password.SetValue("")
		return m, nil

	case signOutDoneMsg:
		if msg.err != nil {
			m.authErr = msg.err.Error()
			return m, nil
		}
		m.user = nil
		return m, nil

	case syncDoneMsg:
		if msg.err != nil {
			m.logger.Debug("sync finished with error", "err", msg.err)
		}
		m.state = m.session.Snapshot()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.Mode() {
		case ViewNotConfigured:
			if msg.String() == "q" || msg.String() == "esc" {
				return m, tea.Quit
			}
			return m, nil
		case ViewSignIn:
			return m.handleSignInKeys(msg)
		case ViewDashboard:
			return m.handleDashboardKeys(msg)
		}
	}
	return m, nil
}

func (m Model) View() string {
	switch m.Mode() {
	case ViewNotConfigured:
		return m.renderNotConfigured()
	case ViewSignIn:
		return m.renderSignIn()
	}
	return m.renderDashboard()
}

// refresh rebuilds the view and table rows from the current state and search.
func (m *Model) refresh() {
	m.view = dashboard.Build(m.state, m.search.Value())

	rows := make([]table.Row, 0, len(m.view.Rows))
	for _, r := range m.view.Rows {
		rows = append(rows, table.Row{r.Name, r.Email, r.Phone, r.Company, strings.ToLower(r.Status)})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
}

func (m *Model) resize() {
	m.table.SetColumns(columns(m.width))
	// title, stats, status, search, help and spacing
	height := m.height - 12
	if height < 3 {
		height = 3
	}
	m.table.SetHeight(height)
}

func columns(width int) []table.Column {
	// Name, email, and company share what remains after phone and status.
	flex := width - 14 - 10 - 12
	if flex < 30 {
		flex = 30
	}
	return []table.Column{
		{Title: "Name", Width: flex * 3 / 10},
		{Title: "Email", Width: flex * 4 / 10},
		{Title: "Phone", Width: 14},
		{Title: "Company", Width: flex * 3 / 10},
		{Title: "Status", Width: 10},
	}
}
