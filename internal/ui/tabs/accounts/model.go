// Package accounts provides the account tab: email sign-in, the trusted
// provider list and local data management.
package accounts

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/paperart-tui/internal/app"
	"github.com/j-veylop/paperart-tui/internal/emailcheck"
	"github.com/j-veylop/paperart-tui/internal/ui/styles"
)

// confirmAction is the destructive action waiting for a y/n answer.
type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmClearData
	confirmFactoryReset
)

// keyMap defines the key bindings specific to the accounts tab.
type keyMap struct {
	SignIn       key.Binding
	Submit       key.Binding
	Escape       key.Binding
	SignOut      key.Binding
	Export       key.Binding
	ClearData    key.Binding
	FactoryReset key.Binding
}

// defaultKeyMap returns the default key bindings for the accounts tab.
func defaultKeyMap() keyMap {
	return keyMap{
		SignIn: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "sign in"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		SignOut: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "sign out"),
		),
		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "export data"),
		),
		ClearData: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear user data"),
		),
		FactoryReset: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "factory reset"),
		),
	}
}

// Model represents the accounts tab state.
type Model struct {
	state      *app.AppState
	validator  *emailcheck.Validator
	table      table.Model
	emailInput textinput.Model
	keys       keyMap
	width      int
	height     int
	editing    bool
	result     emailcheck.Result
	confirm    confirmAction
}

// New creates a new accounts model. A nil validator uses the built-in lists.
func New(state *app.AppState, validator *emailcheck.Validator) *Model {
	if validator == nil {
		validator = emailcheck.New()
	}

	emailInput := textinput.New()
	emailInput.Placeholder = "you@gmail.com"
	emailInput.CharLimit = 254
	emailInput.Width = 40

	columns := []table.Column{
		{Title: "Provider", Width: 20},
		{Title: "Domain", Width: 20},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(6),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	m := &Model{
		state:      state,
		validator:  validator,
		table:      t,
		emailInput: emailInput,
		keys:       defaultKeyMap(),
	}
	m.updateProviderRows()
	return m
}

// Init initializes the accounts tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// CapturesInput reports whether the email field or a confirmation has the
// keyboard.
func (m *Model) CapturesInput() bool {
	return m.editing || m.confirm != confirmNone
}

// Result returns the validation result for the current email input.
func (m *Model) Result() emailcheck.Result {
	return m.result
}

// Update handles messages for the accounts tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	if m.confirm != confirmNone {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			return m, m.updateConfirm(keyMsg)
		}
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m, m.updateEmailForm(msg)
		}
		return m, m.handleKeyMsg(msg)

	case app.SignInResultMsg:
		if msg.Session != nil {
			m.emailInput.Reset()
			m.result = emailcheck.Result{}
		} else {
			m.result = msg.Result
		}

	default:
		if m.editing {
			var cmd tea.Cmd
			m.emailInput, cmd = m.emailInput.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	signedIn := m.state.IsSignedIn()

	switch {
	case key.Matches(msg, m.keys.SignIn) && !signedIn:
		m.editing = true
		return tea.Batch(m.emailInput.Focus(), textinput.Blink)

	case key.Matches(msg, m.keys.SignOut) && signedIn:
		return func() tea.Msg { return app.SignOutMsg{} }

	case key.Matches(msg, m.keys.Export):
		return func() tea.Msg { return app.ExportMsg{} }

	case key.Matches(msg, m.keys.ClearData):
		m.confirm = confirmClearData

	case key.Matches(msg, m.keys.FactoryReset):
		m.confirm = confirmFactoryReset

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd
	}
	return nil
}

// updateEmailForm handles typing into the email field with live validation.
func (m *Model) updateEmailForm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.editing = false
		m.emailInput.Blur()
		return nil

	case key.Matches(msg, m.keys.Submit):
		email := strings.TrimSpace(m.emailInput.Value())
		m.result = m.validator.Validate(email)
		if !m.result.IsAllowed {
			return nil
		}
		m.editing = false
		m.emailInput.Blur()
		return func() tea.Msg { return app.SignInMsg{Email: email} }
	}

	var cmd tea.Cmd
	m.emailInput, cmd = m.emailInput.Update(msg)
	m.revalidate()
	return cmd
}

// revalidate refreshes the live result. An empty field shows no message
// until the user submits it.
func (m *Model) revalidate() {
	value := strings.TrimSpace(m.emailInput.Value())
	if value == "" {
		m.result = emailcheck.Result{}
		return
	}
	m.result = m.validator.Validate(value)
}

// updateConfirm handles the clear data and factory reset confirmation.
func (m *Model) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		action := m.confirm
		m.confirm = confirmNone
		if action == confirmFactoryReset {
			return func() tea.Msg { return app.FactoryResetMsg{} }
		}
		return func() tea.Msg { return app.ClearUserDataMsg{} }
	case "n", "N", "esc":
		m.confirm = confirmNone
	}
	return nil
}

func (m *Model) updateProviderRows() {
	domains := m.validator.AllowedDomains()
	rows := make([]table.Row, 0, len(domains))
	for _, d := range domains {
		rows = append(rows, table.Row{emailcheck.DisplayName("user@" + d), d})
	}
	m.table.SetRows(rows)
}

// SetSize sets the available size for the accounts tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.editing {
		return []key.Binding{m.keys.Submit, m.keys.Escape}
	}
	if m.state.IsSignedIn() {
		return []key.Binding{m.keys.SignOut, m.keys.Export}
	}
	return []key.Binding{m.keys.SignIn, m.keys.Export}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.SignIn, m.keys.SignOut},
		{m.keys.Export},
		{m.keys.ClearData, m.keys.FactoryReset},
	}
}
