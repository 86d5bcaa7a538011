// Package studio provides the transformation tab: pick a photo, choose the
// paper style and canvas, then generate.
package studio

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/paperart-tui/internal/app"
	"github.com/j-veylop/paperart-tui/internal/models"
	"github.com/j-veylop/paperart-tui/internal/services"
	"github.com/j-veylop/paperart-tui/internal/ui/components"
)

// keyMap defines the key bindings specific to the studio tab.
type keyMap struct {
	EditPath      key.Binding
	Confirm       key.Binding
	Cancel        key.Binding
	Generate      key.Binding
	NextIntensity key.Binding
	PrevIntensity key.Binding
	NextRatio     key.Binding
	PrevRatio     key.Binding
	Download      key.Binding
	Copy          key.Binding
}

// defaultKeyMap returns the default key bindings for the studio tab.
func defaultKeyMap() keyMap {
	return keyMap{
		EditPath: key.NewBinding(
			key.WithKeys("i", "/"),
			key.WithHelp("i", "choose image"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "done"),
		),
		Generate: key.NewBinding(
			key.WithKeys("g", "enter"),
			key.WithHelp("g", "generate"),
		),
		NextIntensity: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "stronger"),
		),
		PrevIntensity: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "subtler"),
		),
		NextRatio: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next ratio"),
		),
		PrevRatio: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev ratio"),
		),
		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "download"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy link"),
		),
	}
}

// Model represents the studio tab state.
type Model struct {
	state     *app.AppState
	keys      keyMap
	pathInput textinput.Model
	creditBar components.CreditBar
	genBar    components.GenerationBar
	spinner   components.LoadingSpinner
	viewport  viewport.Model
	path      string
	editing   bool
	width     int
	height    int
}

// New creates a new studio model.
func New(state *app.AppState) *Model {
	ti := textinput.New()
	ti.Placeholder = "~/Pictures/photo.jpg"
	ti.CharLimit = 512
	ti.Width = 50
	ti.Prompt = "› "

	return &Model{
		state:     state,
		keys:      defaultKeyMap(),
		pathInput: ti,
		creditBar: components.NewCreditBar(40),
		genBar:    components.NewGenerationBar(),
		spinner:   components.NewSpinner("Folding paper..."),
		viewport:  viewport.New(0, 0),
	}
}

// Init initializes the studio tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// CapturesInput reports whether the path field has focus.
func (m *Model) CapturesInput() bool {
	return m.editing
}

// Path returns the confirmed image path.
func (m *Model) Path() string {
	return m.path
}

// Update handles messages for the studio tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m, m.handleEditingKey(msg)
		}
		cmds = append(cmds, m.handleKeyMsg(msg))

	case app.InitialLoadMsg:
		m.creditBar.Jump(remainingPercent(msg.Credits))

	case app.ServiceEventMsg:
		if e, ok := msg.Event.(services.CreditsChangedEvent); ok {
			cmds = append(cmds, m.creditBar.SetPercent(remainingPercent(e.Entry)))
		}

	case components.AnimationTickMsg:
		var cmd tea.Cmd
		m.creditBar, cmd = m.creditBar.Update(msg)
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		if m.editing {
			var cmd tea.Cmd
			m.pathInput, cmd = m.pathInput.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleEditingKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.path = strings.TrimSpace(m.pathInput.Value())
		m.stopEditing()
		return nil
	case key.Matches(msg, m.keys.Cancel):
		m.pathInput.SetValue(m.path)
		m.stopEditing()
		return nil
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return cmd
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.EditPath):
		m.editing = true
		m.pathInput.SetValue(m.path)
		m.pathInput.CursorEnd()
		return tea.Batch(m.pathInput.Focus(), textinput.Blink)

	case key.Matches(msg, m.keys.Generate):
		if !m.canGenerate() {
			return nil
		}
		path := m.path
		return func() tea.Msg { return app.GenerateMsg{Path: path} }

	case key.Matches(msg, m.keys.NextIntensity):
		return m.cycleIntensity(1)
	case key.Matches(msg, m.keys.PrevIntensity):
		return m.cycleIntensity(-1)
	case key.Matches(msg, m.keys.NextRatio):
		return m.cycleRatio(1)
	case key.Matches(msg, m.keys.PrevRatio):
		return m.cycleRatio(-1)

	case key.Matches(msg, m.keys.Download):
		if res := m.state.GetLastResult(); res != nil {
			url := res.URL
			return func() tea.Msg { return app.DownloadMsg{URL: url, Index: 0} }
		}
	case key.Matches(msg, m.keys.Copy):
		if res := m.state.GetLastResult(); res != nil {
			url := res.URL
			return func() tea.Msg { return app.ShareMsg{URL: url} }
		}

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) stopEditing() {
	m.editing = false
	m.pathInput.Blur()
}

// canGenerate mirrors the conditions that disable the generate button. A
// missing image or session still goes through so the user is told why.
func (m *Model) canGenerate() bool {
	return m.state.GetCreditState() != models.CreditsExhausted && !m.state.GetProgress().Active
}

func (m *Model) cycleIntensity(delta int) tea.Cmd {
	prefs := m.state.GetPreferences()
	idx := intensityIndex(prefs.StyleIntensity) + delta
	idx = max(0, min(idx, len(models.StyleIntensities)-1))
	next := models.StyleIntensities[idx]
	if next == prefs.StyleIntensity {
		return nil
	}
	prefs.StyleIntensity = next
	return savePreferences(prefs)
}

func (m *Model) cycleRatio(delta int) tea.Cmd {
	prefs := m.state.GetPreferences()
	idx := ratioIndex(prefs.AspectRatio)
	n := len(models.AspectRatios)
	prefs.AspectRatio = models.AspectRatios[(idx+delta+n)%n].Ratio
	return savePreferences(prefs)
}

func savePreferences(prefs models.UserPreferences) tea.Cmd {
	return func() tea.Msg { return app.SavePreferencesMsg{Preferences: prefs} }
}

func intensityIndex(s models.StyleIntensity) int {
	for i, v := range models.StyleIntensities {
		if v == s {
			return i
		}
	}
	return 1
}

func ratioIndex(r models.AspectRatio) int {
	target := r.Option().Ratio
	for i, opt := range models.AspectRatios {
		if opt.Ratio == target {
			return i
		}
	}
	return 0
}

func remainingPercent(e models.CreditEntry) float64 {
	limit := e.Limit()
	if limit <= 0 {
		return 0
	}
	return float64(e.CreditsRemaining) / float64(limit) * 100
}

// SetSize sets the available size for the studio tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.editing {
		return []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return []key.Binding{
		m.keys.EditPath,
		m.keys.Generate,
		m.keys.PrevIntensity,
		m.keys.NextRatio,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.EditPath, m.keys.Generate},
		{m.keys.PrevIntensity, m.keys.NextIntensity},
		{m.keys.PrevRatio, m.keys.NextRatio},
		{m.keys.Download, m.keys.Copy},
	}
}
