// Package history provides the history tab: the gallery of generated images
// and the generation log statistics.
package history

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/paperart-tui/internal/app"
	"github.com/j-veylop/paperart-tui/internal/models"
	"github.com/j-veylop/paperart-tui/internal/services"
)

// timeRange is the number of days the daily chart covers.
type timeRange int

const (
	range7Days  timeRange = 7
	range14Days timeRange = 14
	range30Days timeRange = 30
)

// Next cycles 7 -> 14 -> 30 -> 7.
func (r timeRange) Next() timeRange {
	switch r {
	case range7Days:
		return range14Days
	case range14Days:
		return range30Days
	default:
		return range7Days
	}
}

func (r timeRange) String() string {
	return fmt.Sprintf("Last %d days", int(r))
}

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	ToggleRange key.Binding
	Refresh     key.Binding
	Up          key.Binding
	Down        key.Binding
	Download    key.Binding
	Copy        key.Binding
	Clear       key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous image"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next image"),
		),
		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "download"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy link"),
		),
		Clear: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "clear history"),
		),
	}
}

// statsLoadedMsg is sent when the generation log has been read.
type statsLoadedMsg struct {
	daily []models.DailyGenerationCount
	stats *models.GenerationStats
	days  timeRange
}

// statsErrorMsg is sent when the generation log could not be read.
type statsErrorMsg struct {
	err string
}

// Model represents the history tab state.
type Model struct {
	state    *app.AppState
	services *services.Manager
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	timeRange    timeRange
	daily        []models.DailyGenerationCount
	stats        *models.GenerationStats
	loading      bool
	stale        bool
	lastRefresh  time.Time
	errorMsg     string
	cursor       int
	confirmClear bool
}

// New creates a new history model.
func New(state *app.AppState, svc *services.Manager) *Model {
	return &Model{
		state:     state,
		services:  svc,
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		timeRange: range7Days,
		stale:     true,
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// CapturesInput reports whether the clear confirmation is showing.
func (m *Model) CapturesInput() bool {
	return m.confirmClear
}

// Cursor returns the index of the selected image.
func (m *Model) Cursor() int {
	return m.cursor
}

// loadStatsCmd creates a command to load the generation log.
func (m *Model) loadStatsCmd() tea.Cmd {
	if m.services == nil {
		return nil
	}
	svc := m.services
	days := m.timeRange
	m.loading = true
	return func() tea.Msg {
		daily, err := svc.DailyGenerations(int(days))
		if err != nil {
			return statsErrorMsg{err: err.Error()}
		}
		stats, err := svc.GenerationStats()
		if err != nil {
			return statsErrorMsg{err: err.Error()}
		}
		return statsLoadedMsg{daily: daily, stats: stats, days: days}
	}
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	if m.confirmClear {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			return m, m.updateClearConfirm(keyMsg)
		}
	}

	switch msg := msg.(type) {
	case statsLoadedMsg:
		m.loading = false
		if msg.days != m.timeRange {
			break
		}
		m.daily = msg.daily
		m.stats = msg.stats
		m.stale = false
		m.lastRefresh = time.Now()
		m.errorMsg = ""

	case statsErrorMsg:
		m.loading = false
		m.errorMsg = msg.err
		cmds = append(cmds, app.NotifyError(fmt.Sprintf("History error: %s", msg.err)))

	case app.InitialLoadMsg:
		m.cursor = msg.LandingIndex
		m.clampCursor()
		m.stale = true

	case app.ServiceEventMsg:
		switch msg.Event.(type) {
		case services.HistoryChangedEvent, services.StorageChangedEvent:
			m.clampCursor()
			m.stale = true
		}

	case app.TabSwitchMsg:
		if msg.Tab == app.TabHistory && m.stale && !m.loading {
			cmds = append(cmds, m.loadStatsCmd())
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	items := m.state.GetHistory()

	switch {
	case key.Matches(msg, m.keys.ToggleRange):
		m.timeRange = m.timeRange.Next()
		return m.loadStatsCmd()

	case key.Matches(msg, m.keys.Refresh):
		return m.loadStatsCmd()

	case key.Matches(msg, m.keys.Up):
		return m.moveCursor(-1, len(items))
	case key.Matches(msg, m.keys.Down):
		return m.moveCursor(1, len(items))

	case key.Matches(msg, m.keys.Download):
		if item, ok := m.selected(items); ok {
			url, index := item.URL, m.cursor
			return func() tea.Msg { return app.DownloadMsg{URL: url, Index: index} }
		}
	case key.Matches(msg, m.keys.Copy):
		if item, ok := m.selected(items); ok {
			url := item.URL
			return func() tea.Msg { return app.ShareMsg{URL: url} }
		}
	case key.Matches(msg, m.keys.Clear):
		if len(items) > 0 {
			m.confirmClear = true
		}

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

// updateClearConfirm handles the clear history confirmation.
func (m *Model) updateClearConfirm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		m.confirmClear = false
		m.cursor = 0
		return func() tea.Msg { return app.ClearHistoryMsg{} }
	case "n", "N", "esc":
		m.confirmClear = false
	}
	return nil
}

// moveCursor moves the selection and checkpoints it so the gallery opens
// on the same image next time.
func (m *Model) moveCursor(delta, count int) tea.Cmd {
	if count == 0 {
		return nil
	}
	next := max(0, min(m.cursor+delta, count-1))
	if next == m.cursor {
		return nil
	}
	m.cursor = next
	return func() tea.Msg { return app.SaveLandingMsg{Index: next} }
}

func (m *Model) clampCursor() {
	count := m.state.HistoryCount()
	if m.cursor >= count {
		m.cursor = count - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) selected(items []models.ImageHistoryItem) (models.ImageHistoryItem, bool) {
	if m.cursor < 0 || m.cursor >= len(items) {
		return models.ImageHistoryItem{}, false
	}
	return items[m.cursor], true
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Down,
		m.keys.Download,
		m.keys.ToggleRange,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down},
		{m.keys.Download, m.keys.Copy, m.keys.Clear},
		{m.keys.ToggleRange, m.keys.Refresh},
	}
}
