// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/paperart-tui/internal/services"
	"github.com/j-veylop/paperart-tui/internal/services/credits"
	"github.com/j-veylop/paperart-tui/internal/services/generation"
	"github.com/j-veylop/paperart-tui/internal/ui/components"
	"github.com/j-veylop/paperart-tui/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabStudio is the ID for the generator tab.
	TabStudio TabID = iota
	// TabHistory is the ID for the history tab.
	TabHistory
	// TabAccount is the ID for the account tab.
	TabAccount
	// TabInfo is the ID for the info tab.
	TabInfo
)

var tabNames = []string{"Studio", "History", "Account", "Info"}

// String returns the string representation of the TabID.
func (t TabID) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return "Unknown"
	}
	return tabNames[t]
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// InputCapturer is implemented by tabs that own a text input. While
// CapturesInput is true only ctrl+c reaches the global key map.
type InputCapturer interface {
	CapturesInput() bool
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding
	Tab4    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab1:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "studio")),
		Tab2:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "history")),
		Tab3:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "account")),
		Tab4:    key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "info")),
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.NextTab, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4},
		{k.NextTab, k.PrevTab},
		{k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	StatusBar   lipgloss.Style

	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	Content lipgloss.Style
	Toast   lipgloss.Style

	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#C7522A", Dark: "#FF875F"}
	success := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warning := lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FF8C00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	info := lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}

	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(subtle)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(subtle).Padding(0, 2)
	s.StatusBar = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(highlight)

	return s
}

// Model is the main application model.
type Model struct {
	activeTab TabID
	tabs      []Tab

	state    *AppState
	services *services.Manager
	keymap   KeyMap
	styles   Styles

	spinner spinner.Model

	width  int
	height int

	showHelp bool
	ready    bool

	eventChannel chan services.ServiceEvent

	// ctx lives as long as the program; Quit cancels it so in-flight
	// requests are abandoned on shutdown.
	ctx  context.Context
	stop context.CancelFunc
}

// NewModel initializes a new application model.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = components.PaperFold
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	ctx, stop := context.WithCancel(context.Background())
	return &Model{
		ctx:       ctx,
		stop:      stop,
		activeTab: TabStudio,
		tabs:      make([]Tab, len(tabNames)),
		state:     NewAppState(),
		services:  mgr,
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
	}
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *AppState {
	return m.state
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// IsReady returns true if the model is ready (window size received).
func (m *Model) IsReady() bool {
	return m.ready
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading...")

	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds, subscribeToServicesCmd(m.services))
		cmds = append(cmds, loadStateCmd(m.services))
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)
	case tea.KeyMsg:
		if cmd, handled := m.handleKeyMsg(msg); handled {
			return m, cmd
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	default:
		cmds = append(cmds, m.handleAppMsg(msg)...)
	}

	if isBroadcast(msg) {
		cmds = append(cmds, m.updateAllTabs(msg)...)
	} else if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// isBroadcast reports whether every tab, not only the active one, must see
// msg. These keep background tabs and their animations in sync.
func isBroadcast(msg tea.Msg) bool {
	switch msg.(type) {
	case InitialLoadMsg, ServiceEventMsg, TickMsg, GenerationDoneMsg, StorageInfoMsg,
		spinner.TickMsg, components.AnimationTickMsg, tea.WindowSizeMsg:
		return true
	}
	return false
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		if m.services != nil {
			m.state.SetCountdown(m.services.Ledger().Countdown())
		}
		cmds = append(cmds, defaultTickCmd())
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEvent(msg.Event))
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}
	case InitialLoadMsg:
		m.state.Load(msg)
		m.state.ClearLoadingNotification()
	case StorageInfoMsg:
		m.state.SetStorageInfo(msg.Info)
	case GenerateMsg:
		cmds = append(cmds, m.startGeneration(msg))
	case GenerationDoneMsg:
		cmds = append(cmds, m.handleGenerationDone(msg))
	case SavePreferencesMsg:
		m.state.SetPreferences(msg.Preferences)
		if m.services != nil {
			m.services.SavePreferences(msg.Preferences)
		}
	case SaveLandingMsg:
		m.state.SetLandingIndex(msg.Index)
		if m.services != nil {
			m.services.SaveLanding(msg.Index)
		}
	case DownloadMsg:
		if m.services != nil {
			cmds = append(cmds, notifyInfoCmd("Downloading image..."), downloadCmd(m.services, msg.URL, msg.Index))
		}
	case DownloadResultMsg:
		if msg.Error != nil {
			cmds = append(cmds, notifyErrorCmd(errorText("Download failed", msg.Error)))
		} else {
			cmds = append(cmds, notifySuccessCmd("Saved "+msg.Path))
		}
	case ShareMsg:
		if m.services != nil {
			cmds = append(cmds, shareCmd(m.services, msg.URL))
		}
	case ShareResultMsg:
		if msg.Error != nil {
			cmds = append(cmds, notifyErrorCmd(errorText("Copy failed", msg.Error)))
		} else {
			cmds = append(cmds, notifySuccessCmd("Image link copied to clipboard"))
		}
	case CopyToClipboardMsg:
		cmds = append(cmds, copyCmd(msg.Text))
	case ClipboardResultMsg:
		if msg.Error != nil {
			cmds = append(cmds, notifyErrorCmd(errorText("Copy failed", msg.Error)))
		} else {
			cmds = append(cmds, notifySuccessCmd("Copied to clipboard"))
		}
	case SignInMsg:
		if m.services != nil {
			cmds = append(cmds, signInCmd(m.services, msg.Email))
		}
	case SignInResultMsg:
		cmds = append(cmds, m.handleSignIn(msg))
	case SignOutMsg:
		if m.services != nil {
			cmds = append(cmds, signOutCmd(m.services), notifyInfoCmd("Signed out"))
		}
	case ExportMsg:
		if m.services != nil {
			cmds = append(cmds, exportCmd(m.services))
		}
	case ExportResultMsg:
		if msg.Error != nil {
			cmds = append(cmds, notifyErrorCmd(errorText("Export failed", msg.Error)))
		} else {
			cmds = append(cmds, notifySuccessCmd("Exported to "+msg.Path))
		}
	case ClearHistoryMsg:
		if m.services != nil {
			cmds = append(cmds, clearHistoryCmd(m.services))
		}
	case ClearUserDataMsg:
		if m.services != nil {
			cmds = append(cmds, clearUserDataCmd(m.services))
		}
	case FactoryResetMsg:
		if m.services != nil {
			cmds = append(cmds, factoryResetCmd(m.services))
		}
	case ResetDoneMsg:
		m.state.ClearLastResult()
		if msg.OK {
			cmds = append(cmds, notifySuccessCmd(msg.What))
		} else {
			cmds = append(cmds, notifyWarningCmd(msg.What+" with errors; see log"))
		}
		if m.services != nil {
			cmds = append(cmds, loadStateCmd(m.services))
		}
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ClearExpiredNotificationsMsg:
		m.state.ClearExpiredNotifications()
	case ErrorMsg:
		cmds = append(cmds, notifyErrorCmd(errorText(msg.Context, msg.Error)))
	case TabSwitchMsg:
		if m.activeTab != msg.Tab {
			m.activeTab = msg.Tab
			m.updateTabSizes()
		}
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}
	return cmds
}

func (m *Model) startGeneration(msg GenerateMsg) tea.Cmd {
	if !m.state.IsSignedIn() {
		return notifyWarningCmd("Sign in on the Account tab to start creating")
	}
	if !m.state.StartGeneration() {
		return notifyWarningCmd(services.ErrGenerationInProgress.Error())
	}
	if m.services == nil {
		m.state.FinishGeneration(nil)
		return nil
	}

	m.state.SetProgress(0, generation.ProgressLabel(0))
	return generateCmd(m.ctx, m.services, msg.Path, m.state)
}

func (m *Model) handleGenerationDone(msg GenerationDoneMsg) tea.Cmd {
	if msg.Error != nil {
		m.state.FinishGeneration(nil)
		switch {
		case errors.Is(msg.Error, generation.ErrNoCredits):
			return notifyWarningCmd(errorText("", msg.Error))
		default:
			return notifyErrorCmd(errorText("", msg.Error))
		}
	}

	if msg.Result == nil {
		m.state.FinishGeneration(nil)
		return nil
	}

	item := msg.Result.Item
	m.state.FinishGeneration(&item)
	if !msg.Result.Charged {
		return notifyWarningCmd(SuccessMessage + " (credits could not be updated)")
	}
	var cmds []tea.Cmd
	cmds = append(cmds, notifySuccessCmd(SuccessMessage))
	if m.services != nil {
		cmds = append(cmds, storageInfoCmd(m.services))
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleSignIn(msg SignInResultMsg) tea.Cmd {
	if msg.Session == nil {
		return notifyErrorCmd(msg.Result.Error)
	}
	m.state.SetSession(msg.Session)
	return notifySuccessCmd(fmt.Sprintf("Signed in with %s", msg.Session.Provider))
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.updateTabSizes()
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateAllTabs(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	for i, tab := range m.tabs {
		if tab == nil {
			continue
		}
		var cmd tea.Cmd
		m.tabs[i], cmd = tab.Update(msg)
		cmds = append(cmds, cmd)
	}
	return cmds
}

func (m *Model) updateTabSizes() {
	contentHeight := max(0, m.height-5)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

func (m *Model) activeTabCapturesInput() bool {
	if int(m.activeTab) >= len(m.tabs) || m.tabs[m.activeTab] == nil {
		return false
	}
	c, ok := m.tabs[m.activeTab].(InputCapturer)
	return ok && c.CapturesInput()
}

// switchTab activates id and tells the tab it became visible.
func (m *Model) switchTab(id TabID) tea.Cmd {
	m.activeTab = id
	m.updateTabSizes()
	return func() tea.Msg { return TabSwitchMsg{Tab: id} }
}

// handleKeyMsg handles global keys. handled is false when the key should
// reach the active tab.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (cmd tea.Cmd, handled bool) {
	if msg.String() == "ctrl+c" {
		return m.quit(), true
	}
	if m.activeTabCapturesInput() {
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m.quit(), true

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return nil, true

	case key.Matches(msg, m.keymap.Escape):
		if m.showHelp {
			m.showHelp = false
			return nil, true
		}

	case key.Matches(msg, m.keymap.Tab1):
		return m.switchTab(TabStudio), true

	case key.Matches(msg, m.keymap.Tab2):
		return m.switchTab(TabHistory), true

	case key.Matches(msg, m.keymap.Tab3):
		return m.switchTab(TabAccount), true

	case key.Matches(msg, m.keymap.Tab4):
		return m.switchTab(TabInfo), true

	case key.Matches(msg, m.keymap.NextTab):
		return m.switchTab(TabID((int(m.activeTab) + 1) % len(m.tabs))), true

	case key.Matches(msg, m.keymap.PrevTab):
		return m.switchTab(TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs))), true
	}

	return nil, false
}

func (m *Model) quit() tea.Cmd {
	m.stop()
	return tea.Quit
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.CreditsChangedEvent:
		m.state.SetCredits(e.Entry)
		if m.services != nil {
			m.state.SetCountdown(m.services.Ledger().Countdown())
		}
		if e.Change == credits.ChangeReset {
			return notifyInfoCmd("Your daily credits have been refreshed")
		}

	case services.HistoryChangedEvent:
		m.state.SetHistory(e.History)
		if m.services != nil {
			return storageInfoCmd(m.services)
		}

	case services.SessionChangedEvent:
		m.state.SetSession(e.Session)

	case services.GenerationProgressEvent:
		m.state.SetProgress(e.Percent, e.Label)

	case services.StorageChangedEvent:
		if m.services != nil {
			return tea.Batch(loadStateCmd(m.services), notifyInfoCmd("Data changed in another session"))
		}

	case services.ErrorEvent:
		return notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}

	return nil
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	mainView := b.String()

	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	if notifications := m.renderNotifications(); len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}

	return mainView
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayWidth := lipgloss.Width(overlay)

	// Short content still gets a full-height canvas to draw over.
	for len(mainLines) < max(m.height, len(overlayLines)) {
		mainLines = append(mainLines, "")
	}

	y := max((m.height-len(overlayLines))/2, 0)
	x := max((m.width-overlayWidth)/2, 0)

	for i, overlayLine := range overlayLines {
		mainY := y + i
		if mainY >= len(mainLines) {
			break
		}

		mainLine := mainLines[mainY]
		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")

		if lipgloss.Width(left) < x {
			left += strings.Repeat(" ", x-lipgloss.Width(left))
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNavbar() string {
	tabs := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

func (m *Model) renderStatusBar() string {
	entry := m.state.GetCredits()
	parts := []string{
		fmt.Sprintf("%d/%d credits", entry.CreditsRemaining, entry.Limit()),
	}
	if sess := m.state.GetSession(); sess != nil {
		parts = append(parts, sess.Email)
	} else {
		parts = append(parts, "signed out")
	}
	if p := m.state.GetProgress(); p.Active {
		parts = append(parts, fmt.Sprintf("%s %d%%", m.spinner.View(), p.Percent))
	}
	parts = append(parts, "? help")
	return m.styles.StatusBar.Width(m.width).Render(strings.Join(parts, " • "))
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		case NotificationLoading:
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	startX := max(m.width-lipgloss.Width(toastStack)-2, 0)
	const startY = 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		if w := lipgloss.Width(mainLine); w < startX {
			mainLines[lineIdx] = mainLine + strings.Repeat(" ", startX-w) + toastLine
		} else {
			mainLines[lineIdx] = ansi.Truncate(mainLine, startX, "") + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	var lines []string

	lines = append(lines, m.styles.Title.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Navigation"))
	lines = append(lines, "  1-4        Switch tabs")
	lines = append(lines, "  Tab        Next tab")
	lines = append(lines, "  Shift+Tab  Previous tab")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("General"))
	lines = append(lines, "  ?          Toggle help")
	lines = append(lines, "  Esc        Close help")
	lines = append(lines, "  q/Ctrl+C   Quit")
	lines = append(lines, "")

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		if tabHelp := m.tabs[m.activeTab].ShortHelp(); len(tabHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(fmt.Sprintf("%s Tab", m.activeTab)))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	content := fmt.Sprintf(
		"Tab %d: %s\n\n%s",
		m.activeTab+1,
		m.activeTab,
		m.styles.Subtle.Render("This tab is not available."),
	)
	return m.styles.Content.Render(content)
}
