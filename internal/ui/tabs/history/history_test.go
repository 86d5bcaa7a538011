package history

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/paperart-tui/internal/app"
	"github.com/j-veylop/paperart-tui/internal/config"
	"github.com/j-veylop/paperart-tui/internal/models"
	"github.com/j-veylop/paperart-tui/internal/services"
	"github.com/j-veylop/paperart-tui/internal/storage"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testItems(n int) []models.ImageHistoryItem {
	items := make([]models.ImageHistoryItem, n)
	for i := range items {
		items[i] = models.ImageHistoryItem{
			ID:        fmt.Sprintf("img-%d", i),
			URL:       fmt.Sprintf("https://img.example/%d.png", i),
			Prompt:    fmt.Sprintf("paper crane number %d", i),
			Timestamp: time.Now().Add(-time.Duration(i+1) * time.Hour).Format(time.RFC3339),
		}
	}
	return items
}

func loadedState(items []models.ImageHistoryItem, landing int) (*app.AppState, app.InitialLoadMsg) {
	msg := app.InitialLoadMsg{
		Credits:      models.FreshCreditEntry(time.Now(), 10),
		History:      items,
		Preferences:  models.DefaultPreferences(),
		LandingIndex: landing,
	}
	state := app.NewAppState()
	state.Load(msg)
	return state, msg
}

func newTestManager(t *testing.T) *services.Manager {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:           dir,
		StorePath:         filepath.Join(dir, "storage.json"),
		StoreBackend:      "file",
		DatabasePath:      filepath.Join(dir, "test.db"),
		DownloadDir:       filepath.Join(dir, "downloads"),
		GeminiAPIKey:      "test",
		HTTPTimeout:       5 * time.Second,
		DailyCreditLimit:  10,
		CreditCost:        1,
		StorageQuotaBytes: storage.DefaultQuotaBytes,
	}
	mgr, err := services.NewManager(cfg, services.WithNotifier(func(string, string) error { return nil }))
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr
}

func TestNew(t *testing.T) {
	m := New(app.NewAppState(), nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() != nil {
		t.Error("Init should not load before the tab is shown")
	}
	if m.CapturesInput() {
		t.Error("new tab should not capture input")
	}
}

func TestTimeRange(t *testing.T) {
	tests := []struct {
		in   timeRange
		next timeRange
		str  string
	}{
		{range7Days, range14Days, "Last 7 days"},
		{range14Days, range30Days, "Last 14 days"},
		{range30Days, range7Days, "Last 30 days"},
	}
	for _, tt := range tests {
		if got := tt.in.Next(); got != tt.next {
			t.Errorf("%v.Next() = %v, want %v", tt.in, got, tt.next)
		}
		if got := tt.in.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}
	}
}

func TestModel_CursorRestoredFromLanding(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		landing int
		want    int
	}{
		{"InRange", 3, 2, 2},
		{"PastEnd", 3, 9, 2},
		{"Negative", 3, -4, 0},
		{"Empty", 0, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, msg := loadedState(testItems(tt.count), tt.landing)
			m := New(state, nil)
			m.Update(msg)
			if got := m.Cursor(); got != tt.want {
				t.Errorf("Cursor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestModel_CursorMovesAndCheckpoints(t *testing.T) {
	state, msg := loadedState(testItems(2), 0)
	m := New(state, nil)
	m.Update(msg)

	_, cmd := m.Update(runes("j"))
	if cmd == nil {
		t.Fatal("moving should checkpoint the cursor")
	}
	save, ok := cmd().(app.SaveLandingMsg)
	if !ok || save.Index != 1 {
		t.Errorf("checkpoint = %+v", save)
	}

	if _, cmd := m.Update(runes("j")); cmd != nil {
		t.Error("cursor at the last image should not move")
	}
}

func TestModel_ItemActionsUseCursor(t *testing.T) {
	state, msg := loadedState(testItems(3), 1)
	m := New(state, nil)
	m.Update(msg)

	_, cmd := m.Update(runes("d"))
	dl, ok := cmd().(app.DownloadMsg)
	if !ok || dl.Index != 1 || dl.URL != "https://img.example/1.png" {
		t.Errorf("download = %+v", dl)
	}

	_, cmd = m.Update(runes("c"))
	share, ok := cmd().(app.ShareMsg)
	if !ok || share.URL != "https://img.example/1.png" {
		t.Errorf("share = %+v", share)
	}
}

func TestModel_ClearConfirm(t *testing.T) {
	state, msg := loadedState(testItems(2), 1)
	m := New(state, nil)
	m.SetSize(100, 80)
	m.Update(msg)

	m.Update(runes("X"))
	if !m.CapturesInput() {
		t.Fatal("X should open the confirmation")
	}
	if !strings.Contains(m.View(), "Clear History?") {
		t.Error("confirmation should be rendered")
	}

	if _, cmd := m.Update(runes("n")); cmd != nil || m.CapturesInput() {
		t.Error("n should dismiss without clearing")
	}

	m.Update(runes("X"))
	_, cmd := m.Update(runes("y"))
	if _, ok := cmd().(app.ClearHistoryMsg); !ok {
		t.Error("y should request ClearHistoryMsg")
	}
	if m.Cursor() != 0 {
		t.Error("cursor should reset after clearing")
	}
}

func TestModel_ClearIgnoredWhenEmpty(t *testing.T) {
	state, msg := loadedState(nil, 0)
	m := New(state, nil)
	m.Update(msg)

	m.Update(runes("X"))
	if m.CapturesInput() {
		t.Error("nothing to clear")
	}
}

func TestModel_StatsLoadOnTabSwitch(t *testing.T) {
	mgr := newTestManager(t)
	err := mgr.Database().InsertGeneration(&models.GenerationRecord{
		Timestamp:      time.Now(),
		Email:          "ana@gmail.com",
		StyleIntensity: models.IntensityModerate,
		AspectRatio:    models.DefaultAspectRatio,
		Status:         models.GenerationSucceeded,
		DurationMs:     1200,
	})
	if err != nil {
		t.Fatalf("Failed to seed DB: %v", err)
	}

	state, msg := loadedState(testItems(1), 0)
	m := New(state, mgr)
	m.SetSize(100, 120)
	m.Update(msg)

	_, cmd := m.Update(app.TabSwitchMsg{Tab: app.TabHistory})
	if cmd == nil {
		t.Fatal("showing a stale tab should load statistics")
	}
	m.Update(cmd())

	if m.stats == nil || m.stats.Total != 1 {
		t.Fatalf("stats = %+v", m.stats)
	}
	if len(m.daily) != int(range7Days) {
		t.Errorf("daily has %d entries, want %d", len(m.daily), range7Days)
	}

	view := m.View()
	for _, want := range []string{"Daily Generations", "Success rate", "100.0%", "1 total"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	if _, cmd := m.Update(app.TabSwitchMsg{Tab: app.TabHistory}); cmd != nil {
		t.Error("fresh statistics should not reload")
	}

	m.Update(app.ServiceEventMsg{Event: services.HistoryChangedEvent{}})
	if _, cmd := m.Update(app.TabSwitchMsg{Tab: app.TabHistory}); cmd == nil {
		t.Error("history change should mark statistics stale")
	}
}

func TestModel_StaleRangeIgnored(t *testing.T) {
	state, _ := loadedState(nil, 0)
	m := New(state, nil)
	m.timeRange = range14Days

	m.Update(statsLoadedMsg{stats: &models.GenerationStats{Total: 3}, days: range7Days})
	if m.stats != nil {
		t.Error("result for an old range should be dropped")
	}
}

func TestModel_StatsError(t *testing.T) {
	state, _ := loadedState(nil, 0)
	m := New(state, nil)
	m.SetSize(100, 60)

	_, cmd := m.Update(statsErrorMsg{err: "disk gone"})
	if cmd == nil {
		t.Error("error should raise a notification")
	}
	if !strings.Contains(m.View(), "disk gone") {
		t.Error("error should be shown in the stats card")
	}
}

func TestModel_View(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		state, msg := loadedState(nil, 0)
		m := New(state, nil)
		m.SetSize(100, 60)
		m.Update(msg)
		if !strings.Contains(m.View(), "No images yet") {
			t.Error("empty history message missing")
		}
	})

	t.Run("Gallery", func(t *testing.T) {
		state, msg := loadedState(testItems(3), 0)
		m := New(state, nil)
		m.SetSize(100, 80)
		m.Update(msg)

		view := m.View()
		for _, want := range []string{"3 saved images", "paper crane number 0", "hour ago", "By Weekday"} {
			if !strings.Contains(view, want) {
				t.Errorf("view missing %q", want)
			}
		}
	})
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewAppState(), nil)
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp should not be empty")
	}
	if len(m.FullHelp()) != 3 {
		t.Errorf("FullHelp has %d groups, want 3", len(m.FullHelp()))
	}
}
