package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/j-veylop/paperart-tui/internal/config"
	"github.com/j-veylop/paperart-tui/internal/models"
	"github.com/j-veylop/paperart-tui/internal/services/credits"
	"github.com/j-veylop/paperart-tui/internal/services/generation"
	"github.com/j-veylop/paperart-tui/internal/storage"
)

type stubDescriber struct{ err error }

func (s stubDescriber) Describe(context.Context, generation.Image, models.ArtStyle, models.StyleIntensity) (string, error) {
	return "a paper crane", s.err
}

type stubRenderer struct{}

func (stubRenderer) Render(_ context.Context, prompt string, _ models.AspectRatio) (string, error) {
	return "https://img.example/" + strings.ReplaceAll(prompt, " ", "-"), nil
}

type notifications struct {
	mu     sync.Mutex
	titles []string
}

func (n *notifications) notify(title, _ string) error {
	n.mu.Lock()
	n.titles = append(n.titles, title)
	n.mu.Unlock()
	return nil
}

func (n *notifications) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.titles...)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	tmpDir := t.TempDir()
	return &config.Config{
		DataDir:           tmpDir,
		StorePath:         filepath.Join(tmpDir, "storage.json"),
		StoreBackend:      "file",
		DatabasePath:      filepath.Join(tmpDir, "test.db"),
		DownloadDir:       filepath.Join(tmpDir, "downloads"),
		GeminiAPIKey:      "test",
		HTTPTimeout:       5 * time.Second,
		DailyCreditLimit:  10,
		CreditCost:        1,
		StorageQuotaBytes: storage.DefaultQuotaBytes,
		Notifications:     true,
	}
}

func newTestManager(t *testing.T, cfg *config.Config, opts ...Option) *Manager {
	t.Helper()
	opts = append([]Option{
		WithDescriber(stubDescriber{}),
		WithRenderer(stubRenderer{}),
		WithNotifier(func(string, string) error { return nil }),
	}, opts...)

	mgr, err := NewManager(cfg, opts...)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr
}

var testImage = generation.Image{Name: "a.png", MIMEType: "image/png", Data: []byte{1, 2, 3}}

// waitFor returns the first event on ch matching pred.
func waitFor[T ServiceEvent](t *testing.T, ch <-chan ServiceEvent, pred func(T) bool) T {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case event := <-ch:
			if e, ok := event.(T); ok && (pred == nil || pred(e)) {
				return e
			}
		case <-timeout:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func TestNewManager(t *testing.T) {
	mgr := newTestManager(t, testConfig(t))

	if mgr.Ledger() == nil || mgr.Local() == nil || mgr.Database() == nil || mgr.Validator() == nil {
		t.Fatal("services should be initialized")
	}
	if got := mgr.Ledger().Remaining(); got != 10 {
		t.Errorf("Remaining() = %d, want 10", got)
	}
	if !strings.HasSuffix(mgr.StorePath(), "storage.json") {
		t.Errorf("StorePath() = %s", mgr.StorePath())
	}

	entry, history, sess := mgr.InitialState()
	if entry.CreditsRemaining != 10 || len(history) != 0 || sess != nil {
		t.Errorf("InitialState() = %+v, %v, %v", entry, history, sess)
	}
}

func TestNewManager_SQLiteBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreBackend = "sqlite"
	mgr := newTestManager(t, cfg)

	if !strings.HasSuffix(mgr.StorePath(), "(kv)") {
		t.Errorf("StorePath() = %s", mgr.StorePath())
	}
	if _, err := os.Stat(cfg.StorePath); !os.IsNotExist(err) {
		t.Error("file store created for sqlite backend")
	}

	mgr.Ledger().Deduct()
	if entry, ok := mgr.Local().Credits(); !ok || entry.CreditsUsed != 1 {
		t.Errorf("credits in kv = %+v, %v", entry, ok)
	}
}

func TestManager_Subscription(t *testing.T) {
	mgr := newTestManager(t, testConfig(t))

	ch, cmd := mgr.Subscribe()
	if ch == nil {
		t.Error("Subscribe returned nil channel")
	}
	if cmd == nil {
		t.Error("Subscribe returned nil command")
	}

	mgr.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Channel should be closed")
		}
	default:
		t.Error("Channel should be closed")
	}

	if msg := cmd(); msg != nil {
		t.Errorf("cmd on closed channel = %v, want nil", msg)
	}
}

func TestManager_SignIn(t *testing.T) {
	mgr := newTestManager(t, testConfig(t))
	ch, _ := mgr.Subscribe()

	res, sess := mgr.SignIn("someone@mailinator.com")
	if res.IsAllowed || sess != nil {
		t.Fatalf("disposable sign-in accepted: %+v", res)
	}
	if _, ok := mgr.Session(); ok {
		t.Fatal("session stored for rejected address")
	}

	res, sess = mgr.SignIn("  Someone@Gmail.com ")
	if !res.IsAllowed || sess == nil {
		t.Fatalf("gmail sign-in rejected: %+v", res)
	}
	if sess.Email != "someone@gmail.com" || sess.Provider != "Gmail" || sess.ID == "" {
		t.Errorf("session = %+v", sess)
	}

	ev := waitFor[SessionChangedEvent](t, ch, nil)
	if ev.Session == nil || ev.Session.Email != "someone@gmail.com" {
		t.Errorf("event = %+v", ev)
	}

	mgr.SignOut()
	if _, ok := mgr.Session(); ok {
		t.Error("session present after SignOut")
	}
}

func TestManager_Generate(t *testing.T) {
	mgr := newTestManager(t, testConfig(t))
	ch, _ := mgr.Subscribe()
	mgr.SignIn("a@icloud.com")

	res, err := mgr.Generate(context.Background(), testImage, models.DefaultPreferences())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.Item.URL != "https://img.example/a-paper-crane" || !res.Charged {
		t.Errorf("result = %+v", res)
	}

	if got := mgr.Ledger().Remaining(); got != 9 {
		t.Errorf("Remaining() = %d, want 9", got)
	}

	progress := waitFor(t, ch, func(e GenerationProgressEvent) bool { return e.Percent == 100 })
	if progress.Label != generation.ProgressLabel(100) {
		t.Errorf("label = %q", progress.Label)
	}
	credit := waitFor[CreditsChangedEvent](t, ch, nil)
	if credit.Change != credits.ChangeDeducted || credit.Entry.CreditsRemaining != 9 {
		t.Errorf("credit event = %+v", credit)
	}
	hist := waitFor[HistoryChangedEvent](t, ch, nil)
	if len(hist.History) != 1 || hist.History[0].UserID == "" {
		t.Errorf("history event = %+v", hist)
	}

	stats, err := mgr.GenerationStats()
	if err != nil || stats.Total != 1 || stats.Succeeded != 1 {
		t.Errorf("stats = %+v, %v", stats, err)
	}
	recent, _ := mgr.Database().RecentGenerations(1)
	if len(recent) != 1 || recent[0].Email != "a@icloud.com" {
		t.Errorf("recent = %+v", recent)
	}
}

func TestManager_GenerateFailure(t *testing.T) {
	mgr := newTestManager(t, testConfig(t), WithDescriber(stubDescriber{err: errors.New("model offline")}))

	if _, err := mgr.Generate(context.Background(), testImage, models.DefaultPreferences()); err == nil {
		t.Fatal("expected error")
	}
	if got := mgr.Ledger().Remaining(); got != 10 {
		t.Errorf("Remaining() = %d after failure, want 10", got)
	}
	if len(mgr.History()) != 0 {
		t.Error("failed generation added to history")
	}

	stats, _ := mgr.GenerationStats()
	if stats.Failed != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestManager_ExhaustionNotifies(t *testing.T) {
	cfg := testConfig(t)
	cfg.DailyCreditLimit = 1
	n := &notifications{}
	mgr := newTestManager(t, cfg, WithNotifier(n.notify))

	if _, err := mgr.Generate(context.Background(), testImage, models.DefaultPreferences()); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Generate(context.Background(), testImage, models.DefaultPreferences()); !errors.Is(err, generation.ErrNoCredits) {
		t.Errorf("second Generate err = %v, want ErrNoCredits", err)
	}

	titles := n.all()
	if len(titles) != 1 || titles[0] != "Daily credits used up" {
		t.Errorf("notifications = %v", titles)
	}
}

func TestManager_NotificationsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.DailyCreditLimit = 1
	cfg.Notifications = false
	n := &notifications{}
	mgr := newTestManager(t, cfg, WithNotifier(n.notify))

	_, _ = mgr.Generate(context.Background(), testImage, models.DefaultPreferences())
	if len(n.all()) != 0 {
		t.Errorf("notifications = %v", n.all())
	}
}

func TestManager_RolloverNotifies(t *testing.T) {
	var mu sync.Mutex
	now := time.Date(2026, 10, 14, 23, 0, 0, 0, time.Local)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	n := &notifications{}
	mgr := newTestManager(t, testConfig(t), WithClock(clock), WithNotifier(n.notify))
	ch, _ := mgr.Subscribe()
	mgr.Ledger().Deduct()

	mu.Lock()
	now = now.Add(2 * time.Hour)
	mu.Unlock()

	ev := waitFor(t, ch, func(e CreditsChangedEvent) bool { return e.Change == credits.ChangeReset })
	if ev.Entry.CreditsRemaining != 10 || ev.Entry.Date != "Thu Oct 15 2026" {
		t.Errorf("reset event = %+v", ev)
	}

	found := false
	for _, title := range n.all() {
		if title == "Credits refreshed" {
			found = true
		}
	}
	if !found {
		t.Errorf("notifications = %v", n.all())
	}
}

func TestManager_ClearUserData(t *testing.T) {
	mgr := newTestManager(t, testConfig(t))
	mgr.SignIn("a@gmail.com")
	mgr.SavePreferences(models.UserPreferences{StyleIntensity: models.IntensityStrong, AspectRatio: "4:3"})
	if _, err := mgr.Generate(context.Background(), testImage, mgr.Preferences()); err != nil {
		t.Fatal(err)
	}

	mgr.ClearUserData()

	if len(mgr.History()) != 0 {
		t.Error("history survived ClearUserData")
	}
	if _, ok := mgr.Session(); ok {
		t.Error("session survived ClearUserData")
	}
	if mgr.Ledger().Remaining() != 10 {
		t.Errorf("Remaining() = %d, want 10", mgr.Ledger().Remaining())
	}
	if mgr.Preferences().StyleIntensity != models.IntensityStrong {
		t.Error("preferences removed by ClearUserData")
	}

	mgr.FactoryReset()
	if mgr.Preferences() != models.DefaultPreferences() {
		t.Errorf("preferences after FactoryReset = %+v", mgr.Preferences())
	}
	if _, ok := mgr.Local().Credits(); !ok {
		t.Error("fresh credit entry not persisted after FactoryReset")
	}
}

func TestManager_ExportUserData(t *testing.T) {
	mgr := newTestManager(t, testConfig(t))
	mgr.SaveLanding(3)

	path, err := mgr.ExportUserData()
	if err != nil {
		t.Fatalf("ExportUserData failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var export map[string]json.RawMessage
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatal(err)
	}
	if _, ok := export[storage.KeyCredits]; !ok {
		t.Errorf("export missing credits: %s", data)
	}
	if _, ok := export[storage.KeyLandingPageState]; !ok {
		t.Errorf("export missing landing state: %s", data)
	}

	if info := mgr.StorageInfo(); info.Used == 0 || info.Total != storage.DefaultQuotaBytes {
		t.Errorf("StorageInfo() = %+v", info)
	}
}

func TestManager_ExternalCreditChange(t *testing.T) {
	cfg := testConfig(t)
	mgr := newTestManager(t, cfg)
	ch, _ := mgr.Subscribe()

	time.Sleep(200 * time.Millisecond)

	entry := models.CreditEntry{
		Date:             models.DayKey(time.Now()),
		CreditsUsed:      6,
		CreditsRemaining: 4,
	}
	value, _ := json.Marshal(entry)
	file, _ := json.Marshal(map[string]string{storage.KeyCredits: string(value)})
	if err := os.WriteFile(cfg.StorePath, file, 0o600); err != nil {
		t.Fatal(err)
	}

	ev := waitFor(t, ch, func(e CreditsChangedEvent) bool { return e.Change == credits.ChangeExternal })
	if ev.Entry.CreditsRemaining != 4 {
		t.Errorf("external entry = %+v", ev.Entry)
	}
	if mgr.Ledger().Remaining() != 4 {
		t.Errorf("Remaining() = %d, want 4", mgr.Ledger().Remaining())
	}
}

func TestManager_Close(t *testing.T) {
	mgr, err := NewManager(testConfig(t), WithDescriber(stubDescriber{}), WithRenderer(stubRenderer{}))
	if err != nil {
		t.Fatal(err)
	}
	ch, _ := mgr.Subscribe()

	if err := mgr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Error("subscriber channel not closed")
	}
}
