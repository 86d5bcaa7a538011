// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"
	"github.com/google/uuid"

	"github.com/j-veylop/paperart-tui/internal/config"
	"github.com/j-veylop/paperart-tui/internal/db"
	"github.com/j-veylop/paperart-tui/internal/emailcheck"
	"github.com/j-veylop/paperart-tui/internal/logger"
	"github.com/j-veylop/paperart-tui/internal/models"
	"github.com/j-veylop/paperart-tui/internal/services/credits"
	"github.com/j-veylop/paperart-tui/internal/services/generation"
	"github.com/j-veylop/paperart-tui/internal/storage"
)

type (
	// CreditsChangedEvent is emitted after a deduction, a reset or an
	// external change of the credit entry.
	CreditsChangedEvent struct {
		Entry  models.CreditEntry
		Change credits.Change
	}

	// StorageChangedEvent is emitted when another process rewrote the store.
	StorageChangedEvent struct{}

	// HistoryChangedEvent is emitted when the image history changes.
	HistoryChangedEvent struct {
		History []models.ImageHistoryItem
	}

	// SessionChangedEvent is emitted on sign-in and sign-out. Session is nil
	// when signed out.
	SessionChangedEvent struct {
		Session *models.UserSession
	}

	// GenerationProgressEvent reports workflow progress.
	GenerationProgressEvent struct {
		Label   string
		Percent int
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (CreditsChangedEvent) isServiceEvent()     {}
func (StorageChangedEvent) isServiceEvent()     {}
func (HistoryChangedEvent) isServiceEvent()     {}
func (SessionChangedEvent) isServiceEvent()     {}
func (GenerationProgressEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()              {}

// Notifier shows a desktop notification.
type Notifier func(title, body string) error

func beeepNotify(title, body string) error {
	return beeep.Notify(title, body, "")
}

// generationRetention is how long generation log rows are kept.
const generationRetention = 90 * 24 * time.Hour

// Option customises a Manager.
type Option func(*Manager)

// WithDescriber replaces the Gemini describer.
func WithDescriber(d generation.Describer) Option {
	return func(m *Manager) { m.describer = d }
}

// WithRenderer replaces the image renderer.
func WithRenderer(r generation.Renderer) Option {
	return func(m *Manager) { m.renderer = r }
}

// WithNotifier replaces desktop notifications.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notify = n }
}

// WithClock replaces the ledger clock.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	fileStore   *storage.FileStore
	local       *storage.Local
	database    *db.DB
	ledger      *credits.Ledger
	creditSub   *credits.Subscription
	validator   *emailcheck.Validator
	describer   generation.Describer
	renderer    generation.Renderer
	workflow    *generation.Workflow
	httpClient  *http.Client
	notify      Notifier
	now         func() time.Time
	cancel      context.CancelFunc
	storeEvents <-chan storage.Event
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan ServiceEvent
	generating  bool
	closed      bool
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config, opts ...Option) (*Manager, error) {
	m := &Manager{
		cfg:        cfg,
		validator:  emailcheck.New(),
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		notify:     beeepNotify,
		eventChan:  make(chan ServiceEvent, 100),
		stopChan:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if n, err := m.database.PruneGenerations(generationRetention); err != nil {
		logger.Warn("failed to prune generation log", "error", err)
	} else if n > 0 {
		logger.Debug("pruned generation log", "rows", n)
	}

	var store storage.Store
	switch cfg.StoreBackend {
	case "sqlite":
		store = db.NewKVStore(m.database, cfg.StorageQuotaBytes)
	default:
		m.fileStore, err = storage.NewFileStore(cfg.StorePath, cfg.StorageQuotaBytes)
		if err != nil {
			_ = m.database.Close()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		m.storeEvents = m.fileStore.Events()
		store = m.fileStore
	}
	m.local = storage.NewLocal(store, cfg.StorageQuotaBytes)

	m.ledger = credits.New(m.local, credits.Config{
		Now:        m.now,
		DailyLimit: cfg.DailyCreditLimit,
		Cost:       cfg.CreditCost,
	})
	m.creditSub = m.ledger.Subscribe(m.handleCreditChange)

	if m.describer == nil {
		m.describer = generation.NewGeminiDescriber(m.httpClient, cfg.GeminiEndpoint, cfg.GeminiModel, cfg.GeminiAPIKey)
	}
	if m.renderer == nil {
		m.renderer = generation.NewPollinationsRenderer(m.httpClient, cfg.ImageEndpoint, cfg.ImageModel)
	}
	m.workflow = generation.NewWorkflow(m.describer, m.renderer, m.ledger, m.local, m.database)

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.ledger.Run(ctx)
	go m.routeEvents()

	logger.Info("services started",
		"store", cfg.StoreBackend,
		"remaining", m.ledger.Remaining(),
		"limit", m.ledger.DailyLimit())

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event, ok := <-m.storeEvents:
			if !ok {
				return
			}
			m.handleStoreEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

// handleStoreEvent reloads state written by another process. The last
// write wins.
func (m *Manager) handleStoreEvent(event storage.Event) {
	switch event.Type {
	case storage.EventChanged:
		m.ledger.Reload()
		m.broadcast(StorageChangedEvent{})
		m.broadcast(HistoryChangedEvent{History: m.local.History()})

	case storage.EventError:
		m.broadcast(ErrorEvent{Service: "storage", Error: event.Error})
	}
}

// handleCreditChange is the ledger listener.
func (m *Manager) handleCreditChange(entry models.CreditEntry, change credits.Change) {
	m.checkNotifications(entry, change)
	m.broadcast(CreditsChangedEvent{Entry: entry, Change: change})
}

func (m *Manager) checkNotifications(entry models.CreditEntry, change credits.Change) {
	if !m.cfg.Notifications || m.notify == nil {
		return
	}

	var title, body string
	switch {
	case change == credits.ChangeReset:
		title = "Credits refreshed"
		body = fmt.Sprintf("You have %d fresh credits to create paper art today.", entry.CreditsRemaining)
	case change == credits.ChangeDeducted && entry.CreditsRemaining < m.ledger.Cost():
		title = "Daily credits used up"
		body = fmt.Sprintf("Your credits reset in %s.", m.ledger.Countdown())
	default:
		return
	}

	if err := m.notify(title, body); err != nil {
		logger.Debug("desktop notification failed", "error", err)
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	select {
	case m.eventChan <- event:
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	if m.closed {
		close(ch)
	} else {
		m.subscribers = append(m.subscribers, ch)
	}
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Config returns the configuration the manager was built from.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Ledger returns the credit ledger.
func (m *Manager) Ledger() *credits.Ledger {
	return m.ledger
}

// Local returns the local store.
func (m *Manager) Local() *storage.Local {
	return m.local
}

// Validator returns the email validator.
func (m *Manager) Validator() *emailcheck.Validator {
	return m.validator
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// StorePath describes where local data lives.
func (m *Manager) StorePath() string {
	if m.fileStore != nil {
		return m.fileStore.Path()
	}
	return m.database.Path() + " (kv)"
}

// ErrGenerationInProgress is returned when Generate is called while a
// previous generation is still running.
var ErrGenerationInProgress = errors.New("a generation is already running")

// Generate runs the generation workflow for the signed-in user. Progress is
// broadcast as GenerationProgressEvent.
func (m *Manager) Generate(ctx context.Context, img generation.Image, prefs models.UserPreferences) (*generation.Result, error) {
	m.mu.Lock()
	if m.generating {
		m.mu.Unlock()
		return nil, ErrGenerationInProgress
	}
	m.generating = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.generating = false
		m.mu.Unlock()
	}()

	req := generation.Request{
		Image:     img,
		Intensity: prefs.StyleIntensity,
		Ratio:     prefs.AspectRatio,
	}
	if sess, ok := m.local.Session(); ok {
		req.Email = sess.Email
		req.UserID = sess.ID
	}

	res, err := m.workflow.Run(ctx, req, func(percent int, label string) {
		m.broadcast(GenerationProgressEvent{Percent: percent, Label: label})
	})
	if err != nil {
		if !errors.Is(err, generation.ErrNoCredits) && !errors.Is(err, generation.ErrNoImage) {
			logger.Error("generation failed", "error", err)
		}
		return nil, err
	}

	logger.Info("generation succeeded", "id", res.Item.ID, "duration", res.Duration)
	m.broadcast(HistoryChangedEvent{History: m.local.History()})
	return res, nil
}

// Download saves imageURL under the configured download directory.
func (m *Manager) Download(ctx context.Context, imageURL string, index int) (string, error) {
	return generation.Download(ctx, m.httpClient, imageURL, m.cfg.DownloadDir, index)
}

// Share copies imageURL to the clipboard.
func (m *Manager) Share(imageURL string) error {
	return generation.Share(imageURL)
}

// Preferences returns the saved generator settings.
func (m *Manager) Preferences() models.UserPreferences {
	return m.local.Preferences()
}

// SavePreferences persists the generator settings.
func (m *Manager) SavePreferences(prefs models.UserPreferences) bool {
	prefs.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return m.local.SetPreferences(prefs)
}

// History returns the image history, newest first.
func (m *Manager) History() []models.ImageHistoryItem {
	return m.local.History()
}

// ClearHistory removes the image history.
func (m *Manager) ClearHistory() bool {
	ok := m.local.ClearHistory()
	m.broadcast(HistoryChangedEvent{History: m.local.History()})
	return ok
}

// Landing returns the saved history cursor.
func (m *Manager) Landing() (models.LandingPageState, bool) {
	return m.local.Landing()
}

// SaveLanding remembers the history cursor.
func (m *Manager) SaveLanding(index int) bool {
	return m.local.SetLanding(models.LandingPageState{
		CurrentIndex: index,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
}

// Session returns the signed-in user, if any.
func (m *Manager) Session() (models.UserSession, bool) {
	return m.local.Session()
}

// SignIn validates email and records a local session when it is allowed.
// A rejected address is reported through the result, never as an error.
func (m *Manager) SignIn(email string) (emailcheck.Result, *models.UserSession) {
	email = strings.TrimSpace(email)
	result := m.validator.Validate(email)
	if !result.IsAllowed {
		logger.Info("sign-in rejected", "provider", result.Provider, "kind", int(result.Kind))
		return result, nil
	}

	sess := models.UserSession{
		ID:       uuid.NewString(),
		Email:    strings.ToLower(email),
		Provider: emailcheck.DisplayName(email),
		SignedIn: time.Now().UTC().Format(time.RFC3339),
	}
	if !m.local.SetSession(sess) {
		logger.Warn("session not persisted, continuing in memory")
	}

	logger.Info("signed in", "provider", sess.Provider)
	m.broadcast(SessionChangedEvent{Session: &sess})
	return result, &sess
}

// SignOut forgets the local session.
func (m *Manager) SignOut() {
	m.local.ClearSession()
	m.broadcast(SessionChangedEvent{})
}

// StorageInfo reports local storage usage.
func (m *Manager) StorageInfo() storage.StorageInfo {
	return m.local.Info()
}

// ExportUserData writes every stored entry to a JSON file in the data
// directory and returns its path.
func (m *Manager) ExportUserData() (string, error) {
	data, err := m.local.ExportJSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode export: %w", err)
	}

	path := filepath.Join(m.cfg.DataDir, fmt.Sprintf("paperart-export-%s.json", time.Now().Format("20060102-150405")))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}

	logger.Info("user data exported", "path", path)
	return path, nil
}

// ClearUserData deletes history, session and credits, then starts a fresh
// credit entry for today.
func (m *Manager) ClearUserData() {
	m.local.ClearUserData()
	m.afterReset()
}

// FactoryReset deletes everything in the local store.
func (m *Manager) FactoryReset() bool {
	ok := m.local.FactoryReset()
	m.afterReset()
	return ok
}

func (m *Manager) afterReset() {
	m.ledger.Load()
	m.broadcast(HistoryChangedEvent{History: m.local.History()})
	m.broadcast(SessionChangedEvent{})
	m.broadcast(CreditsChangedEvent{Entry: m.ledger.Entry(), Change: credits.ChangeExternal})
}

// GenerationStats returns the aggregated generation log.
func (m *Manager) GenerationStats() (*models.GenerationStats, error) {
	return m.database.GenerationStats()
}

// DailyGenerations returns per-day generation counts for the last days days.
func (m *Manager) DailyGenerations(days int) ([]models.DailyGenerationCount, error) {
	return m.database.DailyGenerationCounts(days)
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	close(m.stopChan)
	m.cancel()
	m.creditSub.Unsubscribe()

	var errs []error

	if m.fileStore != nil {
		if err := m.fileStore.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// InitialState returns the state the TUI needs on start.
func (m *Manager) InitialState() (models.CreditEntry, []models.ImageHistoryItem, *models.UserSession) {
	var sess *models.UserSession
	if s, ok := m.local.Session(); ok {
		sess = &s
	}
	return m.ledger.Entry(), m.local.History(), sess
}
