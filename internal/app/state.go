// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/j-veylop/paperart-tui/internal/models"
	"github.com/j-veylop/paperart-tui/internal/storage"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// Progress is the state of the running generation.
type Progress struct {
	Active  bool
	Percent int
	Label   string
}

// AppState is shared between the root model and the tabs. Tabs read from it
// during View; only the root model writes.
type AppState struct {
	mu sync.RWMutex

	credits      models.CreditEntry
	creditCost   int
	countdown    models.Countdown
	history      []models.ImageHistoryItem
	session      *models.UserSession
	preferences  models.UserPreferences
	landingIndex int
	storageInfo  storage.StorageInfo
	progress     Progress
	lastResult   *models.ImageHistoryItem
	initialized  bool

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewAppState returns an empty state with default preferences.
func NewAppState() *AppState {
	return &AppState{
		history:       make([]models.ImageHistoryItem, 0),
		preferences:   models.DefaultPreferences(),
		notifications: make([]Notification, 0),
	}
}

// Load replaces the persisted parts of the state in one step.
func (s *AppState) Load(msg InitialLoadMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.credits = msg.Credits
	s.creditCost = msg.CreditCost
	s.countdown = msg.Countdown
	s.history = cloneHistory(msg.History)
	s.session = cloneSession(msg.Session)
	s.preferences = msg.Preferences
	s.landingIndex = msg.LandingIndex
	s.storageInfo = msg.Storage
	s.initialized = true
	s.LastUpdated = time.Now()
}

// IsInitialized reports whether the first load has completed.
func (s *AppState) IsInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// SetCredits updates the credit entry.
func (s *AppState) SetCredits(entry models.CreditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credits = entry
	s.LastUpdated = time.Now()
}

// GetCredits returns the credit entry.
func (s *AppState) GetCredits() models.CreditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credits
}

// GetCreditCost returns the credits one generation costs, at least one.
func (s *AppState) GetCreditCost() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return max(s.creditCost, 1)
}

// GetCreditState classifies the credit entry against the generation cost.
func (s *AppState) GetCreditState() models.CreditState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credits.StateFor(s.creditCost)
}

// SetCountdown updates the time until the next reset.
func (s *AppState) SetCountdown(c models.Countdown) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countdown = c
}

// GetCountdown returns the time until the next reset.
func (s *AppState) GetCountdown() models.Countdown {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countdown
}

// SetHistory replaces the image history.
func (s *AppState) SetHistory(history []models.ImageHistoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = cloneHistory(history)
	s.LastUpdated = time.Now()
}

// GetHistory returns a copy of the image history, newest first.
func (s *AppState) GetHistory() []models.ImageHistoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneHistory(s.history)
}

// HistoryCount returns the number of history items.
func (s *AppState) HistoryCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// SetSession updates the signed-in user. nil signs out.
func (s *AppState) SetSession(sess *models.UserSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = cloneSession(sess)
}

// GetSession returns a copy of the session, or nil when signed out.
func (s *AppState) GetSession() *models.UserSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSession(s.session)
}

// IsSignedIn reports whether a user is signed in.
func (s *AppState) IsSignedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

// SetPreferences updates the generator settings.
func (s *AppState) SetPreferences(p models.UserPreferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preferences = p
}

// GetPreferences returns the generator settings.
func (s *AppState) GetPreferences() models.UserPreferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preferences
}

// SetLandingIndex updates the saved history cursor.
func (s *AppState) SetLandingIndex(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.landingIndex = i
}

// GetLandingIndex returns the saved history cursor.
func (s *AppState) GetLandingIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.landingIndex
}

// SetStorageInfo updates the storage usage summary.
func (s *AppState) SetStorageInfo(info storage.StorageInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storageInfo = info
}

// GetStorageInfo returns the storage usage summary.
func (s *AppState) GetStorageInfo() storage.StorageInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storageInfo
}

// StartGeneration marks a generation as running. It returns false when one
// is already running.
func (s *AppState) StartGeneration() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress.Active {
		return false
	}
	s.progress = Progress{Active: true}
	return true
}

// SetProgress records workflow progress for the running generation.
func (s *AppState) SetProgress(percent int, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.progress.Active {
		return
	}
	s.progress.Percent = percent
	s.progress.Label = label
}

// FinishGeneration clears the running state. result is nil on failure.
func (s *AppState) FinishGeneration(result *models.ImageHistoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = Progress{}
	if result != nil {
		item := *result
		s.lastResult = &item
	}
}

// GetProgress returns the generation progress.
func (s *AppState) GetProgress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// GetLastResult returns the image produced by the last successful
// generation in this session.
func (s *AppState) GetLastResult() *models.ImageHistoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastResult == nil {
		return nil
	}
	item := *s.lastResult
	return &item
}

// ClearLastResult forgets the last result, e.g. after the user data is wiped.
func (s *AppState) ClearLastResult() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastResult = nil
}

// AddNotification adds a new notification and returns its ID.
func (s *AppState) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := fmt.Sprintf("%s-%d", time.Now().Format("20060102150405"), s.notificationSeq)

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *AppState) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *AppState) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *AppState) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// ClearAllNotifications removes all notifications.
func (s *AppState) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *AppState) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *AppState) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

func cloneHistory(in []models.ImageHistoryItem) []models.ImageHistoryItem {
	out := make([]models.ImageHistoryItem, len(in))
	copy(out, in)
	return out
}

func cloneSession(sess *models.UserSession) *models.UserSession {
	if sess == nil {
		return nil
	}
	c := *sess
	return &c
}
