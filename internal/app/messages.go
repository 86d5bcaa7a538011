package app

import (
	"time"

	"github.com/j-veylop/paperart-tui/internal/emailcheck"
	"github.com/j-veylop/paperart-tui/internal/models"
	"github.com/j-veylop/paperart-tui/internal/services"
	"github.com/j-veylop/paperart-tui/internal/services/generation"
	"github.com/j-veylop/paperart-tui/internal/storage"
)

// TickMsg is sent every second to refresh the reset countdown.
type TickMsg struct {
	Time time.Time
}

// InitialLoadMsg carries everything read from local storage on start and
// after the store was changed by another process.
type InitialLoadMsg struct {
	Credits      models.CreditEntry
	Countdown    models.Countdown
	History      []models.ImageHistoryItem
	Session      *models.UserSession
	Preferences  models.UserPreferences
	LandingIndex int
	Storage      storage.StorageInfo
	CreditCost   int
}

// StorageInfoMsg carries a refreshed storage usage summary.
type StorageInfoMsg struct {
	Info storage.StorageInfo
}

// GenerateMsg requests a paper art transformation of the image at Path.
type GenerateMsg struct {
	Path string
}

// GenerationDoneMsg is the outcome of a GenerateMsg.
type GenerationDoneMsg struct {
	Result *generation.Result
	Error  error
}

// SavePreferencesMsg persists new generator settings.
type SavePreferencesMsg struct {
	Preferences models.UserPreferences
}

// SaveLandingMsg persists the history cursor.
type SaveLandingMsg struct {
	Index int
}

// DownloadMsg requests saving a generated image to disk.
type DownloadMsg struct {
	URL   string
	Index int
}

// DownloadResultMsg contains the result of a download.
type DownloadResultMsg struct {
	Path  string
	Error error
}

// ShareMsg requests copying an image URL to the clipboard.
type ShareMsg struct {
	URL string
}

// ShareResultMsg contains the result of a clipboard copy.
type ShareResultMsg struct {
	Error error
}

// CopyToClipboardMsg requests copying text to clipboard.
type CopyToClipboardMsg struct {
	Text string
}

// ClipboardResultMsg contains the result of a clipboard operation.
type ClipboardResultMsg struct {
	Success bool
	Error   error
}

// SignInMsg requests a sign-in with the given email.
type SignInMsg struct {
	Email string
}

// SignInResultMsg contains the validation result and, on success, the new
// session.
type SignInResultMsg struct {
	Result  emailcheck.Result
	Session *models.UserSession
}

// SignOutMsg requests signing out.
type SignOutMsg struct{}

// ExportMsg requests a JSON export of all user data.
type ExportMsg struct{}

// ExportResultMsg contains the result of an export operation.
type ExportResultMsg struct {
	Path  string
	Error error
}

// ClearHistoryMsg requests removing every generated image from history.
type ClearHistoryMsg struct{}

// ClearUserDataMsg requests removing history, session and credits.
type ClearUserDataMsg struct{}

// FactoryResetMsg requests removing every stored key.
type FactoryResetMsg struct{}

// ResetDoneMsg is sent after a clear or reset; it triggers a reload.
type ResetDoneMsg struct {
	What string
	OK   bool
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
