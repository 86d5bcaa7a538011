package storage

import (
	"encoding/json"
	"math"

	"github.com/j-veylop/paperart-tui/internal/logger"
	"github.com/j-veylop/paperart-tui/internal/models"
)

// Keys under which application state is persisted.
const (
	KeyLandingPageState = "landingPageState"
	KeyUserPreferences  = "userPreferences"
	KeyImageHistory     = "imageHistory"
	KeyCredits          = "paperArtCredits"
	KeyUserSession      = "userSession"
)

// AppKeys lists every key owned by the application.
var AppKeys = []string{
	KeyLandingPageState,
	KeyUserPreferences,
	KeyImageHistory,
	KeyCredits,
	KeyUserSession,
}

// userKeys are the personal entries removed by ClearUserData.
var userKeys = []string{
	KeyImageHistory,
	KeyUserSession,
	KeyCredits,
}

// StorageInfo summarises store usage.
type StorageInfo struct {
	Used       int64
	Total      int64
	Percentage int
}

// Local wraps a Store with JSON encoding and typed accessors. Failures are
// logged and reported as false; callers keep their in-memory state.
type Local struct {
	store Store
	total int64
}

// NewLocal returns a Local over store. total is the capacity reported by
// Info; zero or less means DefaultQuotaBytes.
func NewLocal(store Store, total int64) *Local {
	if total <= 0 {
		total = DefaultQuotaBytes
	}
	return &Local{store: store, total: total}
}

// Store returns the underlying store.
func (l *Local) Store() Store {
	return l.store
}

// GetItem decodes the value for key into v. It returns false when the key is
// absent or the stored JSON does not parse.
func (l *Local) GetItem(key string, v any) bool {
	raw, ok, err := l.store.Get(key)
	if err != nil {
		logger.Error("failed to read storage key", "key", key, "error", err)
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		logger.Warn("ignoring unparseable storage value", "key", key, "error", err)
		return false
	}
	return true
}

// SetItem encodes v as JSON and stores it under key.
func (l *Local) SetItem(key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("failed to encode storage value", "key", key, "error", err)
		return false
	}
	if err := l.store.Set(key, string(data)); err != nil {
		logger.Error("failed to write storage key", "key", key, "error", err)
		return false
	}
	return true
}

// RemoveItem deletes key.
func (l *Local) RemoveItem(key string) bool {
	if err := l.store.Remove(key); err != nil {
		logger.Error("failed to remove storage key", "key", key, "error", err)
		return false
	}
	return true
}

// ClearAppData removes every application key and leaves foreign keys alone.
func (l *Local) ClearAppData() {
	for _, key := range AppKeys {
		l.RemoveItem(key)
	}
}

// ClearUserData removes personal data (history, session and credits) and
// keeps preferences and the landing checkpoint.
func (l *Local) ClearUserData() {
	for _, key := range userKeys {
		l.RemoveItem(key)
	}
}

// FactoryReset removes everything in the store.
func (l *Local) FactoryReset() bool {
	if err := l.store.Clear(); err != nil {
		logger.Error("failed to clear storage", "error", err)
		return false
	}
	logger.Info("all local data deleted")
	return true
}

// AllUserData returns every present application entry keyed by storage key,
// for export.
func (l *Local) AllUserData() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage)
	for _, key := range AppKeys {
		var raw json.RawMessage
		if l.GetItem(key, &raw) && len(raw) > 0 && string(raw) != "null" {
			out[key] = raw
		}
	}
	return out
}

// ExportJSON renders AllUserData as indented JSON.
func (l *Local) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(l.AllUserData(), "", "  ")
}

// Info reports how much of the capacity is in use.
func (l *Local) Info() StorageInfo {
	used, err := l.store.Size()
	if err != nil {
		logger.Error("failed to calculate storage usage", "error", err)
		used = 0
	}
	return StorageInfo{
		Used:       used,
		Total:      l.total,
		Percentage: int(math.Round(float64(used) / float64(l.total) * 100)),
	}
}

// Credits returns the stored credit entry.
func (l *Local) Credits() (models.CreditEntry, bool) {
	var entry models.CreditEntry
	ok := l.GetItem(KeyCredits, &entry)
	return entry, ok
}

// SetCredits persists the credit entry.
func (l *Local) SetCredits(entry models.CreditEntry) bool {
	return l.SetItem(KeyCredits, entry)
}

// Preferences returns the stored preferences, or defaults when none are saved.
func (l *Local) Preferences() models.UserPreferences {
	prefs := models.DefaultPreferences()
	if !l.GetItem(KeyUserPreferences, &prefs) {
		return models.DefaultPreferences()
	}
	if !prefs.StyleIntensity.Valid() {
		prefs.StyleIntensity = models.IntensityModerate
	}
	if prefs.AspectRatio == "" {
		prefs.AspectRatio = models.DefaultAspectRatio
	}
	return prefs
}

// SetPreferences persists prefs.
func (l *Local) SetPreferences(prefs models.UserPreferences) bool {
	return l.SetItem(KeyUserPreferences, prefs)
}

// History returns the image history, newest first.
func (l *Local) History() []models.ImageHistoryItem {
	var items []models.ImageHistoryItem
	if !l.GetItem(KeyImageHistory, &items) {
		return []models.ImageHistoryItem{}
	}
	return items
}

// SetHistory replaces the image history.
func (l *Local) SetHistory(items []models.ImageHistoryItem) bool {
	return l.SetItem(KeyImageHistory, items)
}

// AddImage prepends item to the history.
func (l *Local) AddImage(item models.ImageHistoryItem) bool {
	items := l.History()
	updated := make([]models.ImageHistoryItem, 0, len(items)+1)
	updated = append(updated, item)
	updated = append(updated, items...)
	return l.SetHistory(updated)
}

// ClearHistory removes the image history.
func (l *Local) ClearHistory() bool {
	return l.RemoveItem(KeyImageHistory)
}

// Landing returns the saved browsing checkpoint.
func (l *Local) Landing() (models.LandingPageState, bool) {
	var state models.LandingPageState
	ok := l.GetItem(KeyLandingPageState, &state)
	return state, ok
}

// SetLanding persists the browsing checkpoint.
func (l *Local) SetLanding(state models.LandingPageState) bool {
	return l.SetItem(KeyLandingPageState, state)
}

// Session returns the remembered session.
func (l *Local) Session() (models.UserSession, bool) {
	var sess models.UserSession
	if !l.GetItem(KeyUserSession, &sess) || sess.Email == "" {
		return models.UserSession{}, false
	}
	return sess, true
}

// SetSession persists sess.
func (l *Local) SetSession(sess models.UserSession) bool {
	return l.SetItem(KeyUserSession, sess)
}

// ClearSession forgets the signed-in user.
func (l *Local) ClearSession() bool {
	return l.RemoveItem(KeyUserSession)
}
