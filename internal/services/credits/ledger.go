// Package credits implements the daily generation credit ledger.
package credits

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/j-veylop/paperart-tui/internal/config"
	"github.com/j-veylop/paperart-tui/internal/logger"
	"github.com/j-veylop/paperart-tui/internal/models"
)

// Store persists the ledger entry. *storage.Local satisfies it.
type Store interface {
	Credits() (models.CreditEntry, bool)
	SetCredits(entry models.CreditEntry) bool
}

// Config holds configuration for the ledger.
type Config struct {
	// Now returns the current local time. Defaults to time.Now.
	Now          func() time.Time
	DailyLimit   int
	Cost         int
	TickInterval time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Now:          time.Now,
		DailyLimit:   config.DefaultDailyCreditLimit,
		Cost:         config.DefaultCreditCost,
		TickInterval: time.Second,
	}
}

// Change describes why subscribers were called.
type Change int

const (
	// ChangeDeducted follows a successful Deduct.
	ChangeDeducted Change = iota
	// ChangeReset follows a day rollover.
	ChangeReset
	// ChangeExternal follows a Reload that picked up another writer's value.
	ChangeExternal
)

// Listener receives the entry after every change.
type Listener func(entry models.CreditEntry, change Change)

// Ledger owns the persisted credit entry and the registry of listeners. It
// is safe for concurrent use.
type Ledger struct {
	store     Store
	listeners map[uint64]Listener
	entry     models.CreditEntry
	config    Config
	nextID    uint64
	mu        sync.RWMutex

	// dirty is set while the in-memory entry holds a write the store
	// rejected.
	dirty bool
}

// New creates a ledger over store and loads today's entry.
func New(store Store, cfg Config) *Ledger {
	def := DefaultConfig()
	if cfg.Now == nil {
		cfg.Now = def.Now
	}
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = def.DailyLimit
	}
	if cfg.Cost <= 0 {
		cfg.Cost = def.Cost
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}

	l := &Ledger{
		store:     store,
		listeners: make(map[uint64]Listener),
		config:    cfg,
	}

	l.mu.Lock()
	l.entry = l.readLocked()
	l.mu.Unlock()

	return l
}

// DailyLimit returns the configured number of credits per day.
func (l *Ledger) DailyLimit() int {
	return l.config.DailyLimit
}

// Cost returns the credits consumed by one generation.
func (l *Ledger) Cost() int {
	return l.config.Cost
}

// Load reads the persisted entry. A missing or unreadable entry, or one
// dated before today, is replaced by a fresh entry for today and persisted.
// While a failed save is pending, a stored entry for today with fewer credits
// used does not replace memory; the save is retried instead. Listeners are
// told when the in-memory entry changed.
func (l *Ledger) Load() models.CreditEntry {
	l.mu.Lock()
	prev := l.entry
	l.entry = l.readLocked()
	entry := l.entry
	l.mu.Unlock()

	if entry != prev {
		change := ChangeExternal
		if prev.Date != entry.Date {
			change = ChangeReset
			logger.Info("daily credits reset", "date", entry.Date, "remaining", entry.CreditsRemaining)
		}
		l.notify(entry, change)
	}

	return entry
}

// readLocked returns today's entry, creating and persisting a fresh one
// when needed (must hold lock).
func (l *Ledger) readLocked() models.CreditEntry {
	now := l.config.Now()
	today := models.DayKey(now)

	stored, ok := l.store.Credits()
	if l.dirty && l.entry.Date == today && (!ok || stored.Date != today || stored.CreditsUsed < l.entry.CreditsUsed) {
		l.persistLocked(l.entry)
		return l.entry
	}
	if ok && stored.Date == today {
		l.dirty = false
		return stored
	}

	fresh := models.FreshCreditEntry(now, l.config.DailyLimit)
	l.persistLocked(fresh)
	return fresh
}

// persistLocked writes entry and tracks whether the store is behind memory
// (must hold lock).
func (l *Ledger) persistLocked(entry models.CreditEntry) {
	if l.store.SetCredits(entry) {
		l.dirty = false
		return
	}
	l.dirty = true
	logger.Warn("credits not persisted, continuing in memory",
		"date", entry.Date, "remaining", entry.CreditsRemaining)
}

// Entry returns the current entry.
func (l *Ledger) Entry() models.CreditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.entry
}

// Remaining returns the credits left today.
func (l *Ledger) Remaining() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.entry.CreditsRemaining
}

// Used returns the credits spent today.
func (l *Ledger) Used() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.entry.CreditsUsed
}

// HasCredits reports whether one more generation is affordable.
func (l *Ledger) HasCredits() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.entry.CreditsRemaining >= l.config.Cost
}

// Deduct spends the cost of one generation. It is a no-op returning false
// when fewer credits than the cost remain, so the balance never goes
// negative. A persistence failure is logged and the in-memory entry still
// reflects the deduction.
func (l *Ledger) Deduct() bool {
	l.mu.Lock()
	if l.entry.CreditsRemaining < l.config.Cost {
		l.mu.Unlock()
		return false
	}

	l.entry.CreditsUsed += l.config.Cost
	l.entry.CreditsRemaining -= l.config.Cost
	entry := l.entry
	l.persistLocked(entry)
	l.mu.Unlock()

	logger.Debug("credit deducted", "used", entry.CreditsUsed, "remaining", entry.CreditsRemaining)
	l.notify(entry, ChangeDeducted)
	return true
}

// Reload re-reads the store after another writer changed it. The last
// write wins unless it would give back credits this session failed to
// save; listeners are told only when the value differs.
func (l *Ledger) Reload() models.CreditEntry {
	return l.Load()
}

// NextReset returns the next local midnight after the current time.
func (l *Ledger) NextReset() time.Time {
	now := l.config.Now()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}

// TimeUntilReset returns the duration until the next local midnight.
func (l *Ledger) TimeUntilReset() time.Duration {
	return l.NextReset().Sub(l.config.Now())
}

// SecondsUntilReset returns whole seconds until the next reset, rounded up.
func (l *Ledger) SecondsUntilReset() int {
	d := l.TimeUntilReset()
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}

// Countdown returns the time until reset split for display.
func (l *Ledger) Countdown() models.Countdown {
	return models.NewCountdown(time.Duration(l.SecondsUntilReset()) * time.Second)
}

// Run checks for a day rollover on every tick until ctx is done. A rollover
// reloads the entry in place and notifies listeners.
func (l *Ledger) Run(ctx context.Context) {
	ticker := time.NewTicker(l.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.checkRollover()
		}
	}
}

// checkRollover reloads when the stored day is no longer today.
func (l *Ledger) checkRollover() bool {
	l.mu.RLock()
	stale := l.entry.Date != models.DayKey(l.config.Now())
	l.mu.RUnlock()

	if !stale {
		return false
	}
	l.Load()
	return true
}

// Subscription is a registered listener. Unsubscribe is idempotent.
type Subscription struct {
	ledger *Ledger
	once   sync.Once
	id     uint64
}

// Subscribe registers fn to be called synchronously after every change.
func (l *Ledger) Subscribe(fn Listener) *Subscription {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	id := l.nextID
	l.listeners[id] = fn

	return &Subscription{ledger: l, id: id}
}

// Unsubscribe removes the listener.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.ledger.mu.Lock()
		delete(s.ledger.listeners, s.id)
		s.ledger.mu.Unlock()
	})
}

// notify calls every listener in registration order without holding the lock.
func (l *Ledger) notify(entry models.CreditEntry, change Change) {
	l.mu.RLock()
	ids := make([]uint64, 0, len(l.listeners))
	for id := range l.listeners {
		ids = append(ids, id)
	}
	l.mu.RUnlock()

	slices.Sort(ids)

	for _, id := range ids {
		l.mu.RLock()
		fn, ok := l.listeners[id]
		l.mu.RUnlock()
		if ok {
			fn(entry, change)
		}
	}
}
