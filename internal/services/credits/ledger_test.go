package credits

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/j-veylop/paperart-tui/internal/models"
)

// memStore records the persisted entry.
type memStore struct {
	mu     sync.Mutex
	entry  models.CreditEntry
	has    bool
	fail   bool
	writes int
}

func (m *memStore) Credits() (models.CreditEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entry, m.has
}

func (m *memStore) SetCredits(e models.CreditEntry) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return false
	}
	m.entry, m.has = e, true
	m.writes++
	return true
}

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func newTestLedger(t *testing.T, store *memStore, at time.Time) (*Ledger, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: at}
	l := New(store, Config{Now: clock.Now, DailyLimit: 10, Cost: 1})
	return l, clock
}

var testDay = time.Date(2026, 10, 14, 15, 30, 0, 0, time.Local)

func TestNew_FreshDay(t *testing.T) {
	store := &memStore{}
	l, _ := newTestLedger(t, store, testDay)

	if got := l.Remaining(); got != 10 {
		t.Errorf("Remaining() = %d, want 10", got)
	}
	if got := l.Used(); got != 0 {
		t.Errorf("Used() = %d, want 0", got)
	}
	if l.Entry().State() != models.CreditsFresh {
		t.Errorf("State() = %v, want Fresh", l.Entry().State())
	}

	if !store.has || store.entry.Date != "Wed Oct 14 2026" {
		t.Errorf("fresh entry not persisted: %+v", store.entry)
	}
}

func TestNew_KeepsTodayEntry(t *testing.T) {
	store := &memStore{
		entry: models.CreditEntry{Date: "Wed Oct 14 2026", CreditsUsed: 4, CreditsRemaining: 6},
		has:   true,
	}
	l, _ := newTestLedger(t, store, testDay)

	if l.Remaining() != 6 || l.Used() != 4 {
		t.Errorf("entry = %+v, want stored values", l.Entry())
	}
	if store.writes != 0 {
		t.Errorf("writes = %d, want 0 for a current entry", store.writes)
	}
}

func TestLoad_StaleDateResets(t *testing.T) {
	store := &memStore{
		entry: models.CreditEntry{Date: "Tue Oct 13 2026", CreditsUsed: 10, CreditsRemaining: 0},
		has:   true,
	}
	l, _ := newTestLedger(t, store, testDay)

	entry := l.Load()
	if entry.CreditsUsed != 0 || entry.CreditsRemaining != 10 {
		t.Errorf("Load() = %+v, want fresh", entry)
	}
	if store.entry.Date != "Wed Oct 14 2026" {
		t.Errorf("persisted date = %q", store.entry.Date)
	}
}

func TestDeduct_UntilExhausted(t *testing.T) {
	l, _ := newTestLedger(t, &memStore{}, testDay)

	for i := 0; i < 10; i++ {
		if !l.Deduct() {
			t.Fatalf("Deduct() #%d returned false", i+1)
		}
	}

	if l.Remaining() != 0 || l.Used() != 10 {
		t.Fatalf("after 10 deductions entry = %+v", l.Entry())
	}
	if l.HasCredits() {
		t.Error("HasCredits() true when exhausted")
	}
	if l.Entry().State() != models.CreditsExhausted {
		t.Errorf("State() = %v, want Exhausted", l.Entry().State())
	}

	if l.Deduct() {
		t.Error("Deduct() on exhausted ledger returned true")
	}
	if l.Remaining() != 0 {
		t.Errorf("Remaining() = %d after extra Deduct, want 0", l.Remaining())
	}
}

func TestDeduct_CostLargerThanRemaining(t *testing.T) {
	store := &memStore{}
	l := New(store, Config{Now: func() time.Time { return testDay }, DailyLimit: 5, Cost: 2})

	l.Deduct()
	l.Deduct()
	if l.Remaining() != 1 {
		t.Fatalf("Remaining() = %d, want 1", l.Remaining())
	}
	if l.Deduct() {
		t.Error("Deduct() with 1 left and cost 2 returned true")
	}
	if e := l.Entry(); e.CreditsUsed+e.CreditsRemaining != 5 {
		t.Errorf("used+remaining = %d, want 5", e.CreditsUsed+e.CreditsRemaining)
	}
}

func TestDeduct_PersistFailureKeepsMemory(t *testing.T) {
	store := &memStore{}
	l, _ := newTestLedger(t, store, testDay)
	store.fail = true

	if !l.Deduct() {
		t.Fatal("Deduct() returned false")
	}
	if l.Remaining() != 9 {
		t.Errorf("Remaining() = %d, want 9", l.Remaining())
	}
	if store.entry.CreditsRemaining != 10 {
		t.Errorf("store changed despite failure: %+v", store.entry)
	}
}

func TestReload_KeepsUnsavedDeductions(t *testing.T) {
	store := &memStore{}
	l, _ := newTestLedger(t, store, testDay)
	store.fail = true

	l.Deduct()
	l.Deduct()

	if e := l.Reload(); e.CreditsUsed != 2 || e.CreditsRemaining != 8 {
		t.Fatalf("Reload() = %+v, want used=2 remaining=8", e)
	}

	store.mu.Lock()
	store.fail = false
	store.mu.Unlock()

	if e := l.Reload(); e.CreditsUsed != 2 {
		t.Fatalf("Reload() after recovery = %+v, want used=2", e)
	}
	if store.entry.CreditsUsed != 2 || store.entry.CreditsRemaining != 8 {
		t.Errorf("store = %+v, want the unsaved entry written back", store.entry)
	}
}

func TestReload_AfterFailedSave(t *testing.T) {
	tests := []struct {
		name       string
		storedUsed int
		wantUsed   int
	}{
		{"StoreBehind", 0, 1},
		{"StoreEqual", 1, 1},
		{"StoreAhead", 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			l, _ := newTestLedger(t, store, testDay)
			store.fail = true
			l.Deduct()

			store.mu.Lock()
			store.fail = false
			store.entry.CreditsUsed = tt.storedUsed
			store.entry.CreditsRemaining = 10 - tt.storedUsed
			store.mu.Unlock()

			if got := l.Reload().CreditsUsed; got != tt.wantUsed {
				t.Errorf("Reload().CreditsUsed = %d, want %d", got, tt.wantUsed)
			}
			if store.entry.CreditsUsed != tt.wantUsed {
				t.Errorf("store used = %d, want %d", store.entry.CreditsUsed, tt.wantUsed)
			}

			// Once saved, an external lower value is a normal last-write-wins.
			store.mu.Lock()
			store.entry.CreditsUsed, store.entry.CreditsRemaining = 0, 10
			store.mu.Unlock()
			if got := l.Reload().CreditsUsed; got != 0 {
				t.Errorf("Reload() after save = %d used, want 0", got)
			}
		})
	}
}

func TestSubscribe_TwoListeners(t *testing.T) {
	l, _ := newTestLedger(t, &memStore{}, testDay)

	var a, b models.CreditEntry
	l.Subscribe(func(e models.CreditEntry, _ Change) { a = e })
	l.Subscribe(func(e models.CreditEntry, _ Change) { b = e })

	l.Deduct()

	if a.CreditsRemaining != 9 || b.CreditsRemaining != 9 {
		t.Errorf("listeners saw %d and %d, want 9", a.CreditsRemaining, b.CreditsRemaining)
	}
}

func TestSubscribe_OrderAndChange(t *testing.T) {
	l, _ := newTestLedger(t, &memStore{}, testDay)

	var order []int
	var changes []Change
	l.Subscribe(func(_ models.CreditEntry, c Change) { order = append(order, 1); changes = append(changes, c) })
	l.Subscribe(func(_ models.CreditEntry, _ Change) { order = append(order, 2) })

	l.Deduct()

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
	if changes[0] != ChangeDeducted {
		t.Errorf("change = %v, want ChangeDeducted", changes[0])
	}
}

func TestUnsubscribe(t *testing.T) {
	l, _ := newTestLedger(t, &memStore{}, testDay)

	calls := 0
	sub := l.Subscribe(func(models.CreditEntry, Change) { calls++ })

	l.Deduct()
	sub.Unsubscribe()
	sub.Unsubscribe()
	l.Deduct()

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	var nilSub *Subscription
	nilSub.Unsubscribe()
}

func TestUnsubscribeDuringNotify(t *testing.T) {
	l, _ := newTestLedger(t, &memStore{}, testDay)

	var sub *Subscription
	calls := 0
	sub = l.Subscribe(func(models.CreditEntry, Change) {
		calls++
		sub.Unsubscribe()
	})

	l.Deduct()
	l.Deduct()

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestNoNotifyOnFailedDeduct(t *testing.T) {
	store := &memStore{
		entry: models.CreditEntry{Date: "Wed Oct 14 2026", CreditsUsed: 10, CreditsRemaining: 0},
		has:   true,
	}
	l, _ := newTestLedger(t, store, testDay)

	calls := 0
	l.Subscribe(func(models.CreditEntry, Change) { calls++ })
	l.Deduct()

	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestRollover_NotifiesReset(t *testing.T) {
	l, clock := newTestLedger(t, &memStore{}, testDay)
	for i := 0; i < 10; i++ {
		l.Deduct()
	}

	var got models.CreditEntry
	var change Change = -1
	l.Subscribe(func(e models.CreditEntry, c Change) { got, change = e, c })

	if l.checkRollover() {
		t.Fatal("checkRollover() true on the same day")
	}

	clock.Set(time.Date(2026, 10, 15, 0, 0, 1, 0, time.Local))
	if !l.checkRollover() {
		t.Fatal("checkRollover() false after midnight")
	}

	if change != ChangeReset {
		t.Errorf("change = %v, want ChangeReset", change)
	}
	if got.Date != "Thu Oct 15 2026" || got.CreditsRemaining != 10 || got.CreditsUsed != 0 {
		t.Errorf("entry after rollover = %+v", got)
	}
	if !l.HasCredits() {
		t.Error("HasCredits() false after rollover")
	}
}

func TestRun_RolloverInPlace(t *testing.T) {
	clock := &fakeClock{now: testDay}
	l := New(&memStore{}, Config{Now: clock.Now, DailyLimit: 3, Cost: 1, TickInterval: 10 * time.Millisecond})
	l.Deduct()

	done := make(chan models.CreditEntry, 1)
	l.Subscribe(func(e models.CreditEntry, c Change) {
		if c == ChangeReset {
			select {
			case done <- e:
			default:
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	clock.Set(testDay.AddDate(0, 0, 1))

	select {
	case e := <-done:
		if e.CreditsRemaining != 3 {
			t.Errorf("remaining after reset = %d, want 3", e.CreditsRemaining)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reset")
	}
}

func TestReload_ExternalWriter(t *testing.T) {
	store := &memStore{}
	l, _ := newTestLedger(t, store, testDay)

	var change Change = -1
	l.Subscribe(func(_ models.CreditEntry, c Change) { change = c })

	l.Reload()
	if change != -1 {
		t.Errorf("unchanged Reload notified with %v", change)
	}

	store.SetCredits(models.CreditEntry{Date: "Wed Oct 14 2026", CreditsUsed: 7, CreditsRemaining: 3})
	l.Reload()

	if change != ChangeExternal {
		t.Errorf("change = %v, want ChangeExternal", change)
	}
	if l.Remaining() != 3 {
		t.Errorf("Remaining() = %d, want 3", l.Remaining())
	}
}

func TestReload_UnreadableStore(t *testing.T) {
	store := &memStore{}
	l, _ := newTestLedger(t, store, testDay)
	l.Deduct()

	store.mu.Lock()
	store.has = false
	store.mu.Unlock()

	entry := l.Reload()
	if entry.CreditsRemaining != 10 {
		t.Errorf("Reload() with missing entry = %+v, want fresh", entry)
	}
}

func TestTimeUntilReset(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		seconds int
		display string
	}{
		{"afternoon", time.Date(2026, 10, 14, 15, 30, 0, 0, time.Local), 8*3600 + 30*60, "08:30:00"},
		{"one second before", time.Date(2026, 10, 14, 23, 59, 59, 0, time.Local), 1, "00:00:01"},
		{"just after midnight", time.Date(2026, 10, 14, 0, 0, 0, 0, time.Local), 24 * 3600, "24:00:00"},
		{"fractional second", time.Date(2026, 10, 14, 23, 59, 58, int(500*time.Millisecond), time.Local), 2, "00:00:02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLedger(t, &memStore{}, tt.now)
			if got := l.SecondsUntilReset(); got != tt.seconds {
				t.Errorf("SecondsUntilReset() = %d, want %d", got, tt.seconds)
			}
			if got := l.Countdown().String(); got != tt.display {
				t.Errorf("Countdown() = %s, want %s", got, tt.display)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	l := New(&memStore{}, Config{})

	if l.DailyLimit() != 10 || l.Cost() != 1 {
		t.Errorf("defaults = %d/%d, want 10/1", l.DailyLimit(), l.Cost())
	}
}
