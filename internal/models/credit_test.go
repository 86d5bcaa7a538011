package models

import (
	"testing"
	"time"
)

func TestDayKey(t *testing.T) {
	day := time.Date(2026, time.October, 4, 23, 59, 0, 0, time.Local)
	if got := DayKey(day); got != "Sun Oct 04 2026" {
		t.Errorf("DayKey() = %q, want %q", got, "Sun Oct 04 2026")
	}
}

func TestFreshCreditEntry(t *testing.T) {
	now := time.Date(2026, time.October, 14, 9, 0, 0, 0, time.Local)
	entry := FreshCreditEntry(now, 10)

	if entry.CreditsUsed != 0 || entry.CreditsRemaining != 10 {
		t.Errorf("FreshCreditEntry() = %+v, want 0 used / 10 remaining", entry)
	}
	if entry.Date != DayKey(now) {
		t.Errorf("Date = %q, want %q", entry.Date, DayKey(now))
	}
	if entry.State() != CreditsFresh {
		t.Errorf("State() = %v, want Fresh", entry.State())
	}
}

func TestCreditEntry_State(t *testing.T) {
	tests := []struct {
		name  string
		entry CreditEntry
		want  CreditState
	}{
		{"Fresh", CreditEntry{CreditsUsed: 0, CreditsRemaining: 10}, CreditsFresh},
		{"Partial", CreditEntry{CreditsUsed: 3, CreditsRemaining: 7}, CreditsPartiallyUsed},
		{"Exhausted", CreditEntry{CreditsUsed: 10, CreditsRemaining: 0}, CreditsExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.State(); got != tt.want {
				t.Errorf("State() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreditEntry_StateFor(t *testing.T) {
	tests := []struct {
		name  string
		entry CreditEntry
		cost  int
		want  CreditState
	}{
		{"FreshCostTwo", CreditEntry{CreditsUsed: 0, CreditsRemaining: 10}, 2, CreditsFresh},
		{"PartialCostTwo", CreditEntry{CreditsUsed: 4, CreditsRemaining: 6}, 2, CreditsPartiallyUsed},
		{"ExactCost", CreditEntry{CreditsUsed: 8, CreditsRemaining: 2}, 2, CreditsPartiallyUsed},
		{"BelowCost", CreditEntry{CreditsUsed: 4, CreditsRemaining: 1}, 2, CreditsExhausted},
		{"LimitBelowCost", CreditEntry{CreditsUsed: 0, CreditsRemaining: 1}, 3, CreditsExhausted},
		{"ZeroCostIsOne", CreditEntry{CreditsUsed: 9, CreditsRemaining: 1}, 0, CreditsPartiallyUsed},
		{"ZeroCostExhausted", CreditEntry{CreditsUsed: 10, CreditsRemaining: 0}, 0, CreditsExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.StateFor(tt.cost); got != tt.want {
				t.Errorf("StateFor(%d) = %v, want %v", tt.cost, got, tt.want)
			}
		})
	}
}

func TestCreditEntry_UsedPercent(t *testing.T) {
	entry := CreditEntry{CreditsUsed: 4, CreditsRemaining: 6}
	if got := entry.UsedPercent(); got != 40 {
		t.Errorf("UsedPercent() = %v, want 40", got)
	}
	if got := (CreditEntry{}).UsedPercent(); got != 0 {
		t.Errorf("UsedPercent() on empty entry = %v, want 0", got)
	}
}

func TestCountdown(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-5 * time.Second, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{23*time.Hour + 59*time.Minute + 59*time.Second + 900*time.Millisecond, "23:59:59"},
	}

	for _, tt := range tests {
		if got := NewCountdown(tt.d).String(); got != tt.want {
			t.Errorf("NewCountdown(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
