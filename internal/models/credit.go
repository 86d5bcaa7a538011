// Package models defines data structures and domain types.
package models

import (
	"fmt"
	"time"
)

// CreditEntry is the persisted daily credit ledger entry.
type CreditEntry struct {
	Date             string `json:"date"`
	CreditsUsed      int    `json:"creditsUsed"`
	CreditsRemaining int    `json:"creditsRemaining"`
}

// DayKey formats t as the calendar-day key stored in CreditEntry.Date.
// The format matches the one earlier versions wrote ("Tue Oct 14 2026").
func DayKey(t time.Time) string {
	return t.Format("Mon Jan 02 2006")
}

// FreshCreditEntry returns an unused entry for the day containing t.
func FreshCreditEntry(t time.Time, limit int) CreditEntry {
	return CreditEntry{
		Date:             DayKey(t),
		CreditsUsed:      0,
		CreditsRemaining: limit,
	}
}

// CreditState is the ledger state within a single day.
type CreditState int

const (
	// CreditsFresh means nothing has been used today.
	CreditsFresh CreditState = iota
	// CreditsPartiallyUsed means some but not all credits are used.
	CreditsPartiallyUsed
	// CreditsExhausted means another generation is unaffordable until the next reset.
	CreditsExhausted
)

// String returns the display name for a credit state.
func (s CreditState) String() string {
	switch s {
	case CreditsFresh:
		return "Fresh"
	case CreditsPartiallyUsed:
		return "Partially Used"
	case CreditsExhausted:
		return "Exhausted"
	default:
		return "Unknown"
	}
}

// State classifies the entry for a generation cost of one credit.
func (e CreditEntry) State() CreditState {
	return e.StateFor(1)
}

// StateFor classifies the entry when one generation costs cost credits. An
// entry that cannot afford another generation is exhausted even if a few
// credits are left. A cost below one counts as one.
func (e CreditEntry) StateFor(cost int) CreditState {
	cost = max(cost, 1)
	switch {
	case e.CreditsRemaining < cost:
		return CreditsExhausted
	case e.CreditsUsed == 0:
		return CreditsFresh
	default:
		return CreditsPartiallyUsed
	}
}

// Limit returns the daily limit implied by the entry.
func (e CreditEntry) Limit() int {
	return e.CreditsUsed + e.CreditsRemaining
}

// UsedPercent returns the share of the daily limit already consumed, 0-100.
func (e CreditEntry) UsedPercent() float64 {
	limit := e.Limit()
	if limit <= 0 {
		return 0
	}
	return float64(e.CreditsUsed) / float64(limit) * 100
}

// Countdown is the time left until the next credit reset.
type Countdown struct {
	Hours   int
	Minutes int
	Seconds int
}

// NewCountdown splits d into whole hours, minutes and seconds. Negative
// durations are clamped to zero.
func NewCountdown(d time.Duration) Countdown {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return Countdown{
		Hours:   total / 3600,
		Minutes: (total % 3600) / 60,
		Seconds: total % 60,
	}
}

// String renders the countdown as HH:MM:SS.
func (c Countdown) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hours, c.Minutes, c.Seconds)
}
