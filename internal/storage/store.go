// Package storage provides the local key/value store that holds credits,
// history, preferences and the session between runs.
package storage

import "errors"

// DefaultQuotaBytes is the usable capacity reported by Info.
const DefaultQuotaBytes int64 = 5 * 1024 * 1024

var (
	// ErrQuotaExceeded is returned when a write would grow the store past its quota.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("storage closed")
)

// Store is a flat string key/value store. Values are JSON documents.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	// Keys returns every stored key in sorted order.
	Keys() ([]string, error)
	Clear() error
	// Size returns the sum of len(key)+len(value) over all entries.
	Size() (int64, error)
}

// EventType defines the type of store event.
type EventType int

const (
	// EventChanged is sent when the backing file was modified by someone else.
	EventChanged EventType = iota
	// EventError is sent when watching or reloading failed.
	EventError
)

// Event is a store notification.
type Event struct {
	Type  EventType
	Error error
}

func entrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}
