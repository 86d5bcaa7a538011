package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/paperart-tui/internal/logger"
)

const debounceInterval = 100 * time.Millisecond

// FileStore keeps every entry in a single JSON object file and watches that
// file for writes from other processes.
type FileStore struct {
	mu            sync.RWMutex
	data          map[string]string
	size          int64
	quota         int64
	filePath      string
	lastWritten   []byte
	closed        bool
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// NewFileStore opens (or creates) the store at filePath and starts watching
// it. A quota of zero or less means DefaultQuotaBytes.
func NewFileStore(filePath string, quota int64) (*FileStore, error) {
	if quota <= 0 {
		quota = DefaultQuotaBytes
	}

	s := &FileStore{
		data:      make(map[string]string),
		quota:     quota,
		filePath:  filePath,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load storage: %w", err)
		}
		if err := s.saveLocked(); err != nil {
			return nil, fmt.Errorf("failed to create storage file: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.filePath
}

// Events returns the channel of external change notifications.
func (s *FileStore) Events() <-chan Event {
	return s.eventChan
}

// Get implements Store.
func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", false, ErrClosed
	}
	v, ok := s.data[key]
	return v, ok, nil
}

// Set implements Store. The write is rejected with ErrQuotaExceeded when the
// resulting size would exceed the quota.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	newSize := s.size + entrySize(key, value)
	old, had := s.data[key]
	if had {
		newSize -= entrySize(key, old)
	}
	if newSize > s.quota {
		return fmt.Errorf("set %s: %w", key, ErrQuotaExceeded)
	}

	s.data[key] = value
	prevSize := s.size
	s.size = newSize

	if err := s.saveLocked(); err != nil {
		if had {
			s.data[key] = old
		} else {
			delete(s.data, key)
		}
		s.size = prevSize
		return err
	}
	return nil
}

// Remove implements Store. Removing a missing key is not an error.
func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	old, ok := s.data[key]
	if !ok {
		return nil
	}

	delete(s.data, key)
	s.size -= entrySize(key, old)

	if err := s.saveLocked(); err != nil {
		s.data[key] = old
		s.size += entrySize(key, old)
		return err
	}
	return nil
}

// Keys implements Store.
func (s *FileStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Clear implements Store.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	prev, prevSize := s.data, s.size
	s.data = make(map[string]string)
	s.size = 0

	if err := s.saveLocked(); err != nil {
		s.data, s.size = prev, prevSize
		return err
	}
	return nil
}

// Size implements Store.
func (s *FileStore) Size() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrClosed
	}
	return s.size, nil
}

// load reads the file into memory. Must not be called concurrently with
// other mutations.
func (s *FileStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	entries, err := parseEntries(data)
	if err != nil {
		return err
	}

	s.data = entries
	s.size = totalSize(entries)
	s.lastWritten = data
	return nil
}

func parseEntries(data []byte) (map[string]string, error) {
	entries := make(map[string]string)
	if len(bytes.TrimSpace(data)) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse storage file: %w", err)
	}
	return entries, nil
}

func totalSize(entries map[string]string) int64 {
	var n int64
	for k, v := range entries {
		n += entrySize(k, v)
	}
	return n
}

// saveLocked writes the store to disk (must hold lock).
func (s *FileStore) saveLocked() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal storage: %w", err)
	}

	// Write to temp file first, then rename
	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.lastWritten = data
	return nil
}

// startWatcher watches the directory so that rename-based writes from other
// processes are seen.
func (s *FileStore) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

func (s *FileStore) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				s.mu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
				s.mu.Unlock()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads the file after an external write. Our own writes
// are recognised by content and ignored.
func (s *FileStore) handleFileChange() {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.sendEvent(Event{Type: EventError, Error: err})
		}
		return
	}

	s.mu.Lock()
	if s.closed || bytes.Equal(data, s.lastWritten) {
		s.mu.Unlock()
		return
	}

	entries, err := parseEntries(data)
	if err != nil {
		s.mu.Unlock()
		logger.Warn("ignoring unreadable storage file", "path", s.filePath, "error", err)
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	s.data = entries
	s.size = totalSize(entries)
	s.lastWritten = data
	s.mu.Unlock()

	logger.Debug("storage file changed externally", "path", s.filePath, "keys", len(entries))
	s.sendEvent(Event{Type: EventChanged})
}

// sendEvent sends an event to the event channel non-blocking.
func (s *FileStore) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher. The store is unusable afterwards.
func (s *FileStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.mu.Unlock()

	close(s.stopChan)

	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
