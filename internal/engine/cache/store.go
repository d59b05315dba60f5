package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// entryExtension is the file extension used for cache entries.
const entryExtension = ".json"

const bytesPerMB = 1024 * 1024

// Cache errors.
var (
	ErrNotFound   = errors.New("cache entry not found")
	ErrExpired    = errors.New("cache entry expired")
	ErrInvalidKey = errors.New("cache key cannot be empty")
	ErrDisabled   = errors.New("cache is disabled")
)

// FileStore is a directory of JSON entries with TTL expiry. It is safe for
// concurrent use within one process; concurrent processes may overwrite each
// other's entries, which only costs a refetch.
type FileStore struct {
	directory string
	enabled   bool
	ttl       time.Duration
	maxBytes  int64

	mu sync.RWMutex
}

// NewFileStore opens a store in cfg.Directory, creating it if needed. A
// disabled config returns a store whose operations fail with ErrDisabled.
func NewFileStore(cfg Config) (*FileStore, error) {
	if !cfg.Enabled {
		return &FileStore{}, nil
	}
	if cfg.Directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if err := os.MkdirAll(cfg.Directory, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &FileStore{
		directory: cfg.Directory,
		enabled:   true,
		ttl:       ttl,
		maxBytes:  int64(cfg.MaxSizeMB) * bytesPerMB,
	}, nil
}

// Get returns the entry stored under key. Expired entries are removed and
// reported as ErrExpired.
func (s *FileStore) Get(key string) (*Entry, error) {
	if !s.enabled {
		return nil, ErrDisabled
	}
	if key == "" {
		return nil, ErrInvalidKey
	}

	s.mu.RLock()
	path := s.path(key)
	data, err := os.ReadFile(path)
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}
	if entry.IsExpired() {
		s.mu.Lock()
		_ = os.Remove(path)
		s.mu.Unlock()
		return nil, ErrExpired
	}
	return &entry, nil
}

// Set stores value under key. The write goes through a temporary file and a
// rename so readers never see a partial entry. When a size limit is set the
// oldest entries are evicted afterwards.
func (s *FileStore) Set(key, kind string, value any) error {
	if !s.enabled {
		return ErrDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding cache value: %w", err)
	}
	data, err := json.MarshalIndent(NewEntry(key, kind, raw, s.ttl), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming cache entry: %w", err)
	}

	if s.maxBytes > 0 {
		return s.evictLocked()
	}
	return nil
}

// Delete removes the entry under key. Missing entries are not an error.
func (s *FileStore) Delete(key string) error {
	if !s.enabled {
		return ErrDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry.
func (s *FileStore) Clear() error {
	if !s.enabled {
		return ErrDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.entryFilesLocked()
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", filepath.Base(f.path), err)
		}
	}
	return nil
}

// CleanupExpired removes expired and unreadable entries and returns how many
// were removed.
func (s *FileStore) CleanupExpired() (int, error) {
	if !s.enabled {
		return 0, ErrDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.entryFilesLocked()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, f := range files {
		data, readErr := os.ReadFile(f.path)
		if readErr != nil {
			continue
		}
		var entry Entry
		if json.Unmarshal(data, &entry) != nil || entry.IsExpired() {
			if os.Remove(f.path) == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// Stats reports the number of entries and their total size in bytes.
func (s *FileStore) Stats() (int, int64, error) {
	if !s.enabled {
		return 0, 0, ErrDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.entryFilesLocked()
	if err != nil {
		return 0, 0, err
	}
	var total int64
	for _, f := range files {
		total += f.size
	}
	return len(files), total, nil
}

// Enabled reports whether the store is active.
func (s *FileStore) Enabled() bool { return s.enabled }

// Directory returns the cache directory.
func (s *FileStore) Directory() string { return s.directory }

// TTL returns the lifetime given to new entries.
func (s *FileStore) TTL() time.Duration { return s.ttl }

type entryFile struct {
	path    string
	size    int64
	modTime time.Time
}

func (s *FileStore) entryFilesLocked() ([]entryFile, error) {
	dirEntries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("reading cache directory: %w", err)
	}
	files := make([]entryFile, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != entryExtension {
			continue
		}
		info, infoErr := de.Info()
		if infoErr != nil {
			continue
		}
		files = append(files, entryFile{
			path:    filepath.Join(s.directory, de.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}
	return files, nil
}

// evictLocked removes the oldest entries until the store fits maxBytes.
func (s *FileStore) evictLocked() error {
	files, err := s.entryFilesLocked()
	if err != nil {
		return err
	}
	var total int64
	for _, f := range files {
		total += f.size
	}
	if total <= s.maxBytes {
		return nil
	}
	sort.Slice(files, func(i, j int) bool { return files[i].modTime.Before(files[j].modTime) })
	for _, f := range files {
		if total <= s.maxBytes {
			break
		}
		if err := os.Remove(f.path); err == nil {
			total -= f.size
		}
	}
	return nil
}

// path maps a key to its file. Keys from Key are hex and need no escaping.
func (s *FileStore) path(key string) string {
	return filepath.Join(s.directory, filepath.Base(key)+entryExtension)
}
