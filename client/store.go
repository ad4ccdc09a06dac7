package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// persisted keys
const (
	keyAuthToken     = "auth_token"
	keyCurrentUser   = "current_user"
	keyTheme         = "theme"
	keyNotifications = "notifications"
	keyUnreadCount   = "unread_count"
)

// Store persists client state across restarts. Values are JSON encoded.
type Store interface {
	// Get decodes the value of key into v and reports whether the key exists.
	Get(key string, v interface{}) (bool, error)
	Set(key string, v interface{}) error
	Delete(keys ...string) error
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]json.RawMessage)}
}

func (s *MemoryStore) Get(key string, v interface{}) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return true, errors.Wrapf(json.Unmarshal(raw, v), "decoding %q", key)
}

func (s *MemoryStore) Set(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %q", key)
	}
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(keys ...string) error {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.data, key)
	}
	s.mu.Unlock()
	return nil
}

// FileStore keeps every key in a single JSON file, rewritten on each change.
type FileStore struct {
	mem  *MemoryStore
	path string
	mu   sync.Mutex // serializes file writes
}

func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{mem: NewMemoryStore(), path: path}

	content, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return s, nil
	case err != nil:
		return nil, errors.Wrap(err, "reading store file")
	}
	if len(content) > 0 {
		if err = json.Unmarshal(content, &s.mem.data); err != nil {
			return nil, errors.Wrap(err, "decoding store file")
		}
	}
	return s, nil
}

func (s *FileStore) Get(key string, v interface{}) (bool, error) {
	return s.mem.Get(key, v)
}

func (s *FileStore) Set(key string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mem.Set(key, v); err != nil {
		return err
	}
	return s.flush()
}

func (s *FileStore) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.mem.Delete(keys...)
	return s.flush()
}

// flush replaces the file atomically so a crash never leaves it half written.
func (s *FileStore) flush() error {
	s.mem.mu.RLock()
	content, err := json.MarshalIndent(s.mem.data, "", "  ")
	s.mem.mu.RUnlock()
	if err != nil {
		return errors.Wrap(err, "encoding store file")
	}

	dir := filepath.Dir(s.path)
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "creating store dir")
	}
	tmp, err := os.CreateTemp(dir, ".store-*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	if _, err = tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "writing temp file")
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "closing temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "replacing store file")
}
