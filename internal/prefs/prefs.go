package prefs

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// KeyViewMode stores the preferred events view on the site.
const KeyViewMode = "events-view-mode"

// ViewModes lists the accepted values for KeyViewMode.
var ViewModes = []string{"list", "grid", "calendar"}

// ValidViewMode reports whether v is an accepted view mode.
func ValidViewMode(v string) bool {
	for _, m := range ViewModes {
		if m == v {
			return true
		}
	}
	return false
}

// Store is a small injected key/value preference store, so UI state never
// lives in a global and tests can swap in a memory implementation.
type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(key string) (string, bool)
	// Set stores the value.
	Set(key, value string) error
}

// FileStore persists preferences as a flat JSON object on disk.
type FileStore struct {
	path string

	mu     sync.Mutex
	loaded bool
	values map[string]string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// load reads the backing file once. A missing file is an empty store; a
// corrupt file is treated the same and will be rewritten on the next Set.
func (f *FileStore) load() {
	if f.loaded {
		return
	}
	f.loaded = true
	f.values = make(map[string]string)

	data, err := os.ReadFile(f.path)
	if err != nil {
		return
	}
	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return
	}
	f.values = values
}

func (f *FileStore) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.load()

	v, ok := f.values[key]
	return v, ok
}

func (f *FileStore) Set(key, value string) error {
	if key == "" {
		return errors.New("prefs key is empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.load()

	f.values[key] = value

	data, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
