// ABOUTME: Persistence adapters for the session record
// ABOUTME: FileStore keeps auth-storage.json in the XDG config dir; MemoryStore is for tests

package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/GasyCoder/blog-web-nextjs/internal/models"
)

// StorageName is the fixed key the session record is persisted under
const StorageName = "auth-storage"

// Record is the persisted form of a session
type Record struct {
	User          *models.User `json:"user"`
	Token         string       `json:"token"`
	Authenticated bool         `json:"authenticated"`
}

// Store loads and saves the session record. Implementations hold no
// session logic of their own.
type Store interface {
	Load() (Record, error)
	Save(Record) error
	Clear() error
}

// FileStore persists the record as JSON under a config directory
type FileStore struct {
	configDir string
}

// NewFileStore creates a FileStore rooted at configDir
func NewFileStore(configDir string) *FileStore {
	return &FileStore{configDir: configDir}
}

// Path returns the location of the session file
func (s *FileStore) Path() string {
	return filepath.Join(s.configDir, StorageName+".json")
}

// Load reads the record from disk. A missing or corrupt file yields an
// empty record.
func (s *FileStore) Load() (Record, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		// Invalid JSON, start fresh
		return Record{}, nil
	}
	return rec, nil
}

// Save writes the record to disk, readable only by the owner
func (s *FileStore) Save(rec Record) error {
	if err := os.MkdirAll(s.configDir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path())
}

// Clear removes the session file
func (s *FileStore) Clear() error {
	err := os.Remove(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryStore keeps the record in memory
type MemoryStore struct {
	mu  sync.Mutex
	rec Record

	// LoadErr and SaveErr, when set, are returned by Load and Save
	LoadErr error
	SaveErr error
}

// NewMemoryStore creates a MemoryStore seeded with rec
func NewMemoryStore(rec Record) *MemoryStore {
	return &MemoryStore{rec: rec}
}

func (m *MemoryStore) Load() (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return Record{}, m.LoadErr
	}
	return m.rec, nil
}

func (m *MemoryStore) Save(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.rec = rec
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = Record{}
	return nil
}
