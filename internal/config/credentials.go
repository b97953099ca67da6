package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/diogo/leety/internal/models"
)

// KeyringService is the service name used in the OS keyring
const KeyringService = "leety"

// CredentialStore persists the API key under models.CredentialName.
// Writes are last-writer-wins; nothing guards concurrent writers.
type CredentialStore interface {
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, apiKey string) error
	Clear(ctx context.Context) error
}

// NewCredentialStore returns the store selected by cfg.Credentials.Backend
func NewCredentialStore(cfg Config) (CredentialStore, error) {
	switch cfg.Credentials.Backend {
	case "keyring":
		return NewKeyringCredentialStore(KeyringService), nil
	case "file", "":
		path, err := GetCredentialsPath()
		if err != nil {
			return nil, err
		}
		return NewFileCredentialStore(path), nil
	default:
		return nil, fmt.Errorf("unknown credentials backend: %s", cfg.Credentials.Backend)
	}
}

// FileCredentialStore keeps credentials in a 0o600 JSON object keyed by name
type FileCredentialStore struct {
	path string
	mu   sync.Mutex
}

// NewFileCredentialStore creates a store backed by path
func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

// Path returns the backing file
func (s *FileCredentialStore) Path() string {
	return s.path
}

func (s *FileCredentialStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return entries, nil
}

func (s *FileCredentialStore) store(entries map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*.json")
	if err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to chmod credentials file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace credentials file: %w", err)
	}
	return nil
}

// Get returns the stored key and whether one exists
func (s *FileCredentialStore) Get(_ context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", false, err
	}
	key, ok := entries[models.CredentialName]
	if !ok || key == "" {
		return "", false, nil
	}
	return key, true, nil
}

// Set overwrites the stored key
func (s *FileCredentialStore) Set(_ context.Context, apiKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		// An unreadable file is replaced rather than blocking the save
		entries = map[string]string{}
	}
	entries[models.CredentialName] = apiKey
	return s.store(entries)
}

// Clear removes the stored key
func (s *FileCredentialStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := entries[models.CredentialName]; !ok {
		return nil
	}
	delete(entries, models.CredentialName)
	return s.store(entries)
}

// KeyringCredentialStore keeps the key in the OS keyring
type KeyringCredentialStore struct {
	service string
}

// NewKeyringCredentialStore creates a keyring-backed store for service
func NewKeyringCredentialStore(service string) *KeyringCredentialStore {
	return &KeyringCredentialStore{service: service}
}

// Get returns the stored key and whether one exists
func (s *KeyringCredentialStore) Get(_ context.Context) (string, bool, error) {
	key, err := keyring.Get(s.service, models.CredentialName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read keyring: %w", err)
	}
	return key, key != "", nil
}

// Set overwrites the stored key
func (s *KeyringCredentialStore) Set(_ context.Context, apiKey string) error {
	if err := keyring.Set(s.service, models.CredentialName, apiKey); err != nil {
		return fmt.Errorf("failed to write keyring: %w", err)
	}
	return nil
}

// Clear removes the stored key
func (s *KeyringCredentialStore) Clear(_ context.Context) error {
	if err := keyring.Delete(s.service, models.CredentialName); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete keyring entry: %w", err)
	}
	return nil
}

// MemoryCredentialStore is an in-process store, used by tests and `leety ask --api-key`
type MemoryCredentialStore struct {
	mu  sync.RWMutex
	key string
}

// NewMemoryCredentialStore creates a store seeded with apiKey (may be empty)
func NewMemoryCredentialStore(apiKey string) *MemoryCredentialStore {
	return &MemoryCredentialStore{key: apiKey}
}

// Get returns the stored key and whether one exists
func (s *MemoryCredentialStore) Get(_ context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key, s.key != "", nil
}

// Set overwrites the stored key
func (s *MemoryCredentialStore) Set(_ context.Context, apiKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = apiKey
	return nil
}

// Clear removes the stored key
func (s *MemoryCredentialStore) Clear(_ context.Context) error {
	return s.Set(context.Background(), "")
}
