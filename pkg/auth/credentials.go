package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// DefaultProfile is the credential name used when none is given
const DefaultProfile = "default"

// Credential is a stored Unsplash access key
type Credential struct {
	Name         string    `json:"name"`
	AccessKey    string    `json:"access_key"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving credentials
type CredentialStore interface {
	// Name identifies the backend in status output
	Name() string

	// Store saves a credential under its name
	Store(cred *Credential) error

	// Retrieve gets the credential stored under name
	Retrieve(name string) (*Credential, error)

	// Delete removes the credential stored under name
	Delete(name string) error

	// Exists checks if a credential is stored under name
	Exists(name string) bool
}

// Manager tries each store in order
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a manager backed by the system keychain when it is
// usable, an encrypted file, and the environment.
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over explicit stores
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves the credential in the first store that accepts it and
// returns that store's name
func (m *Manager) Store(cred *Credential) (string, error) {
	if cred == nil || strings.TrimSpace(cred.AccessKey) == "" {
		return "", ErrInvalidCredentials
	}
	if cred.Name == "" {
		cred.Name = DefaultProfile
	}
	cred.AccessKey = strings.TrimSpace(cred.AccessKey)
	cred.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(cred)
		if err == nil {
			return store.Name(), nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return "", fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return "", ErrStoreUnavailable
}

// Retrieve gets the credential from the first store that has it
func (m *Manager) Retrieve(name string) (*Credential, string, error) {
	if name == "" {
		name = DefaultProfile
	}
	for _, store := range m.stores {
		if cred, err := store.Retrieve(name); err == nil && cred != nil {
			return cred, store.Name(), nil
		}
	}
	return nil, "", fmt.Errorf("%w: %s", ErrCredentialsNotFound, name)
}

// AccessKey returns the stored key for name, or "" when there is none
func (m *Manager) AccessKey(name string) string {
	cred, _, err := m.Retrieve(name)
	if err != nil {
		return ""
	}
	return cred.AccessKey
}

// Delete removes the credential from every store that holds it
func (m *Manager) Delete(name string) error {
	if name == "" {
		name = DefaultProfile
	}

	var deleted bool
	var lastErr error
	for _, store := range m.stores {
		if !store.Exists(name) {
			continue
		}
		if err := store.Delete(name); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrCredentialsNotFound, name)
	}
	return nil
}

// StoreNames lists the backends in lookup order
func (m *Manager) StoreNames() []string {
	names := make([]string, 0, len(m.stores))
	for _, s := range m.stores {
		names = append(names, s.Name())
	}
	return names
}

// getConfigDir returns the per-user configuration directory
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "productimg")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "productimg")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "productimg")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "productimg")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// MaskKey masks all but the first 4 and last 4 characters of a key
func MaskKey(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
