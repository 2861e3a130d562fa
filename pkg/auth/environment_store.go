package auth

import (
	"os"
	"time"
)

// Environment variables checked for an access key, in order
var accessKeyEnvVars = []string{"PRODUCTIMG_ACCESS_KEY", "UNSPLASH_ACCESS_KEY"}

// EnvironmentStore is a read-only store backed by environment variables
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Name() string { return "environment" }

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(cred *Credential) error {
	return ErrStoreUnavailable
}

// Retrieve returns the key from the environment under any name
func (e *EnvironmentStore) Retrieve(name string) (*Credential, error) {
	key := lookupEnvKey()
	if key == "" {
		return nil, ErrCredentialsNotFound
	}
	if name == "" {
		name = DefaultProfile
	}

	return &Credential{
		Name:         name,
		AccessKey:    key,
		LastModified: time.Now(),
	}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if an access key is set in the environment
func (e *EnvironmentStore) Exists(name string) bool {
	return lookupEnvKey() != ""
}

func lookupEnvKey() string {
	for _, v := range accessKeyEnvVars {
		if key := os.Getenv(v); key != "" {
			return key
		}
	}
	return ""
}
