package testutil

import (
	"photosort/internal/encryption"
	"photosort/internal/photosort"
	"photosort/internal/snapshot"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() photosort.Encryptor {
	return encryption.NewTestEncryptor()
}

// NewTestSnapshotStore creates a new in-memory snapshot store for testing.
func NewTestSnapshotStore() *snapshot.MemoryStore {
	return snapshot.NewMemoryStore()
}
