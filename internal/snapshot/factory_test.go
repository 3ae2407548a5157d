package snapshot

import (
	"path/filepath"
	"testing"

	"photosort/internal/config"
)

func TestNewStoreFromConfig(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		got, err := NewStoreFromConfig(config.SnapshotConfig{})
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		if got != nil {
			t.Errorf("NewStoreFromConfig() = %T, want nil", got)
		}
	})

	t.Run("memory", func(t *testing.T) {
		got, err := NewStoreFromConfig(config.SnapshotConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		if _, ok := got.(*MemoryStore); !ok {
			t.Errorf("NewStoreFromConfig() = %T, want *MemoryStore", got)
		}
	})

	t.Run("filesystem", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "snaps")
		got, err := NewStoreFromConfig(config.SnapshotConfig{Type: "filesystem", Root: root})
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		if err := got.ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})

	t.Run("filesystem without root", func(t *testing.T) {
		if _, err := NewStoreFromConfig(config.SnapshotConfig{Type: "filesystem"}); err == nil {
			t.Error("NewStoreFromConfig() expected error")
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := NewStoreFromConfig(config.SnapshotConfig{Type: "s3"}); err == nil {
			t.Error("NewStoreFromConfig() expected error")
		}
	})
}
