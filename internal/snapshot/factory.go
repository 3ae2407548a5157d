package snapshot

import (
	"fmt"

	"photosort/internal/config"
	"photosort/internal/photosort"
)

// NewStoreFromConfig creates a SnapshotStore based on the snapshot config
// type. It returns nil without error when snapshots are disabled.
func NewStoreFromConfig(cfg config.SnapshotConfig) (photosort.SnapshotStore, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem snapshots require root to be set")
		}
		store, err := NewFileSystemStore(cfg.Root)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown snapshot type: %s", cfg.Type)
	}
}
