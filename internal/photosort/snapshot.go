package photosort

import (
	"bytes"
	"fmt"
	"io"
)

// SnapshotStore keeps versioned copies of the catalog database. The version
// is the ID of the operation that produced the snapshot.
type SnapshotStore interface {
	// Put stores a snapshot. size is the number of bytes that will be read from r.
	Put(version int64, encrypted bool, r io.Reader, size int64) error

	// Get writes the snapshot with the given version to w.
	Get(version int64, w io.Writer) (*SnapshotInfo, error)

	// List returns all snapshots in ascending version order.
	List() ([]*SnapshotInfo, error)

	// ValidateSetup verifies that the store is accessible.
	ValidateSetup() error
}

// SnapshotInfo describes one stored snapshot.
type SnapshotInfo struct {
	Version   int64
	Size      int64
	Encrypted bool
}

// LatestSnapshot returns the snapshot with the highest version, or nil.
func LatestSnapshot(store SnapshotStore) (*SnapshotInfo, error) {
	all, err := store.List()
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[len(all)-1], nil
}

// RestoreSnapshot writes snapshot version (0 for the latest) to w. unlock is
// only called when the snapshot is encrypted.
func RestoreSnapshot(store SnapshotStore, version int64, w io.Writer, unlock func() (DecryptionContext, error)) (*SnapshotInfo, error) {
	if version == 0 {
		latest, err := LatestSnapshot(store)
		if err != nil {
			return nil, err
		}
		if latest == nil {
			return nil, fmt.Errorf("no snapshots stored")
		}
		version = latest.Version
	}

	var buf bytes.Buffer
	info, err := store.Get(version, &buf)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %d: %w", version, err)
	}

	if !info.Encrypted {
		if _, err := io.Copy(w, &buf); err != nil {
			return nil, fmt.Errorf("writing snapshot: %w", err)
		}
		return info, nil
	}

	if unlock == nil {
		return nil, fmt.Errorf("snapshot %d is encrypted", version)
	}
	dc, err := unlock()
	if err != nil {
		return nil, fmt.Errorf("unlocking private key: %w", err)
	}
	if err := dc.Decrypt(&buf, w); err != nil {
		return nil, fmt.Errorf("decrypting snapshot %d: %w", version, err)
	}
	return info, nil
}
