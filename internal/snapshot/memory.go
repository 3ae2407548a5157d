package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"sync"

	"photosort/internal/photosort"
)

type memorySnapshot struct {
	data      []byte
	encrypted bool
}

// MemoryStore keeps snapshots in memory. Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[int64]memorySnapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[int64]memorySnapshot)}
}

func (m *MemoryStore) Put(version int64, encrypted bool, r io.Reader, size int64) error {
	if version <= 0 {
		return fmt.Errorf("invalid snapshot version: %d", version)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[version] = memorySnapshot{data: data, encrypted: encrypted}
	return nil
}

func (m *MemoryStore) Get(version int64, w io.Writer) (*photosort.SnapshotInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.snapshots[version]
	if !ok {
		return nil, fmt.Errorf("snapshot not found: %d", version)
	}
	if _, err := io.Copy(w, bytes.NewReader(snap.data)); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}
	return &photosort.SnapshotInfo{Version: version, Size: int64(len(snap.data)), Encrypted: snap.encrypted}, nil
}

func (m *MemoryStore) List() ([]*photosort.SnapshotInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*photosort.SnapshotInfo, 0, len(m.snapshots))
	for v, snap := range m.snapshots {
		out = append(out, &photosort.SnapshotInfo{Version: v, Size: int64(len(snap.data)), Encrypted: snap.encrypted})
	}
	slices.SortFunc(out, func(a, b *photosort.SnapshotInfo) int {
		return int(a.Version - b.Version)
	})
	return out, nil
}

// ValidateSetup always succeeds for the in-memory store.
func (m *MemoryStore) ValidateSetup() error {
	return nil
}

var _ photosort.SnapshotStore = (*MemoryStore)(nil)
