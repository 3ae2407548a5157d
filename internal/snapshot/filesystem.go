package snapshot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"photosort/internal/photosort"
)

const (
	filePrefix   = "catalog-"
	plainSuffix  = ".db"
	cipherSuffix = ".db.age"
)

// FileSystemStore keeps catalog snapshots as files in a single directory:
//
//	<root>/
//	  catalog-0000000012.db       (plaintext snapshot of operation 12)
//	  catalog-0000000013.db.age   (encrypted snapshot of operation 13)
type FileSystemStore struct {
	root string
}

// NewFileSystemStore creates a store rooted at root, creating the directory
// if needed.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileSystemStore{root: root}, nil
}

func snapshotName(version int64, encrypted bool) string {
	suffix := plainSuffix
	if encrypted {
		suffix = cipherSuffix
	}
	return fmt.Sprintf("%s%010d%s", filePrefix, version, suffix)
}

// parseSnapshotName is the inverse of snapshotName.
func parseSnapshotName(name string) (version int64, encrypted bool, ok bool) {
	if !strings.HasPrefix(name, filePrefix) {
		return 0, false, false
	}
	rest := strings.TrimPrefix(name, filePrefix)
	switch {
	case strings.HasSuffix(rest, cipherSuffix):
		rest, encrypted = strings.TrimSuffix(rest, cipherSuffix), true
	case strings.HasSuffix(rest, plainSuffix):
		rest = strings.TrimSuffix(rest, plainSuffix)
	default:
		return 0, false, false
	}
	v, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || v <= 0 {
		return 0, false, false
	}
	return v, encrypted, true
}

// Put writes the snapshot atomically. A snapshot already stored under the
// same version is replaced.
func (s *FileSystemStore) Put(version int64, encrypted bool, r io.Reader, size int64) error {
	if version <= 0 {
		return fmt.Errorf("invalid snapshot version: %d", version)
	}
	if err := s.writeFile(filepath.Join(s.root, snapshotName(version, encrypted)), r, size); err != nil {
		return err
	}
	stale := filepath.Join(s.root, snapshotName(version, !encrypted))
	if err := os.Remove(stale); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing replaced snapshot: %w", err)
	}
	return nil
}

func (s *FileSystemStore) Get(version int64, w io.Writer) (*photosort.SnapshotInfo, error) {
	for _, encrypted := range []bool{false, true} {
		f, err := os.Open(filepath.Join(s.root, snapshotName(version, encrypted)))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot: %w", err)
		}
		defer f.Close()

		n, err := io.Copy(w, f)
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot: %w", err)
		}
		return &photosort.SnapshotInfo{Version: version, Size: n, Encrypted: encrypted}, nil
	}
	return nil, fmt.Errorf("snapshot not found: %d", version)
}

func (s *FileSystemStore) List() ([]*photosort.SnapshotInfo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot directory: %w", err)
	}

	var out []*photosort.SnapshotInfo
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		version, encrypted, ok := parseSnapshotName(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		out = append(out, &photosort.SnapshotInfo{Version: version, Size: info.Size(), Encrypted: encrypted})
	}
	slices.SortFunc(out, func(a, b *photosort.SnapshotInfo) int {
		return int(a.Version - b.Version)
	})
	return out, nil
}

// ValidateSetup verifies that the snapshot directory exists.
func (s *FileSystemStore) ValidateSetup() error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("snapshot root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("snapshot root is not a directory: %s", s.root)
	}
	return nil
}

// writeFile writes r to destPath through a temp file and rename.
func (s *FileSystemStore) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	tmpFile, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true
	return nil
}

var _ photosort.SnapshotStore = (*FileSystemStore)(nil)
