package fs

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"

	"photosort/internal/photosort"
)

// IgnoreFileName is read from the root of every scanned tree.
const IgnoreFileName = ".photosortignore"

// DefaultMaxPathLength is used when no limit is configured.
const DefaultMaxPathLength = 4096

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
// It performs actual filesystem operations using the os package.
type OSFilesystemManager struct {
	ignore        []string
	maxPathLength int
	lstat         func(name string) (os.FileInfo, error)
}

// NewOSFilesystemManager creates a new filesystem manager that operates on
// the real filesystem. ignore holds patterns applied on top of the root's
// .photosortignore; maxPathLength limits absolute file paths (0 for the default).
func NewOSFilesystemManager(ignore []string, maxPathLength int) *OSFilesystemManager {
	if maxPathLength <= 0 {
		maxPathLength = DefaultMaxPathLength
	}
	return &OSFilesystemManager{ignore: ignore, maxPathLength: maxPathLength, lstat: os.Lstat}
}

// Resolve validates a raw path and returns a Path object.
func (m *OSFilesystemManager) Resolve(rawPath string) (*photosort.Path, error) {
	// Convert to absolute path
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	// Check for special file types we don't support
	mode := info.Mode()
	if mode&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("symlinks not supported: %s", absPath)
	}
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return photosort.NewPath(absPath, info), nil
}

// WalkDirectories visits root and its subdirectories depth first in name
// order. Symlinks and special files are never followed or reported.
func (m *OSFilesystemManager) WalkDirectories(root *photosort.Path, fn func(*photosort.DirectoryBatch) error) error {
	if !root.IsDir() {
		return fmt.Errorf("path is not a directory: %s", root.String())
	}

	filePatterns, err := ParseIgnoreFile(root.Join(IgnoreFileName))
	if err != nil {
		return err
	}
	patterns := append(append([]string{}, defaultIgnorePatterns...), m.ignore...)
	matcher := NewIgnoreMatcher(append(patterns, filePatterns...))

	return m.walk(root.String(), "", matcher, fn)
}

func (m *OSFilesystemManager) walk(abs, rel string, matcher *IgnoreMatcher, fn func(*photosort.DirectoryBatch) error) error {
	entries, err := os.ReadDir(abs)
	if err != nil {
		return fn(&photosort.DirectoryBatch{Path: rel, Err: err})
	}

	batch := &photosort.DirectoryBatch{Path: rel}
	var subdirs []string

	// os.ReadDir returns entries sorted by filename.
	for _, entry := range entries {
		entryRel := entry.Name()
		if rel != "" {
			entryRel = path.Join(rel, entry.Name())
		}
		if matcher.Match(filepath.FromSlash(entryRel), entry.IsDir()) {
			continue
		}

		full := filepath.Join(abs, entry.Name())
		switch {
		case entry.Type()&os.ModeSymlink != 0:
			continue
		case entry.IsDir():
			subdirs = append(subdirs, entry.Name())
			continue
		case !entry.Type().IsRegular():
			continue
		}

		if len(full) > m.maxPathLength {
			batch.Skipped = append(batch.Skipped, full)
			continue
		}

		info, err := m.lstat(full)
		if err != nil {
			// The file disappeared between listing and stat.
			if os.IsNotExist(err) {
				continue
			}
			batch.FileErrors = append(batch.FileErrors, fmt.Errorf("stat %s: %w", full, err))
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		batch.Files = append(batch.Files, newFileEntry(full, info))
	}

	if err := fn(batch); err != nil {
		return err
	}

	slices.Sort(subdirs)
	for _, name := range subdirs {
		childRel := name
		if rel != "" {
			childRel = path.Join(rel, name)
		}
		if err := m.walk(filepath.Join(abs, name), childRel, matcher, fn); err != nil {
			return err
		}
	}
	return nil
}

// Compile-time check that OSFilesystemManager implements photosort.FilesystemManager interface
var _ photosort.FilesystemManager = (*OSFilesystemManager)(nil)
