package testutil

import (
	"fmt"
	"io/fs"
	"path"
	"slices"

	"time"

	"photosort/internal/photosort"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Size        int64
	ModTime     time.Time
	IsDirectory bool
}

// MockFilesystemManager is an in-memory source tree for testing. Paths are
// absolute and "/" separated.
type MockFilesystemManager struct {
	files      map[string]*MockFile
	unreadable map[string]bool
	unstatable map[string]bool
	driveUUID  string
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:      make(map[string]*MockFile),
		unreadable: make(map[string]bool),
		unstatable: make(map[string]bool),
		driveUUID:  "mock-drive-uuid",
	}
}

// AddFile adds a file and any missing parent directories.
func (m *MockFilesystemManager) AddFile(p string, size int64, modTime time.Time) {
	m.addParents(p)
	m.files[p] = &MockFile{Size: size, ModTime: modTime}
}

// AddDirectory adds a directory and any missing parents.
func (m *MockFilesystemManager) AddDirectory(p string) {
	m.addParents(p)
	m.files[p] = &MockFile{IsDirectory: true}
}

// SetUnreadable makes WalkDirectories report an error for directory p.
func (m *MockFilesystemManager) SetUnreadable(p string) {
	m.unreadable[p] = true
}

// SetUnstatable makes WalkDirectories report file p as a per-file error
// instead of listing it.
func (m *MockFilesystemManager) SetUnstatable(p string) {
	m.unstatable[p] = true
}

func (m *MockFilesystemManager) addParents(p string) {
	for dir := path.Dir(p); dir != "/" && dir != "."; dir = path.Dir(dir) {
		if _, ok := m.files[dir]; !ok {
			m.files[dir] = &MockFile{IsDirectory: true}
		}
	}
}

func (m *MockFilesystemManager) Resolve(rawPath string) (*photosort.Path, error) {
	p := path.Clean(rawPath)
	file, ok := m.files[p]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", p)
	}
	info := &mockFileInfo{name: path.Base(p), size: file.Size, modTime: file.ModTime, isDir: file.IsDirectory}
	return photosort.NewPath(p, info), nil
}

func (m *MockFilesystemManager) WalkDirectories(root *photosort.Path, fn func(*photosort.DirectoryBatch) error) error {
	return m.walk(root.String(), "", fn)
}

func (m *MockFilesystemManager) walk(abs, rel string, fn func(*photosort.DirectoryBatch) error) error {
	if m.unreadable[abs] {
		return fn(&photosort.DirectoryBatch{Path: rel, Err: fmt.Errorf("permission denied: %s", abs)})
	}

	var names, dirs []string
	for p, f := range m.files {
		if path.Dir(p) != abs || p == abs {
			continue
		}
		if f.IsDirectory {
			dirs = append(dirs, path.Base(p))
		} else {
			names = append(names, path.Base(p))
		}
	}
	slices.Sort(names)
	slices.Sort(dirs)

	batch := &photosort.DirectoryBatch{Path: rel}
	for _, name := range names {
		full := path.Join(abs, name)
		if m.unstatable[full] {
			batch.FileErrors = append(batch.FileErrors, fmt.Errorf("stat %s: permission denied", full))
			continue
		}
		f := m.files[full]
		mtime := float64(f.ModTime.UnixNano()) / 1e9
		batch.Files = append(batch.Files, &photosort.FileEntry{
			Name:     name,
			Size:     f.Size,
			Modified: mtime,
			Changed:  mtime,
			Accessed: mtime,
		})
	}
	if err := fn(batch); err != nil {
		return err
	}

	for _, d := range dirs {
		childRel := d
		if rel != "" {
			childRel = rel + "/" + d
		}
		if err := m.walk(path.Join(abs, d), childRel, fn); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockFilesystemManager) DriveUUID(root *photosort.Path) string {
	return m.driveUUID
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return nil }

func (m *mockFileInfo) Mode() fs.FileMode {
	if m.isDir {
		return fs.ModeDir | 0755
	}
	return 0644
}

// Compile-time check
var _ photosort.FilesystemManager = (*MockFilesystemManager)(nil)

