package photosort

import (
	"io/fs"
	"path/filepath"
)

// Path is a resolved scan root. FilesystemManager.Resolve creates it after
// checking that the path exists and is neither a symlink nor a special file.
type Path struct {
	abs  string
	info fs.FileInfo
}

// NewPath wraps an absolute path and the stat info it was resolved with.
func NewPath(abs string, info fs.FileInfo) *Path {
	return &Path{abs: abs, info: info}
}

func (p *Path) String() string {
	return p.abs
}

func (p *Path) IsDir() bool {
	return p.info != nil && p.info.IsDir()
}

func (p *Path) Info() fs.FileInfo {
	return p.info
}

// Join returns the absolute form of rel, a "/" separated path below p.
// The empty string is p itself.
func (p *Path) Join(rel string) string {
	if rel == "" {
		return p.abs
	}
	return filepath.Join(p.abs, filepath.FromSlash(rel))
}
