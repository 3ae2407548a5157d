package photosort

import "database/sql"

// FilesystemManager provides the read-only view of a source tree used by the
// scanner. It abstracts file access to enable testing without touching the
// real filesystem.
type FilesystemManager interface {
	// Resolve validates a raw path and returns a Path object.
	// It resolves the path to an absolute path, stats it, and validates
	// it's a regular file or directory (not a symlink, device, etc.).
	Resolve(rawPath string) (*Path, error)

	// WalkDirectories visits root and every directory below it depth first,
	// subdirectories in name order, calling fn once per directory. Returning
	// an error from fn stops the walk.
	WalkDirectories(root *Path, fn func(batch *DirectoryBatch) error) error

	// DriveUUID returns the UUID of the block device holding root, or
	// "unknown" when it cannot be determined.
	DriveUUID(root *Path) string
}

// DirectoryBatch is the content of one directory.
type DirectoryBatch struct {
	// Path is relative to the walk root, "/" separated; "" is the root itself.
	Path  string
	Files []*FileEntry
	// Skipped lists entries left out because their path was too long.
	Skipped []string
	// FileErrors holds files that were listed but could not be stat'ed.
	// They are left out of Files; the rest of the directory is unaffected.
	FileErrors []error
	// Err is set when the directory could not be read. Files is then empty.
	Err error
}

// FileEntry is a regular file with its stat times as Unix seconds.
type FileEntry struct {
	Name     string
	Size     int64
	Modified float64
	Changed  float64
	Accessed float64
	Created  sql.NullFloat64
}
