//go:build !linux

package fs

import (
	"io/fs"

	"photosort/internal/photosort"
)

func newFileEntry(fullPath string, info fs.FileInfo) *photosort.FileEntry {
	mtime := float64(info.ModTime().UnixNano()) / 1e9
	return &photosort.FileEntry{
		Name:     info.Name(),
		Size:     info.Size(),
		Modified: mtime,
		Changed:  mtime,
		Accessed: mtime,
	}
}
