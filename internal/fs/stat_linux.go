//go:build linux

package fs

import (
	"database/sql"
	"io/fs"
	"syscall"

	"golang.org/x/sys/unix"

	"photosort/internal/photosort"
)

func newFileEntry(fullPath string, info fs.FileInfo) *photosort.FileEntry {
	entry := &photosort.FileEntry{
		Name:     info.Name(),
		Size:     info.Size(),
		Modified: unixSeconds(info.ModTime().Unix(), int64(info.ModTime().Nanosecond())),
	}
	entry.Changed, entry.Accessed = entry.Modified, entry.Modified

	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		entry.Changed = unixSeconds(int64(stat.Ctim.Sec), int64(stat.Ctim.Nsec))
		entry.Accessed = unixSeconds(int64(stat.Atim.Sec), int64(stat.Atim.Nsec))
	}

	// Birth time is only available through statx, and not on every filesystem.
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, fullPath, unix.AT_SYMLINK_NOFOLLOW, unix.STATX_BTIME, &stx)
	if err == nil && stx.Mask&unix.STATX_BTIME != 0 {
		entry.Created = sql.NullFloat64{Float64: unixSeconds(int64(stx.Btime.Sec), int64(stx.Btime.Nsec)), Valid: true}
	}
	return entry
}

func unixSeconds(sec, nsec int64) float64 {
	return float64(sec) + float64(nsec)/1e9
}
