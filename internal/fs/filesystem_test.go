package fs

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"photosort/internal/photosort"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
}

func collect(t *testing.T, m *OSFilesystemManager, root string) []*photosort.DirectoryBatch {
	t.Helper()
	p, err := m.Resolve(root)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	var batches []*photosort.DirectoryBatch
	err = m.WalkDirectories(p, func(b *photosort.DirectoryBatch) error {
		batches = append(batches, b)
		return nil
	})
	if err != nil {
		t.Fatalf("WalkDirectories() error = %v", err)
	}
	return batches
}

func names(b *photosort.DirectoryBatch) []string {
	var out []string
	for _, f := range b.Files {
		out = append(out, f.Name)
	}
	return out
}

func TestOSFilesystemManager_Resolve(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.jpg": "x"})
	m := NewOSFilesystemManager(nil, 0)

	t.Run("directory", func(t *testing.T) {
		p, err := m.Resolve(root)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !p.IsDir() || p.String() != root {
			t.Errorf("Resolve() = %q dir %v", p.String(), p.IsDir())
		}
	})

	t.Run("missing path", func(t *testing.T) {
		if _, err := m.Resolve(filepath.Join(root, "missing")); err == nil {
			t.Error("Resolve() expected error for missing path")
		}
	})

	t.Run("symlink", func(t *testing.T) {
		link := filepath.Join(root, "link")
		if err := os.Symlink(filepath.Join(root, "a.jpg"), link); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}
		if _, err := m.Resolve(link); err == nil {
			t.Error("Resolve() expected error for symlink")
		}
	})
}

func TestOSFilesystemManager_WalkDirectories(t *testing.T) {
	t.Run("depth first in name order", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"b.jpg":               "12345",
			"a.jpg":               "1",
			"2023/07/15/x.jpg":    "1",
			"2023/07/15/y.jpg":    "1",
			"trip/IMG_0001.JPG":   "1",
			"trip/day2/IMG_2.JPG": "1",
		})
		if err := os.MkdirAll(filepath.Join(root, "empty"), 0755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}

		batches := collect(t, NewOSFilesystemManager(nil, 0), root)

		var dirs []string
		for _, b := range batches {
			dirs = append(dirs, b.Path)
		}
		want := []string{"", "2023", "2023/07", "2023/07/15", "empty", "trip", "trip/day2"}
		if !slices.Equal(dirs, want) {
			t.Errorf("visited %q, want %q", dirs, want)
		}
		if got := names(batches[0]); !slices.Equal(got, []string{"a.jpg", "b.jpg"}) {
			t.Errorf("root files = %q", got)
		}
		if batches[0].Files[1].Size != 5 {
			t.Errorf("b.jpg size = %d, want 5", batches[0].Files[1].Size)
		}
	})

	t.Run("records stat times", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"a.jpg": "1"})
		mtime := time.Date(2019, 6, 1, 8, 0, 0, 0, time.UTC)
		if err := os.Chtimes(filepath.Join(root, "a.jpg"), mtime, mtime); err != nil {
			t.Fatalf("Chtimes() error = %v", err)
		}

		batches := collect(t, NewOSFilesystemManager(nil, 0), root)

		f := batches[0].Files[0]
		if int64(f.Modified) != mtime.Unix() {
			t.Errorf("Modified = %v, want %d", f.Modified, mtime.Unix())
		}
		if int64(f.Accessed) != mtime.Unix() {
			t.Errorf("Accessed = %v, want %d", f.Accessed, mtime.Unix())
		}
		if f.Changed == 0 {
			t.Error("Changed not set")
		}
	})

	t.Run("applies configured and root ignore patterns", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			IgnoreFileName:          "*.tmp\n@eaDir/\n",
			".DS_Store":             "x",
			"a.jpg":                 "x",
			"edit.tmp":              "x",
			"trip/b.jpg":            "x",
			"trip/@eaDir/thumb.jpg": "x",
			"trip/.DS_Store":        "x",
			"trip/nested/.git/HEAD": "x",
			"trip/nested/c.jpg":     "x",
		})

		batches := collect(t, NewOSFilesystemManager([]string{".DS_Store", ".git"}, 0), root)

		var all []string
		for _, b := range batches {
			if strings.Contains(b.Path, "@eaDir") || strings.Contains(b.Path, ".git") {
				t.Errorf("descended into ignored directory %q", b.Path)
			}
			for _, n := range names(b) {
				all = append(all, filepath.ToSlash(filepath.Join(b.Path, n)))
			}
		}
		want := []string{"a.jpg", "trip/b.jpg", "trip/nested/c.jpg"}
		if !slices.Equal(all, want) {
			t.Errorf("files = %q, want %q", all, want)
		}
	})

	t.Run("skips symlinks", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"a.jpg": "x", "sub/b.jpg": "x"})
		if err := os.Symlink(filepath.Join(root, "a.jpg"), filepath.Join(root, "link.jpg")); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}
		if err := os.Symlink(filepath.Join(root, "sub"), filepath.Join(root, "linkdir")); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}

		batches := collect(t, NewOSFilesystemManager(nil, 0), root)

		if len(batches) != 2 {
			t.Errorf("visited %d directories, want 2", len(batches))
		}
		if got := names(batches[0]); !slices.Equal(got, []string{"a.jpg"}) {
			t.Errorf("root files = %q, want [a.jpg]", got)
		}
	})

	t.Run("reports paths over the length limit", func(t *testing.T) {
		root := t.TempDir()
		long := strings.Repeat("x", 40) + ".jpg"
		writeTree(t, root, map[string]string{"a.jpg": "x", long: "x"})

		limit := len(filepath.Join(root, "a.jpg")) + 1
		batches := collect(t, NewOSFilesystemManager(nil, limit), root)

		if got := names(batches[0]); !slices.Equal(got, []string{"a.jpg"}) {
			t.Errorf("files = %q, want [a.jpg]", got)
		}
		if len(batches[0].Skipped) != 1 || filepath.Base(batches[0].Skipped[0]) != long {
			t.Errorf("Skipped = %q", batches[0].Skipped)
		}
	})

	t.Run("unreadable directory is reported and skipped", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("permissions are not enforced for root")
		}
		root := t.TempDir()
		writeTree(t, root, map[string]string{"a.jpg": "x", "locked/b.jpg": "x"})
		locked := filepath.Join(root, "locked")
		if err := os.Chmod(locked, 0000); err != nil {
			t.Fatalf("Chmod() error = %v", err)
		}
		t.Cleanup(func() { os.Chmod(locked, 0755) })

		batches := collect(t, NewOSFilesystemManager(nil, 0), root)

		if len(batches) != 2 || batches[1].Path != "locked" || batches[1].Err == nil {
			t.Errorf("locked batch = %+v", batches[len(batches)-1])
		}
	})

	t.Run("stat failure skips only that file", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"a.jpg": "x", "b.jpg": "x", "c.jpg": "x", "sub/d.jpg": "x"})
		m := NewOSFilesystemManager(nil, 0)
		m.lstat = func(name string) (os.FileInfo, error) {
			if filepath.Base(name) == "b.jpg" {
				return nil, &os.PathError{Op: "lstat", Path: name, Err: os.ErrPermission}
			}
			return os.Lstat(name)
		}

		batches := collect(t, m, root)

		if len(batches) != 2 {
			t.Fatalf("got %d batches, want 2", len(batches))
		}
		if got := names(batches[0]); !slices.Equal(got, []string{"a.jpg", "c.jpg"}) {
			t.Errorf("root files = %q, want [a.jpg c.jpg]", got)
		}
		if len(batches[0].FileErrors) != 1 || !strings.Contains(batches[0].FileErrors[0].Error(), "b.jpg") {
			t.Errorf("FileErrors = %v, want one error for b.jpg", batches[0].FileErrors)
		}
		if batches[0].Err != nil {
			t.Errorf("Err = %v, want nil", batches[0].Err)
		}
		if batches[1].Path != "sub" || !slices.Equal(names(batches[1]), []string{"d.jpg"}) {
			t.Errorf("sub batch = %q %q", batches[1].Path, names(batches[1]))
		}
	})

	t.Run("callback error stops the walk", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"a/x.jpg": "x", "b/y.jpg": "x"})
		m := NewOSFilesystemManager(nil, 0)
		p, _ := m.Resolve(root)

		visits := 0
		err := m.WalkDirectories(p, func(b *photosort.DirectoryBatch) error {
			visits++
			if b.Path == "a" {
				return os.ErrClosed
			}
			return nil
		})
		if err != os.ErrClosed {
			t.Errorf("WalkDirectories() error = %v, want %v", err, os.ErrClosed)
		}
		if visits != 2 {
			t.Errorf("visits = %d, want 2", visits)
		}
	})

	t.Run("rejects a file root", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"a.jpg": "x"})
		m := NewOSFilesystemManager(nil, 0)
		p, err := m.Resolve(filepath.Join(root, "a.jpg"))
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if err := m.WalkDirectories(p, func(*photosort.DirectoryBatch) error { return nil }); err == nil {
			t.Error("WalkDirectories() expected error for file root")
		}
	})
}

func TestOSFilesystemManager_DriveUUID(t *testing.T) {
	m := NewOSFilesystemManager(nil, 0)
	p, err := m.Resolve(t.TempDir())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	// tmpfs and overlay mounts have no UUID, so only check a value is returned.
	if got := m.DriveUUID(p); got == "" {
		t.Error("DriveUUID() returned empty string")
	}
}
