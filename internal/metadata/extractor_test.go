package metadata

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"photosort/internal/config"
)

func TestGoexifExtractor_Extract(t *testing.T) {
	dir := t.TempDir()
	notImage := filepath.Join(dir, "notes.jpg")
	if err := os.WriteFile(notImage, []byte("plain text, not a JPEG"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	missing := filepath.Join(dir, "missing.jpg")

	got, err := NewGoexifExtractor().Extract(context.Background(), []string{notImage, missing})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	for _, p := range []string{notImage, missing} {
		if m := got[p]; m == nil || m.Error == "" {
			t.Errorf("Extract()[%s] = %+v, want per-file error", filepath.Base(p), m)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewGoexifExtractor().Extract(ctx, []string{notImage}); err == nil {
		t.Error("Extract() expected error for cancelled context")
	}
}

func TestExiftoolExtractor(t *testing.T) {
	if _, err := exec.LookPath("exiftool"); err != nil {
		t.Skip("exiftool not installed")
	}

	e, err := NewExiftoolExtractor(context.Background(), "")
	if err != nil {
		t.Fatalf("NewExiftoolExtractor() error = %v", err)
	}
	if e.Version() == "exiftool " {
		t.Error("Version() is missing the tool version")
	}

	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(p, []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := e.Extract(context.Background(), []string{p})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got[p] == nil || got[p].RawJSON == "" {
		t.Errorf("Extract()[a.txt] = %+v", got[p])
	}
}

func TestNewExtractorFromConfig(t *testing.T) {
	t.Run("goexif", func(t *testing.T) {
		e, err := NewExtractorFromConfig(context.Background(), config.ExtractorConfig{Type: "goexif"})
		if err != nil {
			t.Fatalf("NewExtractorFromConfig() error = %v", err)
		}
		if e.Version() != "goexif" {
			t.Errorf("Version() = %q, want goexif", e.Version())
		}
	})

	t.Run("missing exiftool binary", func(t *testing.T) {
		cfg := config.ExtractorConfig{Type: "exiftool", ExiftoolPath: filepath.Join(t.TempDir(), "no-such-exiftool")}
		if _, err := NewExtractorFromConfig(context.Background(), cfg); err == nil {
			t.Error("NewExtractorFromConfig() expected error")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewExtractorFromConfig(context.Background(), config.ExtractorConfig{Type: "magic"}); err == nil {
			t.Error("NewExtractorFromConfig() expected error")
		}
	})
}
