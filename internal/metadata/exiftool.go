package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"photosort/internal/photosort"
)

// exiftoolArgs request JSON with group prefixes, numeric values and
// decimal-degree coordinates.
var exiftoolArgs = []string{"-json", "-struct", "-G0", "-n", "-c", "%.6f"}

// ExiftoolExtractor runs the exiftool binary once per batch.
type ExiftoolExtractor struct {
	path    string
	version string
}

// NewExiftoolExtractor locates exiftool (by name or path) and records its version.
func NewExiftoolExtractor(ctx context.Context, path string) (*ExiftoolExtractor, error) {
	if path == "" {
		path = "exiftool"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("exiftool is required but was not found (%s): install it from https://exiftool.org/install.html", path)
	}

	out, err := exec.CommandContext(ctx, resolved, "-ver").Output()
	if err != nil {
		return nil, fmt.Errorf("running exiftool -ver: %w", err)
	}
	return &ExiftoolExtractor{path: resolved, version: strings.TrimSpace(string(out))}, nil
}

func (e *ExiftoolExtractor) Version() string {
	return "exiftool " + e.version
}

// Extract runs exiftool over paths. Exit status 1 only means some files had
// no readable metadata; those are reported per file.
func (e *ExiftoolExtractor) Extract(ctx context.Context, paths []string) (map[string]*photosort.ExtractedMetadata, error) {
	if len(paths) == 0 {
		return map[string]*photosort.ExtractedMetadata{}, nil
	}

	args := append(append([]string{}, exiftoolArgs...), paths...)
	cmd := exec.CommandContext(ctx, e.path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
			return nil, fmt.Errorf("exiftool failed: %w: %s", err, strings.TrimSpace(stderr.String()))
		}
	}

	return decodeExiftoolOutput(stdout.Bytes(), paths)
}

// decodeExiftoolOutput matches exiftool's JSON records to the requested
// paths by their SourceFile tag.
func decodeExiftoolOutput(data []byte, paths []string) (map[string]*photosort.ExtractedMetadata, error) {
	var records []Tags
	if len(bytes.TrimSpace(data)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("parsing exiftool output: %w", err)
		}
	}

	bySource := make(map[string]Tags, len(records))
	for _, r := range records {
		if src, ok := r["SourceFile"].(string); ok {
			bySource[src] = r
		}
	}

	out := make(map[string]*photosort.ExtractedMetadata, len(paths))
	for _, p := range paths {
		tags, ok := bySource[p]
		if !ok {
			out[p] = &photosort.ExtractedMetadata{Error: "no output from exiftool"}
			continue
		}
		m := tags.Normalize()
		if e := tags.String("ExifTool:Error"); e != "" {
			m.Error = e
		}
		out[p] = m
	}
	return out, nil
}

var _ photosort.MetadataExtractor = (*ExiftoolExtractor)(nil)
