package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := NewConfig("/home/user/.local/share/photosort")
	original.Scanner.Ignore = []string{"*.tmp", "@eaDir"}
	original.Extractor.Type = "goexif"
	original.Planner.MaxDateSpanMonths = 6
	original.Snapshot = SnapshotConfig{Type: "filesystem", Root: "/backup/snapshots", Encrypt: true}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.Database != original.Database {
		t.Errorf("Database = %+v, want %+v", got.Database, original.Database)
	}
	if len(got.Scanner.Ignore) != 2 || got.Scanner.Ignore[1] != "@eaDir" {
		t.Errorf("Scanner.Ignore = %v, want [*.tmp @eaDir]", got.Scanner.Ignore)
	}
	if got.Extractor != original.Extractor {
		t.Errorf("Extractor = %+v, want %+v", got.Extractor, original.Extractor)
	}
	if got.Planner != original.Planner {
		t.Errorf("Planner = %+v, want %+v", got.Planner, original.Planner)
	}
	if got.Snapshot != original.Snapshot {
		t.Errorf("Snapshot = %+v, want %+v", got.Snapshot, original.Snapshot)
	}
	if got.Encryption != original.Encryption {
		t.Errorf("Encryption = %+v, want %+v", got.Encryption, original.Encryption)
	}
}

func TestManager_Read_PartialFile(t *testing.T) {
	input := `
[database]
type = "memory"

[planner]
min_coverage_threshold = 0.5
`
	m := &Manager{}
	got, err := m.Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Database.Type != "memory" {
		t.Errorf("Database.Type = %q, want %q", got.Database.Type, "memory")
	}
	if got.Planner.MinCoverageThreshold != 0.5 {
		t.Errorf("Planner.MinCoverageThreshold = %v, want 0.5", got.Planner.MinCoverageThreshold)
	}
	if got.Planner.MaxDateSpanMonths != 3 || got.Planner.MinPrevalenceThreshold != 0.80 {
		t.Errorf("Planner = %+v, want defaults for keys not in the file", got.Planner)
	}
	if got.Extractor.MinFileSize != DefaultMinFileSize {
		t.Errorf("Extractor.MinFileSize = %d, want %d", got.Extractor.MinFileSize, DefaultMinFileSize)
	}
}

func TestManager_Read_ExplicitZero(t *testing.T) {
	input := `
[extractor]
min_file_size = 0

[planner]
min_coverage_threshold = 0
min_prevalence_threshold = 0
`
	m := &Manager{}
	got, err := m.Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Planner.MinCoverageThreshold != 0 {
		t.Errorf("Planner.MinCoverageThreshold = %v, want 0", got.Planner.MinCoverageThreshold)
	}
	if got.Planner.MinPrevalenceThreshold != 0 {
		t.Errorf("Planner.MinPrevalenceThreshold = %v, want 0", got.Planner.MinPrevalenceThreshold)
	}
	if got.Planner.MaxDateSpanMonths != 3 {
		t.Errorf("Planner.MaxDateSpanMonths = %d, want 3", got.Planner.MaxDateSpanMonths)
	}
	if got.Extractor.MinFileSize != 0 {
		t.Errorf("Extractor.MinFileSize = %d, want 0", got.Extractor.MinFileSize)
	}
}

func TestManager_Read_InvalidPlanner(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "coverage above one", input: "[planner]\nmin_coverage_threshold = 1.5\n"},
		{name: "negative prevalence", input: "[planner]\nmin_prevalence_threshold = -0.1\n"},
		{name: "negative span", input: "[planner]\nmax_date_span_months = -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Manager{}
			if _, err := m.Read(strings.NewReader(tt.input)); err == nil {
				t.Error("Read() expected error for out-of-range planner setting")
			}
		})
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/photosort")

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"BaseDir", cfg.BaseDir, "/data/photosort"},
		{"LogDir", cfg.LogDir, "/data/photosort/log"},
		{"Database.DataDir", cfg.Database.DataDir, "/data/photosort/db"},
		{"Scanner.ProgressInterval", cfg.Scanner.ProgressInterval, 1000},
		{"Scanner.MaxPathLength", cfg.Scanner.MaxPathLength, 4096},
		{"Extractor.BatchSize", cfg.Extractor.BatchSize, 100},
		{"Extractor.MinFileSize", cfg.Extractor.MinFileSize, int64(10240)},
		{"Planner.MinCoverageThreshold", cfg.Planner.MinCoverageThreshold, 0.30},
		{"Planner.MinPrevalenceThreshold", cfg.Planner.MinPrevalenceThreshold, 0.80},
		{"Planner.MaxDateSpanMonths", cfg.Planner.MaxDateSpanMonths, 3},
		{"Snapshot.Root", cfg.Snapshot.Root, "/data/photosort/snapshots"},
		{"Encryption.PublicKeyPath", cfg.Encryption.PublicKeyPath, "/data/photosort/keys/photosort.pub"},
		{"Encryption.PrivateKeyPath", cfg.Encryption.PrivateKeyPath, "/data/photosort/keys/photosort.key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "photosort.toml")

		if err := Init(path, NewConfig(dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "photosort.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "photosort.toml")
		cfg := NewConfig(dir)
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Database.Type != "memory" {
			t.Errorf("Database.Type = %q, want %q", got.Database.Type, "memory")
		}
		if got.BaseDir != dir {
			t.Errorf("BaseDir = %q, want %q", got.BaseDir, dir)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		if _, err := ReadFromFile("/nonexistent/path/photosort.toml"); err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
