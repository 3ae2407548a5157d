package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for photosort.
type Config struct {
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Database   DatabaseConfig   `toml:"database"`
	Scanner    ScannerConfig    `toml:"scanner"`
	Extractor  ExtractorConfig  `toml:"extractor"`
	Planner    PlannerConfig    `toml:"planner"`
	Snapshot   SnapshotConfig   `toml:"snapshot"`
	Encryption EncryptionConfig `toml:"encryption"`
}

// DatabaseConfig represents configuration for the catalog database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// ScannerConfig holds inventory capture settings.
type ScannerConfig struct {
	ProgressInterval int      `toml:"progress_interval"`
	MaxPathLength    int      `toml:"max_path_length"`
	Ignore           []string `toml:"ignore"`
}

// ExtractorConfig selects and tunes the embedded-metadata extractor.
type ExtractorConfig struct {
	Type         string `toml:"type"`                    // "exiftool" or "goexif"
	ExiftoolPath string `toml:"exiftool_path,omitempty"` // only used for type=exiftool
	Strategy     string `toml:"strategy"`                // "full" or "selective"
	BatchSize    int    `toml:"batch_size"`
	MinFileSize  int64  `toml:"min_file_size"`
}

// PlannerConfig holds the folder resolution thresholds.
type PlannerConfig struct {
	MinCoverageThreshold   float64 `toml:"min_coverage_threshold"`
	MinPrevalenceThreshold float64 `toml:"min_prevalence_threshold"`
	MaxDateSpanMonths      int     `toml:"max_date_span_months"`
}

// SnapshotConfig represents configuration for catalog snapshots.
// An empty Type disables snapshots.
type SnapshotConfig struct {
	Type    string `toml:"type"`           // "", "filesystem" or "memory"
	Root    string `toml:"root,omitempty"` // only used for type=filesystem
	Encrypt bool   `toml:"encrypt"`
}

// EncryptionConfig holds paths to the age key pair used for snapshot encryption.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// DefaultMinFileSize is the smallest file, in bytes, worth sending to the
// metadata extractor.
const DefaultMinFileSize = 10240

// DefaultPlannerConfig returns the stock folder resolution thresholds.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		MinCoverageThreshold:   0.30,
		MinPrevalenceThreshold: 0.80,
		MaxDateSpanMonths:      3,
	}
}

// NewConfig creates a new Config rooted at baseDir with default settings.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Scanner: ScannerConfig{
			ProgressInterval: 1000,
			MaxPathLength:    4096,
			Ignore:           []string{".DS_Store", "Thumbs.db", ".git"},
		},
		Extractor: ExtractorConfig{
			Type:         "exiftool",
			ExiftoolPath: "exiftool",
			Strategy:     "full",
			BatchSize:    100,
			MinFileSize:  DefaultMinFileSize,
		},
		Planner: DefaultPlannerConfig(),
		Snapshot: SnapshotConfig{
			Type: "filesystem",
			Root: filepath.Join(baseDir, "snapshots"),
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "photosort.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "photosort.key"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader. Tuning keys missing from
// the file take their default values; keys present keep what the file says,
// zero included.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	applyDefaults(&cfg, md)
	if err := cfg.Planner.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config, md toml.MetaData) {
	planner := DefaultPlannerConfig()
	if !md.IsDefined("planner", "min_coverage_threshold") {
		cfg.Planner.MinCoverageThreshold = planner.MinCoverageThreshold
	}
	if !md.IsDefined("planner", "min_prevalence_threshold") {
		cfg.Planner.MinPrevalenceThreshold = planner.MinPrevalenceThreshold
	}
	if !md.IsDefined("planner", "max_date_span_months") {
		cfg.Planner.MaxDateSpanMonths = planner.MaxDateSpanMonths
	}
	if !md.IsDefined("extractor", "min_file_size") {
		cfg.Extractor.MinFileSize = DefaultMinFileSize
	}
}

// Validate checks that the thresholds are fractions and the span is not negative.
func (p PlannerConfig) Validate() error {
	if p.MinCoverageThreshold < 0 || p.MinCoverageThreshold > 1 {
		return fmt.Errorf("planner.min_coverage_threshold must be between 0 and 1, got %v", p.MinCoverageThreshold)
	}
	if p.MinPrevalenceThreshold < 0 || p.MinPrevalenceThreshold > 1 {
		return fmt.Errorf("planner.min_prevalence_threshold must be between 0 and 1, got %v", p.MinPrevalenceThreshold)
	}
	if p.MaxDateSpanMonths < 0 {
		return fmt.Errorf("planner.max_date_span_months must not be negative, got %d", p.MaxDateSpanMonths)
	}
	return nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to path. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
