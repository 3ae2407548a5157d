package photosort

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"photosort/internal/model"
)

// MetadataExtractor reads embedded metadata from media files.
type MetadataExtractor interface {
	// Version identifies the extractor and its tool version, e.g. "exiftool 12.76".
	Version() string

	// Extract reads the files at the given absolute paths. The result is keyed
	// by path. A file the extractor could not read has ExtractedMetadata.Error
	// set; a returned error means the whole batch failed.
	Extract(ctx context.Context, paths []string) (map[string]*ExtractedMetadata, error)
}

// ExtractedMetadata is the normalized metadata of one file. Zero values mean
// the tag was absent.
type ExtractedMetadata struct {
	DateOriginal  time.Time
	DateDigitized time.Time
	DateModify    time.Time

	CameraMake  string
	CameraModel string
	LensModel   string
	Width       int
	Height      int
	Orientation int

	DurationSeconds float64
	FrameRate       float64

	GPS *GPSPosition

	MIMEType string
	Families []string // tag groups present, e.g. "EXIF", "QuickTime"
	RawJSON  string

	Error string
}

// GPSPosition is a decimal-degree position.
type GPSPosition struct {
	Latitude  float64
	Longitude float64
	Altitude  sql.NullFloat64
}

// ExtractionStrategy selects which scanned files are sent to the extractor.
type ExtractionStrategy string

const (
	// StrategyFull extracts every file with a supported extension.
	StrategyFull ExtractionStrategy = "full"
	// StrategySelective only extracts supported files whose path carries no
	// folder or filename date.
	StrategySelective ExtractionStrategy = "selective"
)

var extractableExtensions = map[string]bool{
	"arw": true, "jpg": true, "jpeg": true, "nef": true, "dng": true,
	"tif": true, "tiff": true, "heic": true, "cr2": true, "srw": true,
	"mp4": true, "m4v": true, "mov": true, "mkv": true, "avi": true,
}

// ParseStrategy maps a configured name to a strategy.
func ParseStrategy(name string) (ExtractionStrategy, error) {
	switch s := ExtractionStrategy(name); s {
	case StrategyFull, StrategySelective:
		return s, nil
	case "":
		return StrategyFull, nil
	default:
		return "", fmt.Errorf("unknown extraction strategy: %s", name)
	}
}

// Selects reports whether c should be extracted under this strategy.
func (s ExtractionStrategy) Selects(c *model.ExtractionCandidate) bool {
	if !extractableExtensions[c.Extension] {
		return false
	}
	if s == StrategySelective {
		return !c.DatePathFolder.Valid && !c.DatePathFilename.Valid
	}
	return true
}
