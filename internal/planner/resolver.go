package planner

import (
	"database/sql"
	"time"

	"photosort/internal/pathdate"
)

// FileDateSource names the signal a file's plan date came from.
type FileDateSource string

const (
	FileSourcePathFolder   FileDateSource = "path_folder"
	FileSourcePathFilename FileDateSource = "path_filename"
	FileSourceExif         FileDateSource = "exif"
	FileSourceFSModified   FileDateSource = "fs_modified"
	FileSourceNone         FileDateSource = "none"
)

// FolderSource is the reason recorded for a folder's outcome.
type FolderSource string

const (
	FolderSourcePathDate      FolderSource = "path_date"
	FolderSourcePrevalentDate FolderSource = "prevalent_date"
	FolderSourceUnanimous     FolderSource = "unanimous"
	FolderSourceLowCoverage   FolderSource = "low_coverage"
	FolderSourceWideSpread    FolderSource = "wide_spread"
	FolderSourceNoConsensus   FolderSource = "no_consensus"
	FolderSourceNoImages      FolderSource = "no_images"
)

// Bucket groups folders whose files could not be given a single date.
type Bucket string

const (
	BucketNone       Bucket = ""
	BucketMixedDates Bucket = "mixed_dates"
	BucketNonMedia   Bucket = "non_media"
)

// Config holds the thresholds used to classify a folder.
type Config struct {
	MinCoverageThreshold   float64
	MinPrevalenceThreshold float64
	MaxDateSpanMonths      int
}

// DefaultConfig returns the stock thresholds: 30% coverage, 80% prevalence
// and a span of less than three months.
func DefaultConfig() Config {
	return Config{
		MinCoverageThreshold:   0.30,
		MinPrevalenceThreshold: 0.80,
		MaxDateSpanMonths:      3,
	}
}

// FileDateInputs are the candidate dates available for one file. Zero dates
// are absent.
type FileDateInputs struct {
	PathFolder   int
	PathFilename int
	Metadata     int
	FSModified   sql.NullFloat64 // Unix seconds
}

// FileDate is a resolved per-file date and where it came from.
type FileDate struct {
	Date   int
	Source FileDateSource
}

// ResolveFileDate picks the first available candidate in the fixed order
// path folder, path filename, embedded metadata, filesystem mtime.
func ResolveFileDate(in FileDateInputs) FileDate {
	switch {
	case in.PathFolder != 0:
		return FileDate{Date: in.PathFolder, Source: FileSourcePathFolder}
	case in.PathFilename != 0:
		return FileDate{Date: in.PathFilename, Source: FileSourcePathFilename}
	case in.Metadata != 0:
		return FileDate{Date: in.Metadata, Source: FileSourceExif}
	case in.FSModified.Valid:
		sec := int64(in.FSModified.Float64)
		nsec := int64((in.FSModified.Float64 - float64(sec)) * 1e9)
		return FileDate{Date: pathdate.FromTime(time.Unix(sec, nsec)), Source: FileSourceFSModified}
	}
	return FileDate{Source: FileSourceNone}
}

// FolderResolution is the single terminal outcome for a folder. Exactly one
// of ResolvedDate and Bucket is set.
type FolderResolution struct {
	ResolvedDate int
	Bucket       Bucket
	Source       FolderSource
}

// ResolveFolder applies the threshold rules to a folder analysis, in order:
// no images, low coverage, wide spread, prevalent date, unanimous date, and
// finally no consensus.
func ResolveFolder(a FolderDateAnalysis, cfg Config) FolderResolution {
	switch {
	case a.ImageFiles == 0:
		return FolderResolution{Bucket: BucketNonMedia, Source: FolderSourceNoImages}
	case a.DateCoveragePct < cfg.MinCoverageThreshold:
		return FolderResolution{Bucket: BucketMixedDates, Source: FolderSourceLowCoverage}
	case a.DateSpanMonths >= cfg.MaxDateSpanMonths:
		return FolderResolution{Bucket: BucketMixedDates, Source: FolderSourceWideSpread}
	case a.PrevalentDate != 0 && a.PrevalentDatePct >= cfg.MinPrevalenceThreshold:
		return FolderResolution{ResolvedDate: a.PrevalentDate, Source: FolderSourcePrevalentDate}
	case a.PrevalentDate != 0 && a.UniqueDateCount == 1:
		return FolderResolution{ResolvedDate: a.PrevalentDate, Source: FolderSourceUnanimous}
	}
	return FolderResolution{Bucket: BucketMixedDates, Source: FolderSourceNoConsensus}
}

// ResolveFolderWithPathDate returns the outcome for a folder whose path
// already carries a date. It overrides every statistical rule.
func ResolveFolderWithPathDate(pathDate int) FolderResolution {
	return FolderResolution{ResolvedDate: pathDate, Source: FolderSourcePathDate}
}
