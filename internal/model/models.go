package model

import (
	"database/sql"
	"time"
)

// Scan session statuses.
const (
	ScanStatusInProgress = "in_progress"
	ScanStatusCompleted  = "completed"
	ScanStatusFailed     = "failed"
)

// ScanSession is one traversal of a source root.
type ScanSession struct {
	ID                 int64
	SourceRoot         string // absolute path of the scanned tree
	SourceDriveUUID    string
	StartedAt          time.Time
	CompletedAt        sql.NullTime
	Status             string
	ErrorMessage       sql.NullString
	FilesScanned       int64
	DirectoriesScanned int64
	TotalBytes         int64
}

// FileRecord is one scanned file. Date columns hold YYYYMMDD values.
type FileRecord struct {
	ID            int64
	ScanSessionID int64
	SourcePath    string // relative to the session's source root, "/" separated
	DirectoryPath string // "" for files at the root
	Filename      string
	FilenameBase  string
	Extension     sql.NullString // lower case, no dot
	SizeBytes     int64

	FSModifiedAt sql.NullFloat64 // Unix seconds
	FSChangedAt  sql.NullFloat64
	FSAccessedAt sql.NullFloat64
	FSCreatedAt  sql.NullFloat64
	ScannedAt    time.Time

	DatePathHierarchy       sql.NullInt64
	DatePathHierarchySource sql.NullString
	DatePathFolder          sql.NullInt64
	DatePathFolderSource    sql.NullString
	DatePathFilename        sql.NullInt64
	DatePathFilenameSource  sql.NullString
	DatePathResolved        sql.NullInt64
	DatePathResolvedSource  sql.NullString
	DateResolvedAt          sql.NullTime
}

// PathDates are the path-derived candidates written back by the resolution pass.
type PathDates struct {
	FileID          int64
	Hierarchy       sql.NullInt64
	HierarchySource sql.NullString
	Folder          sql.NullInt64
	FolderSource    sql.NullString
	Filename        sql.NullInt64
	FilenameSource  sql.NullString
	Resolved        sql.NullInt64
	ResolvedSource  sql.NullString
}

// ExtractionCandidate is a file waiting for metadata extraction.
type ExtractionCandidate struct {
	FileID           int64
	SourcePath       string
	Extension        string
	SizeBytes        int64
	DatePathFolder   sql.NullInt64
	DatePathFilename sql.NullInt64
}

// FileMetadata is the normalized output of an embedded-metadata extractor.
type FileMetadata struct {
	FileID int64

	DateOriginal      sql.NullInt64 // YYYYMMDD
	DateOriginalUnix  sql.NullInt64
	DateDigitized     sql.NullInt64
	DateDigitizedUnix sql.NullInt64
	DateModify        sql.NullInt64
	DateModifyUnix    sql.NullInt64

	CameraMake  sql.NullString
	CameraModel sql.NullString
	LensModel   sql.NullString
	Width       sql.NullInt64
	Height      sql.NullInt64
	Orientation sql.NullInt64

	DurationSeconds sql.NullFloat64
	FrameRate       sql.NullFloat64

	GPSLatitude  sql.NullFloat64
	GPSLongitude sql.NullFloat64
	GPSAltitude  sql.NullFloat64

	MIMEType         sql.NullString
	Families         sql.NullString // comma separated
	MetadataJSON     sql.NullString
	ExtractorVersion sql.NullString
	ExtractionError  sql.NullString
	SkipReason       sql.NullString
	ExtractedAt      time.Time
}

// PlanFile is a folder member as read by the planner: the file's identity,
// its path candidates, mtime and metadata date.
type PlanFile struct {
	FileID            int64
	SourcePath        string
	Filename          string
	FilenameBase      string
	Extension         string
	DatePathHierarchy int
	DatePathFolder    int
	DatePathFilename  int
	FSModifiedAt      sql.NullFloat64
	DateOriginal      int
}

// FolderPlan is the planned destination for one source directory.
type FolderPlan struct {
	ID            int64
	ScanSessionID int64
	PlanRunID     string
	SourceFolder  string

	ResolvedDate   sql.NullInt64
	ResolvedSource string
	Bucket         sql.NullString
	TargetFolder   string
	Annotation     sql.NullString

	TotalFiles         int64
	ImageFiles         int64
	ImagesWithDate     int64
	DateCoveragePct    float64
	PrevalentDate      sql.NullInt64
	PrevalentDateCount int64
	PrevalentDatePct   float64
	MinDate            sql.NullInt64
	MaxDate            sql.NullInt64
	DateSpanMonths     int64
	UniqueDateCount    int64

	InheritedFromFolderID sql.NullInt64 // reserved
	IsSubfolder           bool          // reserved

	ConfigMinCoverage   float64
	ConfigMinPrevalence float64
	ConfigMaxSpanMonths int64

	PlannedAt time.Time
}

// FilePlan is the planned destination for one file.
type FilePlan struct {
	ID           int64
	FileID       int64
	FolderPlanID int64

	SourcePath       string
	FileResolvedDate sql.NullInt64
	FileDateSource   string

	TargetFolder   string
	TargetFilename string
	TargetPath     string

	IsPotentialDuplicate bool
	DuplicateSourceHash  sql.NullString
	IsSidecar            bool
	ResolutionReason     string

	PlannedAt time.Time
}

// PlanCount is one row of a grouped plan summary.
type PlanCount struct {
	Source  string
	Bucket  string
	Folders int64
	Files   int64
}

// Operation records one CLI command that mutated the catalog.
type Operation struct {
	ID         int64
	Operation  string
	Parameters string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Status     string
}

// SessionStats are aggregate counters for one scan session.
type SessionStats struct {
	SessionID        int64
	Files            int64
	WithPathDate     int64
	PathResolved     int64
	WithMetadata     int64
	WithMetadataDate int64
	WithGPS          int64
	MetadataSkipped  int64
	MetadataErrors   int64
	FolderPlans      int64
	FilePlans        int64
	Duplicates       int64
	Sidecars         int64
}
