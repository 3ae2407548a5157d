package photosort

import (
	"time"

	"photosort/internal/model"
)

// Database is the catalog store. Lookups return (nil, nil) when nothing matches.
type Database interface {
	// Scan sessions

	// CreateScanSession starts a new in-progress session for sourceRoot.
	CreateScanSession(sourceRoot, driveUUID string, startedAt time.Time) (*model.ScanSession, error)
	FindScanSession(id int64) (*model.ScanSession, error)
	// FindLatestScanSession returns the newest session for sourceRoot with the
	// given status, or with any status when status is empty.
	FindLatestScanSession(sourceRoot, status string) (*model.ScanSession, error)
	// LatestCompletedScanSession returns the newest completed session of any root.
	LatestCompletedScanSession() (*model.ScanSession, error)
	ListScanSessions() ([]*model.ScanSession, error)
	// DeleteScanSessionsForRoot removes every session for sourceRoot along with
	// its files, metadata and plans.
	DeleteScanSessionsForRoot(sourceRoot string) error
	FinishScanSession(id int64, status, errorMessage string, completedAt time.Time) error

	// Inventory

	// CompletedDirectories returns the directory paths already recorded for a session.
	CompletedDirectories(sessionID int64) (map[string]bool, error)
	// RecordDirectory atomically replaces the files of one directory, marks the
	// directory completed and updates the session counters.
	RecordDirectory(sessionID int64, dirPath string, files []*model.FileRecord, completedAt time.Time) error
	FindFileBySourcePath(sessionID int64, sourcePath string) (*model.FileRecord, error)
	CountFiles(sessionID int64) (int64, error)

	// Path dates

	// ListFilesForPathResolution returns up to limit files with ID > afterID in
	// ID order. Unless reprocess is set, only files never resolved are
	// returned. A sessionID of 0 covers every session.
	ListFilesForPathResolution(sessionID int64, reprocess bool, afterID int64, limit int) ([]*model.FileRecord, error)
	UpdatePathDates(dates []*model.PathDates, resolvedAt time.Time) error

	// Metadata

	// ListExtractionCandidates returns files of a session without a metadata row.
	ListExtractionCandidates(sessionID int64) ([]*model.ExtractionCandidate, error)
	SaveFileMetadata(rows []*model.FileMetadata) error
	FindFileMetadata(fileID int64) (*model.FileMetadata, error)

	// Plans

	// ClearPlan deletes every folder and file plan of a session.
	ClearPlan(sessionID int64) error
	// ListPlanFolders returns the distinct directory paths of a session.
	ListPlanFolders(sessionID int64) ([]string, error)
	// ListPlanFiles returns the files of one directory ordered by source path.
	ListPlanFiles(sessionID int64, directoryPath string) ([]*model.PlanFile, error)
	// InsertFolderPlan stores a folder plan and its file plans in one
	// transaction and returns the folder plan ID.
	InsertFolderPlan(folder *model.FolderPlan, files []*model.FilePlan) (int64, error)
	ListFolderPlans(sessionID int64) ([]*model.FolderPlan, error)
	ListFilePlans(folderPlanID int64) ([]*model.FilePlan, error)
	SummarizePlan(sessionID int64) ([]*model.PlanCount, error)
	SessionStats(sessionID int64) (*model.SessionStats, error)

	// Operations

	CreateOperation(operation, parameters string, startedAt time.Time) (*model.Operation, error)
	FinishOperation(id int64, status string, finishedAt time.Time) error
	ListOperations(limit int) ([]*model.Operation, error)

	// BackupTo writes a consistent copy of the catalog to path.
	BackupTo(path string) error
	// CheckMigrations returns an error when the schema is not at the latest version.
	CheckMigrations() error
	Close() error
}
