package photosort

import (
	"fmt"

	"photosort/internal/model"
	"photosort/internal/planner"
)

// Settings are the tunables of the service passes.
type Settings struct {
	// ProgressInterval is the number of files between progress log lines.
	ProgressInterval int
	// MinFileSize is the smallest file, in bytes, sent to the extractor.
	MinFileSize int64
	Planner     planner.Config
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		ProgressInterval: 1000,
		MinFileSize:      10240,
		Planner:          planner.DefaultConfig(),
	}
}

// PhotosortService is the orchestration layer that coordinates the catalog,
// the filesystem and the metadata extractor to perform the passes needed by
// the CLI: scan, resolve-dates, extract-metadata and plan.
type PhotosortService struct {
	database  Database
	fsmgr     FilesystemManager
	extractor MetadataExtractor
	logger    Logger
	clock     Clock
	idgen     IDGenerator
	settings  Settings
}

// NewPhotosortService creates a new PhotosortService with the provided
// dependencies. fsmgr and extractor may be nil for commands that do not
// scan or extract.
func NewPhotosortService(database Database, fsmgr FilesystemManager, extractor MetadataExtractor, logger Logger, clock Clock, idgen IDGenerator, settings Settings) *PhotosortService {
	if settings.ProgressInterval <= 0 {
		settings.ProgressInterval = DefaultSettings().ProgressInterval
	}
	return &PhotosortService{
		database:  database,
		fsmgr:     fsmgr,
		extractor: extractor,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
		settings:  settings,
	}
}

// session returns the scan session with the given ID, or the latest
// completed one when id is 0.
func (s *PhotosortService) session(id int64) (*model.ScanSession, error) {
	if id == 0 {
		session, err := s.database.LatestCompletedScanSession()
		if err != nil {
			return nil, fmt.Errorf("finding latest scan session: %w", err)
		}
		if session == nil {
			return nil, fmt.Errorf("no completed scan session found: run scan first")
		}
		return session, nil
	}

	session, err := s.database.FindScanSession(id)
	if err != nil {
		return nil, fmt.Errorf("finding scan session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("scan session %d not found", id)
	}
	return session, nil
}
