package photosort

import (
	"database/sql"
	"fmt"
	"path"
	"time"

	"photosort/internal/model"
	"photosort/internal/planner"
)

// Scan records an inventory of every regular file under root.
//
// Without resume, earlier sessions for the same root are deleted and a new
// session is started. With resume, the latest in-progress session for root
// is continued and directories it already recorded are skipped.
func (s *PhotosortService) Scan(root *Path, resume bool) (*model.ScanSession, error) {
	if !root.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root.String())
	}

	session, completed, err := s.startScan(root, resume)
	if err != nil {
		return nil, err
	}

	s.logger.Info("scan started",
		"root", root.String(),
		"session", session.ID,
		"drive_uuid", session.SourceDriveUUID,
		"resume", resume)

	files, dirs := session.FilesScanned, session.DirectoriesScanned
	prog := newProgress(s.logger, "scan progress", s.settings.ProgressInterval, files)

	walkErr := s.fsmgr.WalkDirectories(root, func(batch *DirectoryBatch) error {
		if batch.Err != nil {
			s.logger.Warn("directory unreadable, skipping", "dir", batch.Path, "error", batch.Err)
			return nil
		}
		for _, p := range batch.Skipped {
			s.logger.Warn("path too long, skipping", "path", p)
		}
		for _, err := range batch.FileErrors {
			s.logger.Warn("file unreadable, skipping", "dir", batch.Path, "error", err)
		}
		if completed[batch.Path] {
			s.logger.Debug("directory already recorded", "dir", batch.Path)
			return nil
		}

		now := s.clock.Now()
		records := make([]*model.FileRecord, 0, len(batch.Files))
		for _, f := range batch.Files {
			records = append(records, newFileRecord(batch.Path, f, now))
		}
		if err := s.database.RecordDirectory(session.ID, batch.Path, records, now); err != nil {
			return fmt.Errorf("recording directory %q: %w", batch.Path, err)
		}

		files += int64(len(records))
		dirs++
		prog.update(files, "directories", dirs, "dir", batch.Path)
		return nil
	})

	if walkErr != nil {
		if err := s.database.FinishScanSession(session.ID, model.ScanStatusFailed, walkErr.Error(), s.clock.Now()); err != nil {
			s.logger.Error("failed to mark scan failed", "session", session.ID, "error", err)
		}
		return nil, fmt.Errorf("scanning %s: %w", root.String(), walkErr)
	}

	if err := s.database.FinishScanSession(session.ID, model.ScanStatusCompleted, "", s.clock.Now()); err != nil {
		return nil, err
	}

	done, err := s.database.FindScanSession(session.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading scan session: %w", err)
	}
	s.logger.Info("scan complete",
		"session", done.ID,
		"files", done.FilesScanned,
		"directories", done.DirectoriesScanned,
		"bytes", done.TotalBytes)
	return done, nil
}

func (s *PhotosortService) startScan(root *Path, resume bool) (*model.ScanSession, map[string]bool, error) {
	if resume {
		session, err := s.database.FindLatestScanSession(root.String(), model.ScanStatusInProgress)
		if err != nil {
			return nil, nil, err
		}
		if session == nil {
			return nil, nil, fmt.Errorf("no interrupted scan found for %s", root.String())
		}
		completed, err := s.database.CompletedDirectories(session.ID)
		if err != nil {
			return nil, nil, err
		}
		return session, completed, nil
	}

	if err := s.database.DeleteScanSessionsForRoot(root.String()); err != nil {
		return nil, nil, err
	}
	session, err := s.database.CreateScanSession(root.String(), s.fsmgr.DriveUUID(root), s.clock.Now())
	if err != nil {
		return nil, nil, err
	}
	return session, map[string]bool{}, nil
}

func newFileRecord(dir string, f *FileEntry, scannedAt time.Time) *model.FileRecord {
	base, ext := planner.SplitFilename(f.Name)
	sourcePath := f.Name
	if dir != "" {
		sourcePath = path.Join(dir, f.Name)
	}
	return &model.FileRecord{
		SourcePath:    sourcePath,
		DirectoryPath: dir,
		Filename:      f.Name,
		FilenameBase:  base,
		Extension:     sql.NullString{String: ext, Valid: ext != ""},
		SizeBytes:     f.Size,
		FSModifiedAt:  sql.NullFloat64{Float64: f.Modified, Valid: true},
		FSChangedAt:   sql.NullFloat64{Float64: f.Changed, Valid: true},
		FSAccessedAt:  sql.NullFloat64{Float64: f.Accessed, Valid: true},
		FSCreatedAt:   f.Created,
		ScannedAt:     scannedAt,
	}
}
