package database

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"photosort/internal/model"
)

var scanSessionColumns = []string{
	"id", "source_root", "source_drive_uuid", "started_at", "completed_at", "status",
	"error_message", "files_scanned", "directories_scanned", "total_bytes",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScanSession(r rowScanner) (*model.ScanSession, error) {
	s := &model.ScanSession{}
	err := r.Scan(&s.ID, &s.SourceRoot, &s.SourceDriveUUID, &s.StartedAt, &s.CompletedAt, &s.Status,
		&s.ErrorMessage, &s.FilesScanned, &s.DirectoriesScanned, &s.TotalBytes)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteDatabase) findOneSession(b sq.SelectBuilder) (*model.ScanSession, error) {
	row, err := queryRow(s.db, b.Limit(1))
	if err != nil {
		return nil, err
	}
	session, err := scanScanSession(row)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}

func (s *SQLiteDatabase) CreateScanSession(sourceRoot, driveUUID string, startedAt time.Time) (*model.ScanSession, error) {
	res, err := exec(s.db, psql.Insert("scan_sessions").
		Columns("source_root", "source_drive_uuid", "started_at", "status").
		Values(sourceRoot, driveUUID, startedAt, model.ScanStatusInProgress))
	if err != nil {
		return nil, fmt.Errorf("creating scan session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading scan session id: %w", err)
	}
	return &model.ScanSession{
		ID:              id,
		SourceRoot:      sourceRoot,
		SourceDriveUUID: driveUUID,
		StartedAt:       startedAt,
		Status:          model.ScanStatusInProgress,
	}, nil
}

func (s *SQLiteDatabase) FindScanSession(id int64) (*model.ScanSession, error) {
	session, err := s.findOneSession(psql.Select(scanSessionColumns...).
		From("scan_sessions").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("finding scan session: %w", err)
	}
	return session, nil
}

func (s *SQLiteDatabase) FindLatestScanSession(sourceRoot, status string) (*model.ScanSession, error) {
	b := psql.Select(scanSessionColumns...).
		From("scan_sessions").
		Where(sq.Eq{"source_root": sourceRoot}).
		OrderBy("id DESC")
	if status != "" {
		b = b.Where(sq.Eq{"status": status})
	}
	session, err := s.findOneSession(b)
	if err != nil {
		return nil, fmt.Errorf("finding latest scan session: %w", err)
	}
	return session, nil
}

func (s *SQLiteDatabase) LatestCompletedScanSession() (*model.ScanSession, error) {
	session, err := s.findOneSession(psql.Select(scanSessionColumns...).
		From("scan_sessions").
		Where(sq.Eq{"status": model.ScanStatusCompleted}).
		OrderBy("id DESC"))
	if err != nil {
		return nil, fmt.Errorf("finding latest completed scan session: %w", err)
	}
	return session, nil
}

func (s *SQLiteDatabase) ListScanSessions() ([]*model.ScanSession, error) {
	var sessions []*model.ScanSession
	err := queryAll(s.db, psql.Select(scanSessionColumns...).From("scan_sessions").OrderBy("id"),
		func(rows *sql.Rows) error {
			session, err := scanScanSession(rows)
			if err != nil {
				return err
			}
			sessions = append(sessions, session)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("listing scan sessions: %w", err)
	}
	return sessions, nil
}

// DeleteScanSessionsForRoot relies on ON DELETE CASCADE to remove dependent rows.
func (s *SQLiteDatabase) DeleteScanSessionsForRoot(sourceRoot string) error {
	if _, err := exec(s.db, psql.Delete("scan_sessions").Where(sq.Eq{"source_root": sourceRoot})); err != nil {
		return fmt.Errorf("deleting scan sessions: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FinishScanSession(id int64, status, errorMessage string, completedAt time.Time) error {
	errMsg := sql.NullString{String: errorMessage, Valid: errorMessage != ""}
	_, err := exec(s.db, psql.Update("scan_sessions").
		Set("status", status).
		Set("error_message", errMsg).
		Set("completed_at", completedAt).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("finishing scan session: %w", err)
	}
	return nil
}

// Inventory

func (s *SQLiteDatabase) CompletedDirectories(sessionID int64) (map[string]bool, error) {
	done := make(map[string]bool)
	err := queryAll(s.db, psql.Select("directory_path").
		From("completed_directories").
		Where(sq.Eq{"scan_session_id": sessionID}),
		func(rows *sql.Rows) error {
			var p string
			if err := rows.Scan(&p); err != nil {
				return err
			}
			done[p] = true
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("listing completed directories: %w", err)
	}
	return done, nil
}

// RecordDirectory first removes rows left by an interrupted attempt at the
// same directory, so resuming never duplicates files.
func (s *SQLiteDatabase) RecordDirectory(sessionID int64, dirPath string, files []*model.FileRecord, completedAt time.Time) error {
	return s.withTx(func(tx *sql.Tx) error {
		_, err := exec(tx, psql.Delete("files").Where(sq.Eq{
			"scan_session_id": sessionID,
			"directory_path":  dirPath,
		}))
		if err != nil {
			return fmt.Errorf("clearing partial directory: %w", err)
		}

		var totalBytes int64
		for _, f := range files {
			res, err := exec(tx, psql.Insert("files").
				Columns(
					"scan_session_id", "source_path", "directory_path", "filename", "filename_base",
					"extension", "size_bytes", "fs_modified_at_unix", "fs_changed_at_unix",
					"fs_accessed_at_unix", "fs_created_at_unix", "scanned_at",
				).
				Values(
					sessionID, f.SourcePath, f.DirectoryPath, f.Filename, f.FilenameBase,
					f.Extension, f.SizeBytes, f.FSModifiedAt, f.FSChangedAt,
					f.FSAccessedAt, f.FSCreatedAt, f.ScannedAt,
				))
			if err != nil {
				return fmt.Errorf("inserting file %s: %w", f.SourcePath, err)
			}
			if f.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("reading file id: %w", err)
			}
			f.ScanSessionID = sessionID
			totalBytes += f.SizeBytes
		}

		_, err = exec(tx, psql.Insert("completed_directories").
			Columns("scan_session_id", "directory_path", "file_count", "completed_at").
			Values(sessionID, dirPath, len(files), completedAt).
			Suffix("ON CONFLICT(scan_session_id, directory_path) DO UPDATE SET file_count = excluded.file_count, completed_at = excluded.completed_at"))
		if err != nil {
			return fmt.Errorf("marking directory completed: %w", err)
		}

		_, err = exec(tx, psql.Update("scan_sessions").
			Set("files_scanned", sq.Expr("files_scanned + ?", len(files))).
			Set("directories_scanned", sq.Expr("directories_scanned + 1")).
			Set("total_bytes", sq.Expr("total_bytes + ?", totalBytes)).
			Where(sq.Eq{"id": sessionID}))
		if err != nil {
			return fmt.Errorf("updating session counters: %w", err)
		}
		return nil
	})
}

var fileColumns = []string{
	"id", "scan_session_id", "source_path", "directory_path", "filename", "filename_base",
	"extension", "size_bytes", "fs_modified_at_unix", "fs_changed_at_unix", "fs_accessed_at_unix",
	"fs_created_at_unix", "scanned_at",
	"date_path_hierarchy", "date_path_hierarchy_source",
	"date_path_folder", "date_path_folder_source",
	"date_path_filename", "date_path_filename_source",
	"date_path_resolved", "date_path_resolved_source", "date_resolved_at",
}

func scanFile(r rowScanner) (*model.FileRecord, error) {
	f := &model.FileRecord{}
	err := r.Scan(&f.ID, &f.ScanSessionID, &f.SourcePath, &f.DirectoryPath, &f.Filename, &f.FilenameBase,
		&f.Extension, &f.SizeBytes, &f.FSModifiedAt, &f.FSChangedAt, &f.FSAccessedAt,
		&f.FSCreatedAt, &f.ScannedAt,
		&f.DatePathHierarchy, &f.DatePathHierarchySource,
		&f.DatePathFolder, &f.DatePathFolderSource,
		&f.DatePathFilename, &f.DatePathFilenameSource,
		&f.DatePathResolved, &f.DatePathResolvedSource, &f.DateResolvedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *SQLiteDatabase) FindFileBySourcePath(sessionID int64, sourcePath string) (*model.FileRecord, error) {
	row, err := queryRow(s.db, psql.Select(fileColumns...).
		From("files").
		Where(sq.Eq{"scan_session_id": sessionID, "source_path": sourcePath}))
	if err != nil {
		return nil, err
	}
	f, err := scanFile(row)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding file by source path: %w", err)
	}
	return f, nil
}

func (s *SQLiteDatabase) CountFiles(sessionID int64) (int64, error) {
	row, err := queryRow(s.db, psql.Select("COUNT(*)").From("files").Where(sq.Eq{"scan_session_id": sessionID}))
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting files: %w", err)
	}
	return n, nil
}
