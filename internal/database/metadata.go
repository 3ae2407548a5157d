package database

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"photosort/internal/model"
)

// Path dates

func (s *SQLiteDatabase) ListFilesForPathResolution(sessionID int64, reprocess bool, afterID int64, limit int) ([]*model.FileRecord, error) {
	b := psql.Select(fileColumns...).
		From("files").
		Where(sq.Gt{"id": afterID}).
		OrderBy("id").
		Limit(uint64(limit))
	if sessionID != 0 {
		b = b.Where(sq.Eq{"scan_session_id": sessionID})
	}
	if !reprocess {
		b = b.Where(sq.Eq{"date_resolved_at": nil})
	}

	var files []*model.FileRecord
	err := queryAll(s.db, b, func(rows *sql.Rows) error {
		f, err := scanFile(rows)
		if err != nil {
			return err
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing files for path resolution: %w", err)
	}
	return files, nil
}

func (s *SQLiteDatabase) UpdatePathDates(dates []*model.PathDates, resolvedAt time.Time) error {
	return s.withTx(func(tx *sql.Tx) error {
		for _, d := range dates {
			_, err := exec(tx, psql.Update("files").
				Set("date_path_hierarchy", d.Hierarchy).
				Set("date_path_hierarchy_source", d.HierarchySource).
				Set("date_path_folder", d.Folder).
				Set("date_path_folder_source", d.FolderSource).
				Set("date_path_filename", d.Filename).
				Set("date_path_filename_source", d.FilenameSource).
				Set("date_path_resolved", d.Resolved).
				Set("date_path_resolved_source", d.ResolvedSource).
				Set("date_resolved_at", resolvedAt).
				Where(sq.Eq{"id": d.FileID}))
			if err != nil {
				return fmt.Errorf("updating path dates for file %d: %w", d.FileID, err)
			}
		}
		return nil
	})
}

// Metadata

func (s *SQLiteDatabase) ListExtractionCandidates(sessionID int64) ([]*model.ExtractionCandidate, error) {
	var out []*model.ExtractionCandidate
	err := queryAll(s.db, psql.Select(
		"f.id", "f.source_path", "COALESCE(f.extension, '')", "f.size_bytes",
		"f.date_path_folder", "f.date_path_filename",
	).
		From("files f").
		LeftJoin("file_metadata m ON m.file_id = f.id").
		Where(sq.Eq{"f.scan_session_id": sessionID, "m.file_id": nil}).
		OrderBy("f.id"),
		func(rows *sql.Rows) error {
			c := &model.ExtractionCandidate{}
			if err := rows.Scan(&c.FileID, &c.SourcePath, &c.Extension, &c.SizeBytes, &c.DatePathFolder, &c.DatePathFilename); err != nil {
				return err
			}
			out = append(out, c)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("listing extraction candidates: %w", err)
	}
	return out, nil
}

var metadataColumns = []string{
	"file_id",
	"date_original", "date_original_unix", "date_digitized", "date_digitized_unix",
	"date_modify", "date_modify_unix",
	"camera_make", "camera_model", "lens_model", "width", "height", "orientation",
	"duration_seconds", "frame_rate",
	"gps_latitude", "gps_longitude", "gps_altitude",
	"mime_type", "families", "metadata_json", "extractor_version", "extraction_error", "skip_reason",
	"extracted_at",
}

// SaveFileMetadata upserts one row per file.
func (s *SQLiteDatabase) SaveFileMetadata(rows []*model.FileMetadata) error {
	return s.withTx(func(tx *sql.Tx) error {
		for _, m := range rows {
			_, err := exec(tx, psql.Insert("file_metadata").
				Options("OR REPLACE").
				Columns(metadataColumns...).
				Values(
					m.FileID,
					m.DateOriginal, m.DateOriginalUnix, m.DateDigitized, m.DateDigitizedUnix,
					m.DateModify, m.DateModifyUnix,
					m.CameraMake, m.CameraModel, m.LensModel, m.Width, m.Height, m.Orientation,
					m.DurationSeconds, m.FrameRate,
					m.GPSLatitude, m.GPSLongitude, m.GPSAltitude,
					m.MIMEType, m.Families, m.MetadataJSON, m.ExtractorVersion, m.ExtractionError, m.SkipReason,
					m.ExtractedAt,
				))
			if err != nil {
				return fmt.Errorf("saving metadata for file %d: %w", m.FileID, err)
			}
		}
		return nil
	})
}

func (s *SQLiteDatabase) FindFileMetadata(fileID int64) (*model.FileMetadata, error) {
	row, err := queryRow(s.db, psql.Select(metadataColumns...).From("file_metadata").Where(sq.Eq{"file_id": fileID}))
	if err != nil {
		return nil, err
	}

	m := &model.FileMetadata{}
	err = row.Scan(
		&m.FileID,
		&m.DateOriginal, &m.DateOriginalUnix, &m.DateDigitized, &m.DateDigitizedUnix,
		&m.DateModify, &m.DateModifyUnix,
		&m.CameraMake, &m.CameraModel, &m.LensModel, &m.Width, &m.Height, &m.Orientation,
		&m.DurationSeconds, &m.FrameRate,
		&m.GPSLatitude, &m.GPSLongitude, &m.GPSAltitude,
		&m.MIMEType, &m.Families, &m.MetadataJSON, &m.ExtractorVersion, &m.ExtractionError, &m.SkipReason,
		&m.ExtractedAt,
	)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding file metadata: %w", err)
	}
	return m, nil
}
