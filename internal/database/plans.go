package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"photosort/internal/model"
)

// ClearPlan deletes file plans before folder plans so the foreign keys hold
// whether or not cascading is enabled.
func (s *SQLiteDatabase) ClearPlan(sessionID int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		_, err := exec(tx, psql.Delete("file_plan").
			Where(sq.Expr("folder_plan_id IN (SELECT id FROM folder_plan WHERE scan_session_id = ?)", sessionID)))
		if err != nil {
			return fmt.Errorf("clearing file plans: %w", err)
		}
		if _, err := exec(tx, psql.Delete("folder_plan").Where(sq.Eq{"scan_session_id": sessionID})); err != nil {
			return fmt.Errorf("clearing folder plans: %w", err)
		}
		return nil
	})
}

func (s *SQLiteDatabase) ListPlanFolders(sessionID int64) ([]string, error) {
	var folders []string
	err := queryAll(s.db, psql.Select("directory_path").Distinct().
		From("files").
		Where(sq.Eq{"scan_session_id": sessionID}).
		OrderBy("directory_path"),
		func(rows *sql.Rows) error {
			var p string
			if err := rows.Scan(&p); err != nil {
				return err
			}
			folders = append(folders, p)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("listing plan folders: %w", err)
	}
	return folders, nil
}

func (s *SQLiteDatabase) ListPlanFiles(sessionID int64, directoryPath string) ([]*model.PlanFile, error) {
	var files []*model.PlanFile
	err := queryAll(s.db, psql.Select(
		"f.id", "f.source_path", "f.filename", "f.filename_base", "COALESCE(f.extension, '')",
		"COALESCE(f.date_path_hierarchy, 0)", "COALESCE(f.date_path_folder, 0)",
		"COALESCE(f.date_path_filename, 0)", "f.fs_modified_at_unix",
		"COALESCE(m.date_original, 0)",
	).
		From("files f").
		LeftJoin("file_metadata m ON m.file_id = f.id").
		Where(sq.Eq{"f.scan_session_id": sessionID, "f.directory_path": directoryPath}).
		OrderBy("f.source_path"),
		func(rows *sql.Rows) error {
			f := &model.PlanFile{}
			err := rows.Scan(&f.FileID, &f.SourcePath, &f.Filename, &f.FilenameBase, &f.Extension,
				&f.DatePathHierarchy, &f.DatePathFolder, &f.DatePathFilename, &f.FSModifiedAt,
				&f.DateOriginal)
			if err != nil {
				return err
			}
			files = append(files, f)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("listing plan files: %w", err)
	}
	return files, nil
}

var folderPlanColumns = []string{
	"scan_session_id", "plan_run_id", "source_folder",
	"resolved_date", "resolved_source", "bucket", "target_folder", "annotation",
	"total_files", "image_files", "images_with_date", "date_coverage_pct",
	"prevalent_date", "prevalent_date_count", "prevalent_date_pct",
	"min_date", "max_date", "date_span_months", "unique_date_count",
	"inherited_from_folder_id", "is_subfolder",
	"config_min_coverage", "config_min_prevalence", "config_max_span_months",
	"planned_at",
}

var filePlanColumns = []string{
	"file_id", "folder_plan_id", "source_path", "file_resolved_date", "file_date_source",
	"target_folder", "target_filename", "target_path",
	"is_potential_duplicate", "duplicate_source_hash", "is_sidecar", "resolution_reason",
	"planned_at",
}

func (s *SQLiteDatabase) InsertFolderPlan(folder *model.FolderPlan, files []*model.FilePlan) (int64, error) {
	err := s.withTx(func(tx *sql.Tx) error {
		res, err := exec(tx, psql.Insert("folder_plan").
			Columns(folderPlanColumns...).
			Values(
				folder.ScanSessionID, folder.PlanRunID, folder.SourceFolder,
				folder.ResolvedDate, folder.ResolvedSource, folder.Bucket, folder.TargetFolder, folder.Annotation,
				folder.TotalFiles, folder.ImageFiles, folder.ImagesWithDate, folder.DateCoveragePct,
				folder.PrevalentDate, folder.PrevalentDateCount, folder.PrevalentDatePct,
				folder.MinDate, folder.MaxDate, folder.DateSpanMonths, folder.UniqueDateCount,
				folder.InheritedFromFolderID, folder.IsSubfolder,
				folder.ConfigMinCoverage, folder.ConfigMinPrevalence, folder.ConfigMaxSpanMonths,
				folder.PlannedAt,
			))
		if err != nil {
			return fmt.Errorf("inserting folder plan %q: %w", folder.SourceFolder, err)
		}
		if folder.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("reading folder plan id: %w", err)
		}

		for _, f := range files {
			f.FolderPlanID = folder.ID
			res, err := exec(tx, psql.Insert("file_plan").
				Columns(filePlanColumns...).
				Values(
					f.FileID, f.FolderPlanID, f.SourcePath, f.FileResolvedDate, f.FileDateSource,
					f.TargetFolder, f.TargetFilename, f.TargetPath,
					f.IsPotentialDuplicate, f.DuplicateSourceHash, f.IsSidecar, f.ResolutionReason,
					f.PlannedAt,
				))
			if err != nil {
				return fmt.Errorf("inserting file plan for %s: %w", f.SourcePath, err)
			}
			if f.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("reading file plan id: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return folder.ID, nil
}

func (s *SQLiteDatabase) ListFolderPlans(sessionID int64) ([]*model.FolderPlan, error) {
	cols := append([]string{"id"}, folderPlanColumns...)

	var plans []*model.FolderPlan
	err := queryAll(s.db, psql.Select(cols...).
		From("folder_plan").
		Where(sq.Eq{"scan_session_id": sessionID}).
		OrderBy("id"),
		func(rows *sql.Rows) error {
			p := &model.FolderPlan{}
			err := rows.Scan(&p.ID,
				&p.ScanSessionID, &p.PlanRunID, &p.SourceFolder,
				&p.ResolvedDate, &p.ResolvedSource, &p.Bucket, &p.TargetFolder, &p.Annotation,
				&p.TotalFiles, &p.ImageFiles, &p.ImagesWithDate, &p.DateCoveragePct,
				&p.PrevalentDate, &p.PrevalentDateCount, &p.PrevalentDatePct,
				&p.MinDate, &p.MaxDate, &p.DateSpanMonths, &p.UniqueDateCount,
				&p.InheritedFromFolderID, &p.IsSubfolder,
				&p.ConfigMinCoverage, &p.ConfigMinPrevalence, &p.ConfigMaxSpanMonths,
				&p.PlannedAt,
			)
			if err != nil {
				return err
			}
			plans = append(plans, p)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("listing folder plans: %w", err)
	}
	return plans, nil
}

func (s *SQLiteDatabase) ListFilePlans(folderPlanID int64) ([]*model.FilePlan, error) {
	cols := append([]string{"id"}, filePlanColumns...)

	var plans []*model.FilePlan
	err := queryAll(s.db, psql.Select(cols...).
		From("file_plan").
		Where(sq.Eq{"folder_plan_id": folderPlanID}).
		OrderBy("id"),
		func(rows *sql.Rows) error {
			p := &model.FilePlan{}
			err := rows.Scan(&p.ID,
				&p.FileID, &p.FolderPlanID, &p.SourcePath, &p.FileResolvedDate, &p.FileDateSource,
				&p.TargetFolder, &p.TargetFilename, &p.TargetPath,
				&p.IsPotentialDuplicate, &p.DuplicateSourceHash, &p.IsSidecar, &p.ResolutionReason,
				&p.PlannedAt,
			)
			if err != nil {
				return err
			}
			plans = append(plans, p)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("listing file plans: %w", err)
	}
	return plans, nil
}

// SummarizePlan groups a session's folder plans by resolution source and bucket.
func (s *SQLiteDatabase) SummarizePlan(sessionID int64) ([]*model.PlanCount, error) {
	var counts []*model.PlanCount
	err := queryAll(s.db, psql.Select("resolved_source", "COALESCE(bucket, '')", "COUNT(*)", "SUM(total_files)").
		From("folder_plan").
		Where(sq.Eq{"scan_session_id": sessionID}).
		GroupBy("resolved_source", "bucket").
		OrderBy("COUNT(*) DESC", "resolved_source"),
		func(rows *sql.Rows) error {
			c := &model.PlanCount{}
			if err := rows.Scan(&c.Source, &c.Bucket, &c.Folders, &c.Files); err != nil {
				return err
			}
			counts = append(counts, c)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("summarizing plan: %w", err)
	}
	return counts, nil
}

// SessionStats gathers every counter with a single query of scalar subselects.
func (s *SQLiteDatabase) SessionStats(sessionID int64) (*model.SessionStats, error) {
	filesOf := "SELECT id FROM files WHERE scan_session_id = ?"
	foldersOf := "SELECT id FROM folder_plan WHERE scan_session_id = ?"

	b := psql.Select().
		Column("(SELECT COUNT(*) FROM files WHERE scan_session_id = ?)", sessionID).
		Column("(SELECT COUNT(*) FROM files WHERE scan_session_id = ? AND date_path_resolved IS NOT NULL)", sessionID).
		Column("(SELECT COUNT(*) FROM files WHERE scan_session_id = ? AND date_resolved_at IS NOT NULL)", sessionID).
		Column("(SELECT COUNT(*) FROM file_metadata WHERE file_id IN ("+filesOf+"))", sessionID).
		Column("(SELECT COUNT(*) FROM file_metadata WHERE date_original IS NOT NULL AND file_id IN ("+filesOf+"))", sessionID).
		Column("(SELECT COUNT(*) FROM file_metadata WHERE gps_latitude IS NOT NULL AND file_id IN ("+filesOf+"))", sessionID).
		Column("(SELECT COUNT(*) FROM file_metadata WHERE skip_reason IS NOT NULL AND file_id IN ("+filesOf+"))", sessionID).
		Column("(SELECT COUNT(*) FROM file_metadata WHERE extraction_error IS NOT NULL AND file_id IN ("+filesOf+"))", sessionID).
		Column("(SELECT COUNT(*) FROM folder_plan WHERE scan_session_id = ?)", sessionID).
		Column("(SELECT COUNT(*) FROM file_plan WHERE folder_plan_id IN ("+foldersOf+"))", sessionID).
		Column("(SELECT COUNT(*) FROM file_plan WHERE is_potential_duplicate = 1 AND folder_plan_id IN ("+foldersOf+"))", sessionID).
		Column("(SELECT COUNT(*) FROM file_plan WHERE is_sidecar = 1 AND folder_plan_id IN ("+foldersOf+"))", sessionID)

	row, err := queryRow(s.db, b)
	if err != nil {
		return nil, err
	}

	st := &model.SessionStats{SessionID: sessionID}
	err = row.Scan(&st.Files, &st.WithPathDate, &st.PathResolved, &st.WithMetadata, &st.WithMetadataDate,
		&st.WithGPS, &st.MetadataSkipped, &st.MetadataErrors, &st.FolderPlans, &st.FilePlans,
		&st.Duplicates, &st.Sidecars)
	if err != nil {
		return nil, fmt.Errorf("reading session stats: %w", err)
	}
	return st, nil
}
