package photosort

import (
	"database/sql"
	"fmt"

	"photosort/internal/model"
	"photosort/internal/pathdate"
)

// DefaultResolveBatchSize is the number of files read per batch by ResolveDates.
const DefaultResolveBatchSize = 1000

// ResolveStats counts the outcome of a ResolveDates pass.
type ResolveStats struct {
	Total         int
	WithHierarchy int
	WithFolder    int
	WithFilename  int
	Resolved      int
}

// ResolveDates extracts path dates for files that have not been resolved yet,
// or for every file when reprocess is set. A sessionID of 0 covers all sessions.
func (s *PhotosortService) ResolveDates(sessionID int64, reprocess bool, batchSize int) (*ResolveStats, error) {
	if batchSize <= 0 {
		batchSize = DefaultResolveBatchSize
	}
	s.logger.Info("resolving path dates", "session", sessionID, "reprocess", reprocess, "batch_size", batchSize)

	stats := &ResolveStats{}
	prog := newProgress(s.logger, "resolve progress", s.settings.ProgressInterval, 0)
	var afterID int64

	for {
		files, err := s.database.ListFilesForPathResolution(sessionID, reprocess, afterID, batchSize)
		if err != nil {
			return stats, err
		}
		if len(files) == 0 {
			break
		}

		dates := make([]*model.PathDates, 0, len(files))
		for _, f := range files {
			dates = append(dates, s.resolveFile(f, stats))
		}
		if err := s.database.UpdatePathDates(dates, s.clock.Now()); err != nil {
			return stats, fmt.Errorf("storing path dates: %w", err)
		}

		afterID = files[len(files)-1].ID
		prog.update(int64(stats.Total), "resolved", stats.Resolved)
	}

	s.logger.Info("path dates resolved",
		"files", stats.Total,
		"hierarchy", stats.WithHierarchy,
		"folder", stats.WithFolder,
		"filename", stats.WithFilename,
		"resolved", stats.Resolved)
	return stats, nil
}

func (s *PhotosortService) resolveFile(f *model.FileRecord, stats *ResolveStats) *model.PathDates {
	r := pathdate.Resolve(f.SourcePath)

	stats.Total++
	if r.Hierarchy.Found() {
		stats.WithHierarchy++
	}
	if r.Folder.Found() {
		stats.WithFolder++
	}
	if r.Filename.Found() {
		stats.WithFilename++
	}
	if r.Date != 0 {
		stats.Resolved++
	}

	d := &model.PathDates{FileID: f.ID}
	d.Hierarchy, d.HierarchySource = matchColumns(r.Hierarchy)
	d.Folder, d.FolderSource = matchColumns(r.Folder)
	d.Filename, d.FilenameSource = matchColumns(r.Filename)
	d.Resolved, d.ResolvedSource = matchColumns(pathdate.Match{Date: r.Date, Source: r.Source})
	return d
}

func matchColumns(m pathdate.Match) (sql.NullInt64, sql.NullString) {
	if !m.Found() {
		return sql.NullInt64{}, sql.NullString{}
	}
	return sql.NullInt64{Int64: int64(m.Date), Valid: true}, sql.NullString{String: m.Source, Valid: true}
}
