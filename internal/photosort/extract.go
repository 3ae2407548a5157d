package photosort

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"photosort/internal/model"
	"photosort/internal/pathdate"
)

// DefaultExtractBatchSize is the number of files handed to the extractor at once.
const DefaultExtractBatchSize = 100

// ExtractOptions controls one ExtractMetadata pass.
type ExtractOptions struct {
	SessionID int64 // 0 selects the latest completed session
	Strategy  ExtractionStrategy
	BatchSize int
	Limit     int // 0 means no limit
}

// ExtractionStats counts the outcome of an ExtractMetadata pass.
type ExtractionStats struct {
	SessionID int64
	Selected  int
	Processed int
	Succeeded int
	Skipped   int
	Failed    int
	WithDate  int
	WithGPS   int
}

// ExtractMetadata runs the metadata extractor over the files of a session
// that have no metadata row yet. Files smaller than the configured minimum
// are recorded with a skip reason. Per-file failures are stored on the row
// and do not stop the pass.
func (s *PhotosortService) ExtractMetadata(ctx context.Context, opts ExtractOptions) (*ExtractionStats, error) {
	if s.extractor == nil {
		return nil, fmt.Errorf("no metadata extractor configured")
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyFull
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultExtractBatchSize
	}

	session, err := s.session(opts.SessionID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.database.ListExtractionCandidates(session.ID)
	if err != nil {
		return nil, err
	}

	var selected []*model.ExtractionCandidate
	for _, c := range candidates {
		if opts.Strategy.Selects(c) {
			selected = append(selected, c)
		}
	}
	if opts.Limit > 0 && len(selected) > opts.Limit {
		selected = selected[:opts.Limit]
	}

	stats := &ExtractionStats{SessionID: session.ID, Selected: len(selected)}
	s.logger.Info("extracting metadata",
		"session", session.ID,
		"strategy", string(opts.Strategy),
		"extractor", s.extractor.Version(),
		"files", len(selected))

	prog := newProgress(s.logger, "extraction progress", s.settings.ProgressInterval, 0)
	for start := 0; start < len(selected); start += opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		end := min(start+opts.BatchSize, len(selected))

		rows, err := s.extractBatch(ctx, session.SourceRoot, selected[start:end], stats)
		if err != nil {
			return stats, err
		}
		if err := s.database.SaveFileMetadata(rows); err != nil {
			return stats, fmt.Errorf("saving metadata: %w", err)
		}

		prog.update(int64(stats.Processed), "of", len(selected))
	}

	s.logger.Info("metadata extraction complete",
		"processed", stats.Processed,
		"succeeded", stats.Succeeded,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"with_date", stats.WithDate,
		"with_gps", stats.WithGPS)
	return stats, nil
}

func (s *PhotosortService) extractBatch(ctx context.Context, root string, batch []*model.ExtractionCandidate, stats *ExtractionStats) ([]*model.FileMetadata, error) {
	now := s.clock.Now()
	version := sql.NullString{String: s.extractor.Version(), Valid: s.extractor.Version() != ""}

	rows := make([]*model.FileMetadata, 0, len(batch))
	var paths []string
	pending := make(map[string]*model.ExtractionCandidate)

	for _, c := range batch {
		stats.Processed++
		if c.SizeBytes < s.settings.MinFileSize {
			stats.Skipped++
			rows = append(rows, &model.FileMetadata{
				FileID:           c.FileID,
				SkipReason:       nullString(fmt.Sprintf("file_too_small:%d_bytes", c.SizeBytes)),
				ExtractorVersion: version,
				ExtractedAt:      now,
			})
			continue
		}
		p := filepath.Join(root, filepath.FromSlash(c.SourcePath))
		paths = append(paths, p)
		pending[p] = c
	}
	if len(paths) == 0 {
		return rows, nil
	}

	results, err := s.extractor.Extract(ctx, paths)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("extractor batch failed", "files", len(paths), "error", err)
		results = nil
	}

	for _, p := range paths {
		c := pending[p]
		m, ok := results[p]
		switch {
		case err != nil:
			m = &ExtractedMetadata{Error: err.Error()}
		case !ok:
			m = &ExtractedMetadata{Error: "no metadata returned"}
		}

		row := toFileMetadata(c.FileID, m)
		row.ExtractorVersion = version
		row.ExtractedAt = now
		rows = append(rows, row)

		if m.Error != "" {
			stats.Failed++
			s.logger.Debug("extraction failed", "path", c.SourcePath, "error", m.Error)
			continue
		}
		stats.Succeeded++
		if row.DateOriginal.Valid {
			stats.WithDate++
		}
		if row.GPSLatitude.Valid {
			stats.WithGPS++
		}
	}
	return rows, nil
}

func toFileMetadata(fileID int64, m *ExtractedMetadata) *model.FileMetadata {
	row := &model.FileMetadata{
		FileID:          fileID,
		CameraMake:      nullString(m.CameraMake),
		CameraModel:     nullString(m.CameraModel),
		LensModel:       nullString(m.LensModel),
		Width:           nullInt(m.Width),
		Height:          nullInt(m.Height),
		Orientation:     nullInt(m.Orientation),
		DurationSeconds: nullFloat(m.DurationSeconds),
		FrameRate:       nullFloat(m.FrameRate),
		MIMEType:        nullString(m.MIMEType),
		Families:        nullString(strings.Join(m.Families, ",")),
		MetadataJSON:    nullString(m.RawJSON),
		ExtractionError: nullString(m.Error),
	}
	row.DateOriginal, row.DateOriginalUnix = dateColumns(m.DateOriginal)
	row.DateDigitized, row.DateDigitizedUnix = dateColumns(m.DateDigitized)
	row.DateModify, row.DateModifyUnix = dateColumns(m.DateModify)
	if m.GPS != nil {
		row.GPSLatitude = sql.NullFloat64{Float64: m.GPS.Latitude, Valid: true}
		row.GPSLongitude = sql.NullFloat64{Float64: m.GPS.Longitude, Valid: true}
		row.GPSAltitude = m.GPS.Altitude
	}
	return row
}

// dateColumns stores a metadata timestamp as YYYYMMDD and Unix seconds. The
// wall clock reading is kept as is; embedded dates rarely carry a zone.
func dateColumns(t time.Time) (sql.NullInt64, sql.NullInt64) {
	if t.IsZero() {
		return sql.NullInt64{}, sql.NullInt64{}
	}
	date := pathdate.DateInt(t.Year(), int(t.Month()), t.Day())
	if date == 0 {
		return sql.NullInt64{}, sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(date), Valid: true}, sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: v != 0}
}
