package photosort

import (
	"database/sql"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"photosort/internal/model"
	"photosort/internal/planner"
)

// PlanSummary counts the rows written by one Plan run.
type PlanSummary struct {
	SessionID  int64
	RunID      string
	Folders    int
	Files      int
	Resolved   int // folders with a resolved date
	Bucketed   int // folders sent to a bucket
	Duplicates int
	Sidecars   int
	BySource   map[planner.FolderSource]int
}

// Plan computes target locations for every file of a scan session. Any plan
// already stored for the session is replaced. Folders are planned shallow to
// deep, in lexicographic order within a depth, and each folder is stored in
// its own transaction. Plan must not run concurrently for the same session.
func (s *PhotosortService) Plan(sessionID int64) (*PlanSummary, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	summary := &PlanSummary{
		SessionID: session.ID,
		RunID:     s.idgen.New(),
		BySource:  make(map[planner.FolderSource]int),
	}
	cfg := s.settings.Planner
	s.logger.Info("planning started", "session", session.ID, "run", summary.RunID,
		"min_coverage", cfg.MinCoverageThreshold,
		"min_prevalence", cfg.MinPrevalenceThreshold,
		"max_span_months", cfg.MaxDateSpanMonths)

	if err := s.database.ClearPlan(session.ID); err != nil {
		return nil, fmt.Errorf("clearing previous plan: %w", err)
	}

	folders, err := s.database.ListPlanFolders(session.ID)
	if err != nil {
		return nil, err
	}
	SortFoldersByDepth(folders)

	index := planner.NewTargetIndex()
	for _, folder := range folders {
		files, err := s.database.ListPlanFiles(session.ID, folder)
		if err != nil {
			return summary, err
		}
		if len(files) == 0 {
			continue
		}

		fp, filePlans := BuildFolderPlan(folder, files, cfg, index, s.clock.Now())
		fp.ScanSessionID = session.ID
		fp.PlanRunID = summary.RunID
		if _, err := s.database.InsertFolderPlan(fp, filePlans); err != nil {
			return summary, fmt.Errorf("storing plan for %q: %w", folder, err)
		}

		summary.Folders++
		summary.Files += len(filePlans)
		summary.BySource[planner.FolderSource(fp.ResolvedSource)]++
		if fp.Bucket.Valid {
			summary.Bucketed++
		} else {
			summary.Resolved++
		}
		for _, p := range filePlans {
			if p.IsPotentialDuplicate {
				summary.Duplicates++
			}
			if p.IsSidecar {
				summary.Sidecars++
			}
		}
		s.logger.Debug("folder planned", "folder", folder, "target", fp.TargetFolder, "source", fp.ResolvedSource)
	}

	s.logger.Info("planning complete",
		"folders", summary.Folders,
		"files", summary.Files,
		"resolved", summary.Resolved,
		"bucketed", summary.Bucketed,
		"duplicates", summary.Duplicates,
		"target_folders", index.Folders())
	return summary, nil
}

// SortFoldersByDepth orders relative folder paths by the number of "/"
// separators, then lexicographically. The root folder "" sorts first.
func SortFoldersByDepth(folders []string) {
	slices.SortFunc(folders, func(a, b string) int {
		da, db := depth(a), depth(b)
		if da != db {
			return da - db
		}
		return strings.Compare(a, b)
	})
}

func depth(folder string) int {
	if folder == "" {
		return -1
	}
	return strings.Count(folder, "/")
}

// folderPathDate is the date a file's directories carry: a date in a folder
// name when present, otherwise the yyyy/mm/dd hierarchy. The folder name is
// always at least as deep as the hierarchy match.
func folderPathDate(f *model.PlanFile) int {
	if f.DatePathFolder != 0 {
		return f.DatePathFolder
	}
	return f.DatePathHierarchy
}

// BuildFolderPlan resolves one source folder and its files. files must be in
// source path order. Filenames are claimed in index, which carries the
// collisions across folders of one run.
func BuildFolderPlan(folder string, files []*model.PlanFile, cfg planner.Config, index *planner.TargetIndex, now time.Time) (*model.FolderPlan, []*model.FilePlan) {
	dates := make([]planner.FileDate, len(files))
	analysisInput := make([]planner.FolderFile, len(files))
	siblings := make([]planner.SiblingFile, len(files))
	pathDate := 0

	for i, f := range files {
		dates[i] = planner.ResolveFileDate(planner.FileDateInputs{
			PathFolder:   folderPathDate(f),
			PathFilename: f.DatePathFilename,
			Metadata:     f.DateOriginal,
			FSModified:   f.FSModifiedAt,
		})
		analysisInput[i] = planner.FolderFile{Date: dates[i].Date, IsImage: planner.IsImage(f.Extension)}
		siblings[i] = planner.SiblingFile{Base: f.FilenameBase, Extension: f.Extension}
		if pathDate == 0 {
			pathDate = folderPathDate(f)
		}
	}

	analysis := planner.AnalyzeFolder(analysisInput)
	var res planner.FolderResolution
	if pathDate != 0 {
		res = planner.ResolveFolderWithPathDate(pathDate)
	} else {
		res = planner.ResolveFolder(analysis, cfg)
	}

	var target, annotation string
	if res.Bucket != planner.BucketNone {
		target = planner.BuildBucketPath(res.Bucket, folder)
	} else {
		name := ""
		if folder != "" {
			name = path.Base(folder)
		}
		annotation = planner.ExtractAnnotation(name, res.ResolvedDate)
		target = planner.BuildTargetFolder(res.ResolvedDate, annotation)
	}

	fp := &model.FolderPlan{
		SourceFolder:        folder,
		ResolvedDate:        nullDate(res.ResolvedDate),
		ResolvedSource:      string(res.Source),
		Bucket:              nullString(string(res.Bucket)),
		TargetFolder:        target,
		Annotation:          nullString(annotation),
		TotalFiles:          int64(analysis.TotalFiles),
		ImageFiles:          int64(analysis.ImageFiles),
		ImagesWithDate:      int64(analysis.ImagesWithDate),
		DateCoveragePct:     analysis.DateCoveragePct,
		PrevalentDate:       nullDate(analysis.PrevalentDate),
		PrevalentDateCount:  int64(analysis.PrevalentDateCount),
		PrevalentDatePct:    analysis.PrevalentDatePct,
		MinDate:             nullDate(analysis.MinDate),
		MaxDate:             nullDate(analysis.MaxDate),
		DateSpanMonths:      int64(analysis.DateSpanMonths),
		UniqueDateCount:     int64(analysis.UniqueDateCount),
		ConfigMinCoverage:   cfg.MinCoverageThreshold,
		ConfigMinPrevalence: cfg.MinPrevalenceThreshold,
		ConfigMaxSpanMonths: int64(cfg.MaxDateSpanMonths),
		PlannedAt:           now,
	}

	plans := make([]*model.FilePlan, len(files))
	for i, f := range files {
		sidecar := planner.DetectSidecar(f.FilenameBase, f.Extension, siblings)
		dup := index.Claim(target, f.Filename, f.SourcePath)

		plans[i] = &model.FilePlan{
			FileID:               f.FileID,
			SourcePath:           f.SourcePath,
			FileResolvedDate:     nullDate(dates[i].Date),
			FileDateSource:       string(dates[i].Source),
			TargetFolder:         target,
			TargetFilename:       dup.Filename,
			TargetPath:           target + "/" + dup.Filename,
			IsPotentialDuplicate: dup.IsDuplicate,
			DuplicateSourceHash:  nullString(dup.SourceHash),
			IsSidecar:            sidecar,
			ResolutionReason:     resolutionReason(res, dates[i], sidecar, dup.IsDuplicate),
			PlannedAt:            now,
		}
	}
	return fp, plans
}

func resolutionReason(res planner.FolderResolution, date planner.FileDate, sidecar, duplicate bool) string {
	parts := []string{"folder:" + string(res.Source), "file:" + string(date.Source)}
	if sidecar {
		parts = append(parts, "sidecar")
	}
	if duplicate {
		parts = append(parts, "renamed_duplicate")
	}
	return strings.Join(parts, " ")
}

func nullDate(date int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(date), Valid: date != 0}
}
