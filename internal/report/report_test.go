package report

import (
	"bytes"
	"database/sql"
	"strings"
	"testing"
	"time"

	"photosort/internal/model"
	"photosort/internal/photosort"
	"photosort/internal/planner"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		date int
		want string
	}{
		{20231015, "2023-10-15"},
		{19990101, "1999-01-01"},
		{0, "-"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatDate(tt.date); got != tt.want {
				t.Errorf("FormatDate(%d) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatBytes(tt.n); got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(1, 4); got != "25%" {
		t.Errorf("Percent(1, 4) = %q, want %q", got, "25%")
	}
	if got := Percent(3, 0); got != "0%" {
		t.Errorf("Percent(3, 0) = %q, want %q", got, "0%")
	}
}

func TestNewPrinter_plainForBuffers(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.title("Catalog")

	if got := buf.String(); got != "Catalog\n" {
		t.Errorf("title output = %q, want plain text", got)
	}
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func TestPrinter_Status(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		NewPrinter(&buf).Status(nil)
		assertContains(t, buf.String(), "No scan sessions recorded.")
	})

	t.Run("session with plan", func(t *testing.T) {
		var buf bytes.Buffer
		NewPrinter(&buf).Status([]*photosort.SessionStatus{{
			Session: &model.ScanSession{
				ID: 3, SourceRoot: "/media/card", Status: model.ScanStatusCompleted,
				FilesScanned: 12, DirectoriesScanned: 4, TotalBytes: 2048,
				StartedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			},
			Stats: &model.SessionStats{Files: 12, WithPathDate: 6, PathResolved: 12, WithMetadata: 8},
			Plan: []*model.PlanCount{
				{Source: "unanimous", Folders: 2, Files: 9},
				{Source: "no_images", Bucket: "_non_media", Folders: 1, Files: 3},
			},
		}})

		assertContains(t, buf.String(),
			"Session #3  /media/card",
			"completed",
			"12 in 4 directories, 2.0 KiB",
			"12 resolved, 6 with a date (50%)",
			"_non_media",
			"unanimous",
		)
	})
}

func TestPrinter_Plan(t *testing.T) {
	session := &model.ScanSession{ID: 1, SourceRoot: "/photos"}

	t.Run("no plan", func(t *testing.T) {
		var buf bytes.Buffer
		NewPrinter(&buf).Plan(session, nil)
		assertContains(t, buf.String(), "No plan recorded.")
	})

	t.Run("folders in natural order", func(t *testing.T) {
		folder := func(name, target string) *photosort.FolderPlanDetail {
			return &photosort.FolderPlanDetail{Folder: &model.FolderPlan{
				SourceFolder: name, TargetFolder: target, ResolvedSource: "unanimous",
				ResolvedDate: sql.NullInt64{Int64: 20231015, Valid: true}, DateCoveragePct: 1,
			}}
		}
		details := []*photosort.FolderPlanDetail{
			folder("trip10", "2023/2023_10/20231015-trip10"),
			folder("trip2", "2023/2023_10/20231015-trip2"),
		}
		details[1].Files = []*model.FilePlan{{
			SourcePath: "trip2/a.jpg", TargetPath: "2023/2023_10/20231015-trip2/a.jpg",
			FileResolvedDate: sql.NullInt64{Int64: 20231015, Valid: true}, FileDateSource: "metadata",
			IsPotentialDuplicate: true,
		}}

		var buf bytes.Buffer
		NewPrinter(&buf).Plan(session, details)
		out := buf.String()

		assertContains(t, out, "trip2 -> 2023/2023_10/20231015-trip2", "unanimous, 2023-10-15, coverage 100%", "dupe")
		if strings.Index(out, "trip2 ->") > strings.Index(out, "trip10 ->") {
			t.Errorf("trip2 should be listed before trip10:\n%s", out)
		}
		if details[0].Folder.SourceFolder != "trip10" {
			t.Error("Plan() reordered the caller's slice")
		}
	})
}

func TestPrinter_History(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		NewPrinter(&buf).History(nil)
		assertContains(t, buf.String(), "No operations recorded.")
	})

	t.Run("operations", func(t *testing.T) {
		start := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
		var buf bytes.Buffer
		NewPrinter(&buf).History([]*model.Operation{
			{ID: 2, Operation: "plan", StartedAt: start, Status: "error"},
			{ID: 1, Operation: "scan", StartedAt: start, Status: "success",
				FinishedAt: sql.NullTime{Time: start.Add(1500 * time.Millisecond), Valid: true}},
		})
		assertContains(t, buf.String(), "#2", "plan", "error", "#1", "scan", "1.5s")
	})
}

func TestPrinter_Summaries(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.ResolveSummary(&photosort.ResolveStats{Total: 4, WithFolder: 2, Resolved: 3})
	p.ExtractionSummary(&photosort.ExtractionStats{SessionID: 1, Selected: 5, Succeeded: 4, WithGPS: 1})
	p.PlanSummary(&photosort.PlanSummary{
		SessionID: 1, RunID: "run-1", Folders: 2, Files: 7,
		BySource: map[planner.FolderSource]int{planner.FolderSourceUnanimous: 1, planner.FolderSourceNoImages: 1},
	})

	assertContains(t, buf.String(),
		"3 (75%)",
		"Metadata extraction, session #1",
		"run-1",
		"no_images",
		"unanimous",
	)
}
