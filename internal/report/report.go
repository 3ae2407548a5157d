// Package report renders catalog state for the terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/facette/natsort"
	"golang.org/x/term"

	"photosort/internal/model"
	"photosort/internal/photosort"
	"photosort/internal/planner"
)

type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	label  lipgloss.Style
	muted  lipgloss.Style
	warn   lipgloss.Style
	border lipgloss.Style
}

func plainStyles() styles {
	s := lipgloss.NewStyle()
	return styles{title: s, header: s, label: s, muted: s, warn: s, border: s}
}

func colorStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		header: r.NewStyle().Bold(true),
		label:  r.NewStyle().Foreground(lipgloss.Color("14")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("8")),
		warn:   r.NewStyle().Foreground(lipgloss.Color("11")),
		border: r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Printer writes reports to w. Styling is only applied when w is a terminal.
type Printer struct {
	w      io.Writer
	styles styles
}

// NewPrinter returns a Printer for w, styled when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return &Printer{w: w, styles: colorStyles(lipgloss.NewRenderer(f))}
	}
	return &Printer{w: w, styles: plainStyles()}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) title(text string) {
	p.printf("%s\n", p.styles.title.Render(text))
}

func (p *Printer) field(label string, value any) {
	p.printf("  %s %v\n", p.styles.label.Render(fmt.Sprintf("%-16s", label+":")), value)
}

func (p *Printer) table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.styles.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.styles.header.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	p.printf("%s\n", t.String())
}

// ScanSummary prints the result of a scan.
func (p *Printer) ScanSummary(s *model.ScanSession) {
	p.title(fmt.Sprintf("Scan session #%d", s.ID))
	p.field("Root", s.SourceRoot)
	p.field("Drive", s.SourceDriveUUID)
	p.field("Status", p.status(s.Status))
	p.field("Directories", s.DirectoriesScanned)
	p.field("Files", s.FilesScanned)
	p.field("Size", FormatBytes(s.TotalBytes))
	if s.CompletedAt.Valid {
		p.field("Duration", s.CompletedAt.Time.Sub(s.StartedAt).Truncate(time.Millisecond))
	}
	if s.ErrorMessage.Valid {
		p.field("Error", p.styles.warn.Render(s.ErrorMessage.String))
	}
}

// ResolveSummary prints the result of a path-date resolution pass.
func (p *Printer) ResolveSummary(st *photosort.ResolveStats) {
	p.title("Path dates")
	p.field("Files", st.Total)
	p.field("Hierarchy", st.WithHierarchy)
	p.field("Folder", st.WithFolder)
	p.field("Filename", st.WithFilename)
	p.field("Resolved", fmt.Sprintf("%d (%s)", st.Resolved, Percent(st.Resolved, st.Total)))
}

// ExtractionSummary prints the result of a metadata extraction pass.
func (p *Printer) ExtractionSummary(st *photosort.ExtractionStats) {
	p.title(fmt.Sprintf("Metadata extraction, session #%d", st.SessionID))
	p.field("Selected", st.Selected)
	p.field("Processed", st.Processed)
	p.field("Succeeded", st.Succeeded)
	p.field("Skipped", st.Skipped)
	p.field("Failed", st.Failed)
	p.field("With date", st.WithDate)
	p.field("With GPS", st.WithGPS)
}

// PlanSummary prints the result of a planning run.
func (p *Printer) PlanSummary(sum *photosort.PlanSummary) {
	p.title(fmt.Sprintf("Plan for session #%d", sum.SessionID))
	p.field("Run", sum.RunID)
	p.field("Folders", sum.Folders)
	p.field("Files", sum.Files)
	p.field("Resolved", sum.Resolved)
	p.field("Bucketed", sum.Bucketed)
	p.field("Duplicates", sum.Duplicates)
	p.field("Sidecars", sum.Sidecars)

	sources := make([]string, 0, len(sum.BySource))
	for src := range sum.BySource {
		sources = append(sources, string(src))
	}
	sort.Strings(sources)
	for _, src := range sources {
		p.field("  "+src, sum.BySource[planner.FolderSource(src)])
	}
}

// Status prints every scan session with its counters.
func (p *Printer) Status(statuses []*photosort.SessionStatus) {
	if len(statuses) == 0 {
		p.printf("No scan sessions recorded.\n")
		return
	}

	for i, st := range statuses {
		if i > 0 {
			p.printf("\n")
		}
		s := st.Session
		p.title(fmt.Sprintf("Session #%d  %s", s.ID, s.SourceRoot))
		p.field("Status", p.status(s.Status))
		p.field("Started", s.StartedAt.Local().Format("2006-01-02 15:04:05"))
		p.field("Files", fmt.Sprintf("%d in %d directories, %s", s.FilesScanned, s.DirectoriesScanned, FormatBytes(s.TotalBytes)))

		if stats := st.Stats; stats != nil {
			p.field("Path dates", fmt.Sprintf("%d resolved, %d with a date (%s)",
				stats.PathResolved, stats.WithPathDate, Percent(int(stats.WithPathDate), int(stats.Files))))
			p.field("Metadata", fmt.Sprintf("%d extracted, %d with date, %d with GPS, %d skipped, %d failed",
				stats.WithMetadata, stats.WithMetadataDate, stats.WithGPS, stats.MetadataSkipped, stats.MetadataErrors))
			p.field("Plan", fmt.Sprintf("%d folders, %d files, %d duplicates, %d sidecars",
				stats.FolderPlans, stats.FilePlans, stats.Duplicates, stats.Sidecars))
		}

		if len(st.Plan) > 0 {
			rows := make([][]string, 0, len(st.Plan))
			for _, c := range st.Plan {
				rows = append(rows, []string{c.Source, orDash(c.Bucket), fmt.Sprint(c.Folders), fmt.Sprint(c.Files)})
			}
			p.table([]string{"Source", "Bucket", "Folders", "Files"}, rows)
		}
	}
}

// Plan prints the stored plan of a session, folders in natural order.
func (p *Printer) Plan(session *model.ScanSession, details []*photosort.FolderPlanDetail) {
	p.title(fmt.Sprintf("Plan for session #%d  %s", session.ID, session.SourceRoot))
	if len(details) == 0 {
		p.printf("No plan recorded. Run `photosort plan` first.\n")
		return
	}

	sorted := make([]*photosort.FolderPlanDetail, len(details))
	copy(sorted, details)
	sort.SliceStable(sorted, func(i, j int) bool {
		return natsort.Compare(sorted[i].Folder.SourceFolder, sorted[j].Folder.SourceFolder)
	})

	for _, d := range sorted {
		f := d.Folder
		source := f.SourceFolder
		if source == "" {
			source = "."
		}
		p.printf("\n%s -> %s\n", p.styles.header.Render(source), f.TargetFolder)

		detail := f.ResolvedSource
		if f.ResolvedDate.Valid {
			detail += ", " + FormatDate(int(f.ResolvedDate.Int64))
		}
		detail += fmt.Sprintf(", coverage %.0f%%", f.DateCoveragePct*100)
		if f.Annotation.Valid {
			detail += ", " + f.Annotation.String
		}
		p.printf("  %s\n", p.styles.muted.Render(detail))

		rows := make([][]string, 0, len(d.Files))
		for _, fp := range d.Files {
			flags := fileFlags(fp)
			date := "-"
			if fp.FileResolvedDate.Valid {
				date = FormatDate(int(fp.FileResolvedDate.Int64))
			}
			rows = append(rows, []string{fp.SourcePath, fp.TargetPath, date, fp.FileDateSource, flags})
		}
		p.table([]string{"Source", "Target", "Date", "From", "Flags"}, rows)
	}
}

func fileFlags(fp *model.FilePlan) string {
	var flags []string
	if fp.IsPotentialDuplicate {
		flags = append(flags, "dupe")
	}
	if fp.IsSidecar {
		flags = append(flags, "sidecar")
	}
	return strings.Join(flags, ",")
}

// History prints recent operations, newest first.
func (p *Printer) History(ops []*model.Operation) {
	if len(ops) == 0 {
		p.printf("No operations recorded.\n")
		return
	}

	rows := make([][]string, 0, len(ops))
	for _, op := range ops {
		duration := ""
		if op.FinishedAt.Valid {
			duration = op.FinishedAt.Time.Sub(op.StartedAt).Truncate(time.Millisecond).String()
		}
		rows = append(rows, []string{
			fmt.Sprintf("#%d", op.ID),
			op.Operation,
			op.StartedAt.Local().Format("2006-01-02 15:04:05"),
			p.status(op.Status),
			duration,
		})
	}
	p.table([]string{"ID", "Operation", "Started", "Status", "Duration"}, rows)
}

// Snapshot prints the result of a snapshot restore.
func (p *Printer) Snapshot(info *photosort.SnapshotInfo, out string) {
	enc := "plaintext"
	if info.Encrypted {
		enc = "encrypted"
	}
	p.printf("Restored snapshot #%d (%s, %s) to %s\n", info.Version, enc, FormatBytes(info.Size), out)
}

func (p *Printer) status(s string) string {
	switch s {
	case model.ScanStatusFailed, "error":
		return p.styles.warn.Render(s)
	case model.ScanStatusInProgress, "running":
		return p.styles.muted.Render(s)
	default:
		return s
	}
}

// FormatDate renders a YYYYMMDD value as YYYY-MM-DD, or "-" when absent.
func FormatDate(date int) string {
	if date <= 0 {
		return "-"
	}
	return fmt.Sprintf("%04d-%02d-%02d", date/10000, date/100%100, date%100)
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Percent renders part/total as a whole percentage.
func Percent(part, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(part)*100/float64(total))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
