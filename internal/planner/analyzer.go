package planner

// FolderFile is the view of one folder member the analyzer needs.
type FolderFile struct {
	Date    int // resolved per-file date, 0 when unknown
	IsImage bool
}

// FolderDateAnalysis summarizes the dates of the images in one folder.
// Date fields are zero when no image carries a date.
type FolderDateAnalysis struct {
	TotalFiles      int
	ImageFiles      int
	ImagesWithDate  int
	DateCoveragePct float64

	PrevalentDate      int
	PrevalentDateCount int
	PrevalentDatePct   float64

	MinDate         int
	MaxDate         int
	DateSpanMonths  int
	UniqueDateCount int
}

// AnalyzeFolder computes date statistics over a folder's files. Only images
// contribute to the date statistics; TotalFiles counts every file.
//
// When several dates share the highest count, the one encountered first in
// files wins.
func AnalyzeFolder(files []FolderFile) FolderDateAnalysis {
	a := FolderDateAnalysis{TotalFiles: len(files)}

	counts := make(map[int]int)
	var order []int

	for _, f := range files {
		if !f.IsImage {
			continue
		}
		a.ImageFiles++
		if f.Date == 0 {
			continue
		}
		a.ImagesWithDate++
		if _, seen := counts[f.Date]; !seen {
			order = append(order, f.Date)
		}
		counts[f.Date]++

		if a.MinDate == 0 || f.Date < a.MinDate {
			a.MinDate = f.Date
		}
		if f.Date > a.MaxDate {
			a.MaxDate = f.Date
		}
	}

	if a.ImageFiles > 0 {
		a.DateCoveragePct = float64(a.ImagesWithDate) / float64(a.ImageFiles)
	}
	if a.ImagesWithDate == 0 {
		return a
	}

	for _, d := range order {
		if counts[d] > a.PrevalentDateCount {
			a.PrevalentDate = d
			a.PrevalentDateCount = counts[d]
		}
	}
	a.PrevalentDatePct = float64(a.PrevalentDateCount) / float64(a.ImagesWithDate)
	a.UniqueDateCount = len(order)
	a.DateSpanMonths = MonthSpan(a.MinDate, a.MaxDate)

	return a
}

// MonthSpan returns the number of calendar months between two YYYYMMDD dates,
// ignoring the day of month. Dates in the same month span zero months.
func MonthSpan(minDate, maxDate int) int {
	minY, minM := minDate/10000, minDate/100%100
	maxY, maxM := maxDate/10000, maxDate/100%100
	return (maxY-minY)*12 + (maxM - minM)
}
