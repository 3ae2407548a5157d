package planner

import "testing"

func TestAnalyzeFolder(t *testing.T) {
	t.Run("half coverage single date", func(t *testing.T) {
		files := []FolderFile{
			{Date: 20231015, IsImage: true},
			{Date: 20231015, IsImage: true},
			{IsImage: true},
			{IsImage: true},
		}
		a := AnalyzeFolder(files)

		if a.TotalFiles != 4 || a.ImageFiles != 4 || a.ImagesWithDate != 2 {
			t.Errorf("counts = %d/%d/%d, want 4/4/2", a.TotalFiles, a.ImageFiles, a.ImagesWithDate)
		}
		if a.DateCoveragePct != 0.5 {
			t.Errorf("DateCoveragePct = %v, want 0.5", a.DateCoveragePct)
		}
		if a.PrevalentDate != 20231015 {
			t.Errorf("PrevalentDate = %d, want 20231015", a.PrevalentDate)
		}
		if a.PrevalentDatePct != 1.0 {
			t.Errorf("PrevalentDatePct = %v, want 1.0", a.PrevalentDatePct)
		}
		if a.UniqueDateCount != 1 {
			t.Errorf("UniqueDateCount = %d, want 1", a.UniqueDateCount)
		}
	})

	t.Run("no images", func(t *testing.T) {
		a := AnalyzeFolder([]FolderFile{{Date: 20231015}, {Date: 20231016}})
		if a.TotalFiles != 2 {
			t.Errorf("TotalFiles = %d, want 2", a.TotalFiles)
		}
		if a.ImageFiles != 0 || a.DateCoveragePct != 0 || a.PrevalentDate != 0 {
			t.Errorf("got %+v, want zero image statistics", a)
		}
	})

	t.Run("images without dates", func(t *testing.T) {
		a := AnalyzeFolder([]FolderFile{{IsImage: true}, {IsImage: true}})
		if a.DateCoveragePct != 0 {
			t.Errorf("DateCoveragePct = %v, want 0", a.DateCoveragePct)
		}
		if a.MinDate != 0 || a.MaxDate != 0 || a.UniqueDateCount != 0 || a.DateSpanMonths != 0 {
			t.Errorf("got %+v, want zero date statistics", a)
		}
	})

	t.Run("non images do not count toward dates", func(t *testing.T) {
		a := AnalyzeFolder([]FolderFile{
			{Date: 20231015, IsImage: true},
			{Date: 20200101, IsImage: false},
		})
		if a.MinDate != 20231015 || a.MaxDate != 20231015 {
			t.Errorf("Min/MaxDate = %d/%d, want 20231015/20231015", a.MinDate, a.MaxDate)
		}
	})

	t.Run("tie goes to first encountered", func(t *testing.T) {
		a := AnalyzeFolder([]FolderFile{
			{Date: 20231016, IsImage: true},
			{Date: 20231015, IsImage: true},
			{Date: 20231015, IsImage: true},
			{Date: 20231016, IsImage: true},
		})
		if a.PrevalentDate != 20231016 {
			t.Errorf("PrevalentDate = %d, want 20231016", a.PrevalentDate)
		}
		if a.PrevalentDatePct != 0.5 {
			t.Errorf("PrevalentDatePct = %v, want 0.5", a.PrevalentDatePct)
		}
		if a.UniqueDateCount != 2 {
			t.Errorf("UniqueDateCount = %d, want 2", a.UniqueDateCount)
		}
	})

	t.Run("span across years", func(t *testing.T) {
		a := AnalyzeFolder([]FolderFile{
			{Date: 20221120, IsImage: true},
			{Date: 20230203, IsImage: true},
		})
		if a.DateSpanMonths != 3 {
			t.Errorf("DateSpanMonths = %d, want 3", a.DateSpanMonths)
		}
	})
}

func TestMonthSpan(t *testing.T) {
	tests := []struct {
		min, max int
		want     int
	}{
		{20230101, 20230131, 0},
		{20230131, 20230201, 1},
		{20230115, 20230415, 3},
		{20221231, 20230101, 1},
		{20200101, 20231231, 47},
	}
	for _, tt := range tests {
		if got := MonthSpan(tt.min, tt.max); got != tt.want {
			t.Errorf("MonthSpan(%d, %d) = %d, want %d", tt.min, tt.max, got, tt.want)
		}
	}
}
