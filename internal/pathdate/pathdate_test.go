package pathdate

import (
	"fmt"
	"testing"
	"time"
)

func TestHierarchy(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantDate   int
		wantSource string
	}{
		{"simple nesting", "2023/05/14/photo.jpg", 20230514, "2023/05/14"},
		{"nested under other folders", "photos/2023/05/14/photo.jpg", 20230514, "2023/05/14"},
		{"deepest triple wins", "2020/01/01/2023/05/14/photo.jpg", 20230514, "2023/05/14"},
		{"too few segments", "2023/05/photo.jpg", 0, ""},
		{"needs a filename after the triple", "2023/05/14", 0, ""},
		{"single digit month", "2023/5/14/photo.jpg", 0, ""},
		{"invalid calendar date", "2023/02/30/photo.jpg", 0, ""},
		{"leap day", "2024/02/29/photo.jpg", 20240229, "2024/02/29"},
		{"non leap year", "2023/02/29/photo.jpg", 0, ""},
		{"year below range", "1899/12/31/photo.jpg", 0, ""},
		{"year above range", "2100/01/01/photo.jpg", 0, ""},
		{"invalid deeper triple falls back", "2020/01/01/2023/02/30/photo.jpg", 20200101, "2020/01/01"},
		{"leading slash", "/2023/05/14/photo.jpg", 20230514, "2023/05/14"},
		{"month 13", "2023/13/01/photo.jpg", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hierarchy(tt.path)
			if got.Date != tt.wantDate {
				t.Errorf("Hierarchy(%q).Date = %d, want %d", tt.path, got.Date, tt.wantDate)
			}
			if got.Source != tt.wantSource {
				t.Errorf("Hierarchy(%q).Source = %q, want %q", tt.path, got.Source, tt.wantSource)
			}
		})
	}
}

func TestHierarchy_YearBounds(t *testing.T) {
	for _, y := range []int{1899, 1900, 1901, 1999, 2000, 2050, 2099, 2100} {
		path := fmt.Sprintf("%04d/06/15/x.jpg", y)
		want := 0
		if y >= MinYear && y <= MaxYear {
			want = y*10000 + 615
		}
		if got := Hierarchy(path).Date; got != want {
			t.Errorf("Hierarchy(%q) = %d, want %d", path, got, want)
		}
	}
}

func TestFolder(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantDate   int
		wantSource string
	}{
		{"compact", "20230514/photo.jpg", 20230514, "20230514"},
		{"hyphenated", "2023-05-14/photo.jpg", 20230514, "2023-05-14"},
		{"underscored", "2023_05_14/photo.jpg", 20230514, "2023_05_14"},
		{"with suffix", "20230514-sunset/photo.jpg", 20230514, "20230514-sunset"},
		{"with prefix", "sunset-20230514/photo.jpg", 20230514, "sunset-20230514"},
		{"with spaces", "Trip 2023-05-14 Rome/photo.jpg", 20230514, "Trip 2023-05-14 Rome"},
		{"deepest folder wins", "20200101/20230514/photo.jpg", 20230514, "20230514"},
		{"falls back to shallower folder", "20200101/misc/photo.jpg", 20200101, "20200101"},
		{"inside longer digit run", "120230514/photo.jpg", 0, ""},
		{"followed by digit", "202305149/photo.jpg", 0, ""},
		{"filename is ignored", "misc/20230514.jpg", 0, ""},
		{"no directory", "20230514.jpg", 0, ""},
		{"invalid calendar date", "20230230/photo.jpg", 0, ""},
		{"invalid then valid in same folder", "20230230_20230301/photo.jpg", 20230301, "20230230_20230301"},
		{"year out of range", "18990101/photo.jpg", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Folder(tt.path)
			if got.Date != tt.wantDate {
				t.Errorf("Folder(%q).Date = %d, want %d", tt.path, got.Date, tt.wantDate)
			}
			if got.Source != tt.wantSource {
				t.Errorf("Folder(%q).Source = %q, want %q", tt.path, got.Source, tt.wantSource)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     int
	}{
		{"camera style", "IMG_20230514_101500.jpg", 20230514},
		{"leftmost wins", "20230514_copy_20200101.jpg", 20230514},
		{"hyphenated", "2023-05-14 party.jpg", 20230514},
		{"no date", "DSC01234.ARW", 0},
		{"digit run too long", "1234202305145678.jpg", 0},
		{"invalid month", "20231314.jpg", 0},
		{"whatsapp", "IMG-20230514-WA0001.jpg", 20230514},
		{"skips invalid leftmost", "20230231_20230301.jpg", 20230301},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filename(tt.filename)
			if got.Date != tt.want {
				t.Errorf("Filename(%q).Date = %d, want %d", tt.filename, got.Date, tt.want)
			}
			if got.Found() && got.Source != tt.filename {
				t.Errorf("Filename(%q).Source = %q, want %q", tt.filename, got.Source, tt.filename)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantDate   int
		wantSource string
	}{
		{"hierarchy beats folder and filename", "2023/05/14/20200101/IMG_20190101.jpg", 20230514, SourceHierarchy},
		{"folder beats filename", "20200101-trip/IMG_20190101.jpg", 20200101, SourceFolder},
		{"filename only", "misc/IMG_20190101.jpg", 20190101, SourceFilename},
		{"nothing", "misc/photo.jpg", 0, ""},
		{"root level file", "IMG_20190101.jpg", 20190101, SourceFilename},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.path)
			if got.Date != tt.wantDate {
				t.Errorf("Resolve(%q).Date = %d, want %d", tt.path, got.Date, tt.wantDate)
			}
			if got.Source != tt.wantSource {
				t.Errorf("Resolve(%q).Source = %q, want %q", tt.path, got.Source, tt.wantSource)
			}
		})
	}

	t.Run("keeps every signal", func(t *testing.T) {
		got := Resolve("2023/05/14/20200101/IMG_20190101.jpg")
		if got.Folder.Date != 20200101 {
			t.Errorf("Folder.Date = %d, want %d", got.Folder.Date, 20200101)
		}
		if got.Filename.Date != 20190101 {
			t.Errorf("Filename.Date = %d, want %d", got.Filename.Date, 20190101)
		}
	})
}

func TestDateHelpers(t *testing.T) {
	if got := DateInt(2024, 2, 29); got != 20240229 {
		t.Errorf("DateInt(2024, 2, 29) = %d, want 20240229", got)
	}
	if got := DateInt(2023, 4, 31); got != 0 {
		t.Errorf("DateInt(2023, 4, 31) = %d, want 0", got)
	}
	if !Valid(20231015) {
		t.Error("Valid(20231015) = false, want true")
	}
	if Valid(20231035) {
		t.Error("Valid(20231035) = true, want false")
	}
	y, m, d := Split(20231015)
	if y != 2023 || m != 10 || d != 15 {
		t.Errorf("Split(20231015) = %d, %d, %d", y, m, d)
	}
	ts := time.Date(2023, 10, 15, 23, 30, 0, 0, time.FixedZone("x", -5*3600))
	if got := FromTime(ts); got != 20231016 {
		t.Errorf("FromTime() = %d, want 20231016", got)
	}
}
