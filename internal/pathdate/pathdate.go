// Package pathdate extracts candidate capture dates from the textual shape of
// a file's path: a yyyy/mm/dd directory hierarchy, a date embedded in an
// ancestor folder name, or a date embedded in the filename.
//
// Dates are represented as YYYYMMDD integers. Zero means "no date".
package pathdate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	MinYear = 1900
	MaxYear = 2099
)

// Source names recorded alongside a resolved path date.
const (
	SourceHierarchy = "hierarchy"
	SourceFolder    = "folder"
	SourceFilename  = "filename"
)

// datePattern matches YYYYMMDD, YYYY-MM-DD and YYYY_MM_DD at the start of
// its input, followed by a non-digit or the end of the string. The leading
// boundary is checked by findDate.
var datePattern = regexp.MustCompile(
	`^(19\d{2}|20\d{2})[-_]?(0[1-9]|1[0-2])[-_]?(0[1-9]|[12]\d|3[01])(?:[^0-9]|$)`,
)

// Match is the result of a single extraction. Source is the literal text the
// date was read from (the "yyyy/mm/dd" segments, the folder name or the
// filename) and is empty when Date is zero.
type Match struct {
	Date   int
	Source string
}

// Found reports whether the extraction produced a date.
func (m Match) Found() bool {
	return m.Date != 0
}

// Resolved is the outcome of combining the three path signals.
type Resolved struct {
	Hierarchy Match
	Folder    Match
	Filename  Match

	Date   int
	Source string // SourceHierarchy, SourceFolder, SourceFilename or ""
}

// DateInt packs a calendar date into YYYYMMDD form. It returns 0 when the
// year is outside [MinYear, MaxYear] or the day does not exist in the month.
func DateInt(year, month, day int) int {
	if year < MinYear || year > MaxYear || month < 1 || month > 12 || day < 1 {
		return 0
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return 0
	}
	return year*10000 + month*100 + day
}

// Split breaks a YYYYMMDD integer into its parts.
func Split(date int) (year, month, day int) {
	return date / 10000, date / 100 % 100, date % 100
}

// Valid reports whether date is a calendar-valid YYYYMMDD inside the year bounds.
func Valid(date int) bool {
	y, m, d := Split(date)
	return DateInt(y, m, d) == date
}

// FromTime converts t to a YYYYMMDD integer in UTC without applying the year bounds.
func FromTime(t time.Time) int {
	u := t.UTC()
	return u.Year()*10000 + int(u.Month())*100 + u.Day()
}

// segments splits a slash-separated path, dropping empty components.
func segments(p string) []string {
	raw := strings.Split(p, "/")
	parts := raw[:0:0]
	for _, s := range raw {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

func digits(s string, n int) (int, bool) {
	if len(s) != n {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Hierarchy looks for three consecutive directory segments forming
// year/month/day. The path must have at least three directories plus a
// filename. When several triples exist the one closest to the file wins.
func Hierarchy(path string) Match {
	parts := segments(path)
	if len(parts) < 4 {
		return Match{}
	}

	// The last segment is the filename, so the deepest triple starts at len-4.
	for i := len(parts) - 4; i >= 0; i-- {
		y, ok := digits(parts[i], 4)
		if !ok {
			continue
		}
		m, ok := digits(parts[i+1], 2)
		if !ok {
			continue
		}
		d, ok := digits(parts[i+2], 2)
		if !ok {
			continue
		}
		if date := DateInt(y, m, d); date != 0 {
			return Match{Date: date, Source: parts[i] + "/" + parts[i+1] + "/" + parts[i+2]}
		}
	}
	return Match{}
}

// Folder scans the directory segments of path from deepest to shallowest and
// returns the first one containing a valid embedded date.
func Folder(path string) Match {
	parts := segments(path)
	if len(parts) < 2 {
		return Match{}
	}

	dirs := parts[:len(parts)-1]
	for i := len(dirs) - 1; i >= 0; i-- {
		if date := findDate(dirs[i]); date != 0 {
			return Match{Date: date, Source: dirs[i]}
		}
	}
	return Match{}
}

// Filename returns the leftmost valid embedded date in a filename.
func Filename(filename string) Match {
	if date := findDate(filename); date != 0 {
		return Match{Date: date, Source: filename}
	}
	return Match{}
}

// findDate returns the leftmost calendar-valid date in s. A candidate must
// not be preceded by a digit; candidates that fail calendar validation are
// skipped.
func findDate(s string) int {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) || (i > 0 && isDigit(s[i-1])) {
			continue
		}
		m := datePattern.FindStringSubmatch(s[i:])
		if m == nil {
			continue
		}
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		if date := DateInt(y, mo, d); date != 0 {
			return date
		}
	}
	return 0
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Resolve runs all three extractors on a relative source path and picks the
// path date with priority hierarchy > folder > filename.
func Resolve(sourcePath string) Resolved {
	filename := sourcePath
	if i := strings.LastIndex(sourcePath, "/"); i >= 0 {
		filename = sourcePath[i+1:]
	}

	r := Resolved{
		Hierarchy: Hierarchy(sourcePath),
		Folder:    Folder(sourcePath),
		Filename:  Filename(filename),
	}

	switch {
	case r.Hierarchy.Found():
		r.Date, r.Source = r.Hierarchy.Date, SourceHierarchy
	case r.Folder.Found():
		r.Date, r.Source = r.Folder.Date, SourceFolder
	case r.Filename.Found():
		r.Date, r.Source = r.Filename.Date, SourceFilename
	}
	return r
}
