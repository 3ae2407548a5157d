package planner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"photosort/internal/pathdate"
)

// MaxAnnotationLength caps the free-text suffix carried over from a source folder name.
const MaxAnnotationLength = 10

const (
	dupeMarker     = "_dupe_"
	dupeHashLength = 6
	annotationTrim = "-_ "
)

var annotationSeparator = regexp.MustCompile(`^[-_\s]+`)

// BuildTargetFolder returns "YYYY/YYYY_MM/YYYYMMDD", followed by
// "-annotation" when annotation is not empty.
func BuildTargetFolder(date int, annotation string) string {
	y, m, _ := pathdate.Split(date)
	folder := fmt.Sprintf("%d/%d_%02d/%d", y, y, m, date)
	if annotation != "" {
		folder += "-" + annotation
	}
	return folder
}

// BuildBucketPath keeps the source folder's relative layout under "_<bucket>".
// Files at the scan root land directly in the bucket folder.
func BuildBucketPath(bucket Bucket, sourceFolder string) string {
	if sourceFolder == "" {
		return "_" + string(bucket)
	}
	return "_" + string(bucket) + "/" + sourceFolder
}

// dateFormats renders date in the compact, underscore and hyphen forms.
func dateFormats(date int) []string {
	y, m, d := pathdate.Split(date)
	return []string{
		fmt.Sprintf("%04d%02d%02d", y, m, d),
		fmt.Sprintf("%04d_%02d_%02d", y, m, d),
		fmt.Sprintf("%04d-%02d-%02d", y, m, d),
	}
}

// ExtractAnnotation derives a short label from a source folder name.
//
// A folder named exactly after the date gets no annotation. A folder that
// starts with the date and a separator keeps the remainder. Any other folder
// keeps its whole name. The result is trimmed of "-", "_" and spaces and cut
// to MaxAnnotationLength characters.
func ExtractAnnotation(folderName string, date int) string {
	formats := dateFormats(date)
	for _, f := range formats {
		if folderName == f {
			return ""
		}
	}

	for _, f := range formats {
		if !strings.HasPrefix(folderName, f) {
			continue
		}
		rest := folderName[len(f):]
		sep := annotationSeparator.FindString(rest)
		if sep == "" {
			continue
		}
		return truncateAnnotation(strings.Trim(rest[len(sep):], annotationTrim))
	}

	return truncateAnnotation(strings.Trim(folderName, annotationTrim))
}

func truncateAnnotation(s string) string {
	r := []rune(s)
	if len(r) > MaxAnnotationLength {
		r = r[:MaxAnnotationLength]
	}
	return string(r)
}

// DuplicateResult is the filename a file will carry in its target folder.
type DuplicateResult struct {
	Filename    string
	IsDuplicate bool
	SourceHash  string
}

// SourcePathHash returns the hex SHA-256 digest of a source path.
func SourcePathHash(sourcePath string) string {
	sum := sha256.Sum256([]byte(sourcePath))
	return hex.EncodeToString(sum[:])
}

// ResolveFilenameDuplicate keeps filename when it is not yet claimed in the
// target folder. Otherwise it inserts "_dupe_" and the first six hex digits
// of the source path's SHA-256 between base name and extension. If that name
// is claimed too, more digits of the digest are used until it is free.
func ResolveFilenameDuplicate(filename, sourcePath string, claimed map[string]struct{}) DuplicateResult {
	if _, taken := claimed[filename]; !taken {
		return DuplicateResult{Filename: filename}
	}

	base, ext := filename, ""
	if i := strings.LastIndex(filename, "."); i >= 0 {
		base, ext = filename[:i], filename[i:]
	}

	digest := SourcePathHash(sourcePath)
	for n := dupeHashLength; n <= len(digest); n++ {
		candidate := base + dupeMarker + digest[:n] + ext
		if _, taken := claimed[candidate]; !taken {
			return DuplicateResult{Filename: candidate, IsDuplicate: true, SourceHash: digest[:n]}
		}
	}

	// Only reachable when the same source path is claimed repeatedly.
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s%s%s_%d%s", base, dupeMarker, digest, i, ext)
		if _, taken := claimed[candidate]; !taken {
			return DuplicateResult{Filename: candidate, IsDuplicate: true, SourceHash: digest}
		}
	}
}
