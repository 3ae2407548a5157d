package planner

import "strings"

// SiblingFile identifies a file by base name and extension within its folder.
type SiblingFile struct {
	Base      string
	Extension string // without dot; empty when the file has none
}

// DetectSidecar reports whether the file (base, ext) is a sidecar: its
// extension is a sidecar format and another file in the same folder with the
// same base name is an image or video. The file itself is never its own match.
func DetectSidecar(base, ext string, folder []SiblingFile) bool {
	if !IsSidecarExtension(ext) {
		return false
	}
	ext = normalizeExt(ext)

	for _, other := range folder {
		if other.Base != base {
			continue
		}
		otherExt := normalizeExt(other.Extension)
		if otherExt == ext {
			continue
		}
		if IsImage(otherExt) || IsVideo(otherExt) {
			return true
		}
	}
	return false
}

// SplitFilename separates a filename into base and lower-cased extension.
// Names without a dot, names whose only dot is the first character and names
// ending in a dot have no extension; trailing dots are dropped from the base.
func SplitFilename(filename string) (base, ext string) {
	i := strings.LastIndex(filename, ".")
	if i <= 0 {
		return filename, ""
	}
	if i == len(filename)-1 {
		return strings.TrimRight(filename, "."), ""
	}
	return filename[:i], strings.ToLower(filename[i+1:])
}
