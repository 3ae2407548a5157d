package planner

import "strings"

// imageExtensions are the extensions that take part in folder date statistics.
var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "bmp": true,
	"tiff": true, "tif": true, "webp": true,
	"arw": true, "nef": true, "cr2": true, "cr3": true, "dng": true,
	"orf": true, "raf": true, "rw2": true, "srw": true, "pef": true,
	"heic": true, "heif": true, "psd": true, "psb": true,
}

var videoExtensions = map[string]bool{
	"mov": true, "mp4": true, "avi": true, "mkv": true,
	"m4v": true, "mts": true, "m2ts": true,
}

var sidecarExtensions = map[string]bool{
	"xmp": true, "thm": true, "aae": true, "json": true, "xml": true,
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsImage reports whether ext (with or without a leading dot, any case) is a
// still image format. Videos are not images.
func IsImage(ext string) bool {
	return imageExtensions[normalizeExt(ext)]
}

// IsVideo reports whether ext is a video container format.
func IsVideo(ext string) bool {
	return videoExtensions[normalizeExt(ext)]
}

// IsSidecarExtension reports whether ext is one of the sidecar formats.
func IsSidecarExtension(ext string) bool {
	return sidecarExtensions[normalizeExt(ext)]
}
