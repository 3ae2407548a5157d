package planner

import "testing"

func TestDetectSidecar(t *testing.T) {
	folder := []SiblingFile{
		{Base: "IMG_0001", Extension: "jpg"},
		{Base: "IMG_0001", Extension: "xmp"},
		{Base: "IMG_0002", Extension: "aae"},
		{Base: "CLIP", Extension: "MOV"},
		{Base: "CLIP", Extension: "thm"},
		{Base: "notes", Extension: "json"},
		{Base: "notes", Extension: "txt"},
	}

	tests := []struct {
		base, ext string
		want      bool
	}{
		{"IMG_0001", "xmp", true},
		{"IMG_0001", "XMP", true},
		{"IMG_0001", "jpg", false},
		{"IMG_0002", "aae", false},
		{"CLIP", "thm", true},
		{"notes", "json", false},
		{"missing", "xmp", false},
	}
	for _, tt := range tests {
		if got := DetectSidecar(tt.base, tt.ext, folder); got != tt.want {
			t.Errorf("DetectSidecar(%q, %q) = %v, want %v", tt.base, tt.ext, got, tt.want)
		}
	}
}

func TestSplitFilename(t *testing.T) {
	tests := []struct {
		name, wantBase, wantExt string
	}{
		{"IMG_0001.JPG", "IMG_0001", "jpg"},
		{"archive.tar.gz", "archive.tar", "gz"},
		{"README", "README", ""},
		{".hidden", ".hidden", ""},
		{".hidden.xmp", ".hidden", "xmp"},
		{"trailing.", "trailing", ""},
	}
	for _, tt := range tests {
		base, ext := SplitFilename(tt.name)
		if base != tt.wantBase || ext != tt.wantExt {
			t.Errorf("SplitFilename(%q) = (%q, %q), want (%q, %q)", tt.name, base, ext, tt.wantBase, tt.wantExt)
		}
	}
}

func TestMediaClassification(t *testing.T) {
	if !IsImage("JPG") || !IsImage(".heic") {
		t.Error("IsImage() rejected an image extension")
	}
	if IsImage("mov") {
		t.Error("IsImage(mov) = true, want false")
	}
	if !IsVideo("m2ts") {
		t.Error("IsVideo(m2ts) = false, want true")
	}
	if IsImage("pdf") || IsVideo("pdf") {
		t.Error("pdf classified as media")
	}
}
