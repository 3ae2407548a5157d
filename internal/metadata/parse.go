package metadata

import (
	"encoding/json"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"photosort/internal/photosort"
)

var (
	zoneSuffix   = regexp.MustCompile(`(Z|[+-]\d{2}:?\d{2})$`)
	subSeconds   = regexp.MustCompile(`(\d{2}:\d{2}:\d{2})\.\d+`)
	dateLayouts  = []string{"2006:01:02 15:04:05", "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006:01:02"}
	zeroDateForm = regexp.MustCompile(`^[0: ]+$`)
)

// ParseDate parses an embedded date such as "2023:10:15 14:30:00". Zones and
// sub-seconds are dropped and the wall clock is returned in UTC. Empty and
// all-zero values report false.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || zeroDateForm.MatchString(s) {
		return time.Time{}, false
	}
	s = zoneSuffix.ReplaceAllString(s, "")
	s = subSeconds.ReplaceAllString(s, "$1")

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Tags is one file's exiftool output keyed by "Group:Tag".
type Tags map[string]any

// String returns the first of keys holding a non-empty value.
func (t Tags) String(keys ...string) string {
	for _, k := range keys {
		switch v := t[k].(type) {
		case string:
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// Number returns the first of keys holding a numeric value. Numeric strings
// are accepted.
func (t Tags) Number(keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := t[k].(type) {
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f, true
			}
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// Date returns the first of keys holding a parseable date.
func (t Tags) Date(keys ...string) time.Time {
	for _, k := range keys {
		if s, ok := t[k].(string); ok {
			if d, ok := ParseDate(s); ok {
				return d
			}
		}
	}
	return time.Time{}
}

// Families returns the sorted tag groups present.
func (t Tags) Families() []string {
	seen := make(map[string]bool)
	var out []string
	for k := range t {
		group, _, ok := strings.Cut(k, ":")
		if !ok || seen[group] {
			continue
		}
		seen[group] = true
		out = append(out, group)
	}
	slices.Sort(out)
	return out
}

// excludedTags hold binary blobs or duplicate the catalog's own columns.
var excludedTags = map[string]bool{
	"EXIF:ThumbnailImage":        true,
	"EXIF:ThumbnailTIFF":         true,
	"EXIF:PreviewImage":          true,
	"EXIF:JpgFromRaw":            true,
	"EXIF:OtherImage":            true,
	"ICC_Profile:ProfileCMMType": true,
	"File:Directory":             true,
	"File:FileName":              true,
	"SourceFile":                 true,
}

// JSON encodes the tags for storage without binary payloads.
func (t Tags) JSON() string {
	filtered := make(map[string]any, len(t))
	for k, v := range t {
		if excludedTags[k] {
			continue
		}
		if s, ok := v.(string); ok && (strings.HasPrefix(s, "base64:") || strings.HasPrefix(s, "(Binary data")) {
			continue
		}
		filtered[k] = v
	}
	data, err := json.Marshal(filtered)
	if err != nil {
		return ""
	}
	return string(data)
}

// Normalize maps exiftool tags to the catalog's metadata fields.
func (t Tags) Normalize() *photosort.ExtractedMetadata {
	m := &photosort.ExtractedMetadata{
		DateOriginal:  t.Date("EXIF:DateTimeOriginal", "QuickTime:CreateDate", "XMP:DateTimeOriginal"),
		DateDigitized: t.Date("EXIF:CreateDate", "EXIF:DateTimeDigitized", "QuickTime:MediaCreateDate"),
		DateModify:    t.Date("EXIF:ModifyDate", "QuickTime:ModifyDate", "File:FileModifyDate"),
		CameraMake:    t.String("EXIF:Make", "QuickTime:Make", "XMP:Make"),
		CameraModel:   t.String("EXIF:Model", "QuickTime:Model", "XMP:Model"),
		LensModel:     t.String("EXIF:LensModel", "EXIF:Lens", "XMP:Lens"),
		MIMEType:      t.String("File:MIMEType"),
		Families:      t.Families(),
		RawJSON:       t.JSON(),
	}

	if v, ok := t.Number("EXIF:ImageWidth", "EXIF:ExifImageWidth", "QuickTime:ImageWidth", "File:ImageWidth"); ok {
		m.Width = int(v)
	}
	if v, ok := t.Number("EXIF:ImageHeight", "EXIF:ExifImageHeight", "QuickTime:ImageHeight", "File:ImageHeight"); ok {
		m.Height = int(v)
	}
	if v, ok := t.Number("EXIF:Orientation"); ok {
		m.Orientation = int(v)
	}
	if v, ok := t.Number("QuickTime:Duration", "Matroska:Duration"); ok {
		m.DurationSeconds = v
	}
	if v, ok := t.Number("QuickTime:VideoFrameRate", "Matroska:FrameRate"); ok {
		m.FrameRate = v
	}

	lat, latOK := t.Number("EXIF:GPSLatitude", "Composite:GPSLatitude")
	lon, lonOK := t.Number("EXIF:GPSLongitude", "Composite:GPSLongitude")
	if latOK && lonOK {
		m.GPS = &photosort.GPSPosition{Latitude: lat, Longitude: lon}
		if alt, ok := t.Number("EXIF:GPSAltitude"); ok {
			m.GPS.Altitude.Float64, m.GPS.Altitude.Valid = alt, true
		}
	}
	return m
}
