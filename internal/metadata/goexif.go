package metadata

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"

	"photosort/internal/photosort"
)

func init() {
	exif.RegisterParsers(mknote.All...)
}

// GoexifExtractor decodes EXIF in process. It needs no external tool but
// only understands JPEG and TIFF based files, so videos and HEIC report an
// error per file.
type GoexifExtractor struct{}

func NewGoexifExtractor() *GoexifExtractor {
	return &GoexifExtractor{}
}

func (g *GoexifExtractor) Version() string {
	return "goexif"
}

func (g *GoexifExtractor) Extract(ctx context.Context, paths []string) (map[string]*photosort.ExtractedMetadata, error) {
	out := make(map[string]*photosort.ExtractedMetadata, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[p] = decodeFile(p)
	}
	return out, nil
}

func decodeFile(path string) *photosort.ExtractedMetadata {
	f, err := os.Open(path)
	if err != nil {
		return &photosort.ExtractedMetadata{Error: err.Error()}
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return &photosort.ExtractedMetadata{Error: "no EXIF data: " + err.Error()}
	}
	return fromExif(x)
}

func fromExif(x *exif.Exif) *photosort.ExtractedMetadata {
	m := &photosort.ExtractedMetadata{
		DateOriginal:  exifDate(x, exif.DateTimeOriginal),
		DateDigitized: exifDate(x, exif.DateTimeDigitized),
		DateModify:    exifDate(x, exif.DateTime),
		CameraMake:    exifString(x, exif.Make),
		CameraModel:   exifString(x, exif.Model),
		LensModel:     exifString(x, exif.LensModel),
		Width:         exifInt(x, exif.PixelXDimension, exif.ImageWidth),
		Height:        exifInt(x, exif.PixelYDimension, exif.ImageLength),
		Orientation:   exifInt(x, exif.Orientation),
		Families:      []string{"EXIF"},
	}

	if lat, lon, err := x.LatLong(); err == nil {
		m.GPS = &photosort.GPSPosition{Latitude: lat, Longitude: lon}
		if tag, err := x.Get(exif.GPSAltitude); err == nil {
			if num, den, err := tag.Rat2(0); err == nil && den != 0 {
				m.GPS.Altitude.Float64, m.GPS.Altitude.Valid = float64(num)/float64(den), true
			}
		}
	}

	if raw, err := x.MarshalJSON(); err == nil {
		m.RawJSON = string(raw)
	}
	return m
}

func exifDate(x *exif.Exif, name exif.FieldName) (t time.Time) {
	tag, err := x.Get(name)
	if err != nil {
		return t
	}
	s, err := tag.StringVal()
	if err != nil {
		return t
	}
	t, _ = ParseDate(s)
	return t
}

func exifString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(s), "\x00")
}

func exifInt(x *exif.Exif, names ...exif.FieldName) int {
	for _, name := range names {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		if v, err := tag.Int(0); err == nil {
			return v
		}
	}
	return 0
}

var _ photosort.MetadataExtractor = (*GoexifExtractor)(nil)
