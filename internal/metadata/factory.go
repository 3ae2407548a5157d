package metadata

import (
	"context"
	"fmt"

	"photosort/internal/config"
	"photosort/internal/photosort"
)

// NewExtractorFromConfig creates the extractor selected by cfg.Type.
func NewExtractorFromConfig(ctx context.Context, cfg config.ExtractorConfig) (photosort.MetadataExtractor, error) {
	switch cfg.Type {
	case "exiftool", "":
		extractor, err := NewExiftoolExtractor(ctx, cfg.ExiftoolPath)
		if err != nil {
			return nil, err
		}
		return extractor, nil
	case "goexif":
		return NewGoexifExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown extractor type: %s", cfg.Type)
	}
}
