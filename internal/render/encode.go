package render

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/fleveque/pet-composer/internal/model"
)

// DefaultJPEGQuality matches the story and battle outputs.
const DefaultJPEGQuality = 92

// Encode serializes img as format. No resizing happens here; quality only
// applies to JPEG and values outside 1..100 use DefaultJPEGQuality.
func Encode(img image.Image, format model.Format, quality int) (*model.Artifact, error) {
	var buf bytes.Buffer
	switch format {
	case model.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding PNG: %w", err)
		}
	case model.FormatJPEG:
		if quality < 1 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encoding JPEG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	b := img.Bounds()
	return &model.Artifact{
		Data:   buf.Bytes(),
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: format,
	}, nil
}
