// Package service wires the compositing engine to its inputs: photo bytes in,
// encoded artifacts out.
package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // registers the PNG decoder for image.Decode

	"github.com/h2non/bimg"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // registers the WebP decoder as a fallback for libvips

	"github.com/fleveque/pet-composer/internal/model"
)

const (
	// DefaultMaxPhotoDimension bounds the longest side of a decoded photo.
	DefaultMaxPhotoDimension = 2048

	visionMaxDimension = 1024
	visionJPEGQuality  = 85
)

var errEmptyImage = errors.New("empty image data")

// ImageProcessor turns uploaded photo bytes into a bitmap the renderers can use.
// It uses bimg (Go bindings for libvips) for the heavy lifting: EXIF
// auto-rotation, format conversion and downscaling. libvips is a system
// dependency, so when it rejects the bytes we retry with the pure-Go decoders.
type ImageProcessor struct {
	maxDimension int
	logger       *zap.Logger
}

// NewImageProcessor creates a new ImageProcessor. maxDimension <= 0 uses
// DefaultMaxPhotoDimension.
func NewImageProcessor(maxDimension int, logger *zap.Logger) *ImageProcessor {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxPhotoDimension
	}
	return &ImageProcessor{maxDimension: maxDimension, logger: logger}
}

// Decode returns an upright bitmap whose longest side is at most the configured
// maximum. Every failure is an *model.ImageLoadError.
func (p *ImageProcessor) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &model.ImageLoadError{Err: errEmptyImage}
	}

	normalized, err := p.normalize(data)
	if err == nil {
		img, _, decErr := image.Decode(bytes.NewReader(normalized))
		if decErr == nil {
			return img, nil
		}
		err = decErr
	}

	p.logger.Debug("libvips could not normalise photo, using Go decoders", zap.Error(err))

	img, _, decErr := image.Decode(bytes.NewReader(data))
	if decErr != nil {
		return nil, &model.ImageLoadError{Err: decErr}
	}
	return downscale(img, p.maxDimension), nil
}

// normalize applies EXIF orientation and re-encodes as PNG, shrinking the
// image when it exceeds the maximum dimension.
// bimg.Options is a struct with many fields. You set only the ones you need.
func (p *ImageProcessor) normalize(data []byte) ([]byte, error) {
	rotated, err := bimg.NewImage(data).AutoRotate()
	if err != nil {
		return nil, fmt.Errorf("auto-rotating: %w", err)
	}

	img := bimg.NewImage(rotated)
	size, err := img.Size()
	if err != nil {
		return nil, fmt.Errorf("reading size: %w", err)
	}

	opts := bimg.Options{
		Type:           bimg.PNG,
		Interpretation: bimg.InterpretationSRGB,
	}
	// Only one side is set so libvips keeps the aspect ratio.
	if size.Width >= size.Height && size.Width > p.maxDimension {
		opts.Width = p.maxDimension
	} else if size.Height > size.Width && size.Height > p.maxDimension {
		opts.Height = p.maxDimension
	}

	out, err := img.Process(opts)
	if err != nil {
		return nil, fmt.Errorf("converting to PNG: %w", err)
	}
	return out, nil
}

// EncodeJPEG prepares a photo for the vision model: at most 1024px on the
// longest side, JPEG at quality 85.
func (p *ImageProcessor) EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	small := downscale(img, visionMaxDimension)
	if err := jpeg.Encode(&buf, small, &jpeg.Options{Quality: visionJPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding vision JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale shrinks img so its longest side is max, keeping the aspect ratio.
// Smaller images are returned as-is.
func downscale(img image.Image, max int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= max && h <= max {
		return img
	}
	if w >= h {
		h = h * max / w
		w = max
	} else {
		w = w * max / h
		h = max
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
