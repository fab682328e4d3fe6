// Package crop computes the window of a source photo that the meme layout
// shows. Portrait and square photos are cut towards a 16:9 window, biased
// towards where the subject sits.
package crop

import (
	"image"

	"github.com/fleveque/pet-composer/internal/model"
)

const (
	// LandscapeRatio is the width/height ratio at or above which the photo
	// is used as-is.
	LandscapeRatio = 1.4
	// TargetRatio is the aspect of the crop window for narrower photos.
	TargetRatio = 16.0 / 9.0
)

// Window is a full-width horizontal band of the source photo.
type Window struct {
	OffsetY int
	Width   int
	Height  int
}

// Rect returns the window as an image.Rectangle in source coordinates.
func (w Window) Rect() image.Rectangle {
	return image.Rect(0, w.OffsetY, w.Width, w.OffsetY+w.Height)
}

// Crop returns the crop window for a sourceWidth x sourceHeight photo.
// The window never drops more than 60% of the height and always lies inside
// the source.
func Crop(sourceWidth, sourceHeight int, anchor model.VerticalAnchor) Window {
	full := Window{OffsetY: 0, Width: sourceWidth, Height: sourceHeight}
	if sourceWidth <= 0 || sourceHeight <= 0 {
		return full
	}
	if float64(sourceWidth)/float64(sourceHeight) >= LandscapeRatio {
		return full
	}

	// round(w * 9/16) and ceil(h * 2/5) in integer math
	target := (sourceWidth*9*2 + 16) / (16 * 2)
	minHeight := (sourceHeight*2 + 4) / 5
	if target < minHeight {
		target = minHeight
	}
	if target > sourceHeight {
		target = sourceHeight
	}

	var offset int
	switch anchor {
	case model.AnchorTop:
		offset = 0
	case model.AnchorBottom:
		offset = sourceHeight - target
	default:
		offset = (sourceHeight - target + 1) / 2
	}
	if offset < 0 {
		offset = 0
	}
	if maxOffset := sourceHeight - target; offset > maxOffset {
		offset = maxOffset
	}

	return Window{OffsetY: offset, Width: sourceWidth, Height: target}
}
