package render

import (
	"fmt"
	"image"
	"image/color"

	"go.uber.org/zap"

	"github.com/fleveque/pet-composer/internal/textfit"
)

const (
	StoryWidth  = 1080
	StoryHeight = 1920
)

var (
	storyContent  = Rect{X: 60, Y: 220, W: 960, H: 1340}
	storyBand     = Rect{X: 0, Y: 1620, W: StoryWidth, H: 300}
	storyBandFill = color.NRGBA{A: 90}
)

const (
	storyQRSize     = 220
	storyQRMargin   = 80
	storyTextGap    = 48
	storyCoreRadius = 24
)

// storyLayout is where the scaled meme core and the CTA parts go.
type storyLayout struct {
	Core     Rect
	Band     Rect
	QR       *Rect // nil when no code is drawn
	TextX    float64
	TextAlgn float64
}

func layoutStory(coreW, coreH int, hasQR bool) storyLayout {
	w, h := fitWithin(coreW, coreH, storyContent.W, storyContent.H)
	l := storyLayout{
		Core: Rect{
			X: storyContent.X + (storyContent.W-w)/2,
			Y: storyContent.Y + (storyContent.H-h)/2,
			W: w,
			H: h,
		},
		Band:     storyBand,
		TextX:    StoryWidth / 2,
		TextAlgn: 0.5,
	}
	if hasQR {
		qr := Rect{
			X: storyQRMargin,
			Y: storyBand.Y + (storyBand.H-storyQRSize)/2,
			W: storyQRSize,
			H: storyQRSize,
		}
		l.QR = &qr
		l.TextX = qr.MaxX() + storyTextGap
		l.TextAlgn = 0
	}
	return l
}

// Story places the meme core on the fixed 1080x1920 story canvas.
func (r *Renderer) Story(core *MemeCore) (image.Image, error) {
	c, err := NewContext(StoryWidth, StoryHeight, r.fonts)
	if err != nil {
		return nil, fmt.Errorf("allocating story canvas: %w", err)
	}
	full := Rect{X: 0, Y: 0, W: StoryWidth, H: StoryHeight}
	c.FillVerticalGradient(full, r.theme.Primary, r.theme.Secondary)

	c.Text(r.theme.BrandName, StoryWidth/2, 150, TextStyle{Weight: Bold, Size: 72, Color: white, AlignX: 0.5})

	code := r.storyCode()
	cb := core.Image.Bounds()
	l := layoutStory(cb.Dx(), cb.Dy(), code != nil)

	c.DrawImageRounded(core.Image, l.Core, storyCoreRadius)

	c.FillRect(l.Band, storyBandFill)
	if l.QR != nil {
		c.FillRoundedRect(Rect{X: l.QR.X - 12, Y: l.QR.Y - 12, W: l.QR.W + 24, H: l.QR.H + 24}, 16, white)
		c.DrawImage(code, *l.QR)
	}

	textW := StoryWidth - storyQRMargin - l.TextX
	if l.QR == nil {
		textW = StoryWidth - 2*storyQRMargin
	}
	headline := textfit.New(c.Measurer(Bold)).Fit(r.theme.CTAHeadline, textfit.Options{
		MaxWidth:  textW,
		MaxLines:  1,
		StartSize: 52,
		MinSize:   32,
	})
	for i, line := range headline.Lines {
		y := l.Band.Y + 130 - float64(len(headline.Lines)-1-i)*headline.LineHeight
		c.Text(line, l.TextX, y, TextStyle{Weight: Bold, Size: headline.Size, Color: white, AlignX: l.TextAlgn})
	}
	c.Text(r.theme.BrandURL, l.TextX, l.Band.Y+200, TextStyle{Weight: Regular, Size: 40, Color: r.theme.Accent, AlignX: l.TextAlgn})

	return c.Image(), nil
}

// storyCode asks the QR collaborator for the brand link. Failure only drops
// the code from the band.
func (r *Renderer) storyCode() image.Image {
	if r.qr == nil {
		return nil
	}
	img, err := r.qr.QRCode("https://"+r.theme.BrandURL, storyQRSize)
	if err != nil {
		r.logger.Warn("QR code unavailable, rendering story without it", zap.Error(err))
		return nil
	}
	return img
}
