package render

import (
	"fmt"
	"image"
	"math"

	"github.com/fleveque/pet-composer/internal/crop"
	"github.com/fleveque/pet-composer/internal/model"
	"github.com/fleveque/pet-composer/internal/textfit"
)

const (
	memeMaxLines     = 3
	memeStartRatio   = 0.05 // of width
	memeMinRatio     = 0.03
	memeMinFontPx    = 12
	memeSidePadRatio = 0.04
	memeLineHeight   = 1.15
	memeFooterHeight = 72
)

// memeLayout is the geometry of the meme core: top bar, photo, bottom bar.
type memeLayout struct {
	Crop      crop.Window
	Width     int
	Height    int
	TopBar    Rect
	Photo     Rect
	BottomBar Rect
	Top       textfit.Fitted
	Bottom    textfit.Fitted
}

// layoutMemeCore crops the photo, scales the crop to at most maxWidth and
// fits both captions against that width.
func layoutMemeCore(m textfit.Measurer, photoW, photoH int, req model.MemeRequest, maxWidth int) memeLayout {
	win := crop.Crop(photoW, photoH, req.Anchor)

	width, height := win.Width, win.Height
	if maxWidth > 0 && width > maxWidth {
		scale := float64(maxWidth) / float64(width)
		width = maxWidth
		height = int(math.Round(float64(win.Height) * scale))
	}
	if height < 1 {
		height = 1
	}

	start := math.Round(float64(width) * memeStartRatio)
	minSize := math.Max(memeMinFontPx, math.Round(float64(width)*memeMinRatio))
	if start < minSize {
		start = minSize
	}
	opts := textfit.Options{
		MaxWidth:   float64(width) - 2*math.Round(float64(width)*memeSidePadRatio),
		MaxLines:   memeMaxLines,
		StartSize:  start,
		MinSize:    minSize,
		Uppercase:  true,
		LineHeight: memeLineHeight,
	}

	f := textfit.New(m)
	top := f.Fit(req.Top, opts)
	bottom := f.Fit(req.Bottom, opts)

	topH := barHeight(top)
	bottomH := barHeight(bottom)
	w := float64(width)

	return memeLayout{
		Crop:      win,
		Width:     width,
		Height:    int(topH) + height + int(bottomH),
		TopBar:    Rect{X: 0, Y: 0, W: w, H: topH},
		Photo:     Rect{X: 0, Y: topH, W: w, H: float64(height)},
		BottomBar: Rect{X: 0, Y: topH + float64(height), W: w, H: bottomH},
		Top:       top,
		Bottom:    bottom,
	}
}

// barHeight is the fitted block plus half a font size above and below.
// Blank captions get no bar at all.
func barHeight(f textfit.Fitted) float64 {
	if len(f.Lines) == 0 {
		return 0
	}
	return math.Ceil(f.Height + f.Size)
}

// MemeCore is the captioned photo shared by the meme and story templates.
type MemeCore struct {
	Image  image.Image
	layout memeLayout
}

// MemeCore crops photo, fits the captions and draws bar, photo, bar.
func (r *Renderer) MemeCore(photo image.Image, req model.MemeRequest) (*MemeCore, error) {
	b := photo.Bounds()

	// Measure with a throwaway context so the layout is known before the
	// real surface is sized.
	sizer := newMeasureContext(r.fonts)
	l := layoutMemeCore(sizer.Measurer(Bold), b.Dx(), b.Dy(), req, r.memeMaxWidth)

	c, err := withSurface(sizer, l.Width, l.Height)
	if err != nil {
		return nil, fmt.Errorf("allocating meme core: %w", err)
	}
	c.Clear(black)

	src := l.Crop.Rect().Add(b.Min)
	c.DrawImageRegion(photo, src, l.Photo)

	drawBar(c, l.TopBar, l.Top)
	drawBar(c, l.BottomBar, l.Bottom)

	return &MemeCore{Image: c.Image(), layout: l}, nil
}

func drawBar(c *Context, bar Rect, f textfit.Fitted) {
	if bar.H == 0 {
		return
	}
	c.FillRect(bar, black)
	c.TextBlock(f.Lines, bar.X+bar.W/2, bar.Y+f.Size/2, f.LineHeight, TextStyle{
		Weight: Bold,
		Size:   f.Size,
		Color:  white,
		AlignX: 0.5,
	})
}

// Meme appends the branded footer below the core.
func (r *Renderer) Meme(core *MemeCore) (image.Image, error) {
	cb := core.Image.Bounds()
	width := cb.Dx()
	c, err := NewContext(width, cb.Dy()+memeFooterHeight, r.fonts)
	if err != nil {
		return nil, fmt.Errorf("allocating meme canvas: %w", err)
	}
	c.Clear(black)
	c.DrawImage(core.Image, Rect{X: 0, Y: 0, W: float64(width), H: float64(cb.Dy())})

	footer := Rect{X: 0, Y: float64(cb.Dy()), W: float64(width), H: memeFooterHeight}
	r.drawMemeFooter(c, footer)
	return c.Image(), nil
}

func (r *Renderer) drawMemeFooter(c *Context, footer Rect) {
	c.FillRect(footer, nearBlack)
	c.FillRect(Rect{X: footer.X, Y: footer.Y, W: footer.W, H: 4}, r.theme.Accent)

	const pad = 24.0
	baseline := footer.Y + footer.H/2 + 10
	brand := TextStyle{Weight: Bold, Size: 28, Color: white}
	c.Text(r.theme.BrandName, footer.X+pad, baseline, brand)

	cta := "Make yours at " + r.theme.BrandURL
	ctaStyle := TextStyle{Weight: Regular, Size: 22, Color: grayText, AlignX: 1}
	room := footer.W - 3*pad - c.Measure(r.theme.BrandName, Bold, brand.Size)
	if c.Measure(cta, Regular, ctaStyle.Size) > room {
		cta = r.theme.BrandURL
	}
	if c.Measure(cta, Regular, ctaStyle.Size) <= room {
		c.Text(cta, footer.MaxX()-pad, baseline, ctaStyle)
	}
}
