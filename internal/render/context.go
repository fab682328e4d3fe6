package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	xdraw "golang.org/x/image/draw"

	"github.com/fleveque/pet-composer/internal/textfit"
)

// MaxCanvasDimension bounds surface allocation.
const MaxCanvasDimension = 8192

// Rect is a float rectangle in canvas pixels.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) MaxX() float64 { return r.X + r.W }
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.MaxX() && o.X < r.MaxX() && r.Y < o.MaxY() && o.Y < r.MaxY()
}

// TextStyle carries every text setting explicitly; nothing is inherited
// from a previous draw call.
type TextStyle struct {
	Weight Weight
	Size   float64
	Color  color.Color
	AlignX float64 // 0 left, 0.5 center, 1 right of the x coordinate
}

type faceKey struct {
	w    Weight
	size float64
}

// Context is one render call's drawing surface. Every primitive takes its
// styling as arguments. A Context is owned by a single render and must not be
// shared between goroutines.
type Context struct {
	dc    *gg.Context
	fonts *FontSet
	faces map[faceKey]font.Face
}

// NewContext allocates a width x height surface.
func NewContext(width, height int, fonts *FontSet) (*Context, error) {
	if width <= 0 || height <= 0 || width > MaxCanvasDimension || height > MaxCanvasDimension {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	return &Context{
		dc:    gg.NewContext(width, height),
		fonts: fonts,
		faces: map[faceKey]font.Face{},
	}, nil
}

// newMeasureContext returns a 1x1 Context used only to measure text before
// the real canvas size is known.
func newMeasureContext(fonts *FontSet) *Context {
	return &Context{
		dc:    gg.NewContext(1, 1),
		fonts: fonts,
		faces: map[faceKey]font.Face{},
	}
}

// withSurface allocates the drawing surface for a laid-out render. It keeps
// the faces the sizer already built, so drawing measures exactly like layout.
func withSurface(sizer *Context, width, height int) (*Context, error) {
	c, err := NewContext(width, height, sizer.fonts)
	if err != nil {
		return nil, err
	}
	c.faces = sizer.faces
	return c, nil
}

func (c *Context) Width() int  { return c.dc.Width() }
func (c *Context) Height() int { return c.dc.Height() }

// Image returns the backing raster.
func (c *Context) Image() image.Image { return c.dc.Image() }

// Face returns a face for weight at size, cached for the life of the Context.
func (c *Context) Face(w Weight, size float64) font.Face {
	key := faceKey{w, size}
	if f, ok := c.faces[key]; ok {
		return f
	}
	f := truetype.NewFace(c.fonts.Font(w), &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	c.faces[key] = f
	return f
}

// Measure returns the advance width of s in pixels.
func (c *Context) Measure(s string, w Weight, size float64) float64 {
	return float64(font.MeasureString(c.Face(w, size), s)) / 64
}

// Measurer adapts the Context to textfit for the given weight.
func (c *Context) Measurer(w Weight) textfit.Measurer {
	return faceMeasurer{c: c, w: w}
}

type faceMeasurer struct {
	c *Context
	w Weight
}

func (m faceMeasurer) Measure(text string, size float64) float64 {
	return m.c.Measure(text, m.w, size)
}

// Clear fills the whole surface.
func (c *Context) Clear(col color.Color) {
	c.dc.SetColor(col)
	c.dc.Clear()
}

// FillRect fills r with col.
func (c *Context) FillRect(r Rect, col color.Color) {
	c.dc.SetColor(col)
	c.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	c.dc.Fill()
}

// FillRoundedRect fills r with col using corner radius.
func (c *Context) FillRoundedRect(r Rect, radius float64, col color.Color) {
	c.dc.SetColor(col)
	c.dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, radius)
	c.dc.Fill()
}

// StrokeRoundedRect outlines r.
func (c *Context) StrokeRoundedRect(r Rect, radius, lineWidth float64, col color.Color) {
	c.dc.SetColor(col)
	c.dc.SetLineWidth(lineWidth)
	c.dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, radius)
	c.dc.Stroke()
}

// FillCircle fills a circle centered at (cx, cy).
func (c *Context) FillCircle(cx, cy, radius float64, col color.Color) {
	c.dc.SetColor(col)
	c.dc.DrawCircle(cx, cy, radius)
	c.dc.Fill()
}

// FillVerticalGradient fills r with a linear gradient from top to bottom.
func (c *Context) FillVerticalGradient(r Rect, top, bottom color.Color) {
	g := gg.NewLinearGradient(r.X, r.Y, r.X, r.MaxY())
	g.AddColorStop(0, top)
	g.AddColorStop(1, bottom)
	c.dc.SetFillStyle(g)
	c.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	c.dc.Fill()
}

// Text draws s with its baseline at y.
func (c *Context) Text(s string, x, y float64, st TextStyle) {
	c.dc.SetFontFace(c.Face(st.Weight, st.Size))
	c.dc.SetColor(st.Color)
	c.dc.DrawStringAnchored(s, x, y, st.AlignX, 0)
}

// TextBlock draws lines top-down starting at top, each vertically centered in
// a lineHeight-tall line box.
func (c *Context) TextBlock(lines []string, x, top, lineHeight float64, st TextStyle) {
	m := c.Face(st.Weight, st.Size).Metrics()
	ascent := float64(m.Ascent) / 64
	descent := float64(m.Descent) / 64
	inset := (lineHeight-(ascent+descent))/2 + ascent
	for i, line := range lines {
		c.Text(line, x, top+float64(i)*lineHeight+inset, st)
	}
}

// DrawImage scales src into r.
func (c *Context) DrawImage(src image.Image, r Rect) {
	c.drawScaled(src, src.Bounds(), r)
}

// DrawImageRegion scales the srcRect part of src into r.
func (c *Context) DrawImageRegion(src image.Image, srcRect image.Rectangle, r Rect) {
	c.drawScaled(src, srcRect, r)
}

// DrawImageRounded scales src into r and clips it to rounded corners.
func (c *Context) DrawImageRounded(src image.Image, r Rect, radius float64) {
	c.DrawImageRegionRounded(src, src.Bounds(), r, radius)
}

// DrawImageRegionRounded scales the srcRect part of src into r with rounded
// corners.
func (c *Context) DrawImageRegionRounded(src image.Image, srcRect image.Rectangle, r Rect, radius float64) {
	c.dc.Push()
	c.dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, radius)
	c.dc.Clip()
	c.drawScaled(src, srcRect, r)
	c.dc.ResetClip()
	c.dc.Pop()
}

// DrawImageCircle draws the centered square of src clipped to a circle.
func (c *Context) DrawImageCircle(src image.Image, cx, cy, radius float64) {
	b := src.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	square := image.Rect(x0, y0, x0+side, y0+side)

	c.dc.Push()
	c.dc.DrawCircle(cx, cy, radius)
	c.dc.Clip()
	c.drawScaled(src, square, Rect{X: cx - radius, Y: cy - radius, W: 2 * radius, H: 2 * radius})
	c.dc.ResetClip()
	c.dc.Pop()
}

func (c *Context) drawScaled(src image.Image, srcRect image.Rectangle, r Rect) {
	w := int(math.Round(r.W))
	h := int(math.Round(r.H))
	if w <= 0 || h <= 0 || srcRect.Empty() {
		return
	}
	c.dc.DrawImage(scaleImage(src, srcRect, w, h), int(math.Round(r.X)), int(math.Round(r.Y)))
}

// scaleImage resamples srcRect of src to a w x h RGBA image.
func scaleImage(src image.Image, srcRect image.Rectangle, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, srcRect, xdraw.Over, nil)
	return dst
}

// fitWithin returns the largest w x h with the aspect of srcW x srcH that fits
// inside maxW x maxH.
func fitWithin(srcW, srcH int, maxW, maxH float64) (float64, float64) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0
	}
	s := math.Min(maxW/float64(srcW), maxH/float64(srcH))
	return math.Round(float64(srcW) * s), math.Round(float64(srcH) * s)
}
