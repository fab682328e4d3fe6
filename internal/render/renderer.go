package render

import (
	"go.uber.org/zap"
)

// DefaultMemeMaxWidth caps the working width of the meme layout. Wider crops
// are scaled down before text is fitted.
const DefaultMemeMaxWidth = 1080

// Renderer holds the read-only resources every template needs. It keeps no
// per-request state, so one Renderer serves concurrent requests; each call
// allocates its own Context.
type Renderer struct {
	fonts        *FontSet
	theme        Theme
	qr           QRProvider // nil disables the story code
	memeMaxWidth int
	logger       *zap.Logger
}

// NewRenderer wires a Renderer. qr may be nil.
func NewRenderer(fonts *FontSet, theme Theme, qr QRProvider, logger *zap.Logger) *Renderer {
	return &Renderer{
		fonts:        fonts,
		theme:        theme,
		qr:           qr,
		memeMaxWidth: DefaultMemeMaxWidth,
		logger:       logger,
	}
}

// SetMemeMaxWidth overrides DefaultMemeMaxWidth. Values <= 0 are ignored.
func (r *Renderer) SetMemeMaxWidth(w int) {
	if w > 0 {
		r.memeMaxWidth = w
	}
}

// Theme returns the brand styling in use.
func (r *Renderer) Theme() Theme { return r.theme }
