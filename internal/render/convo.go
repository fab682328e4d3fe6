package render

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/fleveque/pet-composer/internal/model"
	"github.com/fleveque/pet-composer/internal/textfit"
)

const (
	ConvoWidth  = 1080
	ConvoHeight = 1920

	convoHeaderHeight = 260
	convoThreadTop    = 300
	convoSideMargin   = 40
	convoMaxBubble    = 740
	convoPhotoWidth   = 600
	convoPhotoMaxH    = 560
	convoBubbleRadius = 36
	convoFontSize     = 38
	convoLineHeight   = 1.3
	convoPadX         = 30
	convoPadY         = 20
	convoGapSame      = 8
	convoGapChange    = 28

	convoBadgeW      = 84
	convoBadgeH      = 60
	convoBadgeMargin = 8

	convoFooterGap    = 60
	convoFooterMinY   = 1740
	convoFooterHeight = 120
)

// BubbleKind tells photo bubbles from text bubbles.
type BubbleKind int

const (
	TextBubble BubbleKind = iota
	PhotoBubble
)

// placedBubble is an immutable record of where a turn landed on the canvas.
type placedBubble struct {
	Turn   int // index into the input turns
	Kind   BubbleKind
	Sender model.Sender
	Rect   Rect
	Lines  []string
	Src    image.Rectangle // photo region shown, photo bubbles only
}

// placedBadge is a reaction pill anchored to a placed bubble.
type placedBadge struct {
	Turn  int
	Emoji string
	Rect  Rect
}

type convoLayout struct {
	Bubbles  []placedBubble
	Badges   []placedBadge
	Footer   Rect
	TextSize float64
	LineH    float64
}

// layoutConvo runs both passes: place every bubble top-down, then anchor the
// reaction badges using only the recorded rectangles.
func layoutConvo(m textfit.Measurer, photoW, photoH int, turns []model.MessageTurn) convoLayout {
	f := textfit.New(m)
	lineH := convoFontSize * convoLineHeight
	l := convoLayout{TextSize: convoFontSize, LineH: lineH}

	y := float64(convoThreadTop)
	var prev model.Sender
	for i, turn := range turns {
		var b placedBubble
		switch {
		case turn.IsPhoto():
			b = photoBubble(photoW, photoH)
		case strings.TrimSpace(turn.Text) == "":
			continue
		default:
			fitted := f.Fit(turn.Text, textfit.Options{
				MaxWidth:   convoMaxBubble - 2*convoPadX,
				StartSize:  convoFontSize,
				MinSize:    convoFontSize,
				LineHeight: convoLineHeight,
			})
			w := math.Min(convoMaxBubble, math.Ceil(f.Widest(fitted.Lines, convoFontSize))+2*convoPadX)
			h := math.Ceil(fitted.Height) + 2*convoPadY
			b = placedBubble{Kind: TextBubble, Rect: Rect{W: w, H: h}, Lines: fitted.Lines}
		}

		if len(l.Bubbles) > 0 {
			if turn.Sender == prev {
				y += convoGapSame
			} else {
				y += convoGapChange
			}
		}
		b.Turn = i
		b.Sender = turn.Sender
		b.Rect.Y = y
		if turn.Sender == model.SenderOwner {
			b.Rect.X = ConvoWidth - convoSideMargin - b.Rect.W
		} else {
			b.Rect.X = convoSideMargin
		}
		l.Bubbles = append(l.Bubbles, b)
		y = b.Rect.MaxY()
		prev = turn.Sender
	}

	for _, b := range l.Bubbles {
		emoji := strings.TrimSpace(turns[b.Turn].Reaction)
		if emoji == "" || b.Kind == PhotoBubble {
			continue
		}
		l.Badges = append(l.Badges, placedBadge{Turn: b.Turn, Emoji: emoji, Rect: badgeRect(b)})
	}

	footerY := float64(convoFooterMinY)
	if len(l.Bubbles) > 0 {
		footerY = math.Max(y+convoFooterGap, convoFooterMinY)
	}
	l.Footer = Rect{X: 0, Y: footerY, W: ConvoWidth, H: convoFooterHeight}
	return l
}

// photoBubble sizes the photo turn at the fixed bubble width. Tall photos are
// capped at convoPhotoMaxH and centre-cropped so the thread and footer stay on
// the canvas.
func photoBubble(photoW, photoH int) placedBubble {
	b := placedBubble{Kind: PhotoBubble, Rect: Rect{W: convoPhotoWidth, H: convoPhotoMaxH}}
	if photoW <= 0 || photoH <= 0 {
		return b
	}
	b.Src = image.Rect(0, 0, photoW, photoH)
	natural := math.Round(convoPhotoWidth * float64(photoH) / float64(photoW))
	if natural <= convoPhotoMaxH {
		b.Rect.H = math.Max(natural, 1)
		return b
	}
	srcH := int(math.Round(float64(photoW) * convoPhotoMaxH / convoPhotoWidth))
	y0 := (photoH - srcH) / 2
	b.Src = image.Rect(0, y0, photoW, y0+srcH)
	return b
}

// badgeRect pins a reaction to the top-right corner of pet bubbles and the
// top-left corner of owner bubbles.
func badgeRect(b placedBubble) Rect {
	var x float64
	if b.Sender == model.SenderOwner {
		x = b.Rect.X - convoBadgeW/2
	} else {
		x = b.Rect.MaxX() - convoBadgeW/2
	}
	x = math.Max(convoBadgeMargin, math.Min(x, ConvoWidth-convoBadgeMargin-convoBadgeW))
	return Rect{X: x, Y: b.Rect.Y - convoBadgeH*0.55, W: convoBadgeW, H: convoBadgeH}
}

// Convo renders the message thread on the fixed 1080x1920 canvas.
func (r *Renderer) Convo(photo image.Image, req model.ConvoRequest) (image.Image, error) {
	b := photo.Bounds()
	sizer := newMeasureContext(r.fonts)
	l := layoutConvo(sizer.Measurer(Regular), b.Dx(), b.Dy(), req.Turns)

	c, err := withSurface(sizer, ConvoWidth, ConvoHeight)
	if err != nil {
		return nil, fmt.Errorf("allocating convo canvas: %w", err)
	}
	c.Clear(white)
	r.drawConvoHeader(c, photo, req.ContactName)

	for _, bubble := range l.Bubbles {
		switch bubble.Kind {
		case PhotoBubble:
			c.DrawImageRegionRounded(photo, bubble.Src.Add(b.Min), bubble.Rect, convoBubbleRadius)
		default:
			fill, ink := lightGray, nearBlack
			if bubble.Sender == model.SenderOwner {
				fill, ink = r.theme.Primary, white
			}
			c.FillRoundedRect(bubble.Rect, convoBubbleRadius, fill)
			c.TextBlock(bubble.Lines, bubble.Rect.X+convoPadX, bubble.Rect.Y+convoPadY, l.LineH, TextStyle{
				Weight: Regular,
				Size:   l.TextSize,
				Color:  ink,
			})
		}
	}

	// Second pass: annotations read the placed rectangles, never move them.
	for _, badge := range l.Badges {
		c.FillRoundedRect(badge.Rect, convoBadgeH/2, white)
		c.StrokeRoundedRect(badge.Rect, convoBadgeH/2, 2, hairline)
		text, weight := reactionText(r.fonts, badge.Emoji)
		size := 34.0
		if weight != Emoji {
			size = textfit.New(c.Measurer(weight)).Fit(text, textfit.Options{
				MaxWidth:  convoBadgeW - 16,
				MaxLines:  1,
				StartSize: 30,
				MinSize:   16,
			}).Size
		}
		c.Text(text, badge.Rect.X+badge.Rect.W/2, badge.Rect.Y+badge.Rect.H/2+size*0.35, TextStyle{
			Weight: weight,
			Size:   size,
			Color:  nearBlack,
			AlignX: 0.5,
		})
	}

	r.drawConvoFooter(c, l.Footer)
	return c.Image(), nil
}

// tapbackLabels stand in for the common reactions when no emoji font is
// configured.
var tapbackLabels = map[string]string{
	"❤️": "<3",
	"❤":  "<3",
	"👍":  "+1",
	"👎":  "-1",
	"😂":  "haha",
	"‼️": "!!",
	"❓":  "?",
	"😱":  "omg",
	"🙄":  "ugh",
}

// reactionText picks what a badge shows: the emoji itself when the emoji face
// can draw it, otherwise a short plain-text label in the bold face.
func reactionText(fonts *FontSet, emoji string) (string, Weight) {
	if fonts.Covers(Emoji, emoji) {
		return emoji, Emoji
	}
	if label, ok := tapbackLabels[emoji]; ok {
		return label, Bold
	}
	return "+", Bold
}

func (r *Renderer) drawConvoHeader(c *Context, photo image.Image, contact string) {
	c.FillRect(Rect{X: 0, Y: 0, W: ConvoWidth, H: convoHeaderHeight}, headerGray)
	c.FillRect(Rect{X: 0, Y: convoHeaderHeight - 1, W: ConvoWidth, H: 1}, hairline)

	// status bar chrome
	c.Text("9:41", 60, 50, TextStyle{Weight: Bold, Size: 30, Color: black})
	for i := 0; i < 4; i++ {
		h := 8 + float64(i)*5
		c.FillRect(Rect{X: 880 + float64(i)*12, Y: 48 - h, W: 8, H: h}, black)
	}
	c.StrokeRoundedRect(Rect{X: 960, Y: 24, W: 56, H: 26}, 6, 2, black)
	c.FillRoundedRect(Rect{X: 964, Y: 28, W: 40, H: 18}, 3, black)
	c.FillRect(Rect{X: 1018, Y: 32, W: 4, H: 10}, black)

	c.DrawImageCircle(photo, ConvoWidth/2, 130, 56)

	if contact == "" {
		contact = "My Pet"
	}
	c.Text(contact, ConvoWidth/2, 228, TextStyle{Weight: Bold, Size: 30, Color: black, AlignX: 0.5})
}

func (r *Renderer) drawConvoFooter(c *Context, footer Rect) {
	c.FillRect(Rect{X: convoSideMargin, Y: footer.Y, W: footer.W - 2*convoSideMargin, H: 1}, hairline)
	c.Text(r.theme.BrandName, footer.X+footer.W/2, footer.Y+56, TextStyle{Weight: Bold, Size: 34, Color: r.theme.Primary, AlignX: 0.5})
	c.Text(r.theme.BrandURL, footer.X+footer.W/2, footer.Y+98, TextStyle{Weight: Regular, Size: 26, Color: grayText, AlignX: 0.5})
}
