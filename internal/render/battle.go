package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fleveque/pet-composer/internal/model"
	"github.com/fleveque/pet-composer/internal/textfit"
)

const (
	BattleWidth = 720

	battleHeaderHeight = 120
	battlePhotoMax     = 640
	battleSectionGap   = 32
	battleCardMargin   = 40
	battleCardPadding  = 24
	battleCardGap      = 20
	battleCardRadius   = 20
	battleStripeWidth  = 8
	battleLabelRow     = 40
	battleFooterHeight = 80

	battleMaxLines   = 4
	battleStartSize  = 24
	battleMinSize    = 16
	battleLineHeight = 1.35
)

var battleCardFill = color.RGBA{R: 0xfd, G: 0xfd, B: 0xfd, A: 0xff}

// battleCard is one entry's placed card.
type battleCard struct {
	Entry   model.BattleEntry
	Voice   model.Voice
	Text    textfit.Fitted
	Natural float64 // height this card would need on its own
	Rect    Rect    // drawn at the uniform height
}

// battleLayout is computed bottom-up: canvas height is an output.
type battleLayout struct {
	Width      int
	Height     int
	Photo      Rect
	Cards      []battleCard
	CardHeight float64
	Footer     Rect
}

func layoutBattle(m textfit.Measurer, photoW, photoH int, entries []model.BattleEntry) battleLayout {
	pw, ph := fitWithin(photoW, photoH, battlePhotoMax, battlePhotoMax)
	photo := Rect{X: (BattleWidth - pw) / 2, Y: battleHeaderHeight, W: pw, H: ph}

	cardW := float64(BattleWidth - 2*battleCardMargin)
	textW := cardW - 2*battleCardPadding - battleStripeWidth
	f := textfit.New(m)

	cards := make([]battleCard, len(entries))
	uniform := 0.0
	for i, e := range entries {
		fitted := f.Fit(e.Caption, textfit.Options{
			MaxWidth:   textW,
			MaxLines:   battleMaxLines,
			StartSize:  battleStartSize,
			MinSize:    battleMinSize,
			LineHeight: battleLineHeight,
		})
		natural := math.Ceil(battleLabelRow + fitted.Height + 2*battleCardPadding)
		cards[i] = battleCard{Entry: e, Voice: model.LookupVoice(e.VoiceID), Text: fitted, Natural: natural}
		if natural > uniform {
			uniform = natural
		}
	}

	y := photo.MaxY() + battleSectionGap
	for i := range cards {
		if i > 0 {
			y += battleCardGap
		}
		cards[i].Rect = Rect{X: battleCardMargin, Y: y, W: cardW, H: uniform}
		y += uniform
	}
	if len(cards) > 0 {
		y += battleSectionGap
	}

	footer := Rect{X: 0, Y: y, W: BattleWidth, H: battleFooterHeight}
	return battleLayout{
		Width:      BattleWidth,
		Height:     int(math.Ceil(footer.MaxY())),
		Photo:      photo,
		Cards:      cards,
		CardHeight: uniform,
		Footer:     footer,
	}
}

// Battle renders the shared photo with one card per entry, in input order.
func (r *Renderer) Battle(photo image.Image, entries []model.BattleEntry) (image.Image, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("battle needs at least one entry: %w", model.ErrInvalidRequest)
	}
	b := photo.Bounds()
	sizer := newMeasureContext(r.fonts)
	l := layoutBattle(sizer.Measurer(Regular), b.Dx(), b.Dy(), entries)

	c, err := withSurface(sizer, l.Width, l.Height)
	if err != nil {
		return nil, fmt.Errorf("allocating battle canvas: %w", err)
	}
	full := Rect{X: 0, Y: 0, W: float64(l.Width), H: float64(l.Height)}
	c.FillVerticalGradient(full, r.theme.Primary, r.theme.Secondary)

	c.Text(r.theme.BrandName, BattleWidth/2, 58, TextStyle{Weight: Bold, Size: 40, Color: white, AlignX: 0.5})
	c.Text("CAPTION BATTLE", BattleWidth/2, 96, TextStyle{Weight: Bold, Size: 22, Color: r.theme.Accent, AlignX: 0.5})

	c.DrawImageRounded(photo, l.Photo, 16)

	for _, card := range l.Cards {
		drawBattleCard(c, card)
	}

	c.Text(r.theme.BrandURL, BattleWidth/2, l.Footer.Y+l.Footer.H/2+8, TextStyle{Weight: Regular, Size: 24, Color: white, AlignX: 0.5})
	return c.Image(), nil
}

func drawBattleCard(c *Context, card battleCard) {
	rect := card.Rect
	c.FillRoundedRect(rect, battleCardRadius, battleCardFill)
	c.FillRoundedRect(Rect{X: rect.X, Y: rect.Y, W: battleStripeWidth * 2, H: rect.H}, battleCardRadius/2, card.Voice.Accent)
	c.FillRect(Rect{X: rect.X + battleStripeWidth, Y: rect.Y, W: battleStripeWidth, H: rect.H}, battleCardFill)

	x := rect.X + battleStripeWidth + battleCardPadding
	c.Text(card.Voice.Label, x, rect.Y+battleCardPadding+26, TextStyle{
		Weight: Bold,
		Size:   26,
		Color:  card.Voice.Accent,
	})
	c.TextBlock(card.Text.Lines, x, rect.Y+battleCardPadding+battleLabelRow, card.Text.LineHeight, TextStyle{
		Weight: Regular,
		Size:   card.Text.Size,
		Color:  nearBlack,
	})
}
