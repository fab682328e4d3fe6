package render

import (
	"fmt"
	"image/color"
	"strings"
)

// Theme is the fixed brand styling. It comes from configuration at startup
// and is never a request parameter.
type Theme struct {
	BrandName   string
	BrandURL    string
	CTAHeadline string
	Primary     color.RGBA // gradient top, owner bubbles
	Secondary   color.RGBA // gradient bottom
	Accent      color.RGBA // footer highlights
}

// ThemeConfig is the string form of Theme as it appears in config files.
type ThemeConfig struct {
	BrandName      string
	BrandURL       string
	CTAHeadline    string
	PrimaryColor   string
	SecondaryColor string
	AccentColor    string
}

// DefaultTheme is used by tests and as the base for NewTheme.
func DefaultTheme() Theme {
	return Theme{
		BrandName:   "PetTalk",
		BrandURL:    "pettalk.app",
		CTAHeadline: "Make your pet talk",
		Primary:     color.RGBA{R: 0x0a, G: 0x84, B: 0xff, A: 0xff},
		Secondary:   color.RGBA{R: 0x5e, G: 0x2c, B: 0xed, A: 0xff},
		Accent:      color.RGBA{R: 0xff, G: 0xcc, B: 0x00, A: 0xff},
	}
}

// NewTheme builds a Theme, keeping defaults for empty fields.
func NewTheme(cfg ThemeConfig) (Theme, error) {
	t := DefaultTheme()
	if cfg.BrandName != "" {
		t.BrandName = cfg.BrandName
	}
	if cfg.BrandURL != "" {
		t.BrandURL = cfg.BrandURL
	}
	if cfg.CTAHeadline != "" {
		t.CTAHeadline = cfg.CTAHeadline
	}

	colors := []struct {
		hex string
		dst *color.RGBA
	}{
		{cfg.PrimaryColor, &t.Primary},
		{cfg.SecondaryColor, &t.Secondary},
		{cfg.AccentColor, &t.Accent},
	}
	for _, c := range colors {
		if c.hex == "" {
			continue
		}
		parsed, err := ParseHexColor(c.hex)
		if err != nil {
			return Theme{}, err
		}
		*c.dst = parsed
	}
	return t, nil
}

// ParseHexColor converts a hex color string (with or without #) to RGBA.
// Go's fmt.Sscanf is like C's scanf: it parses formatted strings.
func ParseHexColor(hex string) (color.RGBA, error) {
	hex = strings.TrimPrefix(hex, "#")

	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color: %q (expected 6 characters)", hex)
	}

	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("parsing hex color %q: %w", hex, err)
	}

	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

var (
	white      = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	black      = color.RGBA{A: 0xff}
	nearBlack  = color.RGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xff}
	grayText   = color.RGBA{R: 0x8e, G: 0x8e, B: 0x93, A: 0xff}
	lightGray  = color.RGBA{R: 0xe9, G: 0xe9, B: 0xeb, A: 0xff}
	hairline   = color.RGBA{R: 0xd1, G: 0xd1, B: 0xd6, A: 0xff}
	headerGray = color.RGBA{R: 0xf6, G: 0xf6, B: 0xf6, A: 0xff}
)
