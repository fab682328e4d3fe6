// Package render draws the four artifact templates (meme, story, battle and
// convo) into offscreen surfaces and encodes them.
package render

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Weight selects a font family from the FontSet.
type Weight int

const (
	Regular Weight = iota
	Bold
	Emoji
)

func (w Weight) String() string {
	switch w {
	case Bold:
		return "bold"
	case Emoji:
		return "emoji"
	default:
		return "regular"
	}
}

// FontPaths are optional TTF files. Empty paths use the embedded Go fonts.
type FontPaths struct {
	Regular string
	Bold    string
	Emoji   string
}

// FontSet is the parsed font table. It is loaded once at startup and only
// read afterwards, so one FontSet can back any number of concurrent renders.
// Faces are not shared: each Context builds its own.
type FontSet struct {
	fonts map[Weight]*truetype.Font
}

// LoadFontSet parses the configured fonts. A missing or broken file is logged
// and replaced by the embedded fallback rather than failing startup.
func LoadFontSet(paths FontPaths, logger *zap.Logger) (*FontSet, error) {
	regularFallback, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded regular font: %w", err)
	}
	boldFallback, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded bold font: %w", err)
	}

	fs := &FontSet{fonts: map[Weight]*truetype.Font{}}
	fs.fonts[Regular] = loadOrFallback(paths.Regular, Regular, regularFallback, logger)
	fs.fonts[Bold] = loadOrFallback(paths.Bold, Bold, boldFallback, logger)
	fs.fonts[Emoji] = loadOrFallback(paths.Emoji, Emoji, fs.fonts[Regular], logger)
	return fs, nil
}

// DefaultFontSet returns the embedded Go fonts.
func DefaultFontSet() (*FontSet, error) {
	return LoadFontSet(FontPaths{}, zap.NewNop())
}

func loadOrFallback(path string, w Weight, fallback *truetype.Font, logger *zap.Logger) *truetype.Font {
	if path == "" {
		return fallback
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("font unavailable, using fallback",
			zap.String("weight", w.String()),
			zap.String("path", path),
			zap.Error(err),
		)
		return fallback
	}
	f, err := truetype.Parse(data)
	if err != nil {
		logger.Warn("font unparsable, using fallback",
			zap.String("weight", w.String()),
			zap.String("path", path),
			zap.Error(err),
		)
		return fallback
	}
	return f
}

// Font returns the parsed font for w, falling back to Regular.
func (fs *FontSet) Font(w Weight) *truetype.Font {
	if f, ok := fs.fonts[w]; ok {
		return f
	}
	return fs.fonts[Regular]
}

// Covers reports whether the font for w has a glyph for every rune of s.
// Variation selectors and zero-width joiners are ignored since they never
// carry a glyph of their own.
func (fs *FontSet) Covers(w Weight, s string) bool {
	f := fs.Font(w)
	for _, r := range s {
		if r == '\uFE0E' || r == '\uFE0F' || r == '\u200D' {
			continue
		}
		if f.Index(r) == 0 {
			return false
		}
	}
	return true
}
