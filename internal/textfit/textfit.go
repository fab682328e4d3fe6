// Package textfit measures and wraps text runs so they fit a maximum width
// and line count, shrinking the font size as needed. It is pure: no I/O and
// no shared state beyond the Measurer the caller hands in.
package textfit

import (
	"strings"
	"unicode/utf8"
)

// Step is the font-size decrement between fit attempts.
const Step = 2.0

// DefaultLineHeight is the line advance as a multiple of the font size.
const DefaultLineHeight = 1.2

// Measurer returns the advance width in pixels of text set at size.
// Implementations must be deterministic: the renderers pre-measure blocks to
// lay out static regions and rely on the draw pass agreeing exactly.
type Measurer interface {
	Measure(text string, size float64) float64
}

// Options configures a single Fit call.
type Options struct {
	MaxWidth   float64
	MaxLines   int
	StartSize  float64
	MinSize    float64
	Uppercase  bool
	LineHeight float64 // multiple of size; 0 means DefaultLineHeight
}

// Fitted is the output of a fit: concrete line breaks plus the resolved size.
type Fitted struct {
	Lines      []string
	Size       float64
	LineHeight float64 // pixels between baselines
	Height     float64 // LineHeight * len(Lines)
	Overflow   bool    // true when len(Lines) > MaxLines even at MinSize
}

// Fitter runs the size search against a Measurer.
type Fitter struct {
	m Measurer
}

// New creates a Fitter.
func New(m Measurer) *Fitter {
	return &Fitter{m: m}
}

// Fit picks the largest size in [MinSize, StartSize], walking down in Step
// increments, whose wrap has at most MaxLines lines. When no size satisfies
// the budget the wrap at MinSize is returned unmodified with Overflow set;
// content is never dropped.
func (f *Fitter) Fit(text string, opts Options) Fitted {
	if opts.Uppercase {
		text = strings.ToUpper(text)
	}
	lh := opts.LineHeight
	if lh <= 0 {
		lh = DefaultLineHeight
	}
	minSize := opts.MinSize
	size := opts.StartSize
	if minSize <= 0 {
		minSize = 1
	}
	if size < minSize {
		size = minSize
	}

	for {
		lines := f.Wrap(text, opts.MaxWidth, size)
		fits := opts.MaxLines <= 0 || len(lines) <= opts.MaxLines
		if fits || size <= minSize {
			return Fitted{
				Lines:      lines,
				Size:       size,
				LineHeight: size * lh,
				Height:     size * lh * float64(len(lines)),
				Overflow:   !fits,
			}
		}
		size -= Step
		if size < minSize {
			size = minSize
		}
	}
}

// Wrap breaks text into lines no wider than maxWidth at size using a single
// left-to-right greedy pass. A word that is wider than maxWidth on its own is
// split into the longest prefixes that fit (found by binary search), so even a
// long token with no spaces terminates. Whitespace runs collapse to one space.
func (f *Fitter) Wrap(text string, maxWidth, size float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if maxWidth <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	current := ""
	for _, word := range words {
		if f.m.Measure(word, size) > maxWidth {
			if current != "" {
				lines = append(lines, current)
			}
			chunks := f.splitWord(word, maxWidth, size)
			lines = append(lines, chunks[:len(chunks)-1]...)
			current = chunks[len(chunks)-1]
			continue
		}

		if current == "" {
			current = word
			continue
		}
		candidate := current + " " + word
		if f.m.Measure(candidate, size) <= maxWidth {
			current = candidate
		} else {
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// splitWord cuts an oversized word into chunks that each fit maxWidth.
// A single glyph wider than maxWidth still becomes its own chunk.
func (f *Fitter) splitWord(word string, maxWidth, size float64) []string {
	runes := []rune(word)
	var chunks []string
	for len(runes) > 0 {
		lo, hi := 1, len(runes)
		for lo < hi {
			mid := (lo + hi + 1) / 2
			if f.m.Measure(string(runes[:mid]), size) <= maxWidth {
				lo = mid
			} else {
				hi = mid - 1
			}
		}
		chunks = append(chunks, string(runes[:lo]))
		runes = runes[lo:]
	}
	return chunks
}

// Widest returns the measured width of the widest line.
func (f *Fitter) Widest(lines []string, size float64) float64 {
	w := 0.0
	for _, l := range lines {
		if lw := f.m.Measure(l, size); lw > w {
			w = lw
		}
	}
	return w
}

// FixedAdvance is a Measurer where every rune advances Ratio*size pixels.
// It is useful for layout math that must not depend on font files.
type FixedAdvance struct {
	Ratio float64
}

func (fa FixedAdvance) Measure(text string, size float64) float64 {
	return float64(utf8.RuneCountInString(text)) * fa.Ratio * size
}
