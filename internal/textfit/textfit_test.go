package textfit

import (
	"reflect"
	"strings"
	"testing"
)

// fixed is a deterministic measurer: every rune is 0.5*size pixels wide.
var fixed = FixedAdvance{Ratio: 0.5}

func TestFit_ShortTextKeepsStartSize(t *testing.T) {
	f := New(fixed)

	got := f.Fit("You call this dinner?", Options{
		MaxWidth:  600,
		MaxLines:  3,
		StartSize: 30,
		MinSize:   18,
	})

	if got.Size != 30 {
		t.Errorf("expected size 30, got %v", got.Size)
	}
	if len(got.Lines) != 1 || got.Lines[0] != "You call this dinner?" {
		t.Errorf("expected a single unchanged line, got %q", got.Lines)
	}
	if got.Overflow {
		t.Error("did not expect overflow")
	}
}

func TestFit_ShrinksUntilLinesFit(t *testing.T) {
	f := New(fixed)
	text := "this caption is long enough that it needs a second and maybe a third line"

	got := f.Fit(text, Options{MaxWidth: 300, MaxLines: 2, StartSize: 40, MinSize: 10})

	if len(got.Lines) > 2 {
		t.Fatalf("expected at most 2 lines, got %d: %q", len(got.Lines), got.Lines)
	}
	// The next size up must not have fit, otherwise the search stopped too late.
	if got.Size+Step <= 40 {
		if above := f.Wrap(text, 300, got.Size+Step); len(above) <= 2 {
			t.Errorf("size %v also fits in 2 lines; search did not return the largest size", got.Size+Step)
		}
	}
}

func TestFit_OverflowAtMinSizeKeepsContent(t *testing.T) {
	f := New(fixed)
	text := strings.Repeat("word ", 60)

	got := f.Fit(text, Options{MaxWidth: 100, MaxLines: 3, StartSize: 20, MinSize: 16})

	if got.Size != 16 {
		t.Errorf("expected min size 16, got %v", got.Size)
	}
	if !got.Overflow {
		t.Error("expected overflow to be reported")
	}
	if joined := strings.Join(got.Lines, " "); joined != strings.TrimSpace(text) {
		t.Errorf("content was dropped: %q", joined)
	}
}

func TestFit_Uppercase(t *testing.T) {
	f := New(fixed)
	got := f.Fit("good boy", Options{MaxWidth: 500, MaxLines: 1, StartSize: 20, MinSize: 10, Uppercase: true})
	if got.Lines[0] != "GOOD BOY" {
		t.Errorf("expected uppercased text, got %q", got.Lines[0])
	}
}

func TestFit_StartBelowMinUsesMin(t *testing.T) {
	f := New(fixed)
	got := f.Fit("hi", Options{MaxWidth: 500, MaxLines: 1, StartSize: 8, MinSize: 12})
	if got.Size != 12 {
		t.Errorf("expected size clamped to 12, got %v", got.Size)
	}
}

func TestFit_HeightMatchesLines(t *testing.T) {
	f := New(fixed)
	got := f.Fit("one two three four five six", Options{MaxWidth: 60, MaxLines: 10, StartSize: 10, MinSize: 10, LineHeight: 1.5})
	want := float64(len(got.Lines)) * 10 * 1.5
	if got.Height != want {
		t.Errorf("expected height %v, got %v", want, got.Height)
	}
}

func TestFit_EmptyText(t *testing.T) {
	f := New(fixed)
	got := f.Fit("   ", Options{MaxWidth: 100, MaxLines: 3, StartSize: 20, MinSize: 10})
	if len(got.Lines) != 0 || got.Height != 0 {
		t.Errorf("expected no lines for blank text, got %q (height %v)", got.Lines, got.Height)
	}
}

func TestFit_SizeNonIncreasingAsMaxLinesDecreases(t *testing.T) {
	f := New(fixed)
	texts := []string{
		"You call this dinner?",
		"I have been waiting by this door for eleven minutes and you bring me kibble",
		strings.Repeat("a", 90),
	}
	for _, text := range texts {
		prev := 1e9
		for maxLines := 6; maxLines >= 1; maxLines-- {
			got := f.Fit(text, Options{MaxWidth: 400, MaxLines: maxLines, StartSize: 40, MinSize: 12})
			if got.Size > prev {
				t.Errorf("%q: size grew from %v to %v when maxLines dropped to %d", text, prev, got.Size, maxLines)
			}
			prev = got.Size
		}
	}
}

func TestWrap_GiantTokenTerminates(t *testing.T) {
	f := New(fixed)
	token := strings.Repeat("x", 90)

	got := f.Fit(token, Options{MaxWidth: 400, MaxLines: 3, StartSize: 40, MinSize: 20})

	if len(got.Lines) < 1 {
		t.Fatal("expected at least one line")
	}
	if strings.Join(got.Lines, "") != token {
		t.Errorf("character split lost content: %q", got.Lines)
	}
	for _, l := range got.Lines {
		if w := fixed.Measure(l, got.Size); w > 400 {
			t.Errorf("line %q is %vpx wide, max 400", l, w)
		}
	}
}

func TestWrap_GlyphWiderThanMaxWidth(t *testing.T) {
	f := New(fixed)
	got := f.Wrap("abc", 1, 10)
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("expected one glyph per line, got %q", got)
	}
}

func TestWrap_LongWordBetweenShortWords(t *testing.T) {
	f := New(fixed)
	// size 10 -> 5px per rune, 50px = 10 runes per line
	got := f.Wrap("hi abcdefghijklmno yo", 50, 10)
	want := []string{"hi", "abcdefghij", "klmno yo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Wrap = %q, want %q", got, want)
	}
}

func TestWrap_Idempotent(t *testing.T) {
	f := New(fixed)
	tests := []struct {
		name  string
		text  string
		width float64
	}{
		{"short", "You call this dinner?", 600},
		{"multi line", "the quick brown fox jumps over the lazy dog and then naps in the sun", 120},
		{"giant token", strings.Repeat("z", 90), 100},
		{"mixed", "ok " + strings.Repeat("q", 40) + " fine then", 90},
		{"extra spaces", "  lots   of\tspace\n here  ", 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := f.Wrap(tt.text, tt.width, 10)
			second := f.Wrap(strings.Join(first, " "), tt.width, 10)
			if !reflect.DeepEqual(first, second) {
				t.Errorf("re-wrap changed breaks:\n first  %q\n second %q", first, second)
			}
			third := f.Wrap(tt.text, tt.width, 10)
			if !reflect.DeepEqual(first, third) {
				t.Errorf("wrap is not deterministic: %q vs %q", first, third)
			}
		})
	}
}

func TestWidest(t *testing.T) {
	f := New(fixed)
	if w := f.Widest([]string{"ab", "abcd", "a"}, 10); w != 20 {
		t.Errorf("expected 20, got %v", w)
	}
}
