package model

import (
	"errors"
	"io"
	"testing"
)

func TestParseAnchor(t *testing.T) {
	tests := []struct {
		in   string
		want VerticalAnchor
	}{
		{"top", AnchorTop},
		{" Bottom ", AnchorBottom},
		{"center", AnchorCenter},
		{"", AnchorCenter},
		{"sideways", AnchorCenter},
	}
	for _, tt := range tests {
		if got := ParseAnchor(tt.in); got != tt.want {
			t.Errorf("ParseAnchor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	if FormatPNG.MIME() != "image/png" || FormatPNG.Extension() != "png" {
		t.Error("unexpected PNG metadata")
	}
	if FormatJPEG.MIME() != "image/jpeg" || FormatJPEG.Extension() != "jpg" {
		t.Error("unexpected JPEG metadata")
	}
}

func TestMessageTurn_IsPhoto(t *testing.T) {
	if !(MessageTurn{Text: " " + PhotoMarker + "\n"}).IsPhoto() {
		t.Error("expected padded marker to count as the photo")
	}
	if (MessageTurn{Text: "look at this " + PhotoMarker}).IsPhoto() {
		t.Error("marker inside other text is not a photo turn")
	}
}

func TestLookupVoice(t *testing.T) {
	for _, id := range DefaultVoiceIDs {
		if v := LookupVoice(id); v.ID != id || v.Label == id {
			t.Errorf("catalog voice %q not found: %+v", id, v)
		}
	}
	v := LookupVoice("grumpy")
	if v.Label != "grumpy" || v.Prompt == "" || v.Accent.A != 0xff {
		t.Errorf("unexpected fallback voice: %+v", v)
	}
}

func TestErrorsUnwrap(t *testing.T) {
	var err error = &RenderError{Op: "story", Err: io.ErrUnexpectedEOF}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("RenderError should unwrap to its cause")
	}
	var re *RenderError
	if !errors.As(err, &re) || re.Op != "story" {
		t.Error("errors.As failed for RenderError")
	}

	err = &ImageLoadError{Err: io.EOF}
	if !errors.Is(err, io.EOF) {
		t.Error("ImageLoadError should unwrap to its cause")
	}
	if err.Error() != "loading image: EOF" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
