// Package model defines the core data types for the pet composer.
// In Go, we use structs instead of classes. Struct tags (the `json:"..."` and
// `db:"..."` annotations) tell serialization libraries how to map fields.
package model

import (
	"fmt"
	"strings"
)

// VerticalAnchor says where the subject sits vertically in the source photo.
// Go doesn't have enums, so we use typed constants with explicit values.
type VerticalAnchor string

const (
	AnchorTop    VerticalAnchor = "top"
	AnchorCenter VerticalAnchor = "center"
	AnchorBottom VerticalAnchor = "bottom"
)

// ParseAnchor converts a caller-supplied string into a VerticalAnchor.
// Empty or unknown values fall back to AnchorCenter.
func ParseAnchor(s string) VerticalAnchor {
	switch VerticalAnchor(strings.ToLower(strings.TrimSpace(s))) {
	case AnchorTop:
		return AnchorTop
	case AnchorBottom:
		return AnchorBottom
	default:
		return AnchorCenter
	}
}

// Sender identifies who wrote a message turn in a conversation.
type Sender string

const (
	SenderPet   Sender = "pet"
	SenderOwner Sender = "owner"
)

// PhotoMarker is the sentinel text that marks the turn carrying the photo.
const PhotoMarker = "[[PHOTO]]"

// MessageTurn is one message in a fake text thread.
type MessageTurn struct {
	Sender   Sender `json:"sender"`
	Text     string `json:"text"`
	Reaction string `json:"reaction,omitempty"` // optional tapback emoji
}

// IsPhoto reports whether this turn is the photo bubble.
func (m MessageTurn) IsPhoto() bool {
	return strings.TrimSpace(m.Text) == PhotoMarker
}

// BattleEntry is one voice's caption in a caption battle.
type BattleEntry struct {
	VoiceID string `json:"voice_id"`
	Caption string `json:"caption"`
}

// MemeRequest is the structured text for meme and story mode.
type MemeRequest struct {
	Top    string         `json:"top"`
	Bottom string         `json:"bottom"`
	Anchor VerticalAnchor `json:"vertical_anchor"`
}

// ConvoRequest is the structured text for conversation mode.
type ConvoRequest struct {
	ContactName string        `json:"contact_name"`
	Turns       []MessageTurn `json:"turns"`
}

// Format is an output raster encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// MIME returns the media type for the format.
func (f Format) MIME() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	default:
		return "image/png"
	}
}

// Extension returns the file extension (without the dot).
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	default:
		return "png"
	}
}

// Artifact is an encoded image plus its declared pixel dimensions.
// It is created once per render call and never modified afterwards.
type Artifact struct {
	Data   []byte `json:"-"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format Format `json:"format"`
}

// String is handy in log lines.
func (a *Artifact) String() string {
	return fmt.Sprintf("%s %dx%d (%d bytes)", a.Format, a.Width, a.Height, len(a.Data))
}

// MemeResult holds the two artifacts produced in meme mode.
type MemeResult struct {
	Standard *Artifact
	Story    *Artifact
}

// ConvoResult holds the conversation artifact under both output names.
// Standard and Story point at the same Artifact.
type ConvoResult struct {
	Standard *Artifact
	Story    *Artifact
}
