package model

import (
	"image/color"
	"time"
)

// Voice is a caption persona used in battle mode.
type Voice struct {
	ID     string
	Label  string
	Prompt string     // persona instructions handed to the caption generator
	Accent color.RGBA // card accent stripe
}

// Voices is the built-in persona catalog, keyed by ID.
var Voices = map[string]Voice{
	"sassy": {
		ID:     "sassy",
		Label:  "Sassy",
		Prompt: "You are a sassy, unimpressed pet who judges everything the owner does.",
		Accent: color.RGBA{R: 0xff, G: 0x4f, B: 0x8b, A: 0xff},
	},
	"dramatic": {
		ID:     "dramatic",
		Label:  "Dramatic",
		Prompt: "You are a theatrical pet who treats every minor event as a Shakespearean tragedy.",
		Accent: color.RGBA{R: 0x8b, G: 0x5c, B: 0xf6, A: 0xff},
	},
	"wholesome": {
		ID:     "wholesome",
		Label:  "Wholesome",
		Prompt: "You are a sweet, endlessly grateful pet who loves the owner unconditionally.",
		Accent: color.RGBA{R: 0x22, G: 0xc5, B: 0x5e, A: 0xff},
	},
}

// DefaultVoiceIDs is the ordered voice lineup used when none is configured.
var DefaultVoiceIDs = []string{"sassy", "dramatic", "wholesome"}

// LookupVoice returns the catalog entry for id. Unknown ids get a generic
// voice whose label is the id itself.
func LookupVoice(id string) Voice {
	if v, ok := Voices[id]; ok {
		return v
	}
	return Voice{
		ID:     id,
		Label:  id,
		Prompt: "You are a funny pet.",
		Accent: color.RGBA{R: 0x64, G: 0x74, B: 0x8b, A: 0xff},
	}
}

// CaptionCall tracks each call to a caption provider for cost monitoring.
type CaptionCall struct {
	ID         int64     `db:"id" json:"id"`
	VoiceID    string    `db:"voice_id" json:"voice_id"`
	Provider   string    `db:"provider" json:"provider"`
	Model      string    `db:"model" json:"model"`
	Success    bool      `db:"success" json:"success"`
	ErrorText  *string   `db:"error_text" json:"error_text,omitempty"`
	DurationMs *int64    `db:"duration_ms" json:"duration_ms,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
