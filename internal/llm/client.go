// Package llm provides a provider-agnostic interface for asking a vision LLM
// to write a short caption for a pet photo in a given voice.
package llm

import (
	"context"

	"github.com/fleveque/pet-composer/internal/model"
)

// DefaultMaxTokens bounds caption length when the caller doesn't set one.
const DefaultMaxTokens = 200

// CaptionRequest is everything a client needs for one caption.
type CaptionRequest struct {
	Voice     model.Voice
	PhotoJPEG []byte // already downscaled for the vision model
	MaxTokens int
}

// Client is the interface for LLM providers that can caption photos.
// Both Anthropic (Claude) and OpenAI implement it, so the provider layer can
// fall back from one to the other.
//
// Keep interfaces small: the bigger the interface, the weaker the abstraction.
type Client interface {
	GenerateCaption(ctx context.Context, req CaptionRequest) (string, error)
	ProviderName() string
	ModelName() string
}

func maxTokens(req CaptionRequest) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return DefaultMaxTokens
}
