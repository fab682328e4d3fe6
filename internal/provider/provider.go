// Package provider turns the raw LLM clients into a caption source the battle
// service can rely on: ordered fallback, rate limiting and call auditing.
package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/fleveque/pet-composer/internal/model"
)

// ErrNoCaptionProviders is returned when no LLM client is configured.
var ErrNoCaptionProviders = errors.New("no caption providers configured")

// errEmptyCaption is returned when a model answers with nothing usable.
var errEmptyCaption = errors.New("model returned an empty caption")

// CallRecorder persists one audit row per LLM call.
// storage.CaptionCallRepository satisfies it.
type CallRecorder interface {
	Create(ctx context.Context, call *model.CaptionCall) error
}

// quotePairs are the wrappers models like to put around a caption.
var quotePairs = [][2]string{
	{`"`, `"`},
	{"'", "'"},
	{"“", "”"},
	{"‘", "’"},
	{"«", "»"},
}

// cleanCaption collapses whitespace and strips surrounding quotes, so the
// renderers get a single clean line of text.
func cleanCaption(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	for {
		stripped := false
		for _, q := range quotePairs {
			if len(s) >= len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
				s = strings.TrimSpace(s[len(q[0]) : len(s)-len(q[1])])
				stripped = true
			}
		}
		if !stripped {
			return s
		}
	}
}
