package provider

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fleveque/pet-composer/internal/llm"
	"github.com/fleveque/pet-composer/internal/model"
)

// CaptionProvider asks LLM clients for battle captions. It tries clients in
// configured order; the first success wins and failures fall through.
// Every attempt waits on a shared limiter to keep API costs bounded.
type CaptionProvider struct {
	clients   []llm.Client // ordered: first is primary, rest are fallbacks
	limiter   *rate.Limiter
	recorder  CallRecorder // may be nil
	maxTokens int
	logger    *zap.Logger
}

// NewCaptionProvider creates a provider with an ordered list of LLM clients.
// The order comes from config (llm.provider_order), so swapping provider
// priority is a config change, not a code change. ratePerMinute <= 0 disables
// rate limiting.
func NewCaptionProvider(
	clients []llm.Client,
	ratePerMinute int,
	maxTokens int,
	recorder CallRecorder,
	logger *zap.Logger,
) *CaptionProvider {
	limit := rate.Inf
	burst := 1
	if ratePerMinute > 0 {
		// rate.Every turns an interval between events into a rate.Limit.
		limit = rate.Every(time.Minute / time.Duration(ratePerMinute))
		// A battle fires all its voices at once, so allow a small burst.
		burst = min(ratePerMinute, 3)
	}

	return &CaptionProvider{
		clients:   clients,
		limiter:   rate.NewLimiter(limit, burst),
		recorder:  recorder,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Available reports whether at least one client is configured.
func (p *CaptionProvider) Available() bool { return len(p.clients) > 0 }

// GenerateCaption returns a cleaned caption for the photo in the given voice.
func (p *CaptionProvider) GenerateCaption(ctx context.Context, voice model.Voice, photoJPEG []byte) (string, error) {
	if len(p.clients) == 0 {
		return "", ErrNoCaptionProviders
	}

	req := llm.CaptionRequest{Voice: voice, PhotoJPEG: photoJPEG, MaxTokens: p.maxTokens}
	var lastErr error

	for i, client := range p.clients {
		// Blocks until a token is available or the context is cancelled.
		if err := p.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}

		caption, err := p.tryClient(ctx, client, req)
		if err == nil {
			return caption, nil
		}
		lastErr = err

		if i < len(p.clients)-1 {
			p.logger.Warn("caption provider failed, trying next",
				zap.String("voice", voice.ID),
				zap.String("provider", client.ProviderName()),
				zap.Error(err),
			)
		}
	}

	return "", fmt.Errorf("all caption providers failed for voice %s: %w", voice.ID, lastErr)
}

func (p *CaptionProvider) tryClient(ctx context.Context, client llm.Client, req llm.CaptionRequest) (string, error) {
	start := time.Now()
	raw, err := client.GenerateCaption(ctx, req)
	duration := time.Since(start).Milliseconds()

	caption := ""
	if err == nil {
		caption = cleanCaption(raw)
		if caption == "" {
			err = errEmptyCaption
		}
	}

	p.recordCall(ctx, client, req.Voice.ID, err, duration)
	if err != nil {
		return "", err
	}
	return caption, nil
}

func (p *CaptionProvider) recordCall(ctx context.Context, client llm.Client, voiceID string, callErr error, durationMs int64) {
	if p.recorder == nil {
		return
	}
	call := &model.CaptionCall{
		VoiceID:  voiceID,
		Provider: client.ProviderName(),
		Model:    client.ModelName(),
		Success:  callErr == nil,
	}
	call.DurationMs = &durationMs
	if callErr != nil {
		msg := callErr.Error()
		call.ErrorText = &msg
	}

	// A cancelled request context shouldn't lose the audit row.
	if err := p.recorder.Create(context.WithoutCancel(ctx), call); err != nil {
		p.logger.Error("recording caption call", zap.Error(err))
	}
}
