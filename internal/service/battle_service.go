package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fleveque/pet-composer/internal/model"
)

// DefaultMaxBattleVoices bounds a battle when no limit is configured.
const DefaultMaxBattleVoices = 6

var (
	// ErrNoVoices is returned when a battle is requested without any voices.
	ErrNoVoices = fmt.Errorf("battle needs at least one voice: %w", model.ErrInvalidRequest)
	// ErrTooManyVoices is returned before any caption is requested, since
	// every voice costs one LLM call.
	ErrTooManyVoices = fmt.Errorf("too many battle voices: %w", model.ErrInvalidRequest)
)

// CheckBattleSize validates the number of voices or entries in a battle.
// limit <= 0 means DefaultMaxBattleVoices.
func CheckBattleSize(n, limit int) error {
	if limit <= 0 {
		limit = DefaultMaxBattleVoices
	}
	switch {
	case n == 0:
		return ErrNoVoices
	case n > limit:
		return fmt.Errorf("%w: %d given, at most %d", ErrTooManyVoices, n, limit)
	}
	return nil
}

// CaptionGenerator writes one caption for a photo in the given voice.
// provider.CaptionProvider is the production implementation.
type CaptionGenerator interface {
	GenerateCaption(ctx context.Context, voice model.Voice, photoJPEG []byte) (string, error)
}

// CaptionError reports which voice failed during a battle.
type CaptionError struct {
	VoiceID string
	Err     error
}

func (e *CaptionError) Error() string {
	return fmt.Sprintf("caption for voice %s: %v", e.VoiceID, e.Err)
}

func (e *CaptionError) Unwrap() error { return e.Err }

// BattleService runs the caption battle: one caption request per voice,
// all in flight at once, then a single render once every caption is back.
type BattleService struct {
	images    *ImageProcessor
	captions  CaptionGenerator
	composer  *Composer
	maxVoices int
	logger    *zap.Logger
}

// NewBattleService creates a new BattleService. maxVoices <= 0 uses
// DefaultMaxBattleVoices.
func NewBattleService(images *ImageProcessor, captions CaptionGenerator, composer *Composer, maxVoices int, logger *zap.Logger) *BattleService {
	if maxVoices <= 0 {
		maxVoices = DefaultMaxBattleVoices
	}
	return &BattleService{
		images:    images,
		captions:  captions,
		composer:  composer,
		maxVoices: maxVoices,
		logger:    logger,
	}
}

// Run decodes the photo, fans out one caption request per voice and renders
// the battle card. Entries come back in voiceIDs order, not completion order.
// Any caption failure aborts the whole battle; there is no partial artifact.
func (s *BattleService) Run(ctx context.Context, photoData []byte, voiceIDs []string) (*model.Artifact, []model.BattleEntry, error) {
	if err := CheckBattleSize(len(voiceIDs), s.maxVoices); err != nil {
		return nil, nil, err
	}

	photo, err := s.images.Decode(photoData)
	if err != nil {
		return nil, nil, err
	}
	vision, err := s.images.EncodeJPEG(photo)
	if err != nil {
		return nil, nil, &model.ImageLoadError{Err: err}
	}

	entries, err := s.collect(ctx, vision, voiceIDs)
	if err != nil {
		return nil, nil, err
	}

	artifact, err := s.composer.ComposeBattle(photo, entries)
	if err != nil {
		return nil, nil, err
	}
	return artifact, entries, nil
}

// collect runs the caption calls concurrently. errgroup.WithContext cancels
// the remaining calls as soon as one fails, and Wait returns that first error.
func (s *BattleService) collect(ctx context.Context, photoJPEG []byte, voiceIDs []string) ([]model.BattleEntry, error) {
	start := time.Now()
	entries := make([]model.BattleEntry, len(voiceIDs))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range voiceIDs {
		// Each goroutine writes only its own index, so no mutex is needed.
		g.Go(func() error {
			voice := model.LookupVoice(id)
			caption, err := s.captions.GenerateCaption(gctx, voice, photoJPEG)
			if err != nil {
				return &CaptionError{VoiceID: id, Err: err}
			}
			entries[i] = model.BattleEntry{VoiceID: id, Caption: caption}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var capErr *CaptionError
		if errors.As(err, &capErr) {
			s.logger.Warn("battle aborted",
				zap.String("voice", capErr.VoiceID),
				zap.Error(capErr.Err),
			)
		}
		return nil, err
	}

	s.logger.Info("battle captions ready",
		zap.Int("voices", len(voiceIDs)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return entries, nil
}
