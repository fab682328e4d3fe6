package service

import (
	"context"
	"errors"
	"image/color"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/pet-composer/internal/model"
)

// fakeCaptions answers from a map. Delays let tests finish calls out of order.
type fakeCaptions struct {
	mu     sync.Mutex
	seen   []string
	delays map[string]time.Duration
	fail   map[string]error
}

func (f *fakeCaptions) GenerateCaption(ctx context.Context, voice model.Voice, photoJPEG []byte) (string, error) {
	f.mu.Lock()
	f.seen = append(f.seen, voice.ID)
	f.mu.Unlock()

	if len(photoJPEG) == 0 {
		return "", errors.New("no photo")
	}
	if err := f.fail[voice.ID]; err != nil {
		return "", err
	}
	select {
	case <-time.After(f.delays[voice.ID]):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return voice.Label + " says hi", nil
}

func newTestBattleService(t *testing.T, captions CaptionGenerator) *BattleService {
	t.Helper()
	return NewBattleService(NewImageProcessor(0, zap.NewNop()), captions, newTestComposer(t), 3, zap.NewNop())
}

func TestBattleService_PreservesInputOrder(t *testing.T) {
	captions := &fakeCaptions{delays: map[string]time.Duration{
		"sassy":    30 * time.Millisecond,
		"dramatic": 10 * time.Millisecond,
	}}
	s := newTestBattleService(t, captions)

	voices := []string{"sassy", "dramatic", "wholesome"}
	artifact, entries, err := s.Run(context.Background(), createTestPNG(200, 150, color.RGBA{G: 200, A: 255}), voices)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if artifact == nil || artifact.Format != model.FormatJPEG {
		t.Fatalf("expected a JPEG artifact, got %v", artifact)
	}
	if len(entries) != len(voices) {
		t.Fatalf("expected %d entries, got %d", len(voices), len(entries))
	}
	for i, id := range voices {
		if entries[i].VoiceID != id {
			t.Errorf("entry %d: expected voice %s, got %s", i, id, entries[i].VoiceID)
		}
		if want := model.LookupVoice(id).Label + " says hi"; entries[i].Caption != want {
			t.Errorf("entry %d: expected caption %q, got %q", i, want, entries[i].Caption)
		}
	}
	if len(captions.seen) != len(voices) {
		t.Errorf("expected %d caption calls, got %d", len(voices), len(captions.seen))
	}
}

func TestBattleService_OneFailureAbortsAll(t *testing.T) {
	boom := errors.New("model overloaded")
	captions := &fakeCaptions{
		fail:   map[string]error{"dramatic": boom},
		delays: map[string]time.Duration{"sassy": time.Second, "wholesome": time.Second},
	}
	s := newTestBattleService(t, captions)

	start := time.Now()
	artifact, entries, err := s.Run(context.Background(), createTestPNG(50, 50, color.White), []string{"sassy", "dramatic", "wholesome"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the caption error, got %v", err)
	}
	var capErr *CaptionError
	if !errors.As(err, &capErr) || capErr.VoiceID != "dramatic" {
		t.Errorf("expected CaptionError for dramatic, got %v", err)
	}
	if artifact != nil || entries != nil {
		t.Error("no partial battle should be returned")
	}
	// The slow calls are cancelled rather than awaited in full.
	if elapsed := time.Since(start); elapsed > 900*time.Millisecond {
		t.Errorf("expected cancellation of in-flight calls, took %v", elapsed)
	}
}

func TestBattleService_Validation(t *testing.T) {
	s := newTestBattleService(t, &fakeCaptions{})

	if _, _, err := s.Run(context.Background(), createTestPNG(10, 10, color.White), nil); !errors.Is(err, model.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for no voices, got %v", err)
	}

	_, _, err := s.Run(context.Background(), []byte("nope"), []string{"sassy"})
	var loadErr *model.ImageLoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("expected ImageLoadError, got %v", err)
	}
}

func TestBattleService_TooManyVoicesMakesNoCalls(t *testing.T) {
	captions := &fakeCaptions{}
	s := newTestBattleService(t, captions)

	_, _, err := s.Run(context.Background(), createTestPNG(10, 10, color.White), []string{"sassy", "dramatic", "wholesome", "sassy"})
	if !errors.Is(err, ErrTooManyVoices) || !errors.Is(err, model.ErrInvalidRequest) {
		t.Fatalf("expected ErrTooManyVoices, got %v", err)
	}
	if len(captions.seen) != 0 {
		t.Errorf("no caption should be requested, got %d calls", len(captions.seen))
	}
}

func TestCheckBattleSize(t *testing.T) {
	tests := []struct {
		name string
		n    int
		max  int
		want error
	}{
		{"empty", 0, 3, ErrNoVoices},
		{"within limit", 3, 3, nil},
		{"over limit", 4, 3, ErrTooManyVoices},
		{"default limit", DefaultMaxBattleVoices, 0, nil},
		{"over default limit", DefaultMaxBattleVoices + 1, 0, ErrTooManyVoices},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBattleSize(tt.n, tt.max)
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
