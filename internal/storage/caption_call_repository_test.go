// Repository tests run against a real SQLite file in t.TempDir().
package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fleveque/pet-composer/internal/model"
)

func setupTestRepo(t *testing.T) CaptionCallRepository {
	t.Helper() // error line numbers point to the caller

	db, err := NewDatabase(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewCaptionCallRepository(db)
}

func TestCaptionCallRepository_Create(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	duration := int64(1500)
	call := &model.CaptionCall{
		VoiceID:    "sassy",
		Provider:   "anthropic",
		Model:      "claude-sonnet-4-5-20250929",
		Success:    true,
		DurationMs: &duration,
	}
	if err := repo.Create(ctx, call); err != nil {
		t.Fatalf("creating caption call: %v", err)
	}
	if call.ID == 0 {
		t.Error("expected caption call ID to be set after create")
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("counting: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 call, got %d", count)
	}
}

func TestCaptionCallRepository_Counts(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	errText := "overloaded"
	calls := []struct {
		voice   string
		success bool
	}{
		{"sassy", true},
		{"sassy", false},
		{"dramatic", true},
		{"wholesome", false},
		{"wholesome", false},
	}
	for _, c := range calls {
		call := &model.CaptionCall{VoiceID: c.voice, Provider: "openai", Model: "gpt-4o", Success: c.success}
		if !c.success {
			call.ErrorText = &errText
		}
		if err := repo.Create(ctx, call); err != nil {
			t.Fatalf("creating call for %s: %v", c.voice, err)
		}
	}

	succeeded, err := repo.CountBySuccess(ctx, true)
	if err != nil {
		t.Fatalf("counting successes: %v", err)
	}
	failed, err := repo.CountBySuccess(ctx, false)
	if err != nil {
		t.Fatalf("counting failures: %v", err)
	}
	if succeeded != 2 || failed != 3 {
		t.Errorf("expected 2 succeeded and 3 failed, got %d and %d", succeeded, failed)
	}

	byVoice, err := repo.CountByVoice(ctx)
	if err != nil {
		t.Fatalf("counting by voice: %v", err)
	}
	want := []VoiceCount{
		{VoiceID: "dramatic", Total: 1, Failed: 0},
		{VoiceID: "sassy", Total: 2, Failed: 1},
		{VoiceID: "wholesome", Total: 2, Failed: 2},
	}
	if len(byVoice) != len(want) {
		t.Fatalf("expected %d voices, got %+v", len(want), byVoice)
	}
	for i := range want {
		if byVoice[i] != want[i] {
			t.Errorf("row %d: expected %+v, got %+v", i, want[i], byVoice[i])
		}
	}
}
