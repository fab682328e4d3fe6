package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fleveque/pet-composer/internal/model"
)

// VoiceCount is one row of the per-voice breakdown.
type VoiceCount struct {
	VoiceID string `db:"voice_id" json:"voice_id"`
	Total   int64  `db:"total" json:"total"`
	Failed  int64  `db:"failed" json:"failed"`
}

// CaptionCallRepository persists the audit trail of caption LLM calls.
// Only the interface is exported; the SQLite implementation stays private,
// so tests can swap in a fake without touching a database.
type CaptionCallRepository interface {
	Create(ctx context.Context, call *model.CaptionCall) error
	Count(ctx context.Context) (int64, error)
	CountBySuccess(ctx context.Context, success bool) (int64, error)
	CountByVoice(ctx context.Context) ([]VoiceCount, error)
}

type sqliteCaptionCallRepository struct {
	db *sqlx.DB
}

// NewCaptionCallRepository creates a new SQLite-backed CaptionCallRepository.
func NewCaptionCallRepository(db *sqlx.DB) CaptionCallRepository {
	return &sqliteCaptionCallRepository{db: db}
}

func (r *sqliteCaptionCallRepository) Create(ctx context.Context, call *model.CaptionCall) error {
	// NamedExecContext maps the struct's `db:` tags to :named placeholders.
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO caption_calls (voice_id, provider, model, success, error_text, duration_ms)
		VALUES (:voice_id, :provider, :model, :success, :error_text, :duration_ms)
	`, call)
	if err != nil {
		return fmt.Errorf("creating caption call record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	call.ID = id
	return nil
}

func (r *sqliteCaptionCallRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM caption_calls"); err != nil {
		return 0, fmt.Errorf("counting caption calls: %w", err)
	}
	return count, nil
}

func (r *sqliteCaptionCallRepository) CountBySuccess(ctx context.Context, success bool) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM caption_calls WHERE success = ?", success)
	if err != nil {
		return 0, fmt.Errorf("counting caption calls by success: %w", err)
	}
	return count, nil
}

// CountByVoice returns totals per voice, ordered by voice id.
func (r *sqliteCaptionCallRepository) CountByVoice(ctx context.Context) ([]VoiceCount, error) {
	var counts []VoiceCount
	err := r.db.SelectContext(ctx, &counts, `
		SELECT voice_id,
		       COUNT(*) AS total,
		       SUM(CASE WHEN success THEN 0 ELSE 1 END) AS failed
		FROM caption_calls
		GROUP BY voice_id
		ORDER BY voice_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("counting caption calls by voice: %w", err)
	}
	return counts, nil
}
