package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kudiapp/kudi-backend/internal/domain"
)

// ProgressRepository implements domain.ProgressRepository using PostgreSQL.
// The step payloads live in JSONB; the record is a derived cache, so the
// flexible shape costs nothing.
type ProgressRepository struct {
	db DBTX
}

const progressColumns = `user_id, current_step, step1, step2, step3,
	step4_active, step5_active, step6_active, step7_active,
	last_calculated, created_at, updated_at`

// GetByUser retrieves the progress record for a user
func (r *ProgressRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.Progress, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+progressColumns+` FROM progress WHERE user_id = $1`,
		pgUUID(userID),
	)
	progress, err := scanProgress(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProgressNotFound
	}
	return progress, err
}

// Save upserts the progress record
func (r *ProgressRepository) Save(ctx context.Context, progress *domain.Progress) (*domain.Progress, error) {
	step1, err := json.Marshal(progress.Step1)
	if err != nil {
		return nil, fmt.Errorf("marshal step1: %w", err)
	}
	step2, err := json.Marshal(progress.Step2)
	if err != nil {
		return nil, fmt.Errorf("marshal step2: %w", err)
	}
	step3, err := json.Marshal(progress.Step3)
	if err != nil {
		return nil, fmt.Errorf("marshal step3: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO progress (user_id, current_step, step1, step2, step3,
			step4_active, step5_active, step6_active, step7_active, last_calculated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			current_step = EXCLUDED.current_step,
			step1 = EXCLUDED.step1,
			step2 = EXCLUDED.step2,
			step3 = EXCLUDED.step3,
			step4_active = EXCLUDED.step4_active,
			step5_active = EXCLUDED.step5_active,
			step6_active = EXCLUDED.step6_active,
			step7_active = EXCLUDED.step7_active,
			last_calculated = EXCLUDED.last_calculated,
			updated_at = NOW()
		RETURNING `+progressColumns,
		pgUUID(progress.UserID), progress.CurrentStep, step1, step2, step3,
		progress.Step4Active, progress.Step5Active, progress.Step6Active, progress.Step7Active,
		pgTimestamptz(progress.LastCalculated),
	)
	return scanProgress(row)
}

// scanProgress reads one progress row
func scanProgress(row pgx.Row) (*domain.Progress, error) {
	var (
		progress            domain.Progress
		userID              pgtype.UUID
		step1, step2, step3 []byte
	)
	err := row.Scan(
		&userID, &progress.CurrentStep, &step1, &step2, &step3,
		&progress.Step4Active, &progress.Step5Active, &progress.Step6Active, &progress.Step7Active,
		&progress.LastCalculated, &progress.CreatedAt, &progress.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	progress.UserID = fromPgUUID(userID)
	if err := json.Unmarshal(step1, &progress.Step1); err != nil {
		return nil, fmt.Errorf("unmarshal step1: %w", err)
	}
	if err := json.Unmarshal(step2, &progress.Step2); err != nil {
		return nil, fmt.Errorf("unmarshal step2: %w", err)
	}
	if err := json.Unmarshal(step3, &progress.Step3); err != nil {
		return nil, fmt.Errorf("unmarshal step3: %w", err)
	}
	return &progress, nil
}
