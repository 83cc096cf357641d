package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
	"github.com/mkleiva/dugnadsplan/pkg/db"
)

// InsertSwapRequest inserts a new swap request
func (d *DB) InsertSwapRequest(ctx context.Context, r *db.ShiftSwapRequest) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO shift_swaps (id, original_assignment_id, requesting_family_id, target_family_id,
			status, requested_at, responded_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.ID, r.OriginalAssignmentID, r.RequestingFamilyID, nullable(r.TargetFamilyID),
		r.Status, r.RequestedAt, r.RespondedAt, r.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert swap request: %w", err)
	}
	return nil
}

// GetSwapRequest retrieves one swap request, or nil if it does not exist
func (d *DB) GetSwapRequest(ctx context.Context, swapID string) (*db.ShiftSwapRequest, error) {
	var r db.ShiftSwapRequest
	var targetFamilyID *string
	err := d.pool.QueryRow(ctx, `
		SELECT id, original_assignment_id, requesting_family_id, target_family_id,
			status, requested_at, responded_at, completed_at
		FROM shift_swaps
		WHERE id = $1
	`, swapID).Scan(&r.ID, &r.OriginalAssignmentID, &r.RequestingFamilyID, &targetFamilyID,
		&r.Status, &r.RequestedAt, &r.RespondedAt, &r.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query swap request: %w", err)
	}
	if targetFamilyID != nil {
		r.TargetFamilyID = *targetFamilyID
	}
	return &r, nil
}

// UpdateSwapRequest persists a swap request's status and timestamps
func (d *DB) UpdateSwapRequest(ctx context.Context, r *db.ShiftSwapRequest) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE shift_swaps
		SET target_family_id = $2, status = $3, responded_at = $4, completed_at = $5
		WHERE id = $1
	`, r.ID, nullable(r.TargetFamilyID), r.Status, r.RespondedAt, r.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to update swap request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: swap request %s", model.ErrNotFound, r.ID)
	}
	return nil
}

// ExecuteSwap commits an accepted swap in one transaction: the original
// assignment transitions to swapped, the target family's replacement is
// created and the request is completed. Either all of it lands or none.
func (d *DB) ExecuteSwap(ctx context.Context, request *db.ShiftSwapRequest, cancelled *db.Assignment, replacement *db.Assignment) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE shift_assignments
		SET status = $2
		WHERE id = $1 AND status IN ('assigned', 'confirmed')
	`, cancelled.ID, cancelled.Status)
	if err != nil {
		return fmt.Errorf("failed to cancel original assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: original assignment changed since acceptance", model.ErrSwapStale)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO shift_assignments (id, shift_id, family_id, assigned_by, status, assigned_date, notification_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, replacement.ID, replacement.ShiftID, replacement.FamilyID, replacement.AssignedBy,
		replacement.Status, replacement.AssignedDate, replacement.NotificationSent)
	if err != nil {
		return fmt.Errorf("failed to insert replacement assignment: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE shift_swaps
		SET status = $2, responded_at = $3, completed_at = $4
		WHERE id = $1
	`, request.ID, request.Status, request.RespondedAt, request.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to complete swap request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit swap: %w", err)
	}

	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
