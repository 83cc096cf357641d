package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
	"github.com/mkleiva/dugnadsplan/pkg/db"
)

// InsertAssignment commits one assignment under the shift's row lock.
// Shift status and remaining capacity are re-checked inside the
// transaction, so a shift that was escalated, cancelled or filled by a
// concurrent run fails here instead of double-booking. When the shift
// reaches its required people it transitions to assigned.
func (d *DB) InsertAssignment(ctx context.Context, a *db.Assignment) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status model.ShiftStatus
	var requiredPeople int
	var needsSubstitute bool
	err = tx.QueryRow(ctx, `
		SELECT status, required_people, needs_substitute
		FROM shifts
		WHERE id = $1
		FOR UPDATE
	`, a.ShiftID).Scan(&status, &requiredPeople, &needsSubstitute)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: shift %s", model.ErrNotFound, a.ShiftID)
	}
	if err != nil {
		return fmt.Errorf("failed to lock shift: %w", err)
	}

	if needsSubstitute {
		return fmt.Errorf("shift %s has been escalated to the marketplace", a.ShiftID)
	}
	if status != model.ShiftPending && status != model.ShiftAssigned {
		return fmt.Errorf("shift %s is %s, cannot assign", a.ShiftID, status)
	}

	var activeCount int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM shift_assignments
		WHERE shift_id = $1 AND status IN ('assigned', 'confirmed', 'completed')
	`, a.ShiftID).Scan(&activeCount)
	if err != nil {
		return fmt.Errorf("failed to count active assignments: %w", err)
	}
	if activeCount >= requiredPeople {
		return fmt.Errorf("shift %s already has %d of %d assignments", a.ShiftID, activeCount, requiredPeople)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO shift_assignments (id, shift_id, family_id, assigned_by, status, assigned_date, notification_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.ShiftID, a.FamilyID, a.AssignedBy, a.Status, a.AssignedDate, a.NotificationSent)
	if err != nil {
		return fmt.Errorf("failed to insert assignment: %w", err)
	}

	if activeCount+1 >= requiredPeople {
		_, err = tx.Exec(ctx, `UPDATE shifts SET status = 'assigned' WHERE id = $1`, a.ShiftID)
		if err != nil {
			return fmt.Errorf("failed to update shift status: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetAssignment retrieves one assignment, or nil if it does not exist
func (d *DB) GetAssignment(ctx context.Context, assignmentID string) (*db.Assignment, error) {
	var a db.Assignment
	err := d.pool.QueryRow(ctx, `
		SELECT id, shift_id, family_id, assigned_by, status, assigned_date, notification_sent
		FROM shift_assignments
		WHERE id = $1
	`, assignmentID).Scan(&a.ID, &a.ShiftID, &a.FamilyID, &a.AssignedBy, &a.Status,
		&a.AssignedDate, &a.NotificationSent)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query assignment: %w", err)
	}
	return &a, nil
}

// GetActiveAssignmentsForFamilyOnDate returns a family's active
// assignments whose shift falls on the given date. Used for conflict
// detection: a family never works two shifts on one day.
func (d *DB) GetActiveAssignmentsForFamilyOnDate(ctx context.Context, familyID string, date string) ([]db.Assignment, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT a.id, a.shift_id, a.family_id, a.assigned_by, a.status, a.assigned_date, a.notification_sent
		FROM shift_assignments a
		JOIN shifts s ON s.id = a.shift_id
		WHERE a.family_id = $1
		  AND s.date = $2
		  AND a.status IN ('assigned', 'confirmed', 'completed')
	`, familyID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments for date: %w", err)
	}
	defer rows.Close()

	var assignments []db.Assignment
	for rows.Next() {
		var a db.Assignment
		if err := rows.Scan(&a.ID, &a.ShiftID, &a.FamilyID, &a.AssignedBy, &a.Status,
			&a.AssignedDate, &a.NotificationSent); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}

// UpdateAssignmentStatus transitions one assignment's status. Assignments
// are never deleted; cancellations and no-shows stay in the history.
func (d *DB) UpdateAssignmentStatus(ctx context.Context, assignmentID string, status model.AssignmentStatus) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE shift_assignments SET status = $2 WHERE id = $1
	`, assignmentID, status)
	if err != nil {
		return fmt.Errorf("failed to update assignment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: assignment %s", model.ErrNotFound, assignmentID)
	}
	return nil
}

// MarkAssignmentNotificationSent records that the owning family has been
// notified about the given assignments
func (d *DB) MarkAssignmentNotificationSent(ctx context.Context, assignmentIDs []string) error {
	if len(assignmentIDs) == 0 {
		return nil
	}
	_, err := d.pool.Exec(ctx, `
		UPDATE shift_assignments SET notification_sent = TRUE WHERE id = ANY($1)
	`, assignmentIDs)
	if err != nil {
		return fmt.Errorf("failed to mark assignments notified: %w", err)
	}
	return nil
}
