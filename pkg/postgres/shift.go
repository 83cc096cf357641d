package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
	"github.com/mkleiva/dugnadsplan/pkg/db"
)

const shiftColumns = `id, team_id, to_char(date, 'YYYY-MM-DD'), start_time, end_time, role,
	required_people, point_value, status, to_char(buffer_date, 'YYYY-MM-DD'), needs_substitute, created_by`

func scanShift(row pgx.Row) (*db.Shift, error) {
	var s db.Shift
	err := row.Scan(&s.ID, &s.TeamID, &s.Date, &s.StartTime, &s.EndTime, &s.Role,
		&s.RequiredPeople, &s.PointValue, &s.Status, &s.BufferDate, &s.NeedsSubstitute, &s.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// InsertShifts inserts a season's shifts as one batch
func (d *DB) InsertShifts(ctx context.Context, shifts []db.Shift) error {
	if len(shifts) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, s := range shifts {
		_, err := tx.Exec(ctx, `
			INSERT INTO shifts (id, team_id, date, start_time, end_time, role,
				required_people, point_value, status, buffer_date, needs_substitute, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, s.ID, s.TeamID, s.Date, s.StartTime, s.EndTime, s.Role,
			s.RequiredPeople, s.PointValue, s.Status, s.BufferDate, s.NeedsSubstitute, s.CreatedBy)
		if err != nil {
			return fmt.Errorf("failed to insert shift: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetShift retrieves one shift, or nil if it does not exist
func (d *DB) GetShift(ctx context.Context, shiftID string) (*db.Shift, error) {
	shift, err := scanShift(d.pool.QueryRow(ctx,
		`SELECT `+shiftColumns+` FROM shifts WHERE id = $1`, shiftID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query shift: %w", err)
	}
	return shift, nil
}

// GetPendingShifts returns the team's pending shifts in chronological
// order, optionally restricted to one date. Shifts escalated to the
// marketplace are excluded from the assignment pool.
func (d *DB) GetPendingShifts(ctx context.Context, teamID string, date string) ([]db.Shift, error) {
	query := `SELECT ` + shiftColumns + `
		FROM shifts
		WHERE team_id = $1 AND status = 'pending' AND NOT needs_substitute`
	args := []any{teamID}

	if date != "" {
		query += ` AND date = $2`
		args = append(args, date)
	}
	query += ` ORDER BY date, start_time, role`

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending shifts: %w", err)
	}
	defer rows.Close()

	return collectShifts(rows)
}

// GetShiftsPastBuffer returns unresolved shifts (pending, or assigned but
// not yet confirmed) whose buffer deadline is behind the given date and
// which have not yet been escalated
func (d *DB) GetShiftsPastBuffer(ctx context.Context, teamID string, today string) ([]db.Shift, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+shiftColumns+`
		FROM shifts
		WHERE team_id = $1
		  AND buffer_date < $2
		  AND status IN ('pending', 'assigned')
		  AND NOT needs_substitute
		ORDER BY date, start_time, role
	`, teamID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts past buffer: %w", err)
	}
	defer rows.Close()

	return collectShifts(rows)
}

// GetShiftCountsByStatus aggregates the team's shifts per status
func (d *DB) GetShiftCountsByStatus(ctx context.Context, teamID string) (map[model.ShiftStatus]int, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM shifts
		WHERE team_id = $1
		GROUP BY status
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.ShiftStatus]int)
	for rows.Next() {
		var status model.ShiftStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan shift count: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shift counts: %w", err)
	}

	return counts, nil
}

// MarkShiftNeedsSubstitute flags a shift as escalated to the marketplace,
// removing it from the automatic assignment pool
func (d *DB) MarkShiftNeedsSubstitute(ctx context.Context, shiftID string) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE shifts SET needs_substitute = TRUE WHERE id = $1
	`, shiftID)
	if err != nil {
		return fmt.Errorf("failed to mark shift for substitute: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: shift %s", model.ErrNotFound, shiftID)
	}
	return nil
}

func collectShifts(rows pgx.Rows) ([]db.Shift, error) {
	var shifts []db.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, *shift)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}

	return shifts, nil
}
