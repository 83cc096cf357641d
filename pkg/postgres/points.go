package postgres

import (
	"context"
	"fmt"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
	"github.com/mkleiva/dugnadsplan/pkg/db"
)

// InsertPointHistoryEntry appends one entry to the ledger. The table is
// append-only; nothing ever updates or deletes point_history rows.
func (d *DB) InsertPointHistoryEntry(ctx context.Context, entry *db.PointHistoryEntry) error {
	var relatedShiftID, relatedRole *string
	if entry.RelatedShiftID != "" {
		relatedShiftID = &entry.RelatedShiftID
	}
	if entry.RelatedRole != "" {
		role := string(entry.RelatedRole)
		relatedRole = &role
	}

	_, err := d.pool.Exec(ctx, `
		INSERT INTO point_history (id, family_id, point_type, points_earned, reason, related_shift_id, related_role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, entry.FamilyID, entry.PointType, entry.PointsEarned, entry.Reason,
		relatedShiftID, relatedRole, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert point history entry: %w", err)
	}
	return nil
}

// GetPointHistory retrieves a family's full point history, oldest first
func (d *DB) GetPointHistory(ctx context.Context, familyID string) ([]db.PointHistoryEntry, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, family_id, point_type, points_earned, reason, related_shift_id, related_role, created_at
		FROM point_history
		WHERE family_id = $1
		ORDER BY created_at
	`, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query point history: %w", err)
	}
	defer rows.Close()

	var history []db.PointHistoryEntry
	for rows.Next() {
		var entry db.PointHistoryEntry
		var relatedShiftID, relatedRole *string
		if err := rows.Scan(&entry.ID, &entry.FamilyID, &entry.PointType, &entry.PointsEarned,
			&entry.Reason, &relatedShiftID, &relatedRole, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan point history entry: %w", err)
		}
		if relatedShiftID != nil {
			entry.RelatedShiftID = *relatedShiftID
		}
		if relatedRole != nil {
			entry.RelatedRole = model.ShiftRole(*relatedRole)
		}
		history = append(history, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating point history: %w", err)
	}

	return history, nil
}
