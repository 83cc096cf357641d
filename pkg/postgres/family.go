package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
	"github.com/mkleiva/dugnadsplan/pkg/db"
)

// GetFamily retrieves one family record, or nil if it does not exist
func (d *DB) GetFamily(ctx context.Context, familyID string) (*db.Family, error) {
	var f db.Family
	err := d.pool.QueryRow(ctx, `
		SELECT id, team_id, name, contact_email, protected_group
		FROM families
		WHERE id = $1
	`, familyID).Scan(&f.ID, &f.TeamID, &f.Name, &f.ContactEmail, &f.ProtectedGroup)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query family: %w", err)
	}
	return &f, nil
}

// GetFamilyRoster returns the team's families with ledger-derived point
// totals and active season assignment counts. Totals are computed from
// point_history on every read; there is no cached total to drift.
func (d *DB) GetFamilyRoster(ctx context.Context, teamID string) ([]model.FamilyWithPoints, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT
			f.id,
			f.name,
			f.protected_group,
			COALESCE(SUM(ph.points_earned) FILTER (WHERE ph.point_type = 'base'), 0) AS base_points,
			COALESCE(SUM(ph.points_earned) FILTER (WHERE ph.point_type IN ('family', 'bonus')), 0) AS family_points,
			(
				SELECT COUNT(*)
				FROM shift_assignments a
				WHERE a.family_id = f.id
				  AND a.status IN ('assigned', 'confirmed', 'completed')
			) AS assigned_shifts
		FROM families f
		LEFT JOIN point_history ph ON ph.family_id = f.id
		WHERE f.team_id = $1
		GROUP BY f.id, f.name, f.protected_group
		ORDER BY f.name
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query family roster: %w", err)
	}
	defer rows.Close()

	var roster []model.FamilyWithPoints
	for rows.Next() {
		var f model.FamilyWithPoints
		if err := rows.Scan(&f.FamilyID, &f.FamilyName, &f.ProtectedGroup,
			&f.BasePoints, &f.FamilyPoints, &f.AssignedShifts); err != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", err)
		}
		f.TotalPoints = f.BasePoints + f.FamilyPoints
		f.Level = model.LevelFor(f.TotalPoints)
		roster = append(roster, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roster: %w", err)
	}

	return roster, nil
}
