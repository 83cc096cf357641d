package postgres

import (
	"context"
	"fmt"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
	"github.com/mkleiva/dugnadsplan/pkg/db"
)

// GetSubstitutes returns active substitutes, optionally filtered to those
// covering the given role
func (d *DB) GetSubstitutes(ctx context.Context, roleFilter model.ShiftRole) ([]db.Substitute, error) {
	query := `
		SELECT id, user_id, full_name, available_roles, hourly_rate_min, hourly_rate_max, active
		FROM substitutes
		WHERE active`
	args := []any{}

	if roleFilter != "" {
		query += ` AND $1 = ANY(available_roles)`
		args = append(args, string(roleFilter))
	}
	query += ` ORDER BY full_name`

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query substitutes: %w", err)
	}
	defer rows.Close()

	var substitutes []db.Substitute
	for rows.Next() {
		var s db.Substitute
		var roles []string
		if err := rows.Scan(&s.ID, &s.UserID, &s.FullName, &roles,
			&s.HourlyRateMin, &s.HourlyRateMax, &s.Active); err != nil {
			return nil, fmt.Errorf("failed to scan substitute: %w", err)
		}
		for _, role := range roles {
			s.AvailableRoles = append(s.AvailableRoles, model.ShiftRole(role))
		}
		substitutes = append(substitutes, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating substitutes: %w", err)
	}

	return substitutes, nil
}

// GetListingsForRole returns marketplace listings whose shift has the
// given role. Used to price new listings from similar historical shifts.
func (d *DB) GetListingsForRole(ctx context.Context, role model.ShiftRole) ([]db.MarketplaceListing, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT l.id, l.shift_id, l.suggested_rate, l.resolved, l.created_at
		FROM marketplace_listings l
		JOIN shifts s ON s.id = l.shift_id
		WHERE s.role = $1
		ORDER BY l.created_at
	`, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var listings []db.MarketplaceListing
	for rows.Next() {
		var l db.MarketplaceListing
		if err := rows.Scan(&l.ID, &l.ShiftID, &l.SuggestedRate, &l.Resolved, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listings: %w", err)
	}

	return listings, nil
}

// InsertListing creates one marketplace listing
func (d *DB) InsertListing(ctx context.Context, listing *db.MarketplaceListing) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO marketplace_listings (id, shift_id, suggested_rate, resolved, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, listing.ID, listing.ShiftID, listing.SuggestedRate, listing.Resolved, listing.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	return nil
}
