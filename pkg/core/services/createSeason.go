package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
	"github.com/mkleiva/dugnadsplan/pkg/core/season"
	"github.com/mkleiva/dugnadsplan/pkg/db"
)

// SeasonStore defines the database operations needed to create a season
type SeasonStore interface {
	InsertShifts(ctx context.Context, shifts []db.Shift) error
}

// SeasonResult represents the result of creating a season's shifts
type SeasonResult struct {
	Shifts []db.Shift
}

// CreateSeasonShifts expands a season template into concrete shifts and
// persists them as a single pending batch. The coordinator enters the
// season plan once; the assignment engine handles distribution.
//
// Each shift's point value is frozen at creation time and its buffer
// date is set bufferDays before the shift date.
func CreateSeasonShifts(
	ctx context.Context,
	store SeasonStore,
	logger *zap.Logger,
	teamID string,
	coordinatorID string,
	tmpl season.Template,
	bufferDays int,
) (*SeasonResult, error) {
	logger.Info("Creating season shifts",
		zap.String("team_id", teamID),
		zap.String("start", tmpl.StartDate.Format("2006-01-02")),
		zap.String("end", tmpl.EndDate.Format("2006-01-02")),
		zap.Int("roles", len(tmpl.Roles)))

	instances, err := season.Expand(tmpl)
	if err != nil {
		return nil, fmt.Errorf("failed to expand season template: %w", err)
	}

	logger.Debug("Expanded season template", zap.Int("shift_count", len(instances)))

	shifts := make([]db.Shift, len(instances))
	for i, instance := range instances {
		shifts[i] = db.Shift{
			ID:             uuid.New().String(),
			TeamID:         teamID,
			Date:           instance.Date.Format("2006-01-02"),
			StartTime:      instance.StartTime,
			EndTime:        instance.EndTime,
			Role:           instance.Role,
			RequiredPeople: instance.RequiredPeople,
			PointValue:     instance.PointValue,
			Status:         model.ShiftPending,
			BufferDate:     season.BufferDate(instance.Date, bufferDays).Format("2006-01-02"),
			CreatedBy:      coordinatorID,
		}
	}

	if len(shifts) > 0 {
		if err := store.InsertShifts(ctx, shifts); err != nil {
			return nil, fmt.Errorf("failed to insert season shifts: %w", err)
		}
	}

	logger.Info("Season shifts created",
		zap.String("team_id", teamID),
		zap.Int("shift_count", len(shifts)))

	return &SeasonResult{Shifts: shifts}, nil
}

// todayString formats a point in time as a stored calendar date
func todayString(now time.Time) string {
	return now.Format("2006-01-02")
}
