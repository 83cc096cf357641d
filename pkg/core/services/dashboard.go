package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
	"github.com/mkleiva/dugnadsplan/pkg/db"
)

// DashboardStore defines the database operations needed for the
// coordinator dashboard
type DashboardStore interface {
	GetShiftCountsByStatus(ctx context.Context, teamID string) (map[model.ShiftStatus]int, error)
	GetFamilyRoster(ctx context.Context, teamID string) ([]model.FamilyWithPoints, error)
	GetShiftsPastBuffer(ctx context.Context, teamID string, today string) ([]db.Shift, error)
}

// FamilyFollowup flags a family the coordinator should check in with
type FamilyFollowup struct {
	FamilyID   string
	FamilyName string
	Points     int
	Reason     string
}

// IssueAlert flags an upcoming problem the coordinator should act on
type IssueAlert struct {
	ShiftID string
	Date    string
	Message string
}

// DashboardSummary aggregates the coordinator overview: shift counts by
// status, families needing follow-up, escalation candidates
type DashboardSummary struct {
	TotalShifts     int
	PendingShifts   int
	AssignedShifts  int
	CompletedShifts int

	FamiliesNeedingFollowup []FamilyFollowup
	UpcomingIssues          []IssueAlert
}

// Dashboard builds the coordinator overview for a team
func Dashboard(
	ctx context.Context,
	store DashboardStore,
	logger *zap.Logger,
	teamID string,
	now time.Time,
) (*DashboardSummary, error) {
	logger.Debug("Building coordinator dashboard", zap.String("team_id", teamID))

	counts, err := store.GetShiftCountsByStatus(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift counts: %w", err)
	}

	summary := &DashboardSummary{
		PendingShifts:           counts[model.ShiftPending],
		AssignedShifts:          counts[model.ShiftAssigned] + counts[model.ShiftConfirmed],
		CompletedShifts:         counts[model.ShiftCompleted],
		FamiliesNeedingFollowup: []FamilyFollowup{},
		UpcomingIssues:          []IssueAlert{},
	}
	for _, count := range counts {
		summary.TotalShifts += count
	}

	roster, err := store.GetFamilyRoster(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch family roster: %w", err)
	}

	for _, family := range roster {
		if family.ProtectedGroup {
			continue
		}
		switch {
		case family.TotalPoints < 0:
			summary.FamiliesNeedingFollowup = append(summary.FamiliesNeedingFollowup, FamilyFollowup{
				FamilyID:   family.FamilyID,
				FamilyName: family.FamilyName,
				Points:     family.TotalPoints,
				Reason:     "negative point balance (missed shifts)",
			})
		case family.TotalPoints == 0 && family.AssignedShifts == 0:
			summary.FamiliesNeedingFollowup = append(summary.FamiliesNeedingFollowup, FamilyFollowup{
				FamilyID:   family.FamilyID,
				FamilyName: family.FamilyName,
				Points:     family.TotalPoints,
				Reason:     "no shifts assigned or completed this season",
			})
		}
	}

	// Shifts inside their buffer window without coverage are the
	// coordinator's escalation candidates
	unresolved, err := store.GetShiftsPastBuffer(ctx, teamID, todayString(now))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unresolved shifts: %w", err)
	}
	for _, shift := range unresolved {
		summary.UpcomingIssues = append(summary.UpcomingIssues, IssueAlert{
			ShiftID: shift.ID,
			Date:    shift.Date,
			Message: fmt.Sprintf("%s shift on %s has passed its buffer deadline without coverage", shift.Role, shift.Date),
		})
	}

	return summary, nil
}
