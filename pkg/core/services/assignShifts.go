package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkleiva/dugnadsplan/pkg/core/assigner"
	"github.com/mkleiva/dugnadsplan/pkg/core/model"
	"github.com/mkleiva/dugnadsplan/pkg/db"
	"github.com/mkleiva/dugnadsplan/pkg/notify"
)

// AssignStore defines the database operations needed for an automatic
// assignment run
type AssignStore interface {
	GetPendingShifts(ctx context.Context, teamID string, date string) ([]db.Shift, error)
	GetFamilyRoster(ctx context.Context, teamID string) ([]model.FamilyWithPoints, error)
	GetActiveAssignmentsForFamilyOnDate(ctx context.Context, familyID string, date string) ([]db.Assignment, error)
	InsertAssignment(ctx context.Context, assignment *db.Assignment) error
	MarkAssignmentNotificationSent(ctx context.Context, assignmentIDs []string) error
}

// AssignmentRunResult contains the outcome of one automatic assignment run
type AssignmentRunResult struct {
	// Success is true iff every pending shift received a full assignment
	Success bool

	// Assignments created and persisted during this run
	Assignments []db.Assignment

	// UnassignedShifts could not be matched to any eligible family and
	// are candidates for marketplace escalation
	UnassignedShifts []db.Shift

	// Warnings collects per-shift non-assignments and persistence or
	// notification hiccups. None of these fail the run.
	Warnings []string
}

// AssignShiftsAutomatically runs the fairness-ordered greedy matcher over
// a team's pending shifts. Families are tried lowest points first (with
// protected-group households last), first eligible family wins.
//
// The roster snapshot is frozen for the duration of the run; assignment
// counters are incremented on a working copy so earlier picks influence
// later shifts without touching persisted state. Per-shift non-assignment
// is a normal outcome reported in warnings; only infrastructure failures
// abort the run, wrapping model.ErrAssignmentFailed.
func AssignShiftsAutomatically(
	ctx context.Context,
	store AssignStore,
	notifier notify.Notifier,
	policy assigner.EligibilityPolicy,
	logger *zap.Logger,
	teamID string,
	dateFilter string,
) (*AssignmentRunResult, error) {
	logger.Info("Starting automatic assignment",
		zap.String("team_id", teamID),
		zap.String("date_filter", dateFilter))

	// Step 1: fetch pending shifts, optionally for a single date
	pendingShifts, err := store.GetPendingShifts(ctx, teamID, dateFilter)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching pending shifts: %v", model.ErrAssignmentFailed, err)
	}
	logger.Debug("Found pending shifts", zap.Int("count", len(pendingShifts)))

	// Step 2: frozen roster snapshot for this run
	roster, err := store.GetFamilyRoster(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching family roster: %v", model.ErrAssignmentFailed, err)
	}
	logger.Debug("Fetched family roster", zap.Int("count", len(roster)))

	// Step 3: working copy, sorted by priority
	families := assigner.SnapshotRoster(roster)
	assigner.SortFamiliesByPriority(families)

	result := &AssignmentRunResult{
		Assignments:      []db.Assignment{},
		UnassignedShifts: []db.Shift{},
		Warnings:         []string{},
	}

	// assignedDates tracks picks made earlier in this run, per family,
	// so the conflict check sees them before they are persisted
	assignedDates := make(map[string]map[string]bool)

	hasConflict := func(familyID, date string) (bool, error) {
		if assignedDates[familyID][date] {
			return true, nil
		}
		existing, err := store.GetActiveAssignmentsForFamilyOnDate(ctx, familyID, date)
		if err != nil {
			return false, err
		}
		return len(existing) > 0, nil
	}

	// Step 4: greedy first-fit pass, shift order as fetched (chronological).
	// The roster is re-sorted per shift so working-copy counters from
	// earlier picks push those families down the order.
	for i := range pendingShifts {
		shift := &pendingShifts[i]

		assigner.SortFamiliesByPriority(families)
		picked, err := assigner.PickFamilies(shift, families, hasConflict, policy)
		if err != nil {
			return nil, fmt.Errorf("%w: checking shift conflicts: %v", model.ErrAssignmentFailed, err)
		}

		if len(picked) < shift.RequiredPeople {
			// Roll back working-copy counters for partial picks; the
			// shift stays pending rather than half-staffed
			for _, family := range picked {
				family.AssignedShifts--
			}
			result.UnassignedShifts = append(result.UnassignedShifts, *shift)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Unable to assign %s shift on %s - consider marketplace escalation", shift.Role, shift.Date))
			continue
		}

		for _, family := range picked {
			assignment := db.Assignment{
				ID:           uuid.New().String(),
				ShiftID:      shift.ID,
				FamilyID:     family.FamilyID,
				AssignedBy:   model.AssignedAutomatic,
				Status:       model.AssignmentAssigned,
				AssignedDate: time.Now().UTC(),
			}

			// Step 5: persist each assignment independently; the store
			// re-checks shift status and capacity at commit time, so a
			// shift escalated or filled mid-run fails here, not later
			if err := store.InsertAssignment(ctx, &assignment); err != nil {
				logger.Warn("Failed to persist assignment",
					zap.String("shift_id", shift.ID),
					zap.String("family_id", family.FamilyID),
					zap.Error(err))
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Assignment for %s on %s was not persisted: %v", family.FamilyName, shift.Date, err))
				family.AssignedShifts--
				continue
			}

			if assignedDates[family.FamilyID] == nil {
				assignedDates[family.FamilyID] = make(map[string]bool)
			}
			assignedDates[family.FamilyID][shift.Date] = true

			result.Assignments = append(result.Assignments, assignment)
		}
	}

	// Step 6: one batched notification per family, not one per shift
	notifyFamiliesOfAssignments(ctx, store, notifier, logger, result)

	// Step 7: success means nothing was left for the marketplace
	result.Success = len(result.UnassignedShifts) == 0

	logger.Info("Automatic assignment completed",
		zap.Bool("success", result.Success),
		zap.Int("assignments", len(result.Assignments)),
		zap.Int("unassigned_shifts", len(result.UnassignedShifts)),
		zap.Int("warnings", len(result.Warnings)))

	return result, nil
}

// notifyFamiliesOfAssignments groups the run's assignments by family and
// dispatches a single summary notification per family. Dispatch failures
// become warnings; they never fail the run.
func notifyFamiliesOfAssignments(
	ctx context.Context,
	store AssignStore,
	notifier notify.Notifier,
	logger *zap.Logger,
	result *AssignmentRunResult,
) {
	byFamily := make(map[string][]string)
	for _, assignment := range result.Assignments {
		byFamily[assignment.FamilyID] = append(byFamily[assignment.FamilyID], assignment.ID)
	}

	for familyID, assignmentIDs := range byFamily {
		notification := notify.Notification{
			FamilyID: familyID,
			Type:     notify.TypeShiftAssigned,
			Title:    "Nye dugnader tildelt",
			Body:     fmt.Sprintf("Du har %d nye dugnader. Sjekk appen for detaljer.", len(assignmentIDs)),
			Data:     map[string]string{"count": fmt.Sprintf("%d", len(assignmentIDs))},
		}

		if err := notifier.Notify(ctx, notification); err != nil {
			logger.Warn("Failed to notify family of assignments",
				zap.String("family_id", familyID),
				zap.Error(err))
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Notification to family %s failed: %v", familyID, err))
			continue
		}

		if err := store.MarkAssignmentNotificationSent(ctx, assignmentIDs); err != nil {
			logger.Warn("Failed to mark assignments as notified",
				zap.String("family_id", familyID),
				zap.Error(err))
		}
	}
}
