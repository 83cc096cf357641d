package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
	"github.com/mkleiva/dugnadsplan/pkg/db"
	"github.com/mkleiva/dugnadsplan/pkg/notify"
)

// LedgerStore defines the database operations needed for the point ledger
type LedgerStore interface {
	GetFamily(ctx context.Context, familyID string) (*db.Family, error)
	InsertPointHistoryEntry(ctx context.Context, entry *db.PointHistoryEntry) error
	GetPointHistory(ctx context.Context, familyID string) ([]db.PointHistoryEntry, error)
}

// PointTotals is a family's point balance derived from its ledger.
// Total is always BasePoints + FamilyPoints; bonus entries count as
// transferable family points.
type PointTotals struct {
	BasePoints   int
	FamilyPoints int
	TotalPoints  int
}

// RecordPoints appends one immutable entry to a family's point ledger.
// Prior entries are never mutated or deleted; totals are sums over the
// history. Fails with model.ErrNotFound for an unknown family.
func RecordPoints(
	ctx context.Context,
	store LedgerStore,
	logger *zap.Logger,
	familyID string,
	pointType model.PointType,
	amount int,
	reason string,
	relatedShiftID string,
	relatedRole model.ShiftRole,
) (*db.PointHistoryEntry, error) {
	family, err := store.GetFamily(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch family: %w", err)
	}
	if family == nil {
		return nil, fmt.Errorf("%w: family %s", model.ErrNotFound, familyID)
	}

	entry := &db.PointHistoryEntry{
		ID:             uuid.New().String(),
		FamilyID:       familyID,
		PointType:      pointType,
		PointsEarned:   amount,
		Reason:         reason,
		RelatedShiftID: relatedShiftID,
		RelatedRole:    relatedRole,
		CreatedAt:      time.Now().UTC(),
	}

	if err := store.InsertPointHistoryEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to insert point history entry: %w", err)
	}

	logger.Info("Points recorded",
		zap.String("family_id", familyID),
		zap.String("point_type", string(pointType)),
		zap.Int("points", amount),
		zap.String("reason", reason))

	return entry, nil
}

// TotalPointsFor sums a family's point history into its current balance
func TotalPointsFor(ctx context.Context, store LedgerStore, familyID string) (*PointTotals, error) {
	family, err := store.GetFamily(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch family: %w", err)
	}
	if family == nil {
		return nil, fmt.Errorf("%w: family %s", model.ErrNotFound, familyID)
	}

	history, err := store.GetPointHistory(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch point history: %w", err)
	}

	totals := &PointTotals{}
	for _, entry := range history {
		switch entry.PointType {
		case model.PointBase:
			totals.BasePoints += entry.PointsEarned
		case model.PointFamily, model.PointBonus:
			totals.FamilyPoints += entry.PointsEarned
		}
	}
	totals.TotalPoints = totals.BasePoints + totals.FamilyPoints

	return totals, nil
}

// CompletionStore defines the database operations needed to complete an
// assignment and settle its points
type CompletionStore interface {
	LedgerStore
	GetAssignment(ctx context.Context, assignmentID string) (*db.Assignment, error)
	GetShift(ctx context.Context, shiftID string) (*db.Shift, error)
	UpdateAssignmentStatus(ctx context.Context, assignmentID string, status model.AssignmentStatus) error
}

// CompleteAssignment marks a worked shift as completed and credits the
// family the shift's frozen point value in the ledger
func CompleteAssignment(
	ctx context.Context,
	store CompletionStore,
	notifier notify.Notifier,
	logger *zap.Logger,
	assignmentID string,
) (*db.PointHistoryEntry, error) {
	assignment, err := store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignment: %w", err)
	}
	if assignment == nil {
		return nil, fmt.Errorf("%w: assignment %s", model.ErrNotFound, assignmentID)
	}
	if !assignment.Status.IsActive() {
		return nil, fmt.Errorf("assignment %s is %s, cannot complete", assignmentID, assignment.Status)
	}

	shift, err := store.GetShift(ctx, assignment.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift: %w", err)
	}
	if shift == nil {
		return nil, fmt.Errorf("%w: shift %s", model.ErrNotFound, assignment.ShiftID)
	}

	if err := store.UpdateAssignmentStatus(ctx, assignmentID, model.AssignmentCompleted); err != nil {
		return nil, fmt.Errorf("failed to update assignment status: %w", err)
	}

	entry, err := RecordPoints(ctx, store, logger, assignment.FamilyID, model.PointBase,
		shift.PointValue, fmt.Sprintf("Fullført dugnad: %s %s", shift.Role, shift.Date),
		shift.ID, shift.Role)
	if err != nil {
		return nil, err
	}

	notification := notify.Notification{
		FamilyID: assignment.FamilyID,
		Type:     notify.TypePointsEarned,
		Title:    "Dugnadspoeng opptjent",
		Body:     fmt.Sprintf("Dere har fått %d poeng for %s-vakten %s.", shift.PointValue, shift.Role, shift.Date),
		Data:     map[string]string{"shift_id": shift.ID},
	}
	if err := notifier.Notify(ctx, notification); err != nil {
		logger.Warn("Failed to notify family of earned points",
			zap.String("family_id", assignment.FamilyID),
			zap.Error(err))
	}

	return entry, nil
}

// RecordNoShow marks a missed assignment and applies the no-show penalty:
// a negative base-point entry of the shift's point value
func RecordNoShow(
	ctx context.Context,
	store CompletionStore,
	logger *zap.Logger,
	assignmentID string,
) (*db.PointHistoryEntry, error) {
	assignment, err := store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignment: %w", err)
	}
	if assignment == nil {
		return nil, fmt.Errorf("%w: assignment %s", model.ErrNotFound, assignmentID)
	}
	if !assignment.Status.IsActive() {
		return nil, fmt.Errorf("assignment %s is %s, cannot mark a no-show", assignmentID, assignment.Status)
	}

	shift, err := store.GetShift(ctx, assignment.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift: %w", err)
	}
	if shift == nil {
		return nil, fmt.Errorf("%w: shift %s", model.ErrNotFound, assignment.ShiftID)
	}

	if err := store.UpdateAssignmentStatus(ctx, assignmentID, model.AssignmentNoShow); err != nil {
		return nil, fmt.Errorf("failed to update assignment status: %w", err)
	}

	return RecordPoints(ctx, store, logger, assignment.FamilyID, model.PointBase,
		-shift.PointValue, fmt.Sprintf("Ikke møtt til dugnad: %s %s", shift.Role, shift.Date),
		shift.ID, shift.Role)
}
