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

// SwapStore defines the database operations needed for shift swaps
type SwapStore interface {
	GetAssignment(ctx context.Context, assignmentID string) (*db.Assignment, error)
	GetShift(ctx context.Context, shiftID string) (*db.Shift, error)
	GetFamily(ctx context.Context, familyID string) (*db.Family, error)
	GetFamilyRoster(ctx context.Context, teamID string) ([]model.FamilyWithPoints, error)
	GetActiveAssignmentsForFamilyOnDate(ctx context.Context, familyID string, date string) ([]db.Assignment, error)
	InsertSwapRequest(ctx context.Context, request *db.ShiftSwapRequest) error
	GetSwapRequest(ctx context.Context, swapID string) (*db.ShiftSwapRequest, error)
	UpdateSwapRequest(ctx context.Context, request *db.ShiftSwapRequest) error
	ExecuteSwap(ctx context.Context, request *db.ShiftSwapRequest, cancelled *db.Assignment, replacement *db.Assignment) error
}

// SwapResult reports the outcome of responding to a swap request
type SwapResult struct {
	Request *db.ShiftSwapRequest

	// NewAssignment is the target family's assignment, set on accept
	NewAssignment *db.Assignment

	// Warnings flags accepted swaps that skew fairness (e.g. the target
	// family exceeding the fair-share cap)
	Warnings []string
}

// RequestSwap opens a pending swap request for an active assignment. The
// target family is notified and must accept before anything changes.
func RequestSwap(
	ctx context.Context,
	store SwapStore,
	notifier notify.Notifier,
	logger *zap.Logger,
	originalAssignmentID string,
	requestingFamilyID string,
	targetFamilyID string,
) (*db.ShiftSwapRequest, error) {
	assignment, err := store.GetAssignment(ctx, originalAssignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignment: %w", err)
	}
	if assignment == nil {
		return nil, fmt.Errorf("%w: assignment %s", model.ErrNotFound, originalAssignmentID)
	}
	if assignment.FamilyID != requestingFamilyID || !assignment.Status.IsActive() {
		return nil, fmt.Errorf("%w: assignment %s is not an active assignment of family %s",
			model.ErrSwapStale, originalAssignmentID, requestingFamilyID)
	}

	if target, err := store.GetFamily(ctx, targetFamilyID); err != nil {
		return nil, fmt.Errorf("failed to fetch target family: %w", err)
	} else if target == nil {
		return nil, fmt.Errorf("%w: family %s", model.ErrNotFound, targetFamilyID)
	}

	request := &db.ShiftSwapRequest{
		ID:                   uuid.New().String(),
		OriginalAssignmentID: originalAssignmentID,
		RequestingFamilyID:   requestingFamilyID,
		TargetFamilyID:       targetFamilyID,
		Status:               model.SwapPending,
		RequestedAt:          time.Now().UTC(),
	}

	if err := store.InsertSwapRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to insert swap request: %w", err)
	}

	logger.Info("Swap requested",
		zap.String("swap_id", request.ID),
		zap.String("assignment_id", originalAssignmentID),
		zap.String("requesting_family", requestingFamilyID),
		zap.String("target_family", targetFamilyID))

	notification := notify.Notification{
		FamilyID: targetFamilyID,
		Type:     notify.TypeSwapRequest,
		Title:    "Forespørsel om dugnadsbytte",
		Body:     "En familie ønsker å bytte en dugnadsvakt med dere. Sjekk appen for detaljer.",
		Data:     map[string]string{"swap_id": request.ID},
	}
	if err := notifier.Notify(ctx, notification); err != nil {
		logger.Warn("Failed to notify target family of swap request",
			zap.String("family_id", targetFamilyID),
			zap.Error(err))
	}

	return request, nil
}

// RespondToSwap accepts or declines a pending swap request.
//
// On accept it verifies the original assignment is still active
// (model.ErrSwapStale otherwise) and that the target family has no
// conflicting shift on the swapped date (model.ErrSwapConflict), then
// atomically cancels the original assignment, creates the target
// family's replacement and completes the request. A swap that pushes the
// target family past the fair-share cap is committed but flagged in the
// result warnings.
func RespondToSwap(
	ctx context.Context,
	store SwapStore,
	notifier notify.Notifier,
	policy assigner.EligibilityPolicy,
	logger *zap.Logger,
	swapID string,
	accept bool,
) (*SwapResult, error) {
	request, err := store.GetSwapRequest(ctx, swapID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch swap request: %w", err)
	}
	if request == nil {
		return nil, fmt.Errorf("%w: swap request %s", model.ErrNotFound, swapID)
	}
	if request.Status != model.SwapPending {
		return nil, fmt.Errorf("%w: swap request %s is already %s", model.ErrSwapStale, swapID, request.Status)
	}

	now := time.Now().UTC()

	if !accept {
		request.Status = model.SwapDeclined
		request.RespondedAt = &now
		if err := store.UpdateSwapRequest(ctx, request); err != nil {
			return nil, fmt.Errorf("failed to update swap request: %w", err)
		}
		logger.Info("Swap declined", zap.String("swap_id", swapID))
		return &SwapResult{Request: request}, nil
	}

	// Re-verify the original assignment at response time; it may have
	// been cancelled or swapped since the request was opened
	original, err := store.GetAssignment(ctx, request.OriginalAssignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch original assignment: %w", err)
	}
	if original == nil || original.FamilyID != request.RequestingFamilyID || !original.Status.IsActive() {
		return nil, fmt.Errorf("%w: original assignment is no longer active", model.ErrSwapStale)
	}

	shift, err := store.GetShift(ctx, original.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift: %w", err)
	}
	if shift == nil {
		return nil, fmt.Errorf("%w: shift %s", model.ErrNotFound, original.ShiftID)
	}

	// Scheduling conflict: the target family must be free on the date
	conflicting, err := store.GetActiveAssignmentsForFamilyOnDate(ctx, request.TargetFamilyID, shift.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to check target family conflicts: %w", err)
	}
	if len(conflicting) > 0 {
		return nil, fmt.Errorf("%w: family %s already has a shift on %s",
			model.ErrSwapConflict, request.TargetFamilyID, shift.Date)
	}

	result := &SwapResult{Warnings: []string{}}

	// Fairness: the swap must not push the target family over the
	// fair-share cap; skew is flagged, not rejected, since both families
	// consented
	if skewed := swapSkewsFairness(ctx, store, policy, shift, request.TargetFamilyID); skewed {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("swap pushes family %s past the fair-share cap", request.TargetFamilyID))
	}

	cancelled := *original
	cancelled.Status = model.AssignmentSwapped

	replacement := &db.Assignment{
		ID:           uuid.New().String(),
		ShiftID:      original.ShiftID,
		FamilyID:     request.TargetFamilyID,
		AssignedBy:   model.AssignedVolunteer,
		Status:       model.AssignmentAssigned,
		AssignedDate: now,
	}

	request.Status = model.SwapCompleted
	request.RespondedAt = &now
	request.CompletedAt = &now

	if err := store.ExecuteSwap(ctx, request, &cancelled, replacement); err != nil {
		return nil, fmt.Errorf("failed to execute swap: %w", err)
	}

	logger.Info("Swap completed",
		zap.String("swap_id", swapID),
		zap.String("shift_id", shift.ID),
		zap.String("from_family", request.RequestingFamilyID),
		zap.String("to_family", request.TargetFamilyID))

	result.Request = request
	result.NewAssignment = replacement

	notifySwapParties(ctx, notifier, logger, request, shift)

	return result, nil
}

// swapSkewsFairness checks the accepting family against the fair-share
// cap using its current season assignment count
func swapSkewsFairness(
	ctx context.Context,
	store SwapStore,
	policy assigner.EligibilityPolicy,
	shift *db.Shift,
	targetFamilyID string,
) bool {
	roster, err := store.GetFamilyRoster(ctx, shift.TeamID)
	if err != nil {
		// Fairness check is advisory; without a roster we stay silent
		return false
	}
	for i := range roster {
		if roster[i].FamilyID == targetFamilyID {
			return !policy.CanTakeShift(&roster[i], shift)
		}
	}
	return false
}

func notifySwapParties(
	ctx context.Context,
	notifier notify.Notifier,
	logger *zap.Logger,
	request *db.ShiftSwapRequest,
	shift *db.Shift,
) {
	for _, familyID := range []string{request.RequestingFamilyID, request.TargetFamilyID} {
		notification := notify.Notification{
			FamilyID: familyID,
			Type:     notify.TypeSwapCompleted,
			Title:    "Dugnadsbytte gjennomført",
			Body:     fmt.Sprintf("Byttet av vakten %s er gjennomført.", shift.Date),
			Data:     map[string]string{"swap_id": request.ID, "shift_id": shift.ID},
		}
		if err := notifier.Notify(ctx, notification); err != nil {
			logger.Warn("Failed to notify family of completed swap",
				zap.String("family_id", familyID),
				zap.Error(err))
		}
	}
}
