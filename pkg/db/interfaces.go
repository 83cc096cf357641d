package db

import (
	"context"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
)

// Store defines the interface for all database operations the core needs.
// postgres.DB implements it; service tests substitute hand-written mocks
// against the narrower per-service interfaces declared in pkg/core/services.
type Store interface {
	// Families / roster
	GetFamily(ctx context.Context, familyID string) (*Family, error)
	GetFamilyRoster(ctx context.Context, teamID string) ([]model.FamilyWithPoints, error)

	// Shifts
	InsertShifts(ctx context.Context, shifts []Shift) error
	GetShift(ctx context.Context, shiftID string) (*Shift, error)
	GetPendingShifts(ctx context.Context, teamID string, date string) ([]Shift, error)
	GetShiftsPastBuffer(ctx context.Context, teamID string, today string) ([]Shift, error)
	GetShiftCountsByStatus(ctx context.Context, teamID string) (map[model.ShiftStatus]int, error)
	MarkShiftNeedsSubstitute(ctx context.Context, shiftID string) error

	// Assignments
	InsertAssignment(ctx context.Context, assignment *Assignment) error
	GetAssignment(ctx context.Context, assignmentID string) (*Assignment, error)
	GetActiveAssignmentsForFamilyOnDate(ctx context.Context, familyID string, date string) ([]Assignment, error)
	UpdateAssignmentStatus(ctx context.Context, assignmentID string, status model.AssignmentStatus) error
	MarkAssignmentNotificationSent(ctx context.Context, assignmentIDs []string) error

	// Point ledger
	InsertPointHistoryEntry(ctx context.Context, entry *PointHistoryEntry) error
	GetPointHistory(ctx context.Context, familyID string) ([]PointHistoryEntry, error)

	// Swaps
	InsertSwapRequest(ctx context.Context, request *ShiftSwapRequest) error
	GetSwapRequest(ctx context.Context, swapID string) (*ShiftSwapRequest, error)
	UpdateSwapRequest(ctx context.Context, request *ShiftSwapRequest) error
	ExecuteSwap(ctx context.Context, request *ShiftSwapRequest, cancelled *Assignment, replacement *Assignment) error

	// Marketplace
	GetSubstitutes(ctx context.Context, roleFilter model.ShiftRole) ([]Substitute, error)
	GetListingsForRole(ctx context.Context, role model.ShiftRole) ([]MarketplaceListing, error)
	InsertListing(ctx context.Context, listing *MarketplaceListing) error
}
