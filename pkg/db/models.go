package db

import (
	"time"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
)

// Calendar dates are stored as "2006-01-02" strings and wall-clock times
// as "15:04"; the club runs on local time and no timezone conversion is
// ever needed.

// Family represents a family database record. Point totals are never
// stored here; they are derived from point_history (see FamilyRoster).
type Family struct {
	ID     string
	TeamID string
	Name   string
	// ContactEmail receives the family's notifications
	ContactEmail   string
	ProtectedGroup bool
}

// Shift represents a shift database record
type Shift struct {
	ID        string
	TeamID    string
	Date      string
	StartTime string
	EndTime   string
	Role      model.ShiftRole
	// RequiredPeople is the number of families needed on this shift
	RequiredPeople int
	// PointValue is frozen at creation time from duration and the role's
	// point rate; later rate changes never touch existing shifts
	PointValue int
	Status     model.ShiftStatus
	// BufferDate is always exactly bufferDays before Date. Once it passes
	// without a committed solution the shift may escalate to the
	// substitute marketplace.
	BufferDate string
	// NeedsSubstitute marks a shift escalated to the marketplace; it is
	// excluded from the automatic assignment pool until the listing
	// resolves or is cancelled
	NeedsSubstitute bool
	CreatedBy       string
}

// Assignment represents a shift assignment database record
type Assignment struct {
	ID               string
	ShiftID          string
	FamilyID         string
	AssignedBy       model.AssignedBy
	Status           model.AssignmentStatus
	AssignedDate     time.Time
	NotificationSent bool
}

// PointHistoryEntry is one immutable row of a family's point ledger.
// Entries are append-only; a family's totals are the sum of its entries.
type PointHistoryEntry struct {
	ID             string
	FamilyID       string
	PointType      model.PointType
	PointsEarned   int
	Reason         string
	RelatedShiftID string
	RelatedRole    model.ShiftRole
	CreatedAt      time.Time
}

// ShiftSwapRequest represents a swap request between two families
type ShiftSwapRequest struct {
	ID                   string
	OriginalAssignmentID string
	RequestingFamilyID   string
	TargetFamilyID       string
	Status               model.SwapStatus
	RequestedAt          time.Time
	RespondedAt          *time.Time
	CompletedAt          *time.Time
}

// Substitute is a registered paid substitute in the marketplace
type Substitute struct {
	ID             string
	UserID         string
	FullName       string
	AvailableRoles []model.ShiftRole
	HourlyRateMin  int
	HourlyRateMax  int
	Active         bool
}

// MarketplaceListing is a shift offered to paid substitutes after its
// buffer deadline passed without coverage
type MarketplaceListing struct {
	ID            string
	ShiftID       string
	SuggestedRate int
	Resolved      bool
	CreatedAt     time.Time
}
