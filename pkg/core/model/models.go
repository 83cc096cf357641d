package model

// ShiftRole identifies the kind of work a dugnad shift covers
type ShiftRole string

const (
	RoleKiosk       ShiftRole = "kiosk"
	RoleTicketSales ShiftRole = "ticket_sales"
	RoleSetup       ShiftRole = "setup"
	RoleCleanup     ShiftRole = "cleanup"
	RoleBaking      ShiftRole = "baking"
	RoleTransport   ShiftRole = "transport"
	RoleOther       ShiftRole = "other"
)

// ShiftStatus is the lifecycle state of a shift
type ShiftStatus string

const (
	ShiftPending   ShiftStatus = "pending"
	ShiftAssigned  ShiftStatus = "assigned"
	ShiftConfirmed ShiftStatus = "confirmed"
	ShiftCompleted ShiftStatus = "completed"
	ShiftCancelled ShiftStatus = "cancelled"
)

// AssignmentStatus is the lifecycle state of an assignment.
// Assignments are never deleted, only status-transitioned, so the full
// history of who was asked to cover a shift stays auditable.
type AssignmentStatus string

const (
	AssignmentAssigned  AssignmentStatus = "assigned"
	AssignmentConfirmed AssignmentStatus = "confirmed"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentNoShow    AssignmentStatus = "no_show"
	AssignmentSwapped   AssignmentStatus = "swapped"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// IsActive reports whether an assignment in this status still counts
// toward a shift's required people
func (s AssignmentStatus) IsActive() bool {
	switch s {
	case AssignmentAssigned, AssignmentConfirmed, AssignmentCompleted:
		return true
	}
	return false
}

// AssignedBy records how an assignment came to be
type AssignedBy string

const (
	AssignedAutomatic AssignedBy = "automatic"
	AssignedManual    AssignedBy = "manual"
	AssignedVolunteer AssignedBy = "volunteer"
)

// PointType categorises a point history entry
type PointType string

const (
	PointBase   PointType = "base"
	PointFamily PointType = "family"
	PointBonus  PointType = "bonus"
)

// SwapStatus is the lifecycle state of a shift swap request
type SwapStatus string

const (
	SwapPending   SwapStatus = "pending"
	SwapAccepted  SwapStatus = "accepted"
	SwapDeclined  SwapStatus = "declined"
	SwapCompleted SwapStatus = "completed"
	SwapCancelled SwapStatus = "cancelled"
)

// FamilyWithPoints is one row of the roster snapshot used by the
// assignment engine. Point totals are always derived from the ledger,
// never stored as independently writable fields.
type FamilyWithPoints struct {
	FamilyID       string
	FamilyName     string
	BasePoints     int
	FamilyPoints   int
	TotalPoints    int
	Level          int
	ProtectedGroup bool

	// AssignedShifts is the family's active assignment count for the
	// current season. The engine increments a working copy of this
	// during a run so earlier assignments affect later shifts.
	AssignedShifts int
}

// LevelFor derives a family's tier from its total points. The club can
// swap in its own formula; the default gives a new level every 500 points.
var LevelFor = func(totalPoints int) int {
	if totalPoints < 0 {
		return 1
	}
	return 1 + totalPoints/500
}
