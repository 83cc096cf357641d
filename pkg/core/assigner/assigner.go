package assigner

import (
	"sort"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
	"github.com/mkleiva/dugnadsplan/pkg/db"
)

// EligibilityPolicy decides whether a family may take on another shift
// this season. The fair-share cap is deliberately pluggable: the club
// decides the policy, the engine only asks the question.
type EligibilityPolicy interface {
	// CanTakeShift reports whether the family (with its working-copy
	// assignment count) may be given the shift
	CanTakeShift(family *model.FamilyWithPoints, shift *db.Shift) bool
}

// MaxShiftsPolicy caps each family at a fixed number of shifts per
// season. A cap of 0 means unlimited.
type MaxShiftsPolicy struct {
	MaxShiftsPerSeason int
}

func (p MaxShiftsPolicy) CanTakeShift(family *model.FamilyWithPoints, shift *db.Shift) bool {
	if p.MaxShiftsPerSeason <= 0 {
		return true
	}
	return family.AssignedShifts < p.MaxShiftsPerSeason
}

// SortFamiliesByPriority orders a roster snapshot for greedy assignment:
//
//  1. Non-protected families before protected ones (coach, coordinator
//     and team-leader households rotate last regardless of points).
//  2. Lower total points first.
//  3. Fewer assigned shifts this season first.
//
// The sort is stable, so re-sorting an already sorted roster is a no-op
// and assignment order is reproducible for a given snapshot.
func SortFamiliesByPriority(families []*model.FamilyWithPoints) {
	sort.SliceStable(families, func(i, j int) bool {
		a, b := families[i], families[j]
		if a.ProtectedGroup != b.ProtectedGroup {
			return !a.ProtectedGroup
		}
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints < b.TotalPoints
		}
		return a.AssignedShifts < b.AssignedShifts
	})
}

// ConflictChecker reports whether a family already has an active
// assignment on the given date. The services layer backs it with a
// database lookup; tests substitute simple maps.
type ConflictChecker func(familyID string, date string) (bool, error)

// PickFamilies scans the priority-sorted roster and picks up to
// shift.RequiredPeople families for the shift, first fit wins. A family
// is skipped when it is already picked for this shift, has a conflicting
// same-date assignment, or the eligibility policy rejects it.
//
// Picked families get their working-copy AssignedShifts incremented, so
// the greedy pass sees earlier picks when handling later shifts.
func PickFamilies(
	shift *db.Shift,
	sortedFamilies []*model.FamilyWithPoints,
	hasConflict ConflictChecker,
	policy EligibilityPolicy,
) ([]*model.FamilyWithPoints, error) {
	required := shift.RequiredPeople
	if required < 1 {
		required = 1
	}

	picked := make([]*model.FamilyWithPoints, 0, required)
	pickedIDs := make(map[string]bool, required)

	for _, family := range sortedFamilies {
		if len(picked) == required {
			break
		}
		if pickedIDs[family.FamilyID] {
			continue
		}
		if !policy.CanTakeShift(family, shift) {
			continue
		}

		conflict, err := hasConflict(family.FamilyID, shift.Date)
		if err != nil {
			return nil, err
		}
		if conflict {
			continue
		}

		picked = append(picked, family)
		pickedIDs[family.FamilyID] = true
		family.AssignedShifts++
	}

	return picked, nil
}

// SnapshotRoster makes the per-run working copy of a roster snapshot.
// The engine mutates assignment counters on the copy only, so concurrent
// runs and the persisted roster never observe mid-run state.
func SnapshotRoster(roster []model.FamilyWithPoints) []*model.FamilyWithPoints {
	copies := make([]*model.FamilyWithPoints, len(roster))
	for i := range roster {
		f := roster[i]
		copies[i] = &f
	}
	return copies
}
