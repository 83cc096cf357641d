package model

import "errors"

// Sentinel errors for the core. Callers discriminate with errors.Is.
var (
	// ErrInvalidShiftTemplate rejects a malformed season template (bad
	// date range or non-positive shift duration) before any shift is
	// created.
	ErrInvalidShiftTemplate = errors.New("invalid shift template")

	// ErrNotFound means a referenced family, shift, assignment or swap
	// request does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAssignmentFailed means an assignment run aborted on an
	// infrastructure failure (roster or shift fetch). Individual shifts
	// left unassigned are NOT this error; they are reported as warnings.
	ErrAssignmentFailed = errors.New("automatic assignment failed")

	// ErrSwapConflict means the target family already has a shift on the
	// swapped date.
	ErrSwapConflict = errors.New("swap conflict")

	// ErrSwapStale means the original assignment behind a swap request is
	// no longer active.
	ErrSwapStale = errors.New("swap request is stale")
)
