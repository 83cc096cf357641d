package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
	"github.com/mkleiva/dugnadsplan/pkg/db"
	"github.com/mkleiva/dugnadsplan/pkg/notify"
)

// mockLedgerStore implements CompletionStore for testing
type mockLedgerStore struct {
	families    map[string]*db.Family
	assignments map[string]*db.Assignment
	shifts      map[string]*db.Shift
	history     []db.PointHistoryEntry

	statusUpdates map[string]model.AssignmentStatus
}

func newMockLedgerStore() *mockLedgerStore {
	return &mockLedgerStore{
		families:      map[string]*db.Family{},
		assignments:   map[string]*db.Assignment{},
		shifts:        map[string]*db.Shift{},
		statusUpdates: map[string]model.AssignmentStatus{},
	}
}

func (m *mockLedgerStore) GetFamily(ctx context.Context, familyID string) (*db.Family, error) {
	return m.families[familyID], nil
}

func (m *mockLedgerStore) InsertPointHistoryEntry(ctx context.Context, entry *db.PointHistoryEntry) error {
	m.history = append(m.history, *entry)
	return nil
}

func (m *mockLedgerStore) GetPointHistory(ctx context.Context, familyID string) ([]db.PointHistoryEntry, error) {
	var entries []db.PointHistoryEntry
	for _, entry := range m.history {
		if entry.FamilyID == familyID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (m *mockLedgerStore) GetAssignment(ctx context.Context, assignmentID string) (*db.Assignment, error) {
	return m.assignments[assignmentID], nil
}

func (m *mockLedgerStore) GetShift(ctx context.Context, shiftID string) (*db.Shift, error) {
	return m.shifts[shiftID], nil
}

func (m *mockLedgerStore) UpdateAssignmentStatus(ctx context.Context, assignmentID string, status model.AssignmentStatus) error {
	m.statusUpdates[assignmentID] = status
	if a, ok := m.assignments[assignmentID]; ok {
		a.Status = status
	}
	return nil
}

func ledgerFixture() *mockLedgerStore {
	store := newMockLedgerStore()
	store.families["fam-a"] = &db.Family{ID: "fam-a", Name: "Andersen"}
	store.shifts["shift-1"] = &db.Shift{
		ID: "shift-1", TeamID: "team-1", Date: "2025-06-07",
		Role: model.RoleKiosk, PointValue: 400, Status: model.ShiftAssigned,
	}
	store.assignments["assign-1"] = &db.Assignment{
		ID: "assign-1", ShiftID: "shift-1", FamilyID: "fam-a", Status: model.AssignmentAssigned,
	}
	return store
}

func TestRecordPoints_AppendsEntry(t *testing.T) {
	store := ledgerFixture()

	entry, err := RecordPoints(context.Background(), store, zap.NewNop(), "fam-a",
		model.PointBonus, 50, "Kakebaking til cup", "", "")
	require.NoError(t, err)

	assert.Equal(t, 50, entry.PointsEarned)
	assert.Equal(t, model.PointBonus, entry.PointType)
	require.Len(t, store.history, 1)
}

func TestRecordPoints_UnknownFamily(t *testing.T) {
	store := ledgerFixture()

	_, err := RecordPoints(context.Background(), store, zap.NewNop(), "fam-x",
		model.PointBase, 100, "test", "", "")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestTotalPointsFor_SumsLedgerBuckets(t *testing.T) {
	store := ledgerFixture()
	logger := zap.NewNop()
	ctx := context.Background()

	_, err := RecordPoints(ctx, store, logger, "fam-a", model.PointBase, 400, "Fullført dugnad", "", "")
	require.NoError(t, err)
	_, err = RecordPoints(ctx, store, logger, "fam-a", model.PointBase, -100, "Ikke møtt", "", "")
	require.NoError(t, err)
	_, err = RecordPoints(ctx, store, logger, "fam-a", model.PointFamily, 75, "Overført", "", "")
	require.NoError(t, err)
	_, err = RecordPoints(ctx, store, logger, "fam-a", model.PointBonus, 25, "Bonus", "", "")
	require.NoError(t, err)

	totals, err := TotalPointsFor(ctx, store, "fam-a")
	require.NoError(t, err)

	assert.Equal(t, 300, totals.BasePoints)
	assert.Equal(t, 100, totals.FamilyPoints)
	assert.Equal(t, 400, totals.TotalPoints)
	assert.Equal(t, totals.BasePoints+totals.FamilyPoints, totals.TotalPoints)
}

func TestTotalPointsFor_EmptyLedgerIsZero(t *testing.T) {
	store := ledgerFixture()

	totals, err := TotalPointsFor(context.Background(), store, "fam-a")
	require.NoError(t, err)
	assert.Equal(t, 0, totals.TotalPoints)
}

func TestCompleteAssignment_CreditsFrozenPointValue(t *testing.T) {
	store := ledgerFixture()
	notifier := &mockNotifier{}

	entry, err := CompleteAssignment(context.Background(), store, notifier, zap.NewNop(), "assign-1")
	require.NoError(t, err)

	assert.Equal(t, 400, entry.PointsEarned)
	assert.Equal(t, model.PointBase, entry.PointType)
	assert.Equal(t, "shift-1", entry.RelatedShiftID)
	assert.Equal(t, model.AssignmentCompleted, store.statusUpdates["assign-1"])

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, notify.TypePointsEarned, notifier.sent[0].Type)
	assert.Equal(t, "Dugnadspoeng opptjent", notifier.sent[0].Title)
}

func TestCompleteAssignment_InactiveAssignment(t *testing.T) {
	store := ledgerFixture()
	store.assignments["assign-1"].Status = model.AssignmentCancelled

	_, err := CompleteAssignment(context.Background(), store, &mockNotifier{}, zap.NewNop(), "assign-1")
	require.Error(t, err)
	assert.Empty(t, store.history)
}

func TestRecordNoShow_AppliesNegativePenalty(t *testing.T) {
	store := ledgerFixture()

	entry, err := RecordNoShow(context.Background(), store, zap.NewNop(), "assign-1")
	require.NoError(t, err)

	assert.Equal(t, -400, entry.PointsEarned)
	assert.Equal(t, model.PointBase, entry.PointType)
	assert.Equal(t, model.AssignmentNoShow, store.statusUpdates["assign-1"])

	// Penalty lands in the ledger, never by mutating prior entries
	totals, err := TotalPointsFor(context.Background(), store, "fam-a")
	require.NoError(t, err)
	assert.Equal(t, -400, totals.TotalPoints)
}

func TestRecordNoShow_AlreadyResolved(t *testing.T) {
	store := ledgerFixture()
	store.assignments["assign-1"].Status = model.AssignmentNoShow

	_, err := RecordNoShow(context.Background(), store, zap.NewNop(), "assign-1")
	require.Error(t, err)
	assert.Empty(t, store.history)
}
