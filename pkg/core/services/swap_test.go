package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkleiva/dugnadsplan/pkg/core/assigner"
	"github.com/mkleiva/dugnadsplan/pkg/core/model"
	"github.com/mkleiva/dugnadsplan/pkg/db"
	"github.com/mkleiva/dugnadsplan/pkg/notify"
)

func cappedPolicy(max int) assigner.MaxShiftsPolicy {
	return assigner.MaxShiftsPolicy{MaxShiftsPerSeason: max}
}

// mockSwapStore implements SwapStore for testing
type mockSwapStore struct {
	assignments         map[string]*db.Assignment
	shifts              map[string]*db.Shift
	families            map[string]*db.Family
	roster              []model.FamilyWithPoints
	swapRequests        map[string]*db.ShiftSwapRequest
	existingByFamilyDay map[string][]db.Assignment

	executedSwaps []executedSwap
	executeErr    error
}

type executedSwap struct {
	request     db.ShiftSwapRequest
	cancelled   db.Assignment
	replacement db.Assignment
}

func newMockSwapStore() *mockSwapStore {
	return &mockSwapStore{
		assignments:         map[string]*db.Assignment{},
		shifts:              map[string]*db.Shift{},
		families:            map[string]*db.Family{},
		swapRequests:        map[string]*db.ShiftSwapRequest{},
		existingByFamilyDay: map[string][]db.Assignment{},
	}
}

func (m *mockSwapStore) GetAssignment(ctx context.Context, assignmentID string) (*db.Assignment, error) {
	return m.assignments[assignmentID], nil
}

func (m *mockSwapStore) GetShift(ctx context.Context, shiftID string) (*db.Shift, error) {
	return m.shifts[shiftID], nil
}

func (m *mockSwapStore) GetFamily(ctx context.Context, familyID string) (*db.Family, error) {
	return m.families[familyID], nil
}

func (m *mockSwapStore) GetFamilyRoster(ctx context.Context, teamID string) ([]model.FamilyWithPoints, error) {
	return m.roster, nil
}

func (m *mockSwapStore) GetActiveAssignmentsForFamilyOnDate(ctx context.Context, familyID string, date string) ([]db.Assignment, error) {
	return m.existingByFamilyDay[familyID+"|"+date], nil
}

func (m *mockSwapStore) InsertSwapRequest(ctx context.Context, request *db.ShiftSwapRequest) error {
	m.swapRequests[request.ID] = request
	return nil
}

func (m *mockSwapStore) GetSwapRequest(ctx context.Context, swapID string) (*db.ShiftSwapRequest, error) {
	return m.swapRequests[swapID], nil
}

func (m *mockSwapStore) UpdateSwapRequest(ctx context.Context, request *db.ShiftSwapRequest) error {
	m.swapRequests[request.ID] = request
	return nil
}

func (m *mockSwapStore) ExecuteSwap(ctx context.Context, request *db.ShiftSwapRequest, cancelled *db.Assignment, replacement *db.Assignment) error {
	if m.executeErr != nil {
		return m.executeErr
	}
	m.executedSwaps = append(m.executedSwaps, executedSwap{
		request:     *request,
		cancelled:   *cancelled,
		replacement: *replacement,
	})
	m.assignments[cancelled.ID] = cancelled
	m.assignments[replacement.ID] = replacement
	return nil
}

func swapFixture() *mockSwapStore {
	store := newMockSwapStore()
	store.shifts["shift-1"] = &db.Shift{
		ID: "shift-1", TeamID: "team-1", Date: "2025-06-07",
		Role: model.RoleKiosk, RequiredPeople: 1, Status: model.ShiftAssigned,
	}
	store.assignments["assign-1"] = &db.Assignment{
		ID: "assign-1", ShiftID: "shift-1", FamilyID: "fam-a", Status: model.AssignmentAssigned,
	}
	store.families["fam-a"] = &db.Family{ID: "fam-a", Name: "Andersen"}
	store.families["fam-b"] = &db.Family{ID: "fam-b", Name: "Berg"}
	return store
}

func TestRequestSwap_CreatesPendingRequestAndNotifiesTarget(t *testing.T) {
	store := swapFixture()
	notifier := &mockNotifier{}

	request, err := RequestSwap(context.Background(), store, notifier, zap.NewNop(), "assign-1", "fam-a", "fam-b")
	require.NoError(t, err)

	assert.Equal(t, model.SwapPending, request.Status)
	assert.Equal(t, "fam-b", request.TargetFamilyID)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "fam-b", notifier.sent[0].FamilyID)
	assert.Equal(t, notify.TypeSwapRequest, notifier.sent[0].Type)
}

func TestRequestSwap_NotOwnAssignment(t *testing.T) {
	store := swapFixture()

	_, err := RequestSwap(context.Background(), store, &mockNotifier{}, zap.NewNop(), "assign-1", "fam-b", "fam-a")
	assert.ErrorIs(t, err, model.ErrSwapStale)
}

func TestRequestSwap_UnknownTargetFamily(t *testing.T) {
	store := swapFixture()

	_, err := RequestSwap(context.Background(), store, &mockNotifier{}, zap.NewNop(), "assign-1", "fam-a", "fam-x")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRespondToSwap_AcceptTransfersAssignment(t *testing.T) {
	store := swapFixture()
	notifier := &mockNotifier{}

	request, err := RequestSwap(context.Background(), store, notifier, zap.NewNop(), "assign-1", "fam-a", "fam-b")
	require.NoError(t, err)

	result, err := RespondToSwap(context.Background(), store, notifier, unlimitedPolicy(), zap.NewNop(), request.ID, true)
	require.NoError(t, err)

	require.Len(t, store.executedSwaps, 1)
	executed := store.executedSwaps[0]
	assert.Equal(t, model.AssignmentSwapped, executed.cancelled.Status)
	assert.Equal(t, "fam-b", executed.replacement.FamilyID)
	assert.Equal(t, model.AssignedVolunteer, executed.replacement.AssignedBy)
	assert.Equal(t, model.SwapCompleted, executed.request.Status)

	require.NotNil(t, result.NewAssignment)
	assert.Equal(t, "fam-b", result.NewAssignment.FamilyID)

	// Both families hear about the completed swap
	completed := 0
	for _, n := range notifier.sent {
		if n.Type == notify.TypeSwapCompleted {
			completed++
		}
	}
	assert.Equal(t, 2, completed)
}

func TestRespondToSwap_TargetConflictLeavesOriginalUntouched(t *testing.T) {
	store := swapFixture()
	notifier := &mockNotifier{}

	request, err := RequestSwap(context.Background(), store, notifier, zap.NewNop(), "assign-1", "fam-a", "fam-b")
	require.NoError(t, err)

	// fam-b already works that day
	store.existingByFamilyDay["fam-b|2025-06-07"] = []db.Assignment{
		{ID: "other", ShiftID: "shift-9", FamilyID: "fam-b", Status: model.AssignmentAssigned},
	}

	_, err = RespondToSwap(context.Background(), store, notifier, unlimitedPolicy(), zap.NewNop(), request.ID, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrSwapConflict)

	// Nothing executed, original assignment still active with fam-a
	assert.Empty(t, store.executedSwaps)
	assert.Equal(t, "fam-a", store.assignments["assign-1"].FamilyID)
	assert.Equal(t, model.AssignmentAssigned, store.assignments["assign-1"].Status)
}

func TestRespondToSwap_StaleWhenOriginalNoLongerActive(t *testing.T) {
	store := swapFixture()
	notifier := &mockNotifier{}

	request, err := RequestSwap(context.Background(), store, notifier, zap.NewNop(), "assign-1", "fam-a", "fam-b")
	require.NoError(t, err)

	store.assignments["assign-1"].Status = model.AssignmentCancelled

	_, err = RespondToSwap(context.Background(), store, notifier, unlimitedPolicy(), zap.NewNop(), request.ID, true)
	assert.ErrorIs(t, err, model.ErrSwapStale)
}

func TestRespondToSwap_AlreadyResolvedIsStale(t *testing.T) {
	store := swapFixture()
	notifier := &mockNotifier{}

	request, err := RequestSwap(context.Background(), store, notifier, zap.NewNop(), "assign-1", "fam-a", "fam-b")
	require.NoError(t, err)

	_, err = RespondToSwap(context.Background(), store, notifier, unlimitedPolicy(), zap.NewNop(), request.ID, false)
	require.NoError(t, err)

	// A second response hits a resolved request
	_, err = RespondToSwap(context.Background(), store, notifier, unlimitedPolicy(), zap.NewNop(), request.ID, true)
	assert.ErrorIs(t, err, model.ErrSwapStale)
}

func TestRespondToSwap_DeclineChangesNothing(t *testing.T) {
	store := swapFixture()
	notifier := &mockNotifier{}

	request, err := RequestSwap(context.Background(), store, notifier, zap.NewNop(), "assign-1", "fam-a", "fam-b")
	require.NoError(t, err)

	result, err := RespondToSwap(context.Background(), store, notifier, unlimitedPolicy(), zap.NewNop(), request.ID, false)
	require.NoError(t, err)

	assert.Equal(t, model.SwapDeclined, result.Request.Status)
	assert.NotNil(t, result.Request.RespondedAt)
	assert.Nil(t, result.NewAssignment)
	assert.Empty(t, store.executedSwaps)
	assert.Equal(t, "fam-a", store.assignments["assign-1"].FamilyID)
}

func TestRespondToSwap_FairShareSkewIsWarningNotRejection(t *testing.T) {
	store := swapFixture()
	store.roster = []model.FamilyWithPoints{
		{FamilyID: "fam-a", AssignedShifts: 1},
		{FamilyID: "fam-b", AssignedShifts: 4},
	}
	notifier := &mockNotifier{}

	request, err := RequestSwap(context.Background(), store, notifier, zap.NewNop(), "assign-1", "fam-a", "fam-b")
	require.NoError(t, err)

	policy := cappedPolicy(4)
	result, err := RespondToSwap(context.Background(), store, notifier, policy, zap.NewNop(), request.ID, true)
	require.NoError(t, err)

	require.NotNil(t, result.NewAssignment)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "fair-share cap")
}
