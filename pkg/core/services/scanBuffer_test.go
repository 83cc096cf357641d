package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
	"github.com/mkleiva/dugnadsplan/pkg/db"
	"github.com/mkleiva/dugnadsplan/pkg/notify"
)

// mockEscalationStore implements EscalationStore for testing
type mockEscalationStore struct {
	pastBufferShifts []db.Shift
	shifts           map[string]*db.Shift
	listingsByRole   map[model.ShiftRole][]db.MarketplaceListing
	substitutes      []db.Substitute

	markedShiftIDs   []string
	insertedListings []db.MarketplaceListing

	markErr    error
	listingErr error
}

func (m *mockEscalationStore) GetShiftsPastBuffer(ctx context.Context, teamID string, today string) ([]db.Shift, error) {
	return m.pastBufferShifts, nil
}

func (m *mockEscalationStore) GetShift(ctx context.Context, shiftID string) (*db.Shift, error) {
	return m.shifts[shiftID], nil
}

func (m *mockEscalationStore) MarkShiftNeedsSubstitute(ctx context.Context, shiftID string) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.markedShiftIDs = append(m.markedShiftIDs, shiftID)
	m.shifts[shiftID].NeedsSubstitute = true
	return nil
}

func (m *mockEscalationStore) InsertListing(ctx context.Context, listing *db.MarketplaceListing) error {
	if m.listingErr != nil {
		return m.listingErr
	}
	m.insertedListings = append(m.insertedListings, *listing)
	return nil
}

func (m *mockEscalationStore) GetListingsForRole(ctx context.Context, role model.ShiftRole) ([]db.MarketplaceListing, error) {
	return m.listingsByRole[role], nil
}

func (m *mockEscalationStore) GetSubstitutes(ctx context.Context, roleFilter model.ShiftRole) ([]db.Substitute, error) {
	return m.substitutes, nil
}

func escalationFixture() *mockEscalationStore {
	shift := &db.Shift{
		ID: "shift-1", TeamID: "team-1", Date: "2025-06-01",
		StartTime: "10:00", EndTime: "14:00",
		Role: model.RoleKiosk, RequiredPeople: 2,
		Status: model.ShiftPending, BufferDate: "2025-05-18",
	}
	return &mockEscalationStore{
		pastBufferShifts: []db.Shift{*shift},
		shifts:           map[string]*db.Shift{"shift-1": shift},
		listingsByRole:   map[model.ShiftRole][]db.MarketplaceListing{},
	}
}

func TestScanBufferDeadlines_EscalatesUnresolvedShift(t *testing.T) {
	store := escalationFixture()
	pricer := &HistoricalPricer{Store: store, DefaultRate: 200}
	notifier := &mockNotifier{}

	// 2025-05-19 is past the shift's 2025-05-18 buffer deadline
	now := time.Date(2025, time.May, 19, 12, 0, 0, 0, time.UTC)
	result, err := ScanBufferDeadlines(context.Background(), store, pricer, notifier, zap.NewNop(), "team-1", now)
	require.NoError(t, err)

	require.Len(t, result.Escalated, 1)
	assert.Equal(t, []string{"shift-1"}, store.markedShiftIDs)
	require.Len(t, store.insertedListings, 1)
	assert.Equal(t, "shift-1", store.insertedListings[0].ShiftID)
	assert.Equal(t, 200, store.insertedListings[0].SuggestedRate)
}

func TestScanBufferDeadlines_NothingToEscalate(t *testing.T) {
	store := &mockEscalationStore{shifts: map[string]*db.Shift{}}
	pricer := &HistoricalPricer{Store: store, DefaultRate: 200}

	result, err := ScanBufferDeadlines(context.Background(), store, pricer, &mockNotifier{}, zap.NewNop(), "team-1", time.Now())
	require.NoError(t, err)
	assert.Empty(t, result.Escalated)
	assert.Empty(t, result.Warnings)
}

func TestEscalateToMarketplace_Idempotent(t *testing.T) {
	store := escalationFixture()
	store.shifts["shift-1"].NeedsSubstitute = true
	pricer := &HistoricalPricer{Store: store, DefaultRate: 200}

	err := EscalateToMarketplace(context.Background(), store, pricer, &mockNotifier{}, zap.NewNop(), "shift-1")
	require.NoError(t, err)

	assert.Empty(t, store.markedShiftIDs)
	assert.Empty(t, store.insertedListings)
}

func TestEscalateToMarketplace_UnknownShift(t *testing.T) {
	store := escalationFixture()
	pricer := &HistoricalPricer{Store: store, DefaultRate: 200}

	err := EscalateToMarketplace(context.Background(), store, pricer, &mockNotifier{}, zap.NewNop(), "shift-x")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestEscalateToMarketplace_NotifiesSubstitutes(t *testing.T) {
	store := escalationFixture()
	store.substitutes = []db.Substitute{
		{ID: "sub-1", UserID: "user-1", FullName: "Kari Nordmann", Active: true},
		{ID: "sub-2", UserID: "user-2", FullName: "Ola Nordmann", Active: true},
	}
	pricer := &HistoricalPricer{Store: store, DefaultRate: 250}
	notifier := &mockNotifier{}

	err := EscalateToMarketplace(context.Background(), store, pricer, notifier, zap.NewNop(), "shift-1")
	require.NoError(t, err)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, notify.TypeSubstituteAvailable, notifier.sent[0].Type)
	assert.Equal(t, "user-1", notifier.sent[0].FamilyID)
	assert.Contains(t, notifier.sent[0].Body, "250 kr")
}

func TestScanBufferDeadlines_FailedEscalationIsWarning(t *testing.T) {
	store := escalationFixture()
	store.markErr = errors.New("deadlock detected")
	pricer := &HistoricalPricer{Store: store, DefaultRate: 200}

	result, err := ScanBufferDeadlines(context.Background(), store, pricer, &mockNotifier{}, zap.NewNop(), "team-1", time.Now())
	require.NoError(t, err)

	assert.Empty(t, result.Escalated)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Escalation")
}

func TestHistoricalPricer_MeanOfListings(t *testing.T) {
	store := escalationFixture()
	store.listingsByRole[model.RoleKiosk] = []db.MarketplaceListing{
		{SuggestedRate: 150},
		{SuggestedRate: 250},
		{SuggestedRate: 200},
	}
	pricer := &HistoricalPricer{Store: store, DefaultRate: 999}

	rate, err := pricer.SuggestRate(context.Background(), store.shifts["shift-1"])
	require.NoError(t, err)
	assert.Equal(t, 200, rate)
}

func TestHistoricalPricer_DefaultWhenNoHistory(t *testing.T) {
	store := escalationFixture()
	pricer := &HistoricalPricer{Store: store, DefaultRate: 300}

	rate, err := pricer.SuggestRate(context.Background(), store.shifts["shift-1"])
	require.NoError(t, err)
	assert.Equal(t, 300, rate)
}
