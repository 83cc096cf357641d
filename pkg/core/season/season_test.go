package season

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpand_FlatRateSaturdays(t *testing.T) {
	// Two Saturdays fall in the first two weeks of March 2025: the 1st
	// and the 8th
	tmpl := Template{
		StartDate: date(2025, time.March, 1),
		EndDate:   date(2025, time.March, 14),
		Weekdays:  []time.Weekday{time.Saturday},
		Roles: []RoleDefinition{
			{Role: model.RoleBaking, PeopleNeeded: 1, PointsPerSlot: 100},
		},
	}

	instances, err := Expand(tmpl)
	require.NoError(t, err)
	require.Len(t, instances, 2)

	assert.Equal(t, date(2025, time.March, 1), instances[0].Date)
	assert.Equal(t, date(2025, time.March, 8), instances[1].Date)
	for _, inst := range instances {
		assert.Equal(t, model.RoleBaking, inst.Role)
		assert.Equal(t, 1, inst.RequiredPeople)
		assert.Equal(t, 100, inst.PointValue)
	}
}

func TestExpand_InstanceCountIsDatesTimesRoles(t *testing.T) {
	// Saturdays and Sundays across four full weeks: 8 dates, 2 roles
	tmpl := Template{
		StartDate: date(2025, time.June, 2), // Monday
		EndDate:   date(2025, time.June, 29),
		Weekdays:  []time.Weekday{time.Saturday, time.Sunday},
		StartTime: "10:00",
		EndTime:   "14:00",
		Roles: []RoleDefinition{
			{Role: model.RoleKiosk, PeopleNeeded: 2, PointsPerHour: 100},
			{Role: model.RoleCleanup, PeopleNeeded: 1, PointsPerHour: 100},
		},
	}

	instances, err := Expand(tmpl)
	require.NoError(t, err)
	assert.Len(t, instances, 16)

	// Chronological, with roles in definition order within a date
	assert.Equal(t, model.RoleKiosk, instances[0].Role)
	assert.Equal(t, model.RoleCleanup, instances[1].Role)
	assert.Equal(t, instances[0].Date, instances[1].Date)
	assert.True(t, !instances[2].Date.Before(instances[0].Date))
}

func TestExpand_HourlyPointValueRounds(t *testing.T) {
	// 2.5 hours at 75/h = 187.5, rounds to 188
	tmpl := Template{
		StartDate: date(2025, time.May, 5), // Monday
		EndDate:   date(2025, time.May, 5),
		Weekdays:  []time.Weekday{time.Monday},
		StartTime: "17:30",
		EndTime:   "20:00",
		Roles: []RoleDefinition{
			{Role: model.RoleTransport, PeopleNeeded: 1, PointsPerHour: 75},
		},
	}

	instances, err := Expand(tmpl)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, 188, instances[0].PointValue)
}

func TestExpand_PointsPerSlotWinsOverHourly(t *testing.T) {
	tmpl := Template{
		StartDate: date(2025, time.May, 5),
		EndDate:   date(2025, time.May, 5),
		Weekdays:  []time.Weekday{time.Monday},
		StartTime: "10:00",
		EndTime:   "18:00",
		Roles: []RoleDefinition{
			{Role: model.RoleBaking, PeopleNeeded: 1, PointsPerSlot: 50, PointsPerHour: 100},
		},
	}

	instances, err := Expand(tmpl)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, 50, instances[0].PointValue)
}

func TestExpand_StartAfterEndIsEmpty(t *testing.T) {
	tmpl := Template{
		StartDate: date(2025, time.June, 30),
		EndDate:   date(2025, time.June, 1),
		Weekdays:  []time.Weekday{time.Saturday},
		Roles: []RoleDefinition{
			{Role: model.RoleKiosk, PeopleNeeded: 1, PointsPerSlot: 100},
		},
	}

	instances, err := Expand(tmpl)
	require.NoError(t, err)
	assert.Empty(t, instances)
}

func TestExpand_NoWeekdaysIsEmpty(t *testing.T) {
	tmpl := Template{
		StartDate: date(2025, time.June, 1),
		EndDate:   date(2025, time.June, 30),
		Roles: []RoleDefinition{
			{Role: model.RoleKiosk, PeopleNeeded: 1, PointsPerSlot: 100},
		},
	}

	instances, err := Expand(tmpl)
	require.NoError(t, err)
	assert.Empty(t, instances)
}

func TestExpand_InvalidDuration(t *testing.T) {
	tmpl := Template{
		StartDate: date(2025, time.June, 2),
		EndDate:   date(2025, time.June, 8),
		Weekdays:  []time.Weekday{time.Saturday},
		StartTime: "18:00",
		EndTime:   "16:00",
		Roles: []RoleDefinition{
			{Role: model.RoleKiosk, PeopleNeeded: 1, PointsPerHour: 100},
		},
	}

	_, err := Expand(tmpl)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidShiftTemplate)
}

func TestExpand_BadTimeFormat(t *testing.T) {
	tmpl := Template{
		StartDate: date(2025, time.June, 2),
		EndDate:   date(2025, time.June, 8),
		Weekdays:  []time.Weekday{time.Saturday},
		StartTime: "6pm",
		EndTime:   "20:00",
		Roles: []RoleDefinition{
			{Role: model.RoleKiosk, PeopleNeeded: 1, PointsPerHour: 100},
		},
	}

	_, err := Expand(tmpl)
	assert.ErrorIs(t, err, model.ErrInvalidShiftTemplate)
}

func TestExpand_Deterministic(t *testing.T) {
	tmpl := Template{
		StartDate: date(2025, time.April, 1),
		EndDate:   date(2025, time.April, 30),
		Weekdays:  []time.Weekday{time.Tuesday, time.Thursday},
		StartTime: "17:00",
		EndTime:   "20:00",
		Roles: []RoleDefinition{
			{Role: model.RoleKiosk, PeopleNeeded: 2, PointsPerHour: 100},
			{Role: model.RoleTicketSales, PeopleNeeded: 1, PointsPerHour: 100},
		},
	}

	first, err := Expand(tmpl)
	require.NoError(t, err)
	second, err := Expand(tmpl)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBufferDate(t *testing.T) {
	got := BufferDate(date(2025, time.June, 1), 14)
	assert.Equal(t, date(2025, time.May, 18), got)

	// Crosses a month boundary cleanly
	got = BufferDate(date(2025, time.March, 10), 14)
	assert.Equal(t, date(2025, time.February, 24), got)
}
