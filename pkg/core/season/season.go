package season

import (
	"fmt"
	"math"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/mkleiva/dugnadsplan/pkg/core/model"
)

const dateLayout = "2006-01-02"
const timeLayout = "15:04"

// RoleDefinition describes one role slot in a season plan. PointsPerSlot
// takes precedence when set; otherwise the slot's point value is derived
// from the shift duration and PointsPerHour.
type RoleDefinition struct {
	Role          model.ShiftRole
	PeopleNeeded  int
	PointsPerSlot int
	PointsPerHour int
}

// Template is a coordinator's season plan: a date range, the weekdays
// shifts happen on, wall-clock shift times and the roles to staff.
type Template struct {
	StartDate time.Time
	EndDate   time.Time
	Weekdays  []time.Weekday
	StartTime string
	EndTime   string
	Roles     []RoleDefinition
}

// ShiftInstance is one concrete shift produced by expanding a Template
type ShiftInstance struct {
	Date           time.Time
	StartTime      string
	EndTime        string
	Role           model.ShiftRole
	RequiredPeople int
	PointValue     int
}

// Expand turns a season template into the concrete shift instances to be
// created: one instance per matching calendar date per role definition,
// in chronological then role-definition order.
//
// Expansion is deterministic and idempotent; re-running with the same
// template produces the same sequence. A start date after the end date
// yields an empty result, not an error.
func Expand(tmpl Template) ([]ShiftInstance, error) {
	if tmpl.StartDate.After(tmpl.EndDate) || len(tmpl.Weekdays) == 0 {
		return []ShiftInstance{}, nil
	}

	// Only templates with hourly-rated roles need the shift times parsed
	var durationHours float64
	for _, role := range tmpl.Roles {
		if role.PointsPerSlot == 0 {
			var err error
			durationHours, err = shiftDurationHours(tmpl.StartTime, tmpl.EndTime)
			if err != nil {
				return nil, err
			}
			break
		}
	}

	dates, err := matchingDates(tmpl)
	if err != nil {
		return nil, err
	}

	instances := make([]ShiftInstance, 0, len(dates)*len(tmpl.Roles))
	for _, date := range dates {
		for _, role := range tmpl.Roles {
			pointValue := role.PointsPerSlot
			if pointValue == 0 {
				pointValue = int(math.Round(durationHours * float64(role.PointsPerHour)))
			}

			instances = append(instances, ShiftInstance{
				Date:           date,
				StartTime:      tmpl.StartTime,
				EndTime:        tmpl.EndTime,
				Role:           role.Role,
				RequiredPeople: role.PeopleNeeded,
				PointValue:     pointValue,
			})
		}
	}

	return instances, nil
}

// matchingDates lists every calendar date in the template's range whose
// weekday is in the template's weekday set, in chronological order
func matchingDates(tmpl Template) ([]time.Time, error) {
	byweekday := make([]rrule.Weekday, 0, len(tmpl.Weekdays))
	for _, wd := range tmpl.Weekdays {
		byweekday = append(byweekday, rruleWeekday(wd))
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   startOfDay(tmpl.StartDate),
		Until:     startOfDay(tmpl.EndDate),
		Byweekday: byweekday,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: bad recurrence: %v", model.ErrInvalidShiftTemplate, err)
	}

	return rule.All(), nil
}

// shiftDurationHours parses wall-clock start and end times and returns the
// shift length in hours. Zero or negative duration is an input error.
func shiftDurationHours(startTime, endTime string) (float64, error) {
	start, err := time.Parse(timeLayout, startTime)
	if err != nil {
		return 0, fmt.Errorf("%w: bad start time %q: %v", model.ErrInvalidShiftTemplate, startTime, err)
	}

	end, err := time.Parse(timeLayout, endTime)
	if err != nil {
		return 0, fmt.Errorf("%w: bad end time %q: %v", model.ErrInvalidShiftTemplate, endTime, err)
	}

	minutes := end.Sub(start).Minutes()
	if minutes <= 0 {
		return 0, fmt.Errorf("%w: shift duration must be positive (%s to %s)",
			model.ErrInvalidShiftTemplate, startTime, endTime)
	}

	return minutes / 60, nil
}

// BufferDate returns the deadline by which a family must have a committed
// solution for a shift on the given date before escalation is allowed
func BufferDate(shiftDate time.Time, bufferDays int) time.Time {
	return startOfDay(shiftDate).AddDate(0, 0, -bufferDays)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func rruleWeekday(wd time.Weekday) rrule.Weekday {
	switch wd {
	case time.Monday:
		return rrule.MO
	case time.Tuesday:
		return rrule.TU
	case time.Wednesday:
		return rrule.WE
	case time.Thursday:
		return rrule.TH
	case time.Friday:
		return rrule.FR
	case time.Saturday:
		return rrule.SA
	default:
		return rrule.SU
	}
}
