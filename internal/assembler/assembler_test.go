package assembler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hey-show123/beauty-scheduler/internal/model"
	"github.com/hey-show123/beauty-scheduler/internal/slots"
)

var now = time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC) // Monday

func staffPool() []model.Staff {
	return []model.Staff{
		{
			ID:     "s1",
			Name:   "Aiko",
			Skills: []model.Skill{{ServiceType: model.ServiceCut, Level: model.LevelAdvanced}},
			Availability: []model.Availability{
				{DayOfWeek: 0, StartTime: "09:00", EndTime: "18:00"},
			},
			HourlyRate:     2000,
			MaxHoursPerDay: 8,
		},
		{
			ID:     "s2",
			Name:   "Ben",
			Skills: []model.Skill{{ServiceType: model.ServiceColor, Level: model.LevelExpert}},
			Availability: []model.Availability{
				{DayOfWeek: 0, StartTime: "12:00", EndTime: "20:00", IsPreferred: true},
			},
			HourlyRate:     2500,
			MaxHoursPerDay: 6,
		},
	}
}

func newBooking(id string, start time.Time, st model.ServiceType, minutes int) model.Booking {
	return model.Booking{
		ID:             id,
		Customer:       model.Customer{Name: "cust-" + id, Phone: "000", Priority: model.PriorityNormal},
		Services:       []model.Service{{ServiceType: st, DurationMinutes: minutes, RequiredSkillLevel: model.LevelBeginner}},
		ScheduledStart: start,
		Status:         model.StatusScheduled,
	}
}

func TestDefaultSelection_ExcludesPastBookings(t *testing.T) {
	bookings := []model.Booking{
		newBooking("past", now.AddDate(0, 0, -1), model.ServiceCut, 60),
		newBooking("soon", now.Add(2*time.Hour), model.ServiceCut, 60),
		newBooking("now", now, model.ServiceCut, 30),
	}

	sel := DefaultSelection(staffPool(), bookings, now)

	assert.Len(t, sel.Staff, 2)
	require.Len(t, sel.Bookings, 2)
	assert.Equal(t, "soon", sel.Bookings[0].ID)
	assert.Equal(t, "now", sel.Bookings[1].ID)
}

func TestBuildRequest(t *testing.T) {
	bookings := []model.Booking{newBooking("b1", now, model.ServiceCut, 60)}

	req, err := BuildRequest(now, staffPool(), bookings)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, req.StaffIDs)
	assert.Equal(t, []string{"b1"}, req.BookingIDs)
	assert.True(t, req.ScheduleDate.Equal(now))
}

func TestBuildRequest_EmptySelection(t *testing.T) {
	_, err := BuildRequest(now, nil, []model.Booking{newBooking("b1", now, model.ServiceCut, 60)})
	assert.ErrorIs(t, err, ErrEmptySelection)

	_, err = BuildRequest(now, staffPool(), nil)
	assert.ErrorIs(t, err, ErrEmptySelection)
}

func TestAcceptResult_NoSolution(t *testing.T) {
	for _, status := range []model.ResultStatus{model.ResultInfeasible, model.ResultError} {
		t.Run(string(status), func(t *testing.T) {
			res := model.OptimizationResult{
				Status:   status,
				Schedule: []model.ScheduleItem{{BookingID: "b1", StaffID: "s1", StartSlot: 0, DurationSlots: 4}},
				Message:  "timeout",
			}

			d := AcceptResult(res, StaffIndex(staffPool()), slots.Default())

			assert.Empty(t, d.Schedule)
			require.Len(t, d.Warnings, 1)
			assert.Equal(t, WarnNoSolution, d.Warnings[0].Code)
			assert.Contains(t, d.Warnings[0].Message, string(status))
		})
	}
}

func TestAcceptResult_UnknownStaffKeepsItem(t *testing.T) {
	res := model.OptimizationResult{
		Status: model.ResultOptimal,
		Schedule: []model.ScheduleItem{
			{BookingID: "b1", StaffID: "s1", StaffName: "stale", StartSlot: 0, DurationSlots: 4},
			{BookingID: "b2", StaffID: "ghost", StartSlot: 8, DurationSlots: 4},
		},
	}

	d := AcceptResult(res, StaffIndex(staffPool()), slots.Default())

	require.Len(t, d.Schedule, 2)
	assert.Equal(t, "Aiko", d.Schedule[0].StaffName)
	assert.Equal(t, UnknownStaffName, d.Schedule[1].StaffName)
	require.Len(t, d.Warnings, 1)
	assert.Equal(t, WarnUnknownStaff, d.Warnings[0].Code)
	assert.Equal(t, []string{"b2"}, d.Warnings[0].BookingIDs)
}

func TestAcceptResult_ConflictKeepsBothItems(t *testing.T) {
	res := model.OptimizationResult{
		Status: model.ResultFeasible,
		Schedule: []model.ScheduleItem{
			{BookingID: "b1", StaffID: "s1", StartSlot: 4, DurationSlots: 4},
			{BookingID: "b2", StaffID: "s1", StartSlot: 6, DurationSlots: 2},
		},
	}

	d := AcceptResult(res, StaffIndex(staffPool()), slots.Default())

	assert.Len(t, d.Schedule, 2)
	require.Len(t, d.Warnings, 1)
	assert.Equal(t, WarnScheduleConflict, d.Warnings[0].Code)
	assert.Equal(t, []string{"b1", "b2"}, d.Warnings[0].BookingIDs)
	assert.True(t, d.HasWarning(WarnScheduleConflict))
	assert.False(t, d.HasWarning(WarnNoSolution))
}

func TestAcceptResult_OutOfRange(t *testing.T) {
	res := model.OptimizationResult{
		Status:   model.ResultOptimal,
		Schedule: []model.ScheduleItem{{BookingID: "b1", StaffID: "s2", StartSlot: 42, DurationSlots: 4}},
	}

	d := AcceptResult(res, StaffIndex(staffPool()), slots.Default())

	assert.Len(t, d.Schedule, 1)
	require.Len(t, d.Warnings, 1)
	assert.Equal(t, WarnOutOfRange, d.Warnings[0].Code)
}

func TestAcceptResult_EmptyOptimalSchedule(t *testing.T) {
	d := AcceptResult(model.OptimizationResult{Status: model.ResultOptimal}, nil, slots.Default())
	assert.NotNil(t, d.Schedule)
	assert.Empty(t, d.Schedule)
	assert.Empty(t, d.Warnings)
}

func TestPreFilter(t *testing.T) {
	bookings := []model.Booking{
		newBooking("cut", now, model.ServiceCut, 60),
		newBooking("late-color", time.Date(2026, 3, 9, 13, 0, 0, 0, time.UTC), model.ServiceColor, 90),
		newBooking("perm", now, model.ServicePerm, 60),
	}

	got := PreFilter(staffPool(), bookings)
	require.Len(t, got, 3)

	assert.Equal(t, []string{"s1"}, got[0].Compatible)
	assert.Equal(t, "SKILL_INSUFFICIENT", string(got[0].Rejected["s2"].Reason))

	assert.Equal(t, []string{"s2"}, got[1].Compatible)
	assert.Equal(t, []string{"s2"}, got[1].Preferred)

	assert.Empty(t, got[2].Compatible)
	assert.Equal(t, []string{"perm"}, Unservable(got))
}

func TestFSM(t *testing.T) {
	f := NewFSM()

	tests := []struct {
		from, to State
		ok       bool
	}{
		{StateDateSelected, StateStaffSelected, true},
		{StateDateSelected, StateBookingsSelected, false},
		{StateStaffSelected, StateBookingsSelected, true},
		{StateBookingsSelected, StateStaffSelected, false},
		{StateBookingsSelected, StateSolving, true},
		{StateStaffSelected, StateSolving, false},
		{StateSolving, StateResultReady, true},
		{StateSolving, StateSolveFailed, true},
		{StateSolveFailed, StateBookingsSelected, true},
		{StateResultReady, StateBookingsSelected, false},
		{StateResultReady, StateDateSelected, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, f.CanTransition(tt.from, tt.to))
			_, err := f.Next(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrIllegalTransition)
			}
		})
	}
}
