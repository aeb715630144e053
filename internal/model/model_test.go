package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datetime(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func validStaff() Staff {
	return Staff{
		Name: "Misaki",
		Skills: []Skill{
			{ServiceType: ServiceCut, Level: LevelExpert, YearsExperience: 8},
			{ServiceType: ServiceColor, Level: LevelAdvanced},
		},
		Availability: []Availability{
			{DayOfWeek: 0, StartTime: "09:00", EndTime: "12:00"},
			{DayOfWeek: 0, StartTime: "13:00", EndTime: "18:00", IsPreferred: true},
		},
		HourlyRate:     2500,
		MaxHoursPerDay: 8,
	}
}

func TestStaff_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Staff)
		wantErr string
	}{
		{"valid", func(s *Staff) {}, ""},
		{"missing name", func(s *Staff) { s.Name = "" }, "name is required"},
		{"zero rate", func(s *Staff) { s.HourlyRate = 0 }, "hourly_rate must be positive"},
		{"zero daily hours", func(s *Staff) { s.MaxHoursPerDay = 0 }, "max_hours_per_day must be positive"},
		{"bad level", func(s *Staff) { s.Skills[0].Level = 5 }, "skills[0]: level must be 1-4, got 5"},
		{"duplicate skill", func(s *Staff) {
			s.Skills = append(s.Skills, Skill{ServiceType: ServiceCut, Level: 1})
		}, `skills[2]: duplicate service type "cut"`},
		{"bad day", func(s *Staff) { s.Availability[0].DayOfWeek = 7 }, "availability[0]: day_of_week must be 0-6, got 7"},
		{"inverted window", func(s *Staff) { s.Availability[0].EndTime = "08:00" }, "availability[0]: end_time must be after start_time"},
		{"overlapping windows", func(s *Staff) { s.Availability[1].StartTime = "11:30" }, "availability[1]: overlaps another window on day 0"},
		{"bad clock", func(s *Staff) { s.Availability[0].StartTime = "9am" }, "availability[0]: start_time: invalid time format '9am', expected HH:MM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validStaff()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestStaff_CanPerform(t *testing.T) {
	s := validStaff()
	assert.True(t, s.CanPerform(ServiceCut, LevelExpert))
	assert.True(t, s.CanPerform(ServiceColor, LevelIntermediate))
	assert.False(t, s.CanPerform(ServiceColor, LevelExpert))
	assert.False(t, s.CanPerform(ServicePerm, LevelBeginner))
	assert.Equal(t, SkillLevel(0), s.SkillLevel(ServiceFacial))
}

func TestWeekday_MondayFirst(t *testing.T) {
	// 2026-01-12 is a Monday.
	assert.Equal(t, 0, Weekday(datetime(2026, 1, 12, 10, 0)))
	assert.Equal(t, 5, Weekday(datetime(2026, 1, 17, 10, 0)))
	assert.Equal(t, 6, Weekday(datetime(2026, 1, 18, 10, 0)))
}

func TestBooking_Totals(t *testing.T) {
	b := Booking{
		Services: []Service{
			{ServiceType: ServiceCut, DurationMinutes: 60, Price: 5000},
			{ServiceType: ServiceColor, DurationMinutes: 90, Price: 8000, SetupMinutes: 10, CleanupMinutes: 5},
		},
		ScheduledStart: datetime(2026, 1, 12, 10, 0),
	}

	assert.Equal(t, 165, b.TotalMinutes())
	assert.Equal(t, 13000.0, b.TotalPrice())
	assert.Equal(t, datetime(2026, 1, 12, 12, 45), b.EstimatedEnd())
	assert.Equal(t, []string{"cut", "color"}, b.ServiceNames())
	assert.True(t, b.NeedsService(ServiceColor))
	assert.False(t, b.NeedsService(ServicePerm))
}

func TestBooking_Validate(t *testing.T) {
	base := func() Booking {
		return Booking{
			Customer:       Customer{Name: "Taro", Phone: "090-0000-0000", Priority: PriorityNormal},
			Services:       []Service{{ServiceType: ServiceCut, DurationMinutes: 60, RequiredSkillLevel: 2, Price: 4000}},
			ScheduledStart: datetime(2026, 1, 12, 10, 0),
			Status:         StatusScheduled,
		}
	}

	b := base()
	require.NoError(t, b.Validate())

	b = base()
	b.Customer.Phone = ""
	assert.EqualError(t, b.Validate(), "customer.phone is required")

	b = base()
	b.Services = nil
	assert.EqualError(t, b.Validate(), "at least one service is required")

	b = base()
	b.Services[0].DurationMinutes = 0
	assert.EqualError(t, b.Validate(), "services[0]: duration_minutes must be positive")

	b = base()
	b.Services[0].Price = -1
	assert.EqualError(t, b.Validate(), "services[0]: price cannot be negative")

	b = base()
	b.Status = "lost"
	assert.EqualError(t, b.Validate(), `status: unknown value "lost"`)
}

func TestPriority_Weight(t *testing.T) {
	assert.Equal(t, 0, PriorityLow.Weight())
	assert.Equal(t, 1, PriorityNormal.Weight())
	assert.Equal(t, 1, Priority("").Weight())
	assert.Equal(t, 3, PriorityVIP.Weight())
}

func TestOptimizationResult_DecodeTolerant(t *testing.T) {
	raw := `{"status":"FEASIBLE","schedule":[{"booking_id":"b1","staff_id":"s1","start_slot":4,"duration_slots":2,"color":"red"}],"solver_version":"9.8"}`

	var res OptimizationResult
	require.NoError(t, json.Unmarshal([]byte(raw), &res))

	assert.Equal(t, ResultFeasible, res.Status)
	assert.True(t, res.Status.Solved())
	require.Len(t, res.Schedule, 1)
	assert.Equal(t, 6, res.Schedule[0].EndSlot())
	assert.Equal(t, SolverStats{}, res.SolverStats)
}
