package model

import (
	"fmt"
	"time"
)

// ServiceType identifies a salon service.
type ServiceType string

const (
	ServiceCut       ServiceType = "cut"
	ServiceColor     ServiceType = "color"
	ServicePerm      ServiceType = "perm"
	ServiceTreatment ServiceType = "treatment"
	ServiceStyling   ServiceType = "styling"
	ServiceFacial    ServiceType = "facial"
)

// ServiceTypes lists every known service type in display order.
var ServiceTypes = []ServiceType{
	ServiceCut, ServiceColor, ServicePerm, ServiceTreatment, ServiceStyling, ServiceFacial,
}

// Valid reports whether t is a known service type.
func (t ServiceType) Valid() bool {
	for _, st := range ServiceTypes {
		if st == t {
			return true
		}
	}
	return false
}

// SkillLevel is a 1..4 proficiency grade.
type SkillLevel int

const (
	LevelBeginner     SkillLevel = 1
	LevelIntermediate SkillLevel = 2
	LevelAdvanced     SkillLevel = 3
	LevelExpert       SkillLevel = 4
)

// Valid reports whether l is within 1..4.
func (l SkillLevel) Valid() bool {
	return l >= LevelBeginner && l <= LevelExpert
}

// Skill is a staff member's grade for one service type.
type Skill struct {
	ServiceType     ServiceType `json:"service_type"`
	Level           SkillLevel  `json:"level"`
	YearsExperience int         `json:"years_experience"`
}

// Availability is a weekly working window.
type Availability struct {
	DayOfWeek   int    `json:"day_of_week"` // 0=Monday .. 6=Sunday
	StartTime   string `json:"start_time"`  // "09:00"
	EndTime     string `json:"end_time"`    // "18:00"
	IsPreferred bool   `json:"is_preferred"`
}

// Minutes returns the window bounds as minutes since midnight.
func (a Availability) Minutes() (start, end int, err error) {
	start, err = clockMinutes(a.StartTime)
	if err != nil {
		return 0, 0, fmt.Errorf("start_time: %w", err)
	}
	end, err = clockMinutes(a.EndTime)
	if err != nil {
		return 0, 0, fmt.Errorf("end_time: %w", err)
	}
	return start, end, nil
}

// Staff is a salon employee who can be assigned bookings.
type Staff struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Skills          []Skill        `json:"skills"`
	Availability    []Availability `json:"availability"`
	HourlyRate      float64        `json:"hourly_rate"`
	MaxHoursPerDay  int            `json:"max_hours_per_day"`
	MaxHoursPerWeek int            `json:"max_hours_per_week,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// SkillLevel returns the staff's level for a service type, or 0 when the skill is missing.
func (s *Staff) SkillLevel(st ServiceType) SkillLevel {
	for _, sk := range s.Skills {
		if sk.ServiceType == st {
			return sk.Level
		}
	}
	return 0
}

// CanPerform checks the staff holds st at required level or above.
func (s *Staff) CanPerform(st ServiceType, required SkillLevel) bool {
	level := s.SkillLevel(st)
	return level != 0 && level >= required
}

// WindowsOn returns the availability windows for a weekday (0=Monday).
func (s *Staff) WindowsOn(dayOfWeek int) []Availability {
	var out []Availability
	for _, a := range s.Availability {
		if a.DayOfWeek == dayOfWeek {
			out = append(out, a)
		}
	}
	return out
}

// Validate checks ranges and uniqueness constraints.
func (s *Staff) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.HourlyRate <= 0 {
		return fmt.Errorf("hourly_rate must be positive")
	}
	if s.MaxHoursPerDay <= 0 {
		return fmt.Errorf("max_hours_per_day must be positive")
	}
	if s.MaxHoursPerWeek < 0 {
		return fmt.Errorf("max_hours_per_week cannot be negative")
	}

	seen := make(map[ServiceType]bool)
	for i, sk := range s.Skills {
		if !sk.ServiceType.Valid() {
			return fmt.Errorf("skills[%d]: unknown service type %q", i, sk.ServiceType)
		}
		if !sk.Level.Valid() {
			return fmt.Errorf("skills[%d]: level must be 1-4, got %d", i, sk.Level)
		}
		if sk.YearsExperience < 0 {
			return fmt.Errorf("skills[%d]: years_experience cannot be negative", i)
		}
		if seen[sk.ServiceType] {
			return fmt.Errorf("skills[%d]: duplicate service type %q", i, sk.ServiceType)
		}
		seen[sk.ServiceType] = true
	}

	type span struct{ start, end int }
	byDay := make(map[int][]span)
	for i, a := range s.Availability {
		if a.DayOfWeek < 0 || a.DayOfWeek > 6 {
			return fmt.Errorf("availability[%d]: day_of_week must be 0-6, got %d", i, a.DayOfWeek)
		}
		start, end, err := a.Minutes()
		if err != nil {
			return fmt.Errorf("availability[%d]: %w", i, err)
		}
		if end <= start {
			return fmt.Errorf("availability[%d]: end_time must be after start_time", i)
		}
		for _, other := range byDay[a.DayOfWeek] {
			if start < other.end && other.start < end {
				return fmt.Errorf("availability[%d]: overlaps another window on day %d", i, a.DayOfWeek)
			}
		}
		byDay[a.DayOfWeek] = append(byDay[a.DayOfWeek], span{start, end})
	}

	return nil
}

// Weekday converts a Go weekday (0=Sunday) to the Monday-first index used by Availability.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func clockMinutes(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time format '%s', expected HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
