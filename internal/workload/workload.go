// Package workload reduces schedule items into per-staff totals and detects overlaps.
package workload

import (
	"sort"

	"github.com/hey-show123/beauty-scheduler/internal/model"
	"github.com/hey-show123/beauty-scheduler/internal/slots"
)

// Load is the work assigned to one staff member.
type Load struct {
	Name         string  `json:"name"`
	Hours        float64 `json:"hours"`
	BookingCount int     `json:"booking_count"`
	slotsUsed    int
}

// Slots returns the number of slots the staff member is booked for.
func (l Load) Slots() int {
	return l.slotsUsed
}

// Aggregate sums hours and booking counts per staff id. Hours are derived
// from the integer slot total so the result does not depend on input order.
func Aggregate(items []model.ScheduleItem) map[string]Load {
	out := make(map[string]Load)
	for _, it := range items {
		l := out[it.StaffID]
		if l.Name == "" || (it.StaffName != "" && it.StaffName < l.Name) {
			l.Name = it.StaffName
		}
		l.slotsUsed += it.DurationSlots
		l.BookingCount++
		out[it.StaffID] = l
	}
	for id, l := range out {
		l.Hours = float64(l.slotsUsed*slots.WidthMinutes) / 60
		out[id] = l
	}
	return out
}

// Utilization returns the share of the business day the load occupies.
func Utilization(l Load, cal slots.Calendar) float64 {
	if cal.SlotsPerDay() == 0 {
		return 0
	}
	return float64(l.slotsUsed) / float64(cal.SlotsPerDay())
}

// Cost is the labour cost of the items, hours times each staff's hourly rate.
// Items for unknown staff are skipped.
func Cost(items []model.ScheduleItem, staffByID map[string]model.Staff) float64 {
	var total float64
	for id, l := range Aggregate(items) {
		if s, ok := staffByID[id]; ok {
			total += l.Hours * s.HourlyRate
		}
	}
	return total
}

// Summary totals a whole schedule.
type Summary struct {
	StaffCount    int     `json:"staff_count"`
	BookingCount  int     `json:"booking_count"`
	TotalHours    float64 `json:"total_hours"`
	BusiestStaff  string  `json:"busiest_staff,omitempty"`
	BusiestHours  float64 `json:"busiest_hours"`
	ConflictCount int     `json:"conflict_count"`
}

// Summarize builds a Summary. Ties for busiest staff go to the lowest id.
func Summarize(items []model.ScheduleItem) Summary {
	loads := Aggregate(items)

	ids := make([]string, 0, len(loads))
	for id := range loads {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var s Summary
	s.StaffCount = len(loads)
	busiestSlots := -1
	totalSlots := 0
	for _, id := range ids {
		l := loads[id]
		s.BookingCount += l.BookingCount
		totalSlots += l.slotsUsed
		if l.slotsUsed > busiestSlots {
			busiestSlots = l.slotsUsed
			s.BusiestStaff = id
			s.BusiestHours = l.Hours
		}
	}
	s.TotalHours = float64(totalSlots*slots.WidthMinutes) / 60
	s.ConflictCount = len(FindConflicts(items))
	return s
}
