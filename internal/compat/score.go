package compat

import (
	"time"

	"github.com/hey-show123/beauty-scheduler/internal/model"
)

// Preference weights. Customer choice dominates, then the staff's own
// preferred window, then customer priority and spare skill.
const (
	WeightCustomerPreferred = 40
	WeightPreferredWindow   = 10
	WeightPriorityStep      = 5
	WeightSkillSurplus      = 1
)

// Score ranks a compatible pairing; higher is better. Incompatible pairings score -1.
func Score(staff *model.Staff, booking *model.Booking, start time.Time, v Verdict) int {
	if !v.OK {
		return -1
	}

	score := booking.Customer.Priority.Weight() * WeightPriorityStep

	if booking.Customer.Prefers(staff.ID) {
		score += WeightCustomerPreferred
	}
	if w, ok := containingWindow(staff, start, booking.TotalMinutes()); ok && w.IsPreferred {
		score += WeightPreferredWindow
	}
	for _, svc := range booking.Services {
		score += int(staff.SkillLevel(svc.ServiceType)-svc.RequiredSkillLevel) * WeightSkillSurplus
	}

	return score
}

// Ledger tracks minutes already assigned per staff per calendar day.
type Ledger map[string]map[string]int

// Minutes returns the minutes assigned to staffID on day.
func (l Ledger) Minutes(staffID string, day time.Time) int {
	return l[staffID][day.Format("2006-01-02")]
}

// Add records minutes for staffID on day.
func (l Ledger) Add(staffID string, day time.Time, minutes int) {
	key := day.Format("2006-01-02")
	if l[staffID] == nil {
		l[staffID] = make(map[string]int)
	}
	l[staffID][key] += minutes
}

// CheckWithLedger runs Check using the ledger's load for staff on start's day.
func (l Ledger) CheckWithLedger(staff *model.Staff, booking *model.Booking, start time.Time) Verdict {
	return Check(staff, booking, start, l.Minutes(staff.ID, start))
}
