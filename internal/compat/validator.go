// Package compat decides whether a staff member may take a booking at a given time.
package compat

import (
	"fmt"
	"time"

	"github.com/hey-show123/beauty-scheduler/internal/model"
)

// Reason identifies the first failed check.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonSkillInsufficient   Reason = "SKILL_INSUFFICIENT"
	ReasonOutsideAvailability Reason = "OUTSIDE_AVAILABILITY"
	ReasonDailyHoursExceeded  Reason = "DAILY_HOURS_EXCEEDED"
)

// Verdict is the outcome of a compatibility check. Preferred is advisory and
// never turns a failure into a pass.
type Verdict struct {
	OK        bool   `json:"ok"`
	Reason    Reason `json:"reason,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Preferred bool   `json:"preferred"`
}

func fail(reason Reason, detail string, preferred bool) Verdict {
	return Verdict{Reason: reason, Detail: detail, Preferred: preferred}
}

// IsCompatible checks staff against booking starting at start with no other
// work assigned that day.
func IsCompatible(staff *model.Staff, booking *model.Booking, start time.Time) Verdict {
	return Check(staff, booking, start, 0)
}

// Check runs skill, availability and daily-hours checks in that order.
// assignedMinutes is the work already given to staff on start's day,
// excluding booking itself.
func Check(staff *model.Staff, booking *model.Booking, start time.Time, assignedMinutes int) Verdict {
	customerPrefers := booking.Customer.Prefers(staff.ID)

	for _, svc := range booking.Services {
		if !staff.CanPerform(svc.ServiceType, svc.RequiredSkillLevel) {
			return fail(ReasonSkillInsufficient,
				fmt.Sprintf("%s requires level %d, staff has %d", svc.ServiceType, svc.RequiredSkillLevel, staff.SkillLevel(svc.ServiceType)),
				customerPrefers)
		}
	}

	total := booking.TotalMinutes()
	window, ok := containingWindow(staff, start, total)
	if !ok {
		return fail(ReasonOutsideAvailability,
			fmt.Sprintf("%s-%s is not inside any window on day %d",
				start.Format("15:04"), start.Add(time.Duration(total)*time.Minute).Format("15:04"), model.Weekday(start)),
			customerPrefers)
	}
	preferred := customerPrefers || window.IsPreferred

	budget := staff.MaxHoursPerDay * 60
	if assignedMinutes+total > budget {
		return fail(ReasonDailyHoursExceeded,
			fmt.Sprintf("%d assigned + %d requested exceeds %d minutes", assignedMinutes, total, budget),
			preferred)
	}

	return Verdict{OK: true, Preferred: preferred}
}

// containingWindow finds the availability window on start's weekday that
// fully contains [start, start+minutes).
func containingWindow(staff *model.Staff, start time.Time, minutes int) (model.Availability, bool) {
	from := start.Hour()*60 + start.Minute()
	to := from + minutes

	for _, w := range staff.WindowsOn(model.Weekday(start)) {
		wStart, wEnd, err := w.Minutes()
		if err != nil {
			continue
		}
		if wStart <= from && to <= wEnd {
			return w, true
		}
	}
	return model.Availability{}, false
}

// Eligible returns the staff whose skills cover every service of booking.
func Eligible(pool []model.Staff, booking *model.Booking) []model.Staff {
	var out []model.Staff
	for i := range pool {
		if skilled(&pool[i], booking) {
			out = append(out, pool[i])
		}
	}
	return out
}

func skilled(staff *model.Staff, booking *model.Booking) bool {
	for _, svc := range booking.Services {
		if !staff.CanPerform(svc.ServiceType, svc.RequiredSkillLevel) {
			return false
		}
	}
	return true
}
