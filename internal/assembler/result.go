package assembler

import (
	"fmt"

	"github.com/hey-show123/beauty-scheduler/internal/model"
	"github.com/hey-show123/beauty-scheduler/internal/slots"
	"github.com/hey-show123/beauty-scheduler/internal/workload"
)

// WarningCode classifies a problem found while accepting a result.
type WarningCode string

const (
	WarnNoSolution       WarningCode = "NO_SOLUTION"
	WarnUnknownStaff     WarningCode = "UNKNOWN_STAFF"
	WarnScheduleConflict WarningCode = "SCHEDULE_CONFLICT"
	WarnOutOfRange       WarningCode = "OUT_OF_RANGE"
)

// UnknownStaffName is shown for items whose staff id could not be resolved.
const UnknownStaffName = "(unknown staff)"

// Warning is a non-fatal problem attached to a displayed schedule.
type Warning struct {
	Code       WarningCode `json:"code"`
	Message    string      `json:"message"`
	StaffID    string      `json:"staff_id,omitempty"`
	BookingIDs []string    `json:"booking_ids,omitempty"`
}

// Display is a schedule ready to be shown, with everything that looked wrong.
type Display struct {
	Status      model.ResultStatus   `json:"status"`
	Schedule    []model.ScheduleItem `json:"schedule"`
	Warnings    []Warning            `json:"warnings"`
	SolverStats model.SolverStats    `json:"solver_stats"`
}

// HasWarning reports whether a warning with code is present.
func (d Display) HasWarning(code WarningCode) bool {
	for _, w := range d.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// AcceptResult converts an optimizer result into a Display. Items are never
// dropped: unresolved staff, out-of-range slots and overlaps become warnings.
func AcceptResult(result model.OptimizationResult, staffByID map[string]model.Staff, cal slots.Calendar) Display {
	d := Display{
		Status:      result.Status,
		Schedule:    []model.ScheduleItem{},
		Warnings:    []Warning{},
		SolverStats: result.SolverStats,
	}

	if !result.Status.Solved() {
		msg := fmt.Sprintf("optimizer returned %s", result.Status)
		if result.Message != "" {
			msg += ": " + result.Message
		}
		d.Warnings = append(d.Warnings, Warning{Code: WarnNoSolution, Message: msg})
		return d
	}

	for _, it := range result.Schedule {
		if s, ok := staffByID[it.StaffID]; ok {
			it.StaffName = s.Name
		} else {
			it.StaffName = UnknownStaffName
			d.Warnings = append(d.Warnings, Warning{
				Code:       WarnUnknownStaff,
				Message:    fmt.Sprintf("staff %q is not in the selection", it.StaffID),
				StaffID:    it.StaffID,
				BookingIDs: []string{it.BookingID},
			})
		}

		if !cal.Contains(slots.Range{Start: it.StartSlot, Length: it.DurationSlots}) {
			d.Warnings = append(d.Warnings, Warning{
				Code: WarnOutOfRange,
				Message: fmt.Sprintf("slots [%d,%d) fall outside the business day [0,%d)",
					it.StartSlot, it.EndSlot(), cal.SlotsPerDay()),
				StaffID:    it.StaffID,
				BookingIDs: []string{it.BookingID},
			})
		}

		d.Schedule = append(d.Schedule, it)
	}

	for _, c := range workload.FindConflicts(d.Schedule) {
		d.Warnings = append(d.Warnings, Warning{
			Code: WarnScheduleConflict,
			Message: fmt.Sprintf("bookings %s [%d,%d) and %s [%d,%d) overlap",
				c.A.BookingID, c.A.StartSlot, c.A.EndSlot(), c.B.BookingID, c.B.StartSlot, c.B.EndSlot()),
			StaffID:    c.StaffID,
			BookingIDs: []string{c.A.BookingID, c.B.BookingID},
		})
	}

	return d
}
