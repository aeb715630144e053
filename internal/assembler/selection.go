// Package assembler stages a scheduling request, hands it to the optimizer and
// turns the answer into a displayable schedule with integrity warnings.
package assembler

import (
	"errors"
	"time"

	"github.com/hey-show123/beauty-scheduler/internal/model"
)

// ErrEmptySelection is returned before any optimizer call when the staff or
// booking selection is empty.
var ErrEmptySelection = errors.New("EMPTY_SELECTION")

// Selection is the staff and bookings a request will be built from.
type Selection struct {
	Staff    []model.Staff
	Bookings []model.Booking
}

// DefaultSelection picks every staff member and every booking starting at or
// after now. Callers may override either subset.
func DefaultSelection(staffPool []model.Staff, bookingPool []model.Booking, now time.Time) Selection {
	sel := Selection{Staff: append([]model.Staff(nil), staffPool...)}
	for _, b := range bookingPool {
		if !b.ScheduledStart.Before(now) {
			sel.Bookings = append(sel.Bookings, b)
		}
	}
	return sel
}

// BuildRequest builds the optimizer request for date. The request carries ids
// only and keeps the selection order.
func BuildRequest(date time.Time, staff []model.Staff, bookings []model.Booking) (model.OptimizationRequest, error) {
	if len(staff) == 0 || len(bookings) == 0 {
		return model.OptimizationRequest{}, ErrEmptySelection
	}

	req := model.OptimizationRequest{
		ScheduleDate: date,
		StaffIDs:     make([]string, len(staff)),
		BookingIDs:   make([]string, len(bookings)),
	}
	for i, s := range staff {
		req.StaffIDs[i] = s.ID
	}
	for i, b := range bookings {
		req.BookingIDs[i] = b.ID
	}
	return req, nil
}

// StaffIndex maps staff by id.
func StaffIndex(staff []model.Staff) map[string]model.Staff {
	out := make(map[string]model.Staff, len(staff))
	for _, s := range staff {
		out[s.ID] = s
	}
	return out
}
