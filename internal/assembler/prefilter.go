package assembler

import (
	"github.com/hey-show123/beauty-scheduler/internal/compat"
	"github.com/hey-show123/beauty-scheduler/internal/model"
)

// Candidacy is the soft compatibility picture for one booking.
type Candidacy struct {
	BookingID  string                    `json:"booking_id"`
	Compatible []string                  `json:"compatible"`
	Preferred  []string                  `json:"preferred"`
	Rejected   map[string]compat.Verdict `json:"rejected"`
}

// PreFilter checks every selected staff member against every selected booking
// at the booking's scheduled start. It is advisory: the optimizer still
// receives the full selection.
func PreFilter(staff []model.Staff, bookings []model.Booking) []Candidacy {
	out := make([]Candidacy, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		c := Candidacy{BookingID: b.ID, Compatible: []string{}, Preferred: []string{}, Rejected: map[string]compat.Verdict{}}
		for j := range staff {
			s := &staff[j]
			v := compat.IsCompatible(s, b, b.ScheduledStart)
			if !v.OK {
				c.Rejected[s.ID] = v
				continue
			}
			c.Compatible = append(c.Compatible, s.ID)
			if v.Preferred {
				c.Preferred = append(c.Preferred, s.ID)
			}
		}
		out = append(out, c)
	}
	return out
}

// Unservable returns the ids of bookings no selected staff can take.
func Unservable(cands []Candidacy) []string {
	var out []string
	for _, c := range cands {
		if len(c.Compatible) == 0 {
			out = append(out, c.BookingID)
		}
	}
	return out
}
