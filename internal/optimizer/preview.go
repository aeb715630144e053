package optimizer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hey-show123/beauty-scheduler/internal/compat"
	"github.com/hey-show123/beauty-scheduler/internal/model"
	"github.com/hey-show123/beauty-scheduler/internal/slots"
)

// Source lists the entities a preview may place.
type Source interface {
	ListStaff(ctx context.Context) ([]model.Staff, error)
	ListBookings(ctx context.Context) ([]model.Booking, error)
}

// Previewer is a greedy first-fit assigner used for quick previews when the
// solver is slow or down. Its output is never optimal, only FEASIBLE or
// INFEASIBLE.
type Previewer struct {
	source Source
	cal    slots.Calendar
}

// NewPreviewer builds a previewer reading entities from source.
func NewPreviewer(source Source, cal slots.Calendar) *Previewer {
	return &Previewer{source: source, cal: cal}
}

// Optimize resolves the request ids through the source and runs Assign.
func (p *Previewer) Optimize(ctx context.Context, req model.OptimizationRequest) (model.OptimizationResult, error) {
	staff, err := p.source.ListStaff(ctx)
	if err != nil {
		return fail("list staff", err)
	}
	bookings, err := p.source.ListBookings(ctx)
	if err != nil {
		return fail("list bookings", err)
	}
	return Assign(req.ScheduleDate, pickStaff(staff, req.StaffIDs), pickBookings(bookings, req.BookingIDs), p.cal), nil
}

type placement struct {
	staff   *model.Staff
	minutes int
	ranges  []slots.Range
}

// Assign places bookings one at a time. Higher priority goes first, then
// earlier requested start. Each booking takes the slot nearest its requested
// start that some staff member can serve, and the best-scoring staff there,
// with ties to the least loaded.
func Assign(date time.Time, staff []model.Staff, bookings []model.Booking, cal slots.Calendar) model.OptimizationResult {
	started := time.Now()

	order := make([]*model.Booking, len(bookings))
	for i := range bookings {
		order[i] = &bookings[i]
	}
	sort.SliceStable(order, func(i, j int) bool {
		wi, wj := order[i].Customer.Priority.Weight(), order[j].Customer.Priority.Weight()
		if wi != wj {
			return wi > wj
		}
		if !order[i].ScheduledStart.Equal(order[j].ScheduledStart) {
			return order[i].ScheduledStart.Before(order[j].ScheduledStart)
		}
		return order[i].ID < order[j].ID
	})

	placed := make([]*placement, len(staff))
	for i := range staff {
		placed[i] = &placement{staff: &staff[i]}
	}
	ledger := compat.Ledger{}

	result := model.OptimizationResult{Status: model.ResultFeasible, Schedule: []model.ScheduleItem{}}
	var unplaced []string
	objective := 0

	for _, b := range order {
		dur, err := slots.DurationMinutesToSlots(b.TotalMinutes())
		if err != nil {
			unplaced = append(unplaced, b.ID)
			continue
		}

		item, score, ok := placeOne(date, b, dur, placed, ledger, cal)
		if !ok {
			unplaced = append(unplaced, b.ID)
			continue
		}
		objective += score
		result.Schedule = append(result.Schedule, item)
	}

	if len(bookings) > 0 && len(result.Schedule) == 0 {
		result.Status = model.ResultInfeasible
	}
	if len(unplaced) > 0 {
		result.Message = fmt.Sprintf("%d booking(s) not placed: %s", len(unplaced), strings.Join(unplaced, ", "))
	}
	result.SolverStats = model.SolverStats{
		SolveTime:      time.Since(started).Seconds(),
		ObjectiveValue: float64(objective),
	}
	return result
}

func placeOne(date time.Time, b *model.Booking, dur int, placed []*placement, ledger compat.Ledger, cal slots.Calendar) (model.ScheduleItem, int, bool) {
	for _, start := range candidateStarts(date, b, dur, cal) {
		r := slots.Range{Start: start, Length: dur}
		at := cal.SlotStart(date, start)

		var best *placement
		bestScore := -1
		for _, p := range placed {
			if overlapsAny(p.ranges, r) {
				continue
			}
			v := ledger.CheckWithLedger(p.staff, b, at)
			if !v.OK {
				continue
			}
			score := compat.Score(p.staff, b, at, v)
			if best == nil || score > bestScore || (score == bestScore && p.minutes < best.minutes) {
				best, bestScore = p, score
			}
		}
		if best == nil {
			continue
		}

		best.ranges = append(best.ranges, r)
		best.minutes += b.TotalMinutes()
		ledger.Add(best.staff.ID, at, b.TotalMinutes())

		return model.ScheduleItem{
			BookingID:     b.ID,
			StaffID:       best.staff.ID,
			StaffName:     best.staff.Name,
			CustomerName:  b.Customer.Name,
			Services:      b.ServiceNames(),
			StartSlot:     start,
			DurationSlots: dur,
		}, bestScore, true
	}
	return model.ScheduleItem{}, 0, false
}

// candidateStarts lists every start slot that keeps the booking inside the
// day, nearest to the requested start first. Bookings requested for another
// day are anchored at slot 0. Requests outside business hours are anchored at
// the nearest edge of the day.
func candidateStarts(date time.Time, b *model.Booking, dur int, cal slots.Calendar) []int {
	last := cal.SlotsPerDay() - dur
	if last < 0 {
		return nil
	}

	anchor := 0
	if sameDay(b.ScheduledStart, date) {
		s, err := cal.TimeToSlot(b.ScheduledStart)
		switch {
		case err == nil:
			anchor = min(s, last)
		case b.ScheduledStart.Hour() >= cal.EndHour:
			anchor = last
		}
	}

	out := make([]int, 0, last+1)
	out = append(out, anchor)
	for d := 1; anchor+d <= last || anchor-d >= 0; d++ {
		if anchor+d <= last {
			out = append(out, anchor+d)
		}
		if anchor-d >= 0 {
			out = append(out, anchor-d)
		}
	}
	return out
}

func overlapsAny(rs []slots.Range, r slots.Range) bool {
	for _, x := range rs {
		if x.Overlaps(r) {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

func pickStaff(pool []model.Staff, ids []string) []model.Staff {
	index := make(map[string]model.Staff, len(pool))
	for _, s := range pool {
		index[s.ID] = s
	}
	out := make([]model.Staff, 0, len(ids))
	for _, id := range ids {
		if s, ok := index[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

func pickBookings(pool []model.Booking, ids []string) []model.Booking {
	index := make(map[string]model.Booking, len(pool))
	for _, b := range pool {
		index[b.ID] = b
	}
	out := make([]model.Booking, 0, len(ids))
	for _, id := range ids {
		if b, ok := index[id]; ok {
			out = append(out, b)
		}
	}
	return out
}
