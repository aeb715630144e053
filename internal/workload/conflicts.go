package workload

import (
	"sort"

	"github.com/hey-show123/beauty-scheduler/internal/model"
	"github.com/hey-show123/beauty-scheduler/internal/slots"
)

// Conflict is a pair of items for the same staff whose slot ranges overlap.
type Conflict struct {
	StaffID string             `json:"staff_id"`
	A       model.ScheduleItem `json:"a"`
	B       model.ScheduleItem `json:"b"`
}

// FindConflicts returns every overlapping pair per staff. Pairs are ordered by
// staff id, then by the input position of A and B.
func FindConflicts(items []model.ScheduleItem) []Conflict {
	byStaff := make(map[string][]int)
	for i, it := range items {
		byStaff[it.StaffID] = append(byStaff[it.StaffID], i)
	}

	ids := make([]string, 0, len(byStaff))
	for id := range byStaff {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Conflict
	for _, id := range ids {
		idx := byStaff[id]
		for x := 0; x < len(idx); x++ {
			a := items[idx[x]]
			ra := slots.Range{Start: a.StartSlot, Length: a.DurationSlots}
			for y := x + 1; y < len(idx); y++ {
				b := items[idx[y]]
				if ra.Overlaps(slots.Range{Start: b.StartSlot, Length: b.DurationSlots}) {
					out = append(out, Conflict{StaffID: id, A: a, B: b})
				}
			}
		}
	}
	return out
}
