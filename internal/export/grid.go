package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hey-show123/beauty-scheduler/internal/model"
	"github.com/hey-show123/beauty-scheduler/internal/slots"
)

// Grid cell marks.
const (
	cellFree     = '.'
	cellBusy     = '#'
	cellConflict = 'X'
)

// Grid renders a staff-by-slot text chart, one column per slot with an hour
// ruler on top. Staff without items do not get a row. Overlapping slots are
// marked X; slots outside the day are not drawn.
func Grid(items []model.ScheduleItem, cal slots.Calendar) string {
	n := cal.SlotsPerDay()

	type line struct {
		name  string
		cells []int
	}
	lines := make(map[string]*line)
	for _, it := range items {
		l, ok := lines[it.StaffID]
		if !ok {
			l = &line{name: it.StaffName, cells: make([]int, n)}
			if l.name == "" {
				l.name = it.StaffID
			}
			lines[it.StaffID] = l
		}
		for s := max(it.StartSlot, 0); s < min(it.EndSlot(), n); s++ {
			l.cells[s]++
		}
	}

	ids := make([]string, 0, len(lines))
	width := len("staff")
	for id, l := range lines {
		ids = append(ids, id)
		width = max(width, len(l.name))
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := lines[ids[i]], lines[ids[j]]
		if a.name != b.name {
			return a.name < b.name
		}
		return ids[i] < ids[j]
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-*s |", width, "staff")
	perHour := 60 / slots.WidthMinutes
	for s := 0; s < n; s += perHour {
		fmt.Fprintf(&sb, "%-*d", perHour, cal.StartHour+s/perHour)
	}
	sb.WriteByte('\n')

	for _, id := range ids {
		l := lines[id]
		fmt.Fprintf(&sb, "%-*s |", width, l.name)
		for _, c := range l.cells {
			switch {
			case c == 0:
				sb.WriteByte(cellFree)
			case c == 1:
				sb.WriteByte(cellBusy)
			default:
				sb.WriteByte(cellConflict)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
