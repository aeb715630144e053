// Package export renders accepted schedules as a text grid, CSV or XLSX.
package export

import (
	"sort"
	"strconv"
	"strings"

	"github.com/hey-show123/beauty-scheduler/internal/model"
	"github.com/hey-show123/beauty-scheduler/internal/slots"
)

// Columns is the header shared by the CSV and XLSX schedule sheets.
var Columns = []string{"staff", "customer", "services", "start", "end", "minutes"}

// Row is one schedule item in export form.
type Row struct {
	Staff    string
	Customer string
	Services string
	Start    string
	End      string
	Minutes  int
}

func (r Row) values() []any {
	return []any{r.Staff, r.Customer, r.Services, r.Start, r.End, r.Minutes}
}

func (r Row) record() []string {
	return []string{r.Staff, r.Customer, r.Services, r.Start, r.End, strconv.Itoa(r.Minutes)}
}

// Rows sorts items by staff name then start slot and converts them. Slots the
// calendar cannot label are rendered as "?".
func Rows(items []model.ScheduleItem, cal slots.Calendar) []Row {
	sorted := append([]model.ScheduleItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StaffName != sorted[j].StaffName {
			return sorted[i].StaffName < sorted[j].StaffName
		}
		return sorted[i].StartSlot < sorted[j].StartSlot
	})

	rows := make([]Row, len(sorted))
	for i, it := range sorted {
		rows[i] = Row{
			Staff:    it.StaffName,
			Customer: it.CustomerName,
			Services: strings.Join(it.Services, "+"),
			Start:    label(cal, it.StartSlot),
			End:      label(cal, it.EndSlot()),
			Minutes:  it.DurationSlots * slots.WidthMinutes,
		}
	}
	return rows
}

func label(cal slots.Calendar, slot int) string {
	s, err := cal.SlotToTime(slot)
	if err != nil {
		return "?"
	}
	return s
}
