package export

import (
	"encoding/csv"
	"io"

	"github.com/hey-show123/beauty-scheduler/internal/model"
	"github.com/hey-show123/beauty-scheduler/internal/slots"
)

// WriteCSV writes the schedule with a header row.
func WriteCSV(w io.Writer, items []model.ScheduleItem, cal slots.Calendar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range Rows(items, cal) {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
