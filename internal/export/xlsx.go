package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/hey-show123/beauty-scheduler/internal/model"
	"github.com/hey-show123/beauty-scheduler/internal/slots"
	"github.com/hey-show123/beauty-scheduler/internal/workload"
)

const (
	SheetSchedule = "Schedule"
	SheetWorkload = "Workload"
)

// WriteXLSX writes a workbook with a Schedule sheet and a per-staff Workload sheet.
func WriteXLSX(w io.Writer, items []model.ScheduleItem, cal slots.Calendar) error {
	sw := newSheetWriter()
	defer sw.Close()

	if err := sw.AddSheet(SheetSchedule); err != nil {
		return err
	}
	if err := sw.WriteHeader(Columns); err != nil {
		return err
	}
	for _, r := range Rows(items, cal) {
		if err := sw.WriteRow(r.values()); err != nil {
			return err
		}
	}

	if err := sw.AddSheet(SheetWorkload); err != nil {
		return err
	}
	if err := sw.WriteHeader([]string{"staff_id", "staff", "bookings", "hours", "utilization"}); err != nil {
		return err
	}
	loads := workload.Aggregate(items)
	ids := make([]string, 0, len(loads))
	for id := range loads {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		l := loads[id]
		if err := sw.WriteRow([]any{id, l.Name, l.BookingCount, l.Hours, workload.Utilization(l, cal)}); err != nil {
			return err
		}
	}

	return sw.Save(w)
}

// sheetWriter fills sheets row by row.
type sheetWriter struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

func newSheetWriter() *sheetWriter {
	return &sheetWriter{file: excelize.NewFile()}
}

// AddSheet starts a new sheet. The first call renames the default sheet.
func (w *sheetWriter) AddSheet(name string) error {
	if len(name) > 31 {
		name = name[:31]
	}

	if w.currentSheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

// WriteHeader writes bold column headers.
func (w *sheetWriter) WriteHeader(columns []string) error {
	values := make([]any, len(columns))
	for i, c := range columns {
		values[i] = c
	}
	if err := w.WriteRow(values); err != nil {
		return err
	}

	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil
	}
	startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow-1)
	endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow-1)
	_ = w.file.SetCellStyle(w.currentSheet, startCell, endCell, style)
	return nil
}

// WriteRow writes one row of values.
func (w *sheetWriter) WriteRow(row []any) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}
	cell, err := excelize.CoordinatesToCellName(1, w.currentRow)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(w.currentSheet, cell, &row); err != nil {
		return err
	}
	w.currentRow++
	return nil
}

func (w *sheetWriter) Save(wr io.Writer) error {
	return w.file.Write(wr)
}

func (w *sheetWriter) Close() error {
	return w.file.Close()
}
