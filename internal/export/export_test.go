package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hey-show123/beauty-scheduler/internal/model"
	"github.com/hey-show123/beauty-scheduler/internal/slots"
)

func items() []model.ScheduleItem {
	return []model.ScheduleItem{
		{BookingID: "b2", StaffID: "s2", StaffName: "Ben", CustomerName: "Kenji", Services: []string{"color"}, StartSlot: 16, DurationSlots: 6},
		{BookingID: "b1", StaffID: "s1", StaffName: "Aiko", CustomerName: "Hanako", Services: []string{"cut", "styling"}, StartSlot: 4, DurationSlots: 4},
		{BookingID: "b3", StaffID: "s1", StaffName: "Aiko", CustomerName: "Yuki", Services: []string{"cut"}, StartSlot: 0, DurationSlots: 2},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(items(), slots.Default())
	require.Len(t, rows, 3)

	assert.Equal(t, Row{Staff: "Aiko", Customer: "Yuki", Services: "cut", Start: "09:00", End: "09:30", Minutes: 30}, rows[0])
	assert.Equal(t, Row{Staff: "Aiko", Customer: "Hanako", Services: "cut+styling", Start: "10:00", End: "11:00", Minutes: 60}, rows[1])
	assert.Equal(t, "Ben", rows[2].Staff)
	assert.Equal(t, "14:00", rows[2].Start)
	assert.Equal(t, "15:30", rows[2].End)
}

func TestRows_UnlabelableSlot(t *testing.T) {
	rows := Rows([]model.ScheduleItem{{StaffName: "A", StartSlot: 42, DurationSlots: 4}}, slots.Default())
	assert.Equal(t, "19:30", rows[0].Start)
	assert.Equal(t, "?", rows[0].End)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, items(), slots.Default()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, Columns, records[0])
	assert.Equal(t, []string{"Aiko", "Yuki", "cut", "09:00", "09:30", "30"}, records[1])
}

func TestWriteCSV_EmptySchedule(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, slots.Default()))
	assert.Equal(t, "staff,customer,services,start,end,minutes\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, items(), slots.Default()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSchedule, SheetWorkload}, f.GetSheetList())

	rows, err := f.GetRows(SheetSchedule)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "cut+styling", rows[2][2])

	load, err := f.GetRows(SheetWorkload)
	require.NoError(t, err)
	require.Len(t, load, 3)
	assert.Equal(t, []string{"s1", "Aiko", "2", "1.5"}, load[1][:4])
	assert.Equal(t, []string{"s2", "Ben", "1", "1.5"}, load[2][:4])
}

func TestGrid(t *testing.T) {
	its := append(items(), model.ScheduleItem{BookingID: "b4", StaffID: "s1", StaffName: "Aiko", StartSlot: 5, DurationSlots: 1})

	out := Grid(its, slots.Default())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.True(t, strings.HasPrefix(lines[0], "staff |9   10  11"))
	assert.Equal(t, "Aiko  |##..#X##"+strings.Repeat(".", 36), lines[1])
	assert.Equal(t, "Ben   |"+strings.Repeat(".", 16)+"######"+strings.Repeat(".", 22), lines[2])
}
