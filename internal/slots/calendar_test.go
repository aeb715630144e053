package slots

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock(h, m int) time.Time {
	return time.Date(2026, 1, 12, h, m, 0, 0, time.UTC)
}

func TestTimeToSlot(t *testing.T) {
	cal := Default()

	tests := []struct {
		name     string
		at       time.Time
		expected int
	}{
		{"day start", clock(9, 0), 0},
		{"first slot tail", clock(9, 14), 0},
		{"second slot", clock(9, 15), 1},
		{"ten o'clock", clock(10, 0), 4},
		{"unaligned rounds down", clock(12, 44), 14},
		{"last slot", clock(19, 45), 43},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := cal.TimeToSlot(tt.at)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, slot)
		})
	}
}

func TestTimeToSlot_OutOfRange(t *testing.T) {
	cal := Default()

	for _, at := range []time.Time{clock(8, 59), clock(20, 0), clock(23, 30), clock(0, 0)} {
		_, err := cal.TimeToSlot(at)
		require.Error(t, err, at.Format("15:04"))

		var oor *OutOfRangeError
		assert.True(t, errors.As(err, &oor))
		assert.ErrorIs(t, err, ErrOutOfRange)
	}
}

func TestSlotToTime(t *testing.T) {
	cal := Default()

	got, err := cal.SlotToTime(0)
	require.NoError(t, err)
	assert.Equal(t, "09:00", got)

	got, err = cal.SlotToTime(5)
	require.NoError(t, err)
	assert.Equal(t, "10:15", got)

	got, err = cal.SlotToTime(cal.SlotsPerDay())
	require.NoError(t, err)
	assert.Equal(t, "20:00", got)

	_, err = cal.SlotToTime(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = cal.SlotToTime(cal.SlotsPerDay() + 1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestSlotToTime_ZeroPadsEarlyCalendar(t *testing.T) {
	cal, err := New(7, 12)
	require.NoError(t, err)

	got, err := cal.SlotToTime(1)
	require.NoError(t, err)
	assert.Equal(t, "07:15", got)
}

func TestRoundTrip_AlignedTimes(t *testing.T) {
	cal := Default()

	for h := cal.StartHour; h < cal.EndHour; h++ {
		for m := 0; m < 60; m += WidthMinutes {
			at := clock(h, m)
			slot, err := cal.TimeToSlot(at)
			require.NoError(t, err)

			back, err := cal.SlotToTime(slot)
			require.NoError(t, err)
			assert.Equal(t, at.Format("15:04"), back)
		}
	}
}

func TestDurationMinutesToSlots_CeilingLaw(t *testing.T) {
	for m := 1; m <= 15; m++ {
		got, err := DurationMinutesToSlots(m)
		require.NoError(t, err)
		assert.Equal(t, 1, got, "minutes=%d", m)
	}
	for m := 16; m <= 30; m++ {
		got, err := DurationMinutesToSlots(m)
		require.NoError(t, err)
		assert.Equal(t, 2, got, "minutes=%d", m)
	}

	got, err := DurationMinutesToSlots(180)
	require.NoError(t, err)
	assert.Equal(t, 12, got)
}

func TestDurationMinutesToSlots_Invalid(t *testing.T) {
	for _, m := range []int{0, -15} {
		_, err := DurationMinutesToSlots(m)
		var ide *InvalidDurationError
		require.True(t, errors.As(err, &ide))
		assert.Equal(t, m, ide.Minutes)
		assert.ErrorIs(t, err, ErrInvalidDuration)
	}
}

func TestCalendar_LabelsAndContains(t *testing.T) {
	cal := Default()

	labels := cal.Labels()
	require.Len(t, labels, 44)
	assert.Equal(t, "09:00", labels[0])
	assert.Equal(t, "19:45", labels[43])

	assert.True(t, cal.Contains(Range{Start: 40, Length: 4}))
	assert.False(t, cal.Contains(Range{Start: 41, Length: 4}))
	assert.False(t, cal.Contains(Range{Start: -1, Length: 2}))
	assert.False(t, cal.Contains(Range{Start: 3, Length: 0}))
}

func TestRange_Overlaps(t *testing.T) {
	a := Range{Start: 4, Length: 4}

	assert.True(t, a.Overlaps(Range{Start: 6, Length: 2}))
	assert.True(t, a.Overlaps(Range{Start: 0, Length: 5}))
	assert.False(t, a.Overlaps(Range{Start: 8, Length: 2}))
	assert.False(t, a.Overlaps(Range{Start: 0, Length: 4}))
}

func TestClockToSlot(t *testing.T) {
	cal := Default()

	slot, err := cal.ClockToSlot("17:30")
	require.NoError(t, err)
	assert.Equal(t, 34, slot)

	_, err = cal.ClockToSlot("25:00")
	assert.Error(t, err)
	_, err = cal.ClockToSlot("08:45")
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestNewCalendar_Invalid(t *testing.T) {
	_, err := New(20, 9)
	assert.Error(t, err)
	_, err = New(9, 25)
	assert.Error(t, err)
}

func TestSlotStart(t *testing.T) {
	cal := Default()
	date := time.Date(2026, 1, 12, 15, 4, 0, 0, time.UTC)
	assert.Equal(t, clock(10, 15), cal.SlotStart(date, 5))
}
