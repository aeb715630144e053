// Package slots converts between wall-clock time and fixed 15-minute slot indices.
package slots

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Width is the length of one slot.
const Width = 15 * time.Minute

// WidthMinutes is Width in minutes.
const WidthMinutes = 15

const (
	DefaultStartHour = 9
	DefaultEndHour   = 20
)

var (
	// ErrOutOfRange is matched by every OutOfRangeError.
	ErrOutOfRange = errors.New("out of range")
	// ErrInvalidDuration is matched by every InvalidDurationError.
	ErrInvalidDuration = errors.New("invalid duration")
)

// OutOfRangeError reports a time or slot outside the business day.
type OutOfRangeError struct {
	Value string
	Min   string
	Max   string
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s is outside business day %s-%s", e.Value, e.Min, e.Max)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// InvalidDurationError reports a non-positive duration.
type InvalidDurationError struct {
	Minutes int
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("duration must be positive, got %d minutes", e.Minutes)
}

func (e *InvalidDurationError) Is(target error) bool { return target == ErrInvalidDuration }

// Calendar is a business day window [StartHour, EndHour) cut into slots.
type Calendar struct {
	StartHour int
	EndHour   int
}

// Default returns the 09:00-20:00 calendar.
func Default() Calendar {
	return Calendar{StartHour: DefaultStartHour, EndHour: DefaultEndHour}
}

// New validates hours and returns a calendar.
func New(startHour, endHour int) (Calendar, error) {
	if startHour < 0 || endHour > 24 || endHour <= startHour {
		return Calendar{}, fmt.Errorf("invalid business day %d-%d", startHour, endHour)
	}
	return Calendar{StartHour: startHour, EndHour: endHour}, nil
}

// SlotsPerDay returns the number of slots in the business day.
func (c Calendar) SlotsPerDay() int {
	return (c.EndHour - c.StartHour) * 60 / WidthMinutes
}

// TimeToSlot maps a time of day to its slot index.
func (c Calendar) TimeToSlot(t time.Time) (int, error) {
	if t.Hour() < c.StartHour || t.Hour() >= c.EndHour {
		return 0, &OutOfRangeError{Value: t.Format("15:04"), Min: c.startLabel(), Max: c.endLabel()}
	}
	return (t.Hour()-c.StartHour)*4 + t.Minute()/WidthMinutes, nil
}

// ClockToSlot is TimeToSlot for an "HH:MM" string.
func (c Calendar) ClockToSlot(clock string) (int, error) {
	h, m, err := ParseClock(clock)
	if err != nil {
		return 0, err
	}
	return c.TimeToSlot(time.Date(0, 1, 1, h, m, 0, 0, time.UTC))
}

// SlotToTime renders a slot start as "HH:MM". SlotsPerDay itself is accepted
// and renders the end of the business day.
func (c Calendar) SlotToTime(slot int) (string, error) {
	if slot < 0 || slot > c.SlotsPerDay() {
		return "", &OutOfRangeError{Value: fmt.Sprintf("slot %d", slot), Min: "0", Max: strconv.Itoa(c.SlotsPerDay())}
	}
	minutes := c.StartHour*60 + slot*WidthMinutes
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), nil
}

// SlotStart returns the wall-clock start of slot on date's day.
func (c Calendar) SlotStart(date time.Time, slot int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.StartHour, 0, 0, 0, date.Location()).Add(time.Duration(slot) * Width)
}

// Labels returns the "HH:MM" start of every slot in the day.
func (c Calendar) Labels() []string {
	n := c.SlotsPerDay()
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		labels[i], _ = c.SlotToTime(i)
	}
	return labels
}

// Contains reports whether r lies fully inside the business day.
func (c Calendar) Contains(r Range) bool {
	return r.Start >= 0 && r.Length > 0 && r.End() <= c.SlotsPerDay()
}

func (c Calendar) startLabel() string { return fmt.Sprintf("%02d:00", c.StartHour) }
func (c Calendar) endLabel() string   { return fmt.Sprintf("%02d:00", c.EndHour) }

// DurationMinutesToSlots rounds minutes up to whole slots.
func DurationMinutesToSlots(minutes int) (int, error) {
	if minutes <= 0 {
		return 0, &InvalidDurationError{Minutes: minutes}
	}
	return int(math.Ceil(float64(minutes) / WidthMinutes)), nil
}

// Range is a half-open slot interval [Start, Start+Length).
type Range struct {
	Start  int
	Length int
}

// End returns the exclusive end slot.
func (r Range) End() int {
	return r.Start + r.Length
}

// Overlaps reports whether two ranges share at least one slot.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End() && other.Start < r.End()
}

// ParseClock parses "HH:MM" into hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time format: %s", s)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}

	return hour, minute, nil
}
