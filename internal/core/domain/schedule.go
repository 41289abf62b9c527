package domain

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a day name as stored on staff schedules
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays in calendar order, Monday first
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// WeekdayOf returns the weekday a calendar date falls on
func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.Weekday().String())
}

// ParseWeekday accepts a day name in any letter case
func ParseWeekday(s string) (Weekday, error) {
	for _, d := range Weekdays {
		if strings.EqualFold(string(d), strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: unknown weekday %q", ErrInvalidInput, s)
}

// Valid reports whether d is one of the seven day names
func (d Weekday) Valid() bool {
	for _, w := range Weekdays {
		if d == w {
			return true
		}
	}
	return false
}

// DaySchedule is one day's working window with an optional break
type DaySchedule struct {
	Day         Weekday
	IsAvailable bool
	StartTime   TimeOfDay
	EndTime     TimeOfDay
	BreakStart  *TimeOfDay
	BreakEnd    *TimeOfDay
}

// HasBreak reports whether a break window is set
func (d DaySchedule) HasBreak() bool {
	return d.BreakStart != nil && d.BreakEnd != nil
}

// Validate checks the chronological bounds of the day
func (d DaySchedule) Validate() error {
	if !d.Day.Valid() {
		return fmt.Errorf("%w: unknown weekday %q", ErrInvalidSchedule, d.Day)
	}
	if !d.StartTime.Valid() || !d.EndTime.Valid() {
		return fmt.Errorf("%w: %s: time out of range", ErrInvalidSchedule, d.Day)
	}
	if d.StartTime >= d.EndTime {
		return fmt.Errorf("%w: %s: start %s must be before end %s", ErrInvalidSchedule, d.Day, d.StartTime, d.EndTime)
	}
	if (d.BreakStart == nil) != (d.BreakEnd == nil) {
		return fmt.Errorf("%w: %s: break start and end must be set together", ErrInvalidSchedule, d.Day)
	}
	if !d.HasBreak() {
		return nil
	}
	bs, be := *d.BreakStart, *d.BreakEnd
	if bs >= be {
		return fmt.Errorf("%w: %s: break start %s must be before break end %s", ErrInvalidSchedule, d.Day, bs, be)
	}
	if bs < d.StartTime || be > d.EndTime {
		return fmt.Errorf("%w: %s: break %s-%s outside working hours %s-%s",
			ErrInvalidSchedule, d.Day, bs, be, d.StartTime, d.EndTime)
	}
	return nil
}

// WeeklySchedule holds at most one DaySchedule per weekday
type WeeklySchedule struct {
	days map[Weekday]DaySchedule
}

// NewWeeklySchedule validates each day and rejects duplicates
func NewWeeklySchedule(days ...DaySchedule) (WeeklySchedule, error) {
	ws := WeeklySchedule{days: make(map[Weekday]DaySchedule, len(days))}
	for _, d := range days {
		if err := d.Validate(); err != nil {
			return WeeklySchedule{}, err
		}
		if _, dup := ws.days[d.Day]; dup {
			return WeeklySchedule{}, fmt.Errorf("%w: duplicate entry for %s", ErrInvalidSchedule, d.Day)
		}
		ws.days[d.Day] = d
	}
	return ws, nil
}

// Day returns the entry for a weekday, if any
func (w WeeklySchedule) Day(day Weekday) (DaySchedule, bool) {
	d, ok := w.days[day]
	return d, ok
}

// Days returns the entries in calendar order
func (w WeeklySchedule) Days() []DaySchedule {
	out := make([]DaySchedule, 0, len(w.days))
	for _, day := range Weekdays {
		if d, ok := w.days[day]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Len is the number of configured days
func (w WeeklySchedule) Len() int { return len(w.days) }
