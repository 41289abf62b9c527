// Package availability turns a staff member's weekly schedule into bookable
// start times. Every function here is pure.
package availability

import (
	"fmt"
	"iter"

	"eclat-salon/internal/core/domain"
)

// Interval is a half-open busy window [Start, End) in minutes of the day
type Interval struct {
	Start domain.TimeOfDay
	End   domain.TimeOfDay
}

// Overlaps reports whether [start, end) intersects the interval
func (iv Interval) Overlaps(start, end domain.TimeOfDay) bool {
	return start < iv.End && iv.Start < end
}

// IsAvailableAt reports whether the staff member works at t on day.
// With a break the open window is [start, breakStart) ∪ [breakEnd, end];
// without one it is [start, end].
func IsAvailableAt(schedule domain.WeeklySchedule, day domain.Weekday, t domain.TimeOfDay) bool {
	d, ok := schedule.Day(day)
	if !ok || !d.IsAvailable {
		return false
	}
	if t < d.StartTime || t > d.EndTime {
		return false
	}
	if d.HasBreak() && t >= *d.BreakStart && t < *d.BreakEnd {
		return false
	}
	return true
}

// AvailableSlots lazily yields slot start times for day, stepping by duration
// from the start of the working window. A slot never runs past the end of the
// day and never overlaps the break; a slot that would is skipped and the walk
// resumes at the break end. The returned sequence can be ranged over repeatedly.
func AvailableSlots(schedule domain.WeeklySchedule, day domain.Weekday, duration int) (iter.Seq[domain.TimeOfDay], error) {
	if duration <= 0 {
		return nil, fmt.Errorf("%w: %d minutes", domain.ErrInvalidDuration, duration)
	}

	d, ok := schedule.Day(day)
	if !ok || !d.IsAvailable {
		return func(func(domain.TimeOfDay) bool) {}, nil
	}

	step := domain.TimeOfDay(duration)
	return func(yield func(domain.TimeOfDay) bool) {
		cursor := d.StartTime
		for cursor+step <= d.EndTime {
			if d.HasBreak() && cursor < *d.BreakEnd && cursor+step > *d.BreakStart {
				cursor = *d.BreakEnd
				continue
			}
			if !yield(cursor) {
				return
			}
			cursor += step
		}
	}, nil
}

// FreeSlots filters out slots whose [slot, slot+duration) overlaps any busy interval
func FreeSlots(slots iter.Seq[domain.TimeOfDay], duration int, busy []Interval) iter.Seq[domain.TimeOfDay] {
	step := domain.TimeOfDay(duration)
	return func(yield func(domain.TimeOfDay) bool) {
		for slot := range slots {
			if overlapsAny(slot, slot+step, busy) {
				continue
			}
			if !yield(slot) {
				return
			}
		}
	}
}

// NotBefore drops slots that start before earliest, for same-day lookups
func NotBefore(slots iter.Seq[domain.TimeOfDay], earliest domain.TimeOfDay) iter.Seq[domain.TimeOfDay] {
	return func(yield func(domain.TimeOfDay) bool) {
		for slot := range slots {
			if slot < earliest {
				continue
			}
			if !yield(slot) {
				return
			}
		}
	}
}

// Contains reports whether t is one of the yielded slots
func Contains(slots iter.Seq[domain.TimeOfDay], t domain.TimeOfDay) bool {
	for slot := range slots {
		if slot == t {
			return true
		}
		if slot > t {
			return false
		}
	}
	return false
}

// Format renders the slots as HH:MM strings
func Format(slots iter.Seq[domain.TimeOfDay]) []string {
	out := []string{}
	for slot := range slots {
		out = append(out, slot.String())
	}
	return out
}

func overlapsAny(start, end domain.TimeOfDay, busy []Interval) bool {
	for _, b := range busy {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}
