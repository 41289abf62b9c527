package availability

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eclat-salon/internal/core/domain"
)

func tod(s string) domain.TimeOfDay { return domain.MustParseTimeOfDay(s) }

func todPtr(s string) *domain.TimeOfDay {
	t := tod(s)
	return &t
}

func mondayWithBreak(t *testing.T, end string) domain.WeeklySchedule {
	t.Helper()
	ws, err := domain.NewWeeklySchedule(domain.DaySchedule{
		Day:         domain.Monday,
		IsAvailable: true,
		StartTime:   tod("09:00"),
		EndTime:     tod(end),
		BreakStart:  todPtr("11:00"),
		BreakEnd:    todPtr("11:30"),
	})
	require.NoError(t, err)
	return ws
}

func collect(t *testing.T, ws domain.WeeklySchedule, day domain.Weekday, duration int) []string {
	t.Helper()
	seq, err := AvailableSlots(ws, day, duration)
	require.NoError(t, err)
	return Format(seq)
}

func TestAvailableSlots_BreakJump(t *testing.T) {
	// 12:30+60 overruns 13:00, so the last slot is 11:30
	assert.Equal(t, []string{"09:00", "10:00", "11:30"}, collect(t, mondayWithBreak(t, "13:00"), domain.Monday, 60))
	assert.Equal(t, []string{"09:00", "10:00", "11:30", "12:30"}, collect(t, mondayWithBreak(t, "13:30"), domain.Monday, 60))
}

func TestAvailableSlots_NoBreak(t *testing.T) {
	ws, err := domain.NewWeeklySchedule(domain.DaySchedule{
		Day: domain.Tuesday, IsAvailable: true, StartTime: tod("10:00"), EndTime: tod("12:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"10:00", "10:45"}, collect(t, ws, domain.Tuesday, 45))
	assert.Equal(t, []string{"10:00"}, collect(t, ws, domain.Tuesday, 120))
	assert.Empty(t, collect(t, ws, domain.Tuesday, 121))
}

func TestAvailableSlots_NoBreakCountAndSpacing(t *testing.T) {
	ws, err := domain.NewWeeklySchedule(domain.DaySchedule{
		Day: domain.Wednesday, IsAvailable: true, StartTime: tod("09:00"), EndTime: tod("17:00"),
	})
	require.NoError(t, err)
	span := tod("17:00").Minutes() - tod("09:00").Minutes()

	for _, duration := range []int{1, 5, 7, 15, 20, 25, 30, 45, 50, 60, 90, 240, 479, 480, 481} {
		seq, err := AvailableSlots(ws, domain.Wednesday, duration)
		require.NoError(t, err)
		slots := slices.Collect(seq)

		require.Len(t, slots, span/duration, "slot count for %d", duration)
		if len(slots) == 0 {
			continue
		}
		assert.Equal(t, tod("09:00"), slots[0], "first slot for %d", duration)
		for i := 1; i < len(slots); i++ {
			assert.Equal(t, duration, slots[i].Minutes()-slots[i-1].Minutes(), "spacing at %d for %d", i, duration)
		}
	}
}

func TestAvailableSlots_UnavailableOrMissingDay(t *testing.T) {
	ws, err := domain.NewWeeklySchedule(domain.DaySchedule{
		Day: domain.Sunday, IsAvailable: false, StartTime: tod("09:00"), EndTime: tod("17:00"),
	})
	require.NoError(t, err)

	assert.Empty(t, collect(t, ws, domain.Sunday, 30))
	assert.Empty(t, collect(t, ws, domain.Monday, 30))
	assert.Empty(t, collect(t, domain.WeeklySchedule{}, domain.Monday, 30))
}

func TestAvailableSlots_InvalidDuration(t *testing.T) {
	ws := mondayWithBreak(t, "13:00")
	for _, d := range []int{0, -15} {
		_, err := AvailableSlots(ws, domain.Monday, d)
		assert.ErrorIs(t, err, domain.ErrInvalidDuration)
	}
}

func TestAvailableSlots_Properties(t *testing.T) {
	ws := mondayWithBreak(t, "18:00")
	day, _ := ws.Day(domain.Monday)

	for _, duration := range []int{5, 15, 20, 30, 45, 60, 90, 120, 240} {
		seq, err := AvailableSlots(ws, domain.Monday, duration)
		require.NoError(t, err)

		first := slices.Collect(seq)
		for _, slot := range first {
			end := slot + domain.TimeOfDay(duration)
			assert.LessOrEqual(t, end, day.EndTime, "slot %s overruns end for %d", slot, duration)
			assert.GreaterOrEqual(t, slot, day.StartTime)
			overlapsBreak := slot < *day.BreakEnd && end > *day.BreakStart
			assert.False(t, overlapsBreak, "slot %s overlaps break for %d", slot, duration)
		}
		assert.True(t, slices.IsSorted(first))

		// restartable: a second walk yields the same sequence
		assert.Equal(t, first, slices.Collect(seq))
	}
}

func TestAvailableSlots_EarlyStop(t *testing.T) {
	seq, err := AvailableSlots(mondayWithBreak(t, "18:00"), domain.Monday, 30)
	require.NoError(t, err)

	var got []domain.TimeOfDay
	for slot := range seq {
		got = append(got, slot)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []domain.TimeOfDay{tod("09:00"), tod("09:30")}, got)
}

func TestIsAvailableAt(t *testing.T) {
	ws := mondayWithBreak(t, "13:00")

	cases := []struct {
		at   string
		want bool
	}{
		{"08:59", false},
		{"09:00", true},
		{"10:59", true},
		{"11:00", false},
		{"11:29", false},
		{"11:30", true},
		{"13:00", true},
		{"13:01", false},
	}
	for _, tc := range cases {
		t.Run(tc.at, func(t *testing.T) {
			assert.Equal(t, tc.want, IsAvailableAt(ws, domain.Monday, tod(tc.at)))
		})
	}

	assert.False(t, IsAvailableAt(ws, domain.Tuesday, tod("10:00")))
}

func TestIsAvailableAt_NoBreakInclusiveEnd(t *testing.T) {
	ws, err := domain.NewWeeklySchedule(domain.DaySchedule{
		Day: domain.Friday, IsAvailable: true, StartTime: tod("09:00"), EndTime: tod("17:00"),
	})
	require.NoError(t, err)

	assert.True(t, IsAvailableAt(ws, domain.Friday, tod("17:00")))
	assert.True(t, IsAvailableAt(ws, domain.Friday, tod("12:00")))
	assert.False(t, IsAvailableAt(ws, domain.Friday, tod("17:01")))
}

func TestFreeSlots(t *testing.T) {
	seq, err := AvailableSlots(mondayWithBreak(t, "13:30"), domain.Monday, 60)
	require.NoError(t, err)

	busy := []Interval{
		{Start: tod("10:00"), End: tod("11:00")},
		// half-open: ends exactly where 12:30 starts
		{Start: tod("11:45"), End: tod("12:30")},
	}
	assert.Equal(t, []string{"09:00", "12:30"}, Format(FreeSlots(seq, 60, busy)))

	assert.Equal(t, []string{"09:00", "10:00", "11:30", "12:30"}, Format(FreeSlots(seq, 60, nil)))
}

func TestNotBeforeAndContains(t *testing.T) {
	seq, err := AvailableSlots(mondayWithBreak(t, "13:30"), domain.Monday, 60)
	require.NoError(t, err)

	assert.Equal(t, []string{"11:30", "12:30"}, Format(NotBefore(seq, tod("10:01"))))
	assert.True(t, Contains(seq, tod("11:30")))
	assert.False(t, Contains(seq, tod("11:00")))
	assert.False(t, Contains(seq, tod("13:30")))
}

func TestFormatEmpty(t *testing.T) {
	assert.Equal(t, []string{}, Format(func(func(domain.TimeOfDay) bool) {}))
}
