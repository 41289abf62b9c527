package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	valid := map[string]string{
		"9:00":  "09:00",
		"09:05": "09:05",
		"00:00": "00:00",
		"23:59": "23:59",
		"13:30": "13:30",
	}
	for in, want := range valid {
		got, err := ParseTimeOfDay(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.String())
	}

	for _, in := range []string{"24:00", "9:5", "12:60", "noon", "", "9.30", "-1:00"} {
		_, err := ParseTimeOfDay(in)
		assert.ErrorIs(t, err, ErrInvalidInput, in)
	}
}

func TestTimeOfDayNotDecimal(t *testing.T) {
	// 9:50 is 590 minutes, not 9.5 hours
	tm := MustParseTimeOfDay("9:50")
	assert.Equal(t, 590, tm.Minutes())
	assert.Equal(t, 9, tm.Hour())
	assert.Equal(t, 50, tm.Minute())
}

func TestTimeOfDayJSON(t *testing.T) {
	type payload struct {
		At TimeOfDay `json:"at"`
	}
	b, err := json.Marshal(payload{At: MustParseTimeOfDay("7:15")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"07:15"}`, string(b))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"at":"18:45"}`), &p))
	assert.Equal(t, 18*60+45, p.At.Minutes())

	assert.Error(t, json.Unmarshal([]byte(`{"at":"25:00"}`), &p))
}

func TestTimeOfDayScan(t *testing.T) {
	var tm TimeOfDay
	require.NoError(t, tm.Scan([]byte("10:30")))
	assert.Equal(t, "10:30", tm.String())

	v, err := tm.Value()
	require.NoError(t, err)
	assert.Equal(t, "10:30", v)

	assert.Error(t, tm.Scan(42))
}

func TestDayScheduleValidate(t *testing.T) {
	at := MustParseTimeOfDay
	ptr := func(s string) *TimeOfDay { v := at(s); return &v }

	ok := DaySchedule{Day: Monday, IsAvailable: true, StartTime: at("09:00"), EndTime: at("17:00"), BreakStart: ptr("12:00"), BreakEnd: ptr("13:00")}
	require.NoError(t, ok.Validate())

	bad := []DaySchedule{
		{Day: Monday, StartTime: at("17:00"), EndTime: at("09:00")},
		{Day: Monday, StartTime: at("09:00"), EndTime: at("09:00")},
		{Day: Monday, StartTime: at("09:00"), EndTime: at("17:00"), BreakStart: ptr("12:00")},
		{Day: Monday, StartTime: at("09:00"), EndTime: at("17:00"), BreakStart: ptr("13:00"), BreakEnd: ptr("12:00")},
		{Day: Monday, StartTime: at("09:00"), EndTime: at("17:00"), BreakStart: ptr("08:00"), BreakEnd: ptr("10:00")},
		{Day: Monday, StartTime: at("09:00"), EndTime: at("17:00"), BreakStart: ptr("16:30"), BreakEnd: ptr("17:30")},
		{Day: "Funday", StartTime: at("09:00"), EndTime: at("17:00")},
	}
	for i, d := range bad {
		assert.ErrorIs(t, d.Validate(), ErrInvalidSchedule, "case %d", i)
	}
}

func TestNewWeeklyScheduleRejectsDuplicateDay(t *testing.T) {
	at := MustParseTimeOfDay
	mon := DaySchedule{Day: Monday, IsAvailable: true, StartTime: at("09:00"), EndTime: at("17:00")}

	_, err := NewWeeklySchedule(mon, mon)
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	fri := DaySchedule{Day: Friday, IsAvailable: true, StartTime: at("10:00"), EndTime: at("14:00")}
	ws, err := NewWeeklySchedule(fri, mon)
	require.NoError(t, err)
	assert.Equal(t, 2, ws.Len())
	assert.Equal(t, []Weekday{Monday, Friday}, []Weekday{ws.Days()[0].Day, ws.Days()[1].Day})
}

func TestWeekdayOf(t *testing.T) {
	assert.Equal(t, Wednesday, WeekdayOf(time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)))

	d, err := ParseWeekday("saturday")
	require.NoError(t, err)
	assert.Equal(t, Saturday, d)
	_, err = ParseWeekday("sat")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStatusTransitions(t *testing.T) {
	assert.NoError(t, ValidateTransition(StatusPending, StatusConfirmed))
	assert.NoError(t, ValidateTransition(StatusConfirmed, StatusCompleted))
	assert.NoError(t, ValidateTransition(StatusConfirmed, StatusNoShow))
	assert.ErrorIs(t, ValidateTransition(StatusPending, StatusCompleted), ErrInvalidStatusTransition)
	assert.ErrorIs(t, ValidateTransition(StatusCompleted, StatusCancelled), ErrInvalidStatusTransition)
	assert.ErrorIs(t, ValidateTransition(StatusCancelled, StatusPending), ErrInvalidStatusTransition)
	assert.ErrorIs(t, ValidateTransition(StatusPending, "archived"), ErrInvalidInput)

	assert.True(t, StatusNoShow.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusCancelled.HoldsSlot())
	assert.True(t, StatusPending.HoldsSlot())
}

func TestStaffRatingArithmetic(t *testing.T) {
	r := StaffRating{}
	assert.Equal(t, "New", r.Formatted())

	r = r.WithAdded(4).WithAdded(5).WithAdded(3)
	assert.InDelta(t, 4.0, r.Average, 1e-9)
	assert.Equal(t, 3, r.Count)

	r, err := r.WithRemoved(5)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, r.Average, 1e-9)
	assert.Equal(t, 2, r.Count)
	assert.Equal(t, "3.5", r.Formatted())

	r, err = r.WithChanged(3, 5)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, r.Average, 1e-9)

	r, err = r.WithRemoved(4)
	require.NoError(t, err)
	r, err = r.WithRemoved(5)
	require.NoError(t, err)
	assert.Equal(t, StaffRating{}, r)

	_, err = r.WithRemoved(5)
	assert.ErrorIs(t, err, ErrInconsistentState)
	_, err = r.WithChanged(1, 2)
	assert.ErrorIs(t, err, ErrInconsistentState)
}
