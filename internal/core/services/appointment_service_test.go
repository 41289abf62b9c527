package services

import (
	"context"
	"testing"
	"time"

	"eclat-salon/internal/adapters/persistence/models"
	"eclat-salon/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testNow is Monday 2026-10-19 08:00 UTC
var testNow = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

type fixture struct {
	users    *fakeUsers
	tokens   *fakeTokens
	services *fakeServices
	staff    *fakeStaff
	appts    *fakeAppointments
	reviews  *fakeReviews
	cache    *recordingCache
	notifier *fakeNotifier
	ratings  *fakeRatings

	avail    *AvailabilityService
	booking  *AppointmentService
	reviewer *ReviewService

	client, other, admin uint
}

// weekdaySchedule is Monday to Friday 09:00-17:00 with lunch 12:00-13:00
func weekdaySchedule() []models.StaffSchedule {
	lunch, back := domain.MustParseTimeOfDay("12:00"), domain.MustParseTimeOfDay("13:00")
	rows := make([]models.StaffSchedule, 0, 5)
	for _, day := range domain.Weekdays[:5] {
		rows = append(rows, models.StaffSchedule{
			StaffID:     1,
			Day:         string(day),
			IsAvailable: true,
			StartTime:   domain.MustParseTimeOfDay("09:00"),
			EndTime:     domain.MustParseTimeOfDay("17:00"),
			BreakStart:  &lunch,
			BreakEnd:    &back,
		})
	}
	return rows
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		users:  newFakeUsers(),
		tokens: &fakeTokens{},
		services: &fakeServices{byID: map[uint]*models.Service{
			1: {ID: 1, Title: "Signature Haircut", Duration: 60, Price: 65, IsActive: true},
			2: {ID: 2, Title: "Retired Treatment", Duration: 30, Price: 20, IsActive: false},
		}},
		staff: &fakeStaff{
			byID: map[uint]*models.Staff{
				1: {ID: 1, Name: "Camille Laurent", Email: "camille@eclatsalon.com", IsAvailable: true, Schedule: weekdaySchedule()},
			},
			performs: map[[2]uint]bool{{1, 1}: true, {1, 2}: true},
		},
		appts:    newFakeAppointments(),
		reviews:  newFakeReviews(),
		cache:    newRecordingCache(),
		notifier: &fakeNotifier{},
		ratings:  &fakeRatings{},
	}

	for _, u := range []*models.User{
		{Name: "Ana Client", Email: "ana@example.com", Role: "user", IsActive: true, NotifyEmail: true, Reminders: true},
		{Name: "Ben Other", Email: "ben@example.com", Role: "user", IsActive: true},
		{Name: "Salon Admin", Email: "admin@example.com", Role: "admin", IsActive: true},
	} {
		require.NoError(t, f.users.Create(ctx, u))
	}
	f.client, f.other, f.admin = 1, 2, 3

	f.avail = NewAvailabilityService(f.staff, f.services, f.appts, f.cache, nil, time.UTC, zap.NewNop())
	f.avail.now = func() time.Time { return testNow }
	f.booking = NewAppointmentService(f.appts, f.users, f.avail, f.notifier, nil, 0, zap.NewNop())
	f.reviewer = NewReviewService(f.reviews, f.appts, f.ratings, nil, zap.NewNop())
	return f
}

// seed stores an appointment directly, bypassing booking rules
func (f *fixture) seed(t *testing.T, date, at string, duration int, status domain.AppointmentStatus) *models.Appointment {
	t.Helper()
	d, err := time.ParseInLocation(models.DateLayout, date, time.UTC)
	require.NoError(t, err)
	tod := domain.MustParseTimeOfDay(at)

	appt := &models.Appointment{
		UserID:    f.client,
		ServiceID: 1,
		StaffID:   1,
		Date:      d,
		Time:      tod,
		Duration:  duration,
		Status:    string(status),
	}
	if status.HoldsSlot() {
		key := models.SlotKeyFor(1, d, tod)
		appt.SlotKey = &key
	}
	require.NoError(t, f.appts.Create(context.Background(), appt))
	return appt
}

func (f *fixture) book(date, at string) (*models.AppointmentResponse, error) {
	return f.booking.Book(context.Background(), f.client, &BookInput{ServiceID: 1, StaffID: 1, Date: date, Time: at})
}

func TestSlotsExcludeHeldAppointments(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "2026-10-20", "10:00", 60, domain.StatusConfirmed)

	res, err := f.avail.Slots(context.Background(), 1, "2026-10-20", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.Tuesday, res.Day)
	assert.Equal(t, 60, res.Duration)
	assert.Equal(t, []string{"09:00", "11:00", "13:00", "14:00", "15:00", "16:00"}, res.Slots)

	cached, ok := f.cache.Get(context.Background(), 1, "2026-10-20", 60)
	require.True(t, ok)
	assert.Equal(t, res.Slots, cached)
}

func TestSlotsCancelledAppointmentFreesSlot(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "2026-10-20", "10:00", 60, domain.StatusCancelled)

	res, err := f.avail.Slots(context.Background(), 1, "2026-10-20", 1, 0)
	require.NoError(t, err)
	assert.Contains(t, res.Slots, "10:00")
	assert.Len(t, res.Slots, 7)
}

func TestSlotsEmptyDays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	past, err := f.avail.Slots(ctx, 1, "2026-10-16", 1, 0)
	require.NoError(t, err)
	assert.NotNil(t, past.Slots)
	assert.Empty(t, past.Slots)

	saturday, err := f.avail.Slots(ctx, 1, "2026-10-24", 1, 0)
	require.NoError(t, err)
	assert.Empty(t, saturday.Slots)
}

func TestSlotsTodayDropElapsedTimes(t *testing.T) {
	f := newFixture(t)
	f.avail.now = func() time.Time { return time.Date(2026, 10, 19, 10, 30, 0, 0, time.UTC) }

	res, err := f.avail.Slots(context.Background(), 1, "2026-10-19", 0, 60)
	require.NoError(t, err)
	assert.Equal(t, []string{"11:00", "13:00", "14:00", "15:00", "16:00"}, res.Slots)
}

func TestSlotsErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.avail.Slots(ctx, 1, "2026-10-20", 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)

	_, err = f.avail.Slots(ctx, 1, "20-10-2026", 1, 0)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = f.avail.Slots(ctx, 9, "2026-10-20", 1, 0)
	assert.ErrorIs(t, err, ErrStaffNotFound)

	f.services.byID[3] = &models.Service{ID: 3, Duration: 45, IsActive: true}
	_, err = f.avail.Slots(ctx, 1, "2026-10-20", 3, 0)
	assert.ErrorIs(t, err, ErrStaffDoesNotPerform)
}

func TestIsAvailableAtAndAvailableStaff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.avail.IsAvailableAt(ctx, 1, "monday", "12:30")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.avail.IsAvailableAt(ctx, 1, "Monday", "17:00")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.avail.IsAvailableAt(ctx, 1, "Funday", "10:00")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	staff, err := f.avail.AvailableStaff(ctx, 1, "Tuesday", "10:00")
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Nil(t, staff[0].Schedule)

	staff, err = f.avail.AvailableStaff(ctx, 1, "Sunday", "10:00")
	require.NoError(t, err)
	assert.Empty(t, staff)
}

func TestBookCreatesPendingAppointment(t *testing.T) {
	f := newFixture(t)

	resp, err := f.book("2026-10-20", "10:00")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, "2026-10-20", resp.Date)
	assert.Equal(t, "11:00", resp.EndTime)
	assert.Equal(t, 65.0, resp.Price)
	assert.NotEmpty(t, resp.Reference)

	stored, err := f.appts.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.SlotKey)
	assert.Equal(t, "1|2026-10-20|10:00", *stored.SlotKey)

	assert.Equal(t, []uint{resp.ID}, f.notifier.confirmed)
	assert.Contains(t, f.cache.invalidated, "2026-10-20")
}

func TestBookRejections(t *testing.T) {
	f := newFixture(t)

	_, err := f.book("2026-10-16", "10:00")
	assert.ErrorIs(t, err, ErrAppointmentInThePast)

	_, err = f.book("2026-10-20", "09:30")
	assert.ErrorIs(t, err, ErrNotAnAvailableSlot)

	_, err = f.book("2026-10-20", "12:00")
	assert.ErrorIs(t, err, ErrNotAnAvailableSlot)

	_, err = f.book("2026-10-24", "10:00")
	assert.ErrorIs(t, err, ErrNotAnAvailableSlot)

	_, err = f.booking.Book(context.Background(), f.client, &BookInput{ServiceID: 2, StaffID: 1, Date: "2026-10-20", Time: "10:00"})
	assert.ErrorIs(t, err, ErrServiceInactive)

	assert.Empty(t, f.notifier.confirmed)
}

func TestBookOverlapIsSlotConflict(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "2026-10-20", "10:00", 90, domain.StatusConfirmed)

	_, err := f.book("2026-10-20", "11:00")
	assert.ErrorIs(t, err, domain.ErrSlotConflict)

	_, err = f.book("2026-10-20", "13:00")
	assert.NoError(t, err)
}

func TestBookSameSlotTwice(t *testing.T) {
	f := newFixture(t)

	_, err := f.book("2026-10-20", "14:00")
	require.NoError(t, err)

	_, err = f.book("2026-10-20", "14:00")
	assert.ErrorIs(t, err, domain.ErrSlotConflict)
}

func TestBookCommitConflictIsSlotConflict(t *testing.T) {
	f := newFixture(t)
	f.appts.createErr = domain.ErrSlotConflict

	_, err := f.book("2026-10-20", "14:00")
	assert.ErrorIs(t, err, domain.ErrSlotConflict)
}

func TestCancelFreesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked, err := f.book("2026-10-20", "10:00")
	require.NoError(t, err)

	resp, err := f.booking.Cancel(ctx, booked.ID, Actor{UserID: f.client}, &CancelInput{Reason: "feeling unwell"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), resp.Status)
	require.NotNil(t, resp.CancelledBy)
	assert.Equal(t, string(domain.CancelledByClient), *resp.CancelledBy)

	stored, err := f.appts.GetByID(ctx, booked.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.SlotKey)
	assert.Equal(t, []uint{booked.ID}, f.notifier.cancelled)

	_, err = f.book("2026-10-20", "10:00")
	assert.NoError(t, err)

	_, err = f.booking.Cancel(ctx, booked.ID, Actor{UserID: f.client}, &CancelInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestCancelOwnershipAndNotice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.booking.cancelNotice = 24 * time.Hour

	soon, err := f.book("2026-10-19", "09:00")
	require.NoError(t, err)

	_, err = f.booking.Cancel(ctx, soon.ID, Actor{UserID: f.other}, &CancelInput{})
	assert.ErrorIs(t, err, ErrNotAppointmentOwner)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.booking.Cancel(ctx, soon.ID, Actor{UserID: f.client}, &CancelInput{})
	assert.ErrorIs(t, err, ErrCancelTooLate)

	resp, err := f.booking.Cancel(ctx, soon.ID, Actor{UserID: f.admin, IsAdmin: true}, &CancelInput{})
	require.NoError(t, err)
	assert.Equal(t, string(domain.CancelledByAdmin), *resp.CancelledBy)
}

func TestUpdateStatusFollowsTransitionTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked, err := f.book("2026-10-20", "10:00")
	require.NoError(t, err)

	for _, next := range []string{"confirmed", "completed"} {
		resp, err := f.booking.UpdateStatus(ctx, booked.ID, &UpdateStatusInput{Status: next})
		require.NoError(t, err)
		assert.Equal(t, next, resp.Status)
	}

	_, err = f.booking.UpdateStatus(ctx, booked.ID, &UpdateStatusInput{Status: "pending"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	paid := domain.PaymentPaid
	resp, err := f.booking.UpdateStatus(ctx, booked.ID, &UpdateStatusInput{Status: "completed", PaymentStatus: &paid})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, resp.PaymentStatus)
}

func TestAdminCancelThroughStatusClearsSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked, err := f.book("2026-10-20", "15:00")
	require.NoError(t, err)

	_, err = f.booking.UpdateStatus(ctx, booked.ID, &UpdateStatusInput{Status: "cancelled", Reason: "stylist ill"})
	require.NoError(t, err)

	stored, err := f.appts.GetByID(ctx, booked.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.SlotKey)
	assert.Equal(t, "stylist ill", stored.CancellationReason)
}

func TestRescheduleMovesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked, err := f.book("2026-10-20", "10:00")
	require.NoError(t, err)

	resp, err := f.booking.Reschedule(ctx, booked.ID, Actor{UserID: f.client}, &RescheduleInput{Date: "2026-10-21", Time: "14:00"})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-21", resp.Date)
	require.NotNil(t, resp.RescheduledFromTime)
	assert.Equal(t, "10:00", resp.RescheduledFromTime.String())
	assert.Equal(t, []uint{booked.ID}, f.notifier.rescheduled)

	stored, err := f.appts.GetByID(ctx, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, "1|2026-10-21|14:00", *stored.SlotKey)

	_, err = f.book("2026-10-20", "10:00")
	assert.NoError(t, err)

	_, err = f.booking.Reschedule(ctx, booked.ID, Actor{UserID: f.client}, &RescheduleInput{Date: "2026-10-20", Time: "10:00"})
	assert.ErrorIs(t, err, domain.ErrSlotConflict)
}

func TestGetHonoursOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked, err := f.book("2026-10-20", "10:00")
	require.NoError(t, err)

	_, err = f.booking.Get(ctx, booked.ID, Actor{UserID: f.other}, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.booking.Get(ctx, booked.ID, Actor{UserID: f.admin, IsAdmin: true}, "staff,service")
	assert.NoError(t, err)

	_, err = f.booking.Get(ctx, booked.ID, Actor{UserID: f.client}, "payments")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.booking.Get(ctx, 99, Actor{UserID: f.client}, "")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestDueRemindersWithinLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	soon := f.seed(t, "2026-10-20", "07:30", 60, domain.StatusConfirmed)
	f.seed(t, "2026-10-20", "10:00", 60, domain.StatusConfirmed)
	f.seed(t, "2026-10-19", "07:00", 60, domain.StatusConfirmed)

	due, err := f.booking.DueReminders(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, soon.ID, due[0].ID)

	require.NoError(t, f.booking.SendReminder(ctx, due[0]))
	assert.Equal(t, []uint{soon.ID}, f.notifier.reminded)
	assert.Equal(t, testNow, f.appts.reminded[soon.ID])
}
