package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"eclat-salon/internal/adapters/persistence/models"
	"eclat-salon/internal/adapters/persistence/repositories"
	"eclat-salon/internal/core/domain"

	"gorm.io/gorm"
)

// fakeUsers is an in-memory UserRepository
type fakeUsers struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*models.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[uint]*models.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, other := range f.byID {
		if other.Email == u.Email {
			return domain.ErrDuplicateEntry
		}
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) Update(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) List(context.Context, repositories.UserFilter, int, int) ([]*models.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

// fakeTokens is an in-memory RefreshTokenRepository
type fakeTokens struct {
	mu     sync.Mutex
	nextID uint
	rows   []*models.RefreshToken
}

func (f *fakeTokens) Create(_ context.Context, t *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t.ID = f.nextID
	f.rows = append(f.rows, t)
	return nil
}

func (f *fakeTokens) GetByTokenHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.rows {
		if t.TokenHash == hash {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTokens) Rotate(ctx context.Context, oldID uint, next *models.RefreshToken) error {
	f.mu.Lock()
	now := time.Now()
	for _, t := range f.rows {
		if t.ID == oldID {
			t.RevokedAt = &now
		}
	}
	f.mu.Unlock()
	return f.Create(ctx, next)
}

func (f *fakeTokens) RevokeByTokenHash(_ context.Context, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, t := range f.rows {
		if t.TokenHash == hash {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeTokens) RevokeAllByUserID(_ context.Context, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, t := range f.rows {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeTokens) DeleteExpired(context.Context) (int64, error) { return 0, nil }

func (f *fakeTokens) CountActiveByUserID(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, t := range f.rows {
		if t.UserID == userID && t.RevokedAt == nil {
			n++
		}
	}
	return n, nil
}

// fakeServices is an in-memory ServiceRepository
type fakeServices struct {
	byID map[uint]*models.Service
}

func (f *fakeServices) Create(_ context.Context, s *models.Service) error {
	s.ID = uint(len(f.byID) + 1)
	f.byID[s.ID] = s
	return nil
}

func (f *fakeServices) GetByID(_ context.Context, id uint, _ ...string) (*models.Service, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeServices) Update(_ context.Context, s *models.Service) error {
	f.byID[s.ID] = s
	return nil
}

func (f *fakeServices) Delete(_ context.Context, id uint) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeServices) List(context.Context, repositories.ServiceFilter, int, int, ...string) ([]*models.Service, int64, error) {
	out := make([]*models.Service, 0, len(f.byID))
	for _, s := range f.byID {
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (f *fakeServices) ReplaceStaff(context.Context, *models.Service, []uint) error { return nil }

// fakeStaff is an in-memory StaffRepository; schedules are always loaded
type fakeStaff struct {
	byID     map[uint]*models.Staff
	performs map[[2]uint]bool
	replaced map[uint][]models.StaffSchedule
}

func (f *fakeStaff) Create(_ context.Context, s *models.Staff) error {
	s.ID = uint(len(f.byID) + 1)
	f.byID[s.ID] = s
	return nil
}

func (f *fakeStaff) GetByID(_ context.Context, id uint, _ ...string) (*models.Staff, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStaff) Update(_ context.Context, s *models.Staff) error {
	f.byID[s.ID] = s
	return nil
}

func (f *fakeStaff) Delete(_ context.Context, id uint) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeStaff) List(_ context.Context, filter repositories.StaffFilter, _, _ int, _ ...string) ([]*models.Staff, int64, error) {
	var out []*models.Staff
	for id, s := range f.byID {
		if filter.ServiceID != 0 && !f.performs[[2]uint{id, filter.ServiceID}] {
			continue
		}
		if filter.AvailableOnly && !s.IsAvailable {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStaff) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, s := range f.byID {
		if strings.EqualFold(s.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStaff) ReplaceSchedule(_ context.Context, staffID uint, rows []models.StaffSchedule) error {
	if f.replaced == nil {
		f.replaced = map[uint][]models.StaffSchedule{}
	}
	f.replaced[staffID] = rows
	if s, ok := f.byID[staffID]; ok {
		s.Schedule = rows
	}
	return nil
}

func (f *fakeStaff) ReplaceServices(_ context.Context, staff *models.Staff, ids []uint) error {
	for _, id := range ids {
		f.performs[[2]uint{staff.ID, id}] = true
	}
	return nil
}

func (f *fakeStaff) PerformsService(_ context.Context, staffID, serviceID uint) (bool, error) {
	return f.performs[[2]uint{staffID, serviceID}], nil
}

// fakeAppointments is an in-memory AppointmentRepository enforcing slot key uniqueness
type fakeAppointments struct {
	mu        sync.Mutex
	nextID    uint
	byID      map[uint]*models.Appointment
	createErr error
	reminded  map[uint]time.Time
}

func newFakeAppointments() *fakeAppointments {
	return &fakeAppointments{byID: map[uint]*models.Appointment{}, reminded: map[uint]time.Time{}}
}

func (f *fakeAppointments) slotTaken(a *models.Appointment) bool {
	if a.SlotKey == nil {
		return false
	}
	for _, other := range f.byID {
		if other.ID != a.ID && other.SlotKey != nil && *other.SlotKey == *a.SlotKey {
			return true
		}
	}
	return false
}

func (f *fakeAppointments) Create(_ context.Context, a *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if f.slotTaken(a) {
		return domain.ErrSlotConflict
	}
	f.nextID++
	a.ID = f.nextID
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeAppointments) Update(_ context.Context, a *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.slotTaken(a) {
		return domain.ErrSlotConflict
	}
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeAppointments) GetByID(_ context.Context, id uint, _ ...string) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAppointments) List(_ context.Context, filter repositories.AppointmentFilter, _, _ int, _ ...string) ([]*models.Appointment, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Appointment
	for _, a := range f.byID {
		if filter.UserID != 0 && a.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		d := a.Date.Format(models.DateLayout)
		if filter.DateFrom != nil && d < filter.DateFrom.Format(models.DateLayout) {
			continue
		}
		if filter.DateTo != nil && d > filter.DateTo.Format(models.DateLayout) {
			continue
		}
		if filter.Upcoming && a.Status != string(domain.StatusPending) && a.Status != string(domain.StatusConfirmed) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Time > out[j].Time
	})
	return out, int64(len(out)), nil
}

func (f *fakeAppointments) ListHoldingSlot(_ context.Context, staffID uint, date time.Time) ([]*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Appointment
	for _, a := range f.byID {
		if a.StaffID == staffID &&
			a.Date.Format(models.DateLayout) == date.Format(models.DateLayout) &&
			a.AppointmentStatus().HoldsSlot() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointments) ListDueReminders(_ context.Context, from, to time.Time) ([]*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Appointment
	for _, a := range f.byID {
		d := a.Date.Format(models.DateLayout)
		if d >= from.Format(models.DateLayout) && d <= to.Format(models.DateLayout) && a.ReminderSentAt == nil {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointments) MarkReminderSent(_ context.Context, id uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminded[id] = at
	return nil
}

// fakeReviews is an in-memory ReviewRepository. Writes hold mu for the whole
// call, hook included, the way the review row lock does.
type fakeReviews struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*models.Review
	votes  map[[2]uint]bool
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{byID: map[uint]*models.Review{}, votes: map[[2]uint]bool{}}
}

func (f *fakeReviews) Create(_ context.Context, r *models.Review, hook repositories.ReviewHook) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.byID {
		if other.AppointmentID == r.AppointmentID {
			return domain.ErrDuplicateEntry
		}
	}
	f.nextID++
	r.ID = f.nextID
	cp := *r
	f.byID[r.ID] = &cp
	if hook != nil {
		hook(nil, r)
	}
	return nil
}

func (f *fakeReviews) GetByID(_ context.Context, id uint, _ ...string) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReviews) Edit(_ context.Context, id uint, change func(*models.Review) error, hook repositories.ReviewHook) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	before, after := *stored, *stored
	if err := change(&after); err != nil {
		return nil, err
	}
	cp := after
	f.byID[id] = &cp
	if hook != nil {
		hook(&before, &after)
	}
	return &after, nil
}

func (f *fakeReviews) Delete(_ context.Context, id uint, check func(*models.Review) error, hook repositories.ReviewHook) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	before := *stored
	if check != nil {
		if err := check(&before); err != nil {
			return err
		}
	}
	delete(f.byID, id)
	if hook != nil {
		hook(&before, nil)
	}
	return nil
}

func (f *fakeReviews) List(context.Context, repositories.ReviewFilter, int, int, ...string) ([]*models.Review, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Review
	for _, r := range f.byID {
		cp := *r
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (f *fakeReviews) ExistsForAppointment(_ context.Context, appointmentID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.byID {
		if r.AppointmentID == appointmentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviews) AddHelpful(_ context.Context, reviewID, userID uint) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[reviewID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	key := [2]uint{reviewID, userID}
	if f.votes[key] {
		return 0, domain.ErrDuplicateEntry
	}
	f.votes[key] = true
	r.HelpfulCount++
	return r.HelpfulCount, nil
}

func (f *fakeReviews) ServiceSummary(context.Context, uint) (float64, int64, error) {
	return 0, 0, nil
}

// overalls returns the stored overall rating of every review for staffID
func (f *fakeReviews) overalls(staffID uint) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int
	for _, r := range f.byID {
		if r.StaffID == staffID {
			out = append(out, r.Overall)
		}
	}
	return out
}

// fakeNotifier records the emails it was asked to send
type fakeNotifier struct {
	mu          sync.Mutex
	confirmed   []uint
	cancelled   []uint
	rescheduled []uint
	reminded    []uint
}

func (n *fakeNotifier) BookingConfirmed(a *models.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, a.ID)
}

func (n *fakeNotifier) BookingCancelled(a *models.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, a.ID)
}

func (n *fakeNotifier) BookingRescheduled(a *models.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rescheduled = append(n.rescheduled, a.ID)
}

func (n *fakeNotifier) Reminder(a *models.Appointment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminded = append(n.reminded, a.ID)
	return nil
}

// ratingCall is one event received by fakeRatings
type ratingCall struct {
	event    string
	staffID  uint
	from, to int
}

// fakeRatings records aggregator events and can be told to fail
type fakeRatings struct {
	calls []ratingCall
	err   error
}

func (f *fakeRatings) OnReviewCreated(_ context.Context, staffID uint, overall int) (domain.StaffRating, error) {
	f.calls = append(f.calls, ratingCall{event: "created", staffID: staffID, to: overall})
	return domain.StaffRating{}, f.err
}

func (f *fakeRatings) OnReviewRatingChanged(_ context.Context, staffID uint, oldRating, newRating int) (domain.StaffRating, error) {
	f.calls = append(f.calls, ratingCall{event: "changed", staffID: staffID, from: oldRating, to: newRating})
	return domain.StaffRating{}, f.err
}

func (f *fakeRatings) OnReviewDeleted(_ context.Context, staffID uint, overall int) (domain.StaffRating, error) {
	f.calls = append(f.calls, ratingCall{event: "deleted", staffID: staffID, from: overall})
	return domain.StaffRating{}, f.err
}

func (f *fakeRatings) Reconcile(_ context.Context, staffID uint) (domain.StaffRating, error) {
	f.calls = append(f.calls, ratingCall{event: "reconcile", staffID: staffID})
	return domain.StaffRating{Average: 4.5, Count: 2}, f.err
}

func (f *fakeRatings) ReconcileAll(context.Context) (int, error) {
	f.calls = append(f.calls, ratingCall{event: "reconcile-all"})
	return 1, f.err
}

// recordingCache is a map-backed SlotCache
type recordingCache struct {
	entries     map[string][]string
	invalidated []string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: map[string][]string{}}
}

func cacheKey(staffID uint, date string, duration int) string {
	return fmt.Sprintf("%d|%s|%d", staffID, date, duration)
}

func (c *recordingCache) Get(_ context.Context, staffID uint, date string, duration int) ([]string, bool) {
	v, ok := c.entries[cacheKey(staffID, date, duration)]
	return v, ok
}

func (c *recordingCache) Set(_ context.Context, staffID uint, date string, duration int, slots []string) {
	c.entries[cacheKey(staffID, date, duration)] = slots
}

func (c *recordingCache) Invalidate(_ context.Context, staffID uint, date string) {
	c.invalidated = append(c.invalidated, date)
	prefix := fmt.Sprintf("%d|%s", staffID, date)
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// fakeDashboard is an in-memory DashboardRepository backed by fakeAppointments
type fakeDashboard struct {
	appts   *fakeAppointments
	clients int64
	staff   []repositories.StaffStat
	err     error
}

func (f *fakeDashboard) CountClients(context.Context) (int64, error) {
	return f.clients, f.err
}

func (f *fakeDashboard) AppointmentsByStatus(_ context.Context, from, to time.Time, userID uint) ([]repositories.StatusCount, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.appts.mu.Lock()
	defer f.appts.mu.Unlock()
	counts := map[string]int64{}
	for _, a := range f.appts.byID {
		if userID != 0 && a.UserID != userID {
			continue
		}
		d := a.Date.Format(models.DateLayout)
		if d >= from.Format(models.DateLayout) && d < to.Format(models.DateLayout) {
			counts[a.Status]++
		}
	}
	var out []repositories.StatusCount
	for status, n := range counts {
		out = append(out, repositories.StatusCount{Status: status, Count: n})
	}
	return out, nil
}

func (f *fakeDashboard) CompletedRevenue(_ context.Context, from, to time.Time) (float64, error) {
	f.appts.mu.Lock()
	defer f.appts.mu.Unlock()
	var total float64
	for _, a := range f.appts.byID {
		d := a.Date.Format(models.DateLayout)
		if a.Status == string(domain.StatusCompleted) && d >= from.Format(models.DateLayout) && d < to.Format(models.DateLayout) {
			total += a.Price
		}
	}
	return total, nil
}

func (f *fakeDashboard) BusiestStaff(_ context.Context, _, _ time.Time, limit int) ([]repositories.StaffStat, error) {
	if len(f.staff) > limit {
		return f.staff[:limit], nil
	}
	return f.staff, nil
}

func (f *fakeDashboard) UnreviewedCompleted(_ context.Context, userID uint) (int64, error) {
	f.appts.mu.Lock()
	defer f.appts.mu.Unlock()
	var n int64
	for _, a := range f.appts.byID {
		if a.UserID == userID && a.Status == string(domain.StatusCompleted) {
			n++
		}
	}
	return n, nil
}
