package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"eclat-salon/internal/adapters/persistence/repositories"
	"eclat-salon/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDashboardFixture(t *testing.T) (*fixture, *fakeDashboard, *DashboardService) {
	t.Helper()
	f := newFixture(t)

	// today
	f.seed(t, "2026-10-19", "11:00", 60, domain.StatusPending)
	f.seed(t, "2026-10-19", "10:00", 60, domain.StatusConfirmed)
	f.seed(t, "2026-10-19", "13:00", 60, domain.StatusCancelled)
	// earlier this month
	done1 := f.seed(t, "2026-10-05", "09:00", 60, domain.StatusCompleted)
	done2 := f.seed(t, "2026-10-06", "09:00", 30, domain.StatusCompleted)
	f.seed(t, "2026-10-07", "09:00", 60, domain.StatusNoShow)
	// next month
	f.seed(t, "2026-11-02", "14:00", 60, domain.StatusConfirmed)

	f.appts.byID[done1.ID].Price = 65
	f.appts.byID[done2.ID].Price = 40

	repo := &fakeDashboard{appts: f.appts, clients: 2}
	for i := uint(1); i <= 6; i++ {
		repo.staff = append(repo.staff, repositories.StaffStat{StaffID: i, Bookings: int64(10 - i)})
	}

	svc := NewDashboardService(repo, f.appts, time.UTC, zap.NewNop())
	svc.now = func() time.Time { return testNow }
	return f, repo, svc
}

func TestAdminDashboard(t *testing.T) {
	_, _, svc := newDashboardFixture(t)

	data, err := svc.GetAdminDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), data.TotalClients)
	assert.Equal(t, StatusTotals{Pending: 1, Confirmed: 1, Cancelled: 1, Total: 3}, data.Today)
	assert.Equal(t, StatusTotals{Pending: 1, Confirmed: 1, Completed: 2, Cancelled: 1, NoShow: 1, Total: 6}, data.ThisMonth)
	assert.InDelta(t, 105.0, data.RevenueThisMonth, 0.001)
	assert.Len(t, data.BusiestStaff, 5)

	require.Len(t, data.TodaySchedule, 2, "cancelled appointments are left off the day sheet")
	assert.Equal(t, "10:00", data.TodaySchedule[0].Time.String())
	assert.Equal(t, "11:00", data.TodaySchedule[1].Time.String())
}

func TestClientDashboard(t *testing.T) {
	f, _, svc := newDashboardFixture(t)

	data, err := svc.GetClientDashboard(context.Background(), f.client)
	require.NoError(t, err)

	assert.Equal(t, int64(3), data.UpcomingCount)
	assert.Len(t, data.Upcoming, 3)
	assert.Equal(t, int64(6), data.History.Total, "future appointments are not history")
	assert.Equal(t, int64(2), data.History.Completed)
	assert.Equal(t, int64(2), data.AwaitingReview)

	other, err := svc.GetClientDashboard(context.Background(), f.other)
	require.NoError(t, err)
	assert.Zero(t, other.UpcomingCount)
	assert.Zero(t, other.History.Total)
}

func TestDashboardRepositoryErrors(t *testing.T) {
	_, repo, svc := newDashboardFixture(t)
	repo.err = errors.New("db down")

	_, err := svc.GetAdminDashboard(context.Background())
	assert.EqualError(t, err, "db down")

	_, err = svc.GetClientDashboard(context.Background(), 1)
	assert.EqualError(t, err, "db down")
}
