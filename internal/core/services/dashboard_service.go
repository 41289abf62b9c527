package services

import (
	"context"
	"time"

	"eclat-salon/internal/adapters/persistence/models"
	"eclat-salon/internal/adapters/persistence/repositories"
	"eclat-salon/internal/core/domain"

	"go.uber.org/zap"
)

// DashboardService handles dashboard operations
type DashboardService struct {
	repo     repositories.DashboardRepository
	apptRepo repositories.AppointmentRepository
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	repo repositories.DashboardRepository,
	apptRepo repositories.AppointmentRepository,
	loc *time.Location,
	logger *zap.Logger,
) *DashboardService {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardService{
		repo:     repo,
		apptRepo: apptRepo,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// ============================================================
// Admin Dashboard
// ============================================================

// StatusTotals counts appointments per status
type StatusTotals struct {
	Pending   int64 `json:"pending"`
	Confirmed int64 `json:"confirmed"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
	NoShow    int64 `json:"no_show"`
	Total     int64 `json:"total"`
}

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	TotalClients int64 `json:"total_clients"`

	Today     StatusTotals `json:"today"`
	ThisMonth StatusTotals `json:"this_month"`

	// Revenue of completed appointments this month
	RevenueThisMonth float64 `json:"revenue_this_month"`

	TodaySchedule []*models.AppointmentResponse `json:"today_schedule"`
	BusiestStaff  []repositories.StaffStat      `json:"busiest_staff"`
}

// GetAdminDashboard returns the salon overview
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	today := midnight(s.now().In(s.loc))
	tomorrow := today.AddDate(0, 0, 1)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.loc)
	nextMonth := monthStart.AddDate(0, 1, 0)

	data := &AdminDashboardData{}
	var err error

	if data.TotalClients, err = s.repo.CountClients(ctx); err != nil {
		return nil, err
	}
	if data.Today, err = s.statusTotals(ctx, today, tomorrow, 0); err != nil {
		return nil, err
	}
	if data.ThisMonth, err = s.statusTotals(ctx, monthStart, nextMonth, 0); err != nil {
		return nil, err
	}
	if data.RevenueThisMonth, err = s.repo.CompletedRevenue(ctx, monthStart, nextMonth); err != nil {
		return nil, err
	}
	if data.BusiestStaff, err = s.repo.BusiestStaff(ctx, monthStart, nextMonth, 5); err != nil {
		return nil, err
	}

	appts, _, err := s.apptRepo.List(ctx, repositories.AppointmentFilter{
		DateFrom: &today,
		DateTo:   &today,
	}, 0, 100, "User", "Service", "Staff")
	if err != nil {
		return nil, err
	}
	data.TodaySchedule = make([]*models.AppointmentResponse, 0, len(appts))
	// List orders newest first; the day sheet reads top to bottom
	for i := len(appts) - 1; i >= 0; i-- {
		if appts[i].AppointmentStatus() == domain.StatusCancelled {
			continue
		}
		data.TodaySchedule = append(data.TodaySchedule, appts[i].ToResponse())
	}

	return data, nil
}

// ============================================================
// Client Dashboard
// ============================================================

// ClientDashboardData represents a client's dashboard data
type ClientDashboardData struct {
	Upcoming       []*models.AppointmentResponse `json:"upcoming"`
	UpcomingCount  int64                         `json:"upcoming_count"`
	History        StatusTotals                  `json:"history"`
	AwaitingReview int64                         `json:"awaiting_review"`
}

// clientHistoryStart bounds the client history counts
var clientHistoryStart = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// GetClientDashboard returns the user's upcoming visits and history
func (s *DashboardService) GetClientDashboard(ctx context.Context, userID uint) (*ClientDashboardData, error) {
	data := &ClientDashboardData{}

	upcoming, total, err := s.apptRepo.List(ctx, repositories.AppointmentFilter{
		UserID:   userID,
		Upcoming: true,
	}, 0, 5, "Service", "Staff")
	if err != nil {
		return nil, err
	}
	data.UpcomingCount = total
	data.Upcoming = make([]*models.AppointmentResponse, len(upcoming))
	for i, a := range upcoming {
		data.Upcoming[i] = a.ToResponse()
	}

	tomorrow := midnight(s.now().In(s.loc)).AddDate(0, 0, 1)
	if data.History, err = s.statusTotals(ctx, clientHistoryStart, tomorrow, userID); err != nil {
		return nil, err
	}
	if data.AwaitingReview, err = s.repo.UnreviewedCompleted(ctx, userID); err != nil {
		return nil, err
	}

	return data, nil
}

func (s *DashboardService) statusTotals(ctx context.Context, from, to time.Time, userID uint) (StatusTotals, error) {
	rows, err := s.repo.AppointmentsByStatus(ctx, from, to, userID)
	if err != nil {
		return StatusTotals{}, err
	}

	var out StatusTotals
	for _, row := range rows {
		switch domain.AppointmentStatus(row.Status) {
		case domain.StatusPending:
			out.Pending = row.Count
		case domain.StatusConfirmed:
			out.Confirmed = row.Count
		case domain.StatusCompleted:
			out.Completed = row.Count
		case domain.StatusCancelled:
			out.Cancelled = row.Count
		case domain.StatusNoShow:
			out.NoShow = row.Count
		default:
			s.logger.Warn("unknown appointment status in dashboard", zap.String("status", row.Status))
		}
		out.Total += row.Count
	}
	return out, nil
}
