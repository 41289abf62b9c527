package services

import (
	"context"
	"time"

	"eclat-salon/internal/adapters/persistence/repositories"
	"eclat-salon/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// jobTimeout bounds a single scheduled run
const jobTimeout = 5 * time.Minute

// CronService runs the scheduled maintenance jobs
type CronService struct {
	cron             *cron.Cron
	appointments     *AppointmentService
	ratings          RatingAggregator
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              config.CronConfig
	reminderLead     time.Duration
	logger           *zap.Logger
}

// NewCronService creates the scheduler in the salon timezone
func NewCronService(
	appointments *AppointmentService,
	ratings RatingAggregator,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
	logger *zap.Logger,
) *CronService {
	return &CronService{
		cron:             cron.New(cron.WithLocation(cfg.Booking.Location)),
		appointments:     appointments,
		ratings:          ratings,
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg.Cron,
		reminderLead:     cfg.Booking.ReminderLead,
		logger:           logger,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context)
	}{
		{"appointment reminders", s.cfg.ReminderSpec, s.SendReminders},
		{"rating reconcile", s.cfg.ReconcileSpec, s.ReconcileRatings},
		{"refresh token cleanup", s.cfg.TokenCleanupSpec, s.CleanupTokens},
	}

	for _, job := range jobs {
		if _, err := s.cron.AddFunc(job.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			job.run(ctx)
		}); err != nil {
			return err
		}
		s.logger.Info("cron job scheduled", zap.String("job", job.name), zap.String("spec", job.spec))
	}

	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("cron stopped")
}

// SendReminders emails clients whose appointment starts within the reminder lead
func (s *CronService) SendReminders(ctx context.Context) {
	due, err := s.appointments.DueReminders(ctx, s.reminderLead)
	if err != nil {
		s.logger.Error("reminder query failed", zap.Error(err))
		return
	}

	sent := 0
	for _, appt := range due {
		if err := s.appointments.SendReminder(ctx, appt); err != nil {
			s.logger.Warn("reminder not sent", zap.Uint("appointment_id", appt.ID), zap.Error(err))
			continue
		}
		sent++
	}
	if len(due) > 0 {
		s.logger.Info("reminders processed", zap.Int("due", len(due)), zap.Int("sent", sent))
	}
}

// ReconcileRatings recomputes every staff rating from the reviews table
func (s *CronService) ReconcileRatings(ctx context.Context) {
	n, err := s.ratings.ReconcileAll(ctx)
	if err != nil {
		s.logger.Error("rating reconcile failed", zap.Int("reconciled", n), zap.Error(err))
		return
	}
	s.logger.Info("ratings reconciled", zap.Int("staff", n))
}

// CleanupTokens deletes expired refresh tokens
func (s *CronService) CleanupTokens(ctx context.Context) {
	n, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("refresh token cleanup failed", zap.Error(err))
		return
	}
	s.logger.Info("expired refresh tokens deleted", zap.Int64("count", n))
}
