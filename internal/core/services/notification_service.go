package services

import (
	"fmt"
	"html"

	"eclat-salon/internal/adapters/persistence/models"
	"eclat-salon/internal/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// salonName signs every email
const salonName = "Éclat Salon"

// NotificationService handles appointment emails
type NotificationService struct {
	from    string
	enabled bool
	send    func(*gomail.Message) error
	logger  *zap.Logger
}

// NewNotificationService creates a new notification service; without an SMTP host it sends nothing
func NewNotificationService(cfg config.SMTPConfig, logger *zap.Logger) *NotificationService {
	s := &NotificationService{
		from:    cfg.From,
		enabled: cfg.Host != "",
		logger:  logger,
	}
	if s.enabled {
		dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		s.send = func(m *gomail.Message) error { return dialer.DialAndSend(m) }
	}
	return s
}

// IsEnabled checks if email is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// BookingConfirmed emails the booking summary in the background
func (s *NotificationService) BookingConfirmed(appt *models.Appointment) {
	s.background(appt, "Your appointment is booked", fmt.Sprintf(`
<h2>Thank you for booking with %s</h2>
%s
<p>Reference: <strong>%s</strong></p>
<p>Need to make a change? You can cancel or reschedule from your account.</p>`,
		salonName, appointmentSummary(appt), appt.Reference))
}

// BookingCancelled emails the cancellation notice in the background
func (s *NotificationService) BookingCancelled(appt *models.Appointment) {
	reason := ""
	if appt.CancellationReason != "" {
		reason = "<p>Reason: " + html.EscapeString(appt.CancellationReason) + "</p>"
	}
	s.background(appt, "Your appointment was cancelled", fmt.Sprintf(`
<h2>Appointment cancelled</h2>
%s
%s
<p>We hope to see you again soon.</p>`,
		appointmentSummary(appt), reason))
}

// BookingRescheduled emails the new time in the background
func (s *NotificationService) BookingRescheduled(appt *models.Appointment) {
	s.background(appt, "Your appointment was moved", fmt.Sprintf(`
<h2>Appointment rescheduled</h2>
%s`, appointmentSummary(appt)))
}

// Reminder emails an upcoming appointment reminder
func (s *NotificationService) Reminder(appt *models.Appointment) error {
	return s.deliver(appt, "Reminder: your appointment is coming up", fmt.Sprintf(`
<h2>See you soon!</h2>
%s
<p>Please arrive a few minutes early.</p>`, appointmentSummary(appt)))
}

func (s *NotificationService) background(appt *models.Appointment, subject, body string) {
	if !s.enabled {
		return
	}
	go func() {
		if err := s.deliver(appt, subject, body); err != nil {
			s.logger.Warn("email not sent",
				zap.Uint("appointment_id", appt.ID),
				zap.String("subject", subject),
				zap.Error(err),
			)
		}
	}()
}

// deliver sends to the appointment's user when they accept email
func (s *NotificationService) deliver(appt *models.Appointment, subject, body string) error {
	if !s.enabled || appt.User == nil || appt.User.Email == "" || !appt.User.NotifyEmail {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.from, salonName))
	m.SetHeader("To", appt.User.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", fmt.Sprintf("<p>Hi %s,</p>%s<p>%s</p>", html.EscapeString(appt.User.Name), body, salonName))

	return s.send(m)
}

func appointmentSummary(appt *models.Appointment) string {
	service, stylist := "your service", "our team"
	if appt.Service != nil {
		service = appt.Service.Title
	}
	if appt.Staff != nil {
		stylist = appt.Staff.Name
	}
	return fmt.Sprintf("<p><strong>%s</strong> with %s<br>%s at %s (%d min)</p>",
		html.EscapeString(service),
		html.EscapeString(stylist),
		appt.Date.Format("Monday, January 2, 2006"),
		appt.Time,
		appt.Duration,
	)
}
