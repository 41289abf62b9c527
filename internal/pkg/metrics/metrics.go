package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Booking results
const (
	BookingCreated  = "created"
	BookingConflict = "conflict"
	BookingRejected = "rejected"
)

// Metrics holds the Prometheus collectors of the API
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	bookings        *prometheus.CounterVec
	cancellations   prometheus.Counter
	reviews         *prometheus.CounterVec
	ratingErrors    prometheus.Counter
	slotCache       *prometheus.CounterVec
	remindersSent   prometheus.Counter
}

// New registers the collectors on a private registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salon_bookings_total",
			Help: "Booking attempts by result",
		}, []string{"result"}),
		cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salon_appointments_cancelled_total",
			Help: "Appointments cancelled",
		}),
		reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salon_review_events_total",
			Help: "Review writes by event",
		}, []string{"event"}),
		ratingErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salon_rating_update_failures_total",
			Help: "Rating aggregator updates that failed after the review write",
		}),
		slotCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salon_slot_cache_lookups_total",
			Help: "Free-slot cache lookups by result",
		}, []string{"result"}),
		remindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salon_reminders_sent_total",
			Help: "Appointment reminder emails sent",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.bookings,
		m.cancellations,
		m.reviews,
		m.ratingErrors,
		m.slotCache,
		m.remindersSent,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler { return m.handler }

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Booking counts a booking attempt
func (m *Metrics) Booking(result string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(result).Inc()
}

// Cancellation counts a cancelled appointment
func (m *Metrics) Cancellation() {
	if m == nil {
		return
	}
	m.cancellations.Inc()
}

// Review counts a review write
func (m *Metrics) Review(event string) {
	if m == nil {
		return
	}
	m.reviews.WithLabelValues(event).Inc()
}

// RatingFailure counts an aggregator failure
func (m *Metrics) RatingFailure() {
	if m == nil {
		return
	}
	m.ratingErrors.Inc()
}

// SlotCache counts a cache lookup
func (m *Metrics) SlotCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.slotCache.WithLabelValues(result).Inc()
}

// ReminderSent counts a reminder email
func (m *Metrics) ReminderSent() {
	if m == nil {
		return
	}
	m.remindersSent.Inc()
}
