package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsSold = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_sold_total",
			Help: "Tickets sold per event and tier",
		},
		[]string{"event_id", "ticket_type"},
	)

	ticketsRefunded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_refunded_total",
			Help: "Tickets restored to inventory by approved refunds",
		},
		[]string{"event_id", "ticket_type"},
	)

	refundDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refund_decisions_total",
			Help: "Refund requests decided, by outcome",
		},
		[]string{"status"},
	)

	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Login attempts by requested role and outcome",
		},
		[]string{"role", "status"},
	)

	emailFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "email_failures_total",
			Help: "Transactional emails that could not be sent",
		},
	)
)

func RecordSale(eventID, ticketType string, qty uint) {
	ticketsSold.WithLabelValues(eventID, ticketType).Add(float64(qty))
}

func RecordRefund(eventID, ticketType string, qty uint) {
	ticketsRefunded.WithLabelValues(eventID, ticketType).Add(float64(qty))
}

func RecordRefundDecision(status string) {
	refundDecisions.WithLabelValues(status).Inc()
}

func RecordLogin(role, status string) {
	loginAttempts.WithLabelValues(role, status).Inc()
}

func RecordEmailFailure() {
	emailFailures.Inc()
}
