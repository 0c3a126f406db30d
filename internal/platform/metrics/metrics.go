package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ApplicationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackboard_applications_created_total", Help: "Total hackathon applications created"},
	)
	ApplicationsDenied = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "hackboard_applications_denied_total", Help: "Applications refused by the eligibility gate, by reason"},
		[]string{"reason"},
	)
	PhaseSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "hackboard_phase_submissions_total", Help: "Phase submissions accepted for review, by kind"},
		[]string{"kind"},
	)
	Reviews = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "hackboard_reviews_total", Help: "Organizer review actions, by outcome"},
		[]string{"outcome"},
	)
	ResultsReconciled = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackboard_results_reconciled_total", Help: "Hackathons whose results flag was corrected on read"},
	)
	NotificationsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackboard_notifications_failed_total", Help: "Notifications that could not be enqueued or delivered"},
	)
	NotificationsDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackboard_notifications_delivered_total", Help: "Notifications delivered by the worker"},
	)
)

func Register() {
	prometheus.MustRegister(
		ApplicationsCreated,
		ApplicationsDenied,
		PhaseSubmissions,
		Reviews,
		ResultsReconciled,
		NotificationsFailed,
		NotificationsDelivered,
	)
}
