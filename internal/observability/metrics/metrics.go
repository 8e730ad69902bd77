// Package metrics defines the custom Prometheus metrics of the hospital API.
// Metrics are registered with the default registry on package init through
// promauto and served by the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hospital"

// ── Account metrics ───────────────────────────────────────────────────────────

// AccountsRegisteredTotal counts accounts created.
// Label:
//   - role: "Patient", "Admin" or "Doctor"
var AccountsRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_registered_total",
		Help:      "Total number of accounts registered, by role.",
	},
	[]string{"role"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "rejected" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Appointment metrics ───────────────────────────────────────────────────────

// AppointmentsBookedTotal counts appointments created.
// Label:
//   - department: the requested department
var AppointmentsBookedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "appointments_booked_total",
		Help:      "Total number of appointments booked, by department.",
	},
	[]string{"department"},
)

// AppointmentReviewsTotal counts admin status reviews, including ones that
// re-apply the current status.
// Label:
//   - status: the resulting status
var AppointmentReviewsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "appointment_reviews_total",
		Help:      "Total number of appointment status reviews, by resulting status.",
	},
	[]string{"status"},
)

// ── Avatar metrics ────────────────────────────────────────────────────────────

// AvatarUploadDuration measures calls to the asset host.
// Label:
//   - result: "success" or "error"
var AvatarUploadDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "avatar_upload_duration_seconds",
		Help:      "Duration of avatar uploads to the asset host.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts notification outcomes.
// Labels:
//   - kind: "booked" or "status_changed"
//   - result: "sent", "failed" or "dropped"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of appointment notifications, by kind and result.",
	},
	[]string{"kind", "result"},
)

// NotificationsQueueDepth tracks notifications waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index
var NotificationsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
