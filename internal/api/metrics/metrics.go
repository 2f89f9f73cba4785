// Package metrics defines and registers all custom Prometheus metrics for the
// salon booking API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "salon"

// ── Reservation metrics ───────────────────────────────────────────────────────

// ReservationsCreatedTotal counts newly created reservations.
// Label:
//   - payment_method: "mtn", "moov", "autres" or "non spécifié"
var ReservationsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_created_total",
		Help:      "Total number of reservations created, by payment method.",
	},
	[]string{"payment_method"},
)

// SlotRejectionsTotal counts reservation attempts refused by the slot guard.
// Label:
//   - reason: "full" (capacity reached) or "busy" (slot lock held elsewhere)
var SlotRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "slot_rejections_total",
		Help:      "Total number of reservation attempts rejected by the slot guard.",
	},
	[]string{"reason"},
)

// AvailabilityChecksTotal counts standalone availability queries.
// Label:
//   - result: "available" or "full"
var AvailabilityChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "availability_checks_total",
		Help:      "Total number of slot availability checks, by result.",
	},
	[]string{"result"},
)

// StatusChangesTotal counts status writes after creation, by target status.
var StatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservation_status_changes_total",
		Help:      "Total number of reservation status changes, by new status.",
	},
	[]string{"status"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login attempts.
// Labels:
//   - operation: "register" or "login"
//   - result: "success", "failure" or "conflict"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Audit dispatcher metrics ──────────────────────────────────────────────────

// EventsQueueDepth tracks the number of audit events waiting in each worker channel.
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventsDroppedTotal counts audit events dropped because a worker queue was full.
var EventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of audit events dropped on a full dispatcher queue.",
	},
)

// EventRecordDuration measures how long persisting a single audit event takes.
// Label:
//   - result: "ok" or "error"
var EventRecordDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_record_duration_seconds",
		Help:      "Duration of audit event persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
