package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

var (
	// LedgerOperationDuration tracks the latency of fund additions and spend records
	LedgerOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "campaign_ledger_operation_duration_seconds",
			Help: "Duration of campaign ledger operations in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
			},
		},
		[]string{"operation", "result"},
	)

	// LedgerCents counts cents applied to campaign ledgers
	LedgerCents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_ledger_cents_total",
			Help: "Total cents applied to campaign ledgers, by operation and currency",
		},
		[]string{"operation", "currency"},
	)

	// PublishAttempts counts campaign publish attempts by outcome
	PublishAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_publish_attempts_total",
			Help: "Campaign publish attempts by result",
		},
		[]string{"result"},
	)

	// Violations counts reported validation violations by code
	Violations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_validation_violations_total",
			Help: "Validation violations reported to callers, by code",
		},
		[]string{"code"},
	)

	// Transitions counts applied status transitions
	Transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_status_transitions_total",
			Help: "Applied status transitions by entity and target status",
		},
		[]string{"entity", "to"},
	)

	// CouponClaims counts coupon claim attempts by outcome
	CouponClaims = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_coupon_claims_total",
			Help: "Coupon claim attempts by result",
		},
		[]string{"result"},
	)

	// ParticipantsAccepted counts participants admitted to drops
	ParticipantsAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campaign_drop_participants_accepted_total",
			Help: "Participants admitted to drops",
		},
	)

	// SweepDuration tracks how long one lifecycle sweep takes
	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "campaign_lifecycle_sweep_duration_seconds",
			Help:    "Duration of the scheduled lifecycle sweep in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// RecordLedgerOperation records the duration of a ledger operation
func RecordLedgerOperation(operation, result string, duration float64) {
	LedgerOperationDuration.WithLabelValues(operation, result).Observe(duration)
}

// RecordLedgerCents adds applied cents for an operation
func RecordLedgerCents(operation, currency string, cents int64) {
	LedgerCents.WithLabelValues(operation, currency).Add(float64(cents))
}

// RecordViolations counts each violation code once per occurrence
func RecordViolations(codes []string) {
	for _, code := range codes {
		Violations.WithLabelValues(code).Inc()
	}
}

// RecordTransition counts a status transition
func RecordTransition(entity, to string) {
	Transitions.WithLabelValues(entity, to).Inc()
}
