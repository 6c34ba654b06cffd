package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics is the set of measurements the chain client records.
type ClientMetrics interface {
	ObserveNodeRequest(operation, outcome string, duration time.Duration)
	IncNoncesIssued()
	IncNoncesSeeded()
	IncNonceSeedFailures()
	IncEventsReceived()
	IncEventsDispatched(n int)
	IncEventsDropped(reason string)
	SetSubscriberState(state int)
}

var METRICS_SUBSYSTEM = "chain_client"

// Outcome labels for node requests.
const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport_error"
	OutcomeTimeout   = "timeout"
)

// Drop reasons for inbound event messages.
const (
	DropMalformedEnvelope = "malformed_envelope"
	DropMalformedItem     = "malformed_item"
)

type clientMetrics struct {
	nodeRequests      *prometheus.HistogramVec
	noncesIssued      prometheus.Counter
	noncesSeeded      prometheus.Counter
	nonceSeedFailures prometheus.Counter
	eventsReceived    prometheus.Counter
	eventsDispatched  prometheus.Counter
	eventsDropped     *prometheus.CounterVec
	subscriberState   prometheus.Gauge
}

// InitMetrics creates the client metrics and registers them on registry.
func InitMetrics(registry prometheus.Registerer) ClientMetrics {
	metrics := &clientMetrics{}

	metrics.nodeRequests = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "node_request_duration_seconds",
		Help: "Chain client node request duration", Subsystem: METRICS_SUBSYSTEM, Buckets: prometheus.DefBuckets},
		[]string{"operation", "outcome"})
	metrics.noncesIssued = prometheus.NewCounter(prometheus.CounterOpts{Name: "nonces_issued_total",
		Help: "Chain client nonces issued", Subsystem: METRICS_SUBSYSTEM})
	metrics.noncesSeeded = prometheus.NewCounter(prometheus.CounterOpts{Name: "nonces_seeded_total",
		Help: "Chain client nonce cache entries seeded from the node", Subsystem: METRICS_SUBSYSTEM})
	metrics.nonceSeedFailures = prometheus.NewCounter(prometheus.CounterOpts{Name: "nonce_seed_failures_total",
		Help: "Chain client failed nonce seeding queries", Subsystem: METRICS_SUBSYSTEM})
	metrics.eventsReceived = prometheus.NewCounter(prometheus.CounterOpts{Name: "events_received_total",
		Help: "Chain client event feed messages received", Subsystem: METRICS_SUBSYSTEM})
	metrics.eventsDispatched = prometheus.NewCounter(prometheus.CounterOpts{Name: "events_dispatched_total",
		Help: "Chain client contract events delivered to handlers", Subsystem: METRICS_SUBSYSTEM})
	metrics.eventsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "events_dropped_total",
		Help: "Chain client event feed messages dropped", Subsystem: METRICS_SUBSYSTEM}, []string{"reason"})
	metrics.subscriberState = prometheus.NewGauge(prometheus.GaugeOpts{Name: "subscriber_state",
		Help: "Chain client event subscriber state", Subsystem: METRICS_SUBSYSTEM})

	registry.MustRegister(metrics.nodeRequests)
	registry.MustRegister(metrics.noncesIssued)
	registry.MustRegister(metrics.noncesSeeded)
	registry.MustRegister(metrics.nonceSeedFailures)
	registry.MustRegister(metrics.eventsReceived)
	registry.MustRegister(metrics.eventsDispatched)
	registry.MustRegister(metrics.eventsDropped)
	registry.MustRegister(metrics.subscriberState)
	return metrics
}

// NewNoop returns metrics registered on a private registry, for components
// built without one.
func NewNoop() ClientMetrics {
	return InitMetrics(prometheus.NewRegistry())
}

func (cm *clientMetrics) ObserveNodeRequest(operation, outcome string, duration time.Duration) {
	cm.nodeRequests.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

func (cm *clientMetrics) IncNoncesIssued() {
	cm.noncesIssued.Inc()
}

func (cm *clientMetrics) IncNoncesSeeded() {
	cm.noncesSeeded.Inc()
}

func (cm *clientMetrics) IncNonceSeedFailures() {
	cm.nonceSeedFailures.Inc()
}

func (cm *clientMetrics) IncEventsReceived() {
	cm.eventsReceived.Inc()
}

func (cm *clientMetrics) IncEventsDispatched(n int) {
	cm.eventsDispatched.Add(float64(n))
}

func (cm *clientMetrics) IncEventsDropped(reason string) {
	cm.eventsDropped.WithLabelValues(reason).Inc()
}

func (cm *clientMetrics) SetSubscriberState(state int) {
	cm.subscriberState.Set(float64(state))
}
