package keeper

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "light_client"
)

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Number of headers processed, labelled by result: accepted, duplicate
	// or rejected.
	HeadersVerified metrics.Counter
	// Time spent verifying a header.
	VerificationDuration metrics.Histogram
	// Latest verified revision height of a client.
	LatestHeight metrics.Gauge
	// Size of the validator set of the latest accepted header.
	ValidatorSetSize metrics.Gauge
	// Number of expired consensus states removed.
	ConsensusStatesPruned metrics.Counter
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	return &Metrics{
		HeadersVerified: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "headers_verified_total",
			Help:      "Number of headers processed, by result.",
		}, append(labels, "client_id", "result")).With(labelsAndValues...),
		VerificationDuration: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "verification_duration_seconds",
			Help:      "Time spent verifying a header.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, append(labels, "client_id")).With(labelsAndValues...),
		LatestHeight: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "latest_height",
			Help:      "Latest verified revision height of a client.",
		}, append(labels, "client_id")).With(labelsAndValues...),
		ValidatorSetSize: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "validator_set_size",
			Help:      "Size of the validator set of the latest accepted header.",
		}, append(labels, "client_id")).With(labelsAndValues...),
		ConsensusStatesPruned: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "consensus_states_pruned_total",
			Help:      "Number of expired consensus states removed.",
		}, append(labels, "client_id")).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		HeadersVerified:       discard.NewCounter(),
		VerificationDuration:  discard.NewHistogram(),
		LatestHeight:          discard.NewGauge(),
		ValidatorSetSize:      discard.NewGauge(),
		ConsensusStatesPruned: discard.NewCounter(),
	}
}
