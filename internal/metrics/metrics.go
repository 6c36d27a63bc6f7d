// Package metrics exports sync cycle metrics to Prometheus.
package metrics

import (
	"net/http"

	"github.com/MKhiriev/go-list-sync/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "listsync"

// Collector turns cycle events into Prometheus series.
type Collector struct {
	inFlight       prometheus.Gauge
	cycles         *prometheus.CounterVec
	duration       prometheus.Histogram
	memberFailures *prometheus.CounterVec
	coalesced      prometheus.Counter
}

// NewCollector creates the cycle series and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cycles_in_flight",
			Help:      "Number of sync cycles currently running.",
		}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Finished sync cycles by status.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of finished sync cycles.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		memberFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "member_failures_total",
			Help:      "Per-member cycle failures by stage and kind.",
		}, []string{"stage", "kind"}),
		coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triggers_coalesced_total",
			Help:      "Sync triggers folded into an in-flight cycle.",
		}),
	}

	for _, collector := range []prometheus.Collector{c.inFlight, c.cycles, c.duration, c.memberFailures, c.coalesced} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) CycleStarted(int64) {
	c.inFlight.Inc()
}

func (c *Collector) CycleFinished(result models.SyncOperationResult) {
	c.inFlight.Dec()
	c.cycles.WithLabelValues(string(result.Status)).Inc()
	if !result.FinishedAt.IsZero() && !result.StartedAt.IsZero() {
		c.duration.Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())
	}
	for _, failure := range result.Failures {
		c.memberFailures.WithLabelValues(string(failure.Stage), failure.Kind).Inc()
	}
}

func (c *Collector) TriggerCoalesced(int64) {
	c.coalesced.Inc()
}

// Handler serves everything gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
