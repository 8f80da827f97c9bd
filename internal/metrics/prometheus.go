package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultNamespace = "binpacking"

// Prometheus implements Recorder backed by Prometheus collectors. Collectors
// are registered on first use.
type Prometheus struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	packTotal       *prometheus.CounterVec
	packErrors      *prometheus.CounterVec
	packDuration    *prometheus.HistogramVec
	packBins        *prometheus.HistogramVec
	packUtilization *prometheus.HistogramVec
}

// Compile-time assertion that Prometheus implements Recorder.
var _ Recorder = (*Prometheus)(nil)

// NewPrometheus creates a Prometheus-backed recorder.
//
// reg defaults to prometheus.DefaultRegisterer and namespace to "binpacking"
// when left empty.
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = defaultNamespace
	}

	return &Prometheus{reg: reg, namespace: namespace}
}

func (p *Prometheus) ensureRegistered() {
	p.once.Do(func() {
		p.packTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "pack_total",
			Help:      "Total successful packing runs by strategy.",
		}, []string{"strategy"})

		p.packErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "pack_errors_total",
			Help:      "Total rejected packing runs by strategy and reason.",
		}, []string{"strategy", "reason"})

		p.packDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      "pack_duration_seconds",
			Help:      "Packing run duration in seconds by strategy.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"strategy"})

		p.packBins = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      "pack_bins",
			Help:      "Number of bins opened per packing run by strategy.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"strategy"})

		p.packUtilization = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      "pack_utilization",
			Help:      "Ratio of packed volume to opened bin capacity by strategy.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}, []string{"strategy"})

		p.reg.MustRegister(p.packTotal)
		p.reg.MustRegister(p.packErrors)
		p.reg.MustRegister(p.packDuration)
		p.reg.MustRegister(p.packBins)
		p.reg.MustRegister(p.packUtilization)
	})
}

// ObservePack records a successful packing run.
func (p *Prometheus) ObservePack(strategy string, duration time.Duration, bins int, utilization float64) {
	p.ensureRegistered()
	p.packTotal.WithLabelValues(strategy).Inc()
	p.packDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	p.packBins.WithLabelValues(strategy).Observe(float64(bins))
	p.packUtilization.WithLabelValues(strategy).Observe(utilization)
}

// IncPackError counts a rejected packing run.
func (p *Prometheus) IncPackError(strategy, reason string) {
	p.ensureRegistered()
	p.packErrors.WithLabelValues(strategy, reason).Inc()
}
