package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultNamespace = "loadring"

// Prometheus implements Collector backed by Prometheus.
//
// Metrics are created and registered lazily on first use.
type Prometheus struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	redirects   prometheus.Counter
	overflows   prometheus.Counter
	refreshes   *prometheus.CounterVec
	unmapped    *prometheus.CounterVec
	p2cFallback prometheus.Counter
}

var _ Collector = (*Prometheus)(nil)

// NewPrometheus creates a new Prometheus-backed collector.
// If reg is nil prometheus.DefaultRegisterer is used. If namespace is empty
// "loadring" is used.
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &Prometheus{
		reg:       reg,
		namespace: namespace,
	}
}

func (p *Prometheus) ensureRegistered() {
	p.once.Do(func() {
		p.redirects = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "bounded_load",
			Name:      "redirects_total",
			Help:      "Total requests redirected away from an overloaded nominal host.",
		})
		p.overflows = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "bounded_load",
			Name:      "overflows_total",
			Help:      "Total requests sent to the nominal host while every host was at capacity.",
		})
		p.refreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "bounded_load",
			Name:      "snapshot_refreshes_total",
			Help:      "Total load snapshot refresh attempts by result (done, skipped).",
		}, []string{"result"})
		p.unmapped = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "mapper",
			Name:      "unmapped_keys_total",
			Help:      "Total keys which could not be mapped to a host by reason.",
		}, []string{"reason"})
		p.p2cFallback = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "power_of_two",
			Name:      "fallbacks_total",
			Help:      "Total power of two selections resolved by ring iteration.",
		})

		p.reg.MustRegister(
			p.redirects,
			p.overflows,
			p.refreshes,
			p.unmapped,
			p.p2cFallback,
		)
	})
}

func (p *Prometheus) RecordBoundedLoadRedirect() {
	p.ensureRegistered()
	p.redirects.Inc()
}

func (p *Prometheus) RecordBoundedLoadOverflow() {
	p.ensureRegistered()
	p.overflows.Inc()
}

func (p *Prometheus) RecordSnapshotRefresh(skipped bool) {
	p.ensureRegistered()
	result := "done"
	if skipped {
		result = "skipped"
	}
	p.refreshes.WithLabelValues(result).Inc()
}

func (p *Prometheus) RecordUnmappedKeys(reason string, n int) {
	if n <= 0 {
		return
	}
	p.ensureRegistered()
	p.unmapped.WithLabelValues(reason).Add(float64(n))
}

func (p *Prometheus) RecordPowerOfTwoFallback() {
	p.ensureRegistered()
	p.p2cFallback.Inc()
}
