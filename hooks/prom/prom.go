// Package promhooks exports template events as Prometheus counters.
package promhooks

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/cacheaside"
)

type Hooks struct {
	served      *prometheus.CounterVec
	readFailed  prometheus.Counter
	staleAge    prometheus.Histogram
	writeDrops  *prometheus.CounterVec
	writeErrors *prometheus.CounterVec
}

var _ cacheaside.Hooks = (*Hooks)(nil)

// New registers the collectors on reg under namespace (e.g. "app") and the
// "cacheaside" subsystem. constLabels typically carry the template's name.
func New(reg prometheus.Registerer, namespace string, constLabels prometheus.Labels) (*Hooks, error) {
	h := &Hooks{
		served: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "cacheaside",
			Name:        "executions_total",
			Help:        "Executions by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		readFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "cacheaside",
			Name:        "store_read_errors_total",
			Help:        "Store reads that failed and were bypassed.",
			ConstLabels: constLabels,
		}),
		staleAge: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "cacheaside",
			Name:        "stale_served_age_seconds",
			Help:        "Age of entries served after a failed refresh.",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(60, 2, 10),
		}),
		writeDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "cacheaside",
			Name:        "writes_dropped_total",
			Help:        "Write-backs that could not be queued.",
			ConstLabels: constLabels,
		}, []string{"op"}),
		writeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "cacheaside",
			Name:        "write_errors_total",
			Help:        "Write-backs that failed at the store.",
			ConstLabels: constLabels,
		}, []string{"op"}),
	}
	for _, c := range []prometheus.Collector{h.served, h.readFailed, h.staleAge, h.writeDrops, h.writeErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func op(isUpdate bool) string {
	if isUpdate {
		return "replace"
	}
	return "insert"
}

func (h *Hooks) Served(_ string, o cacheaside.Outcome) { h.served.WithLabelValues(o.String()).Inc() }
func (h *Hooks) StoreReadFailed(string, error)         { h.readFailed.Inc() }
func (h *Hooks) StaleServed(_ string, age time.Duration, _ error) {
	h.staleAge.Observe(age.Seconds())
}
func (h *Hooks) WriteDropped(_ string, isUpdate bool, _ error) {
	h.writeDrops.WithLabelValues(op(isUpdate)).Inc()
}
func (h *Hooks) WriteFailed(_ string, isUpdate bool, _ error) {
	h.writeErrors.WithLabelValues(op(isUpdate)).Inc()
}
