package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for audit record processing.
type Metrics struct {
	RecordsBuilt  prometheus.Counter
	RecordsSkip   prometheus.Counter
	RecordsFailed prometheus.Counter
	PruneRuns     prometheus.Counter
	FanoutDropped prometheus.Counter
}

// New registers the metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on a caller-supplied registry; tests use
// a fresh registry to avoid duplicate registration panics.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsBuilt: factory.NewCounter(prometheus.CounterOpts{
			Name: "trail_audit_records_built_total",
			Help: "Total number of audit records built and persisted",
		}),
		RecordsSkip: factory.NewCounter(prometheus.CounterOpts{
			Name: "trail_audit_records_skipped_total",
			Help: "Total number of transitions skipped by the event gate or runtime mode",
		}),
		RecordsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "trail_audit_records_failed_total",
			Help: "Total number of audit record builds or writes that failed",
		}),
		PruneRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "trail_audit_prune_runs_total",
			Help: "Total number of threshold prune operations executed",
		}),
		FanoutDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "trail_audit_fanout_dropped_total",
			Help: "Total number of records dropped because the fanout buffer was full",
		}),
	}
}

func (m *Metrics) IncBuilt()         { m.RecordsBuilt.Inc() }
func (m *Metrics) IncSkipped()       { m.RecordsSkip.Inc() }
func (m *Metrics) IncFailed()        { m.RecordsFailed.Inc() }
func (m *Metrics) IncPruned()        { m.PruneRuns.Inc() }
func (m *Metrics) IncFanoutDropped() { m.FanoutDropped.Inc() }
